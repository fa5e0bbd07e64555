// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/campusql/campusql/config"
	"github.com/campusql/campusql/facade"
	"github.com/campusql/campusql/geocode"
	"github.com/campusql/campusql/httpapi"
	"github.com/campusql/campusql/ingest"
	"github.com/campusql/campusql/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP surface backed by a store directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromFlags(cmd.Flags())

		s := store.New(cfg.StoreRoot)
		g := geocoderFromConfig(cfg)

		f := facade.New(s, g, ingest.Options{MaxProcs: cfg.IngestMaxProcs})
		srv := httpapi.New(f, cfg.MaxArchiveBytes)

		log.Printf("listening on %s, store root %s", cfg.ListenAddr, cfg.StoreRoot)

		return srv.Run(cfg.ListenAddr)
	},
}

// geocoderFromConfig picks the room geocoder to wire into the facade:
// an HTTP-contract geocoder when a base URL is configured, a Google Maps
// one when an API key is available, falling back to Application Default
// Credentials, or none at all — room ingestion then fails fast.
func geocoderFromConfig(cfg config.Config) geocode.Geocoder {
	var client *http.Client
	if cfg.TraceGeocoder {
		client = geocode.NewTracingClient()
	}

	if cfg.GeocoderBase != "" {
		return geocode.NewHTTPGeocoder(cfg.GeocoderBase, client)
	}

	apiKey := cfg.GoogleMapsAPIKey
	if apiKey == "" {
		if key, err := geocode.APIKeyFromADC(context.Background(), "campusql-geocoding"); err == nil {
			apiKey = key
		}
	}

	if apiKey == "" {
		return nil
	}

	if client == nil {
		return geocode.NewGoogleMapsGeocoder(apiKey)
	}

	return geocode.NewGoogleMapsGeocoderWithClient(apiKey, client)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
