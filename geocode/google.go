// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// GoogleMapsGeocoder is the production geocoder for operators who have
// Google Maps Geocoding API access. The room ingester never imports this
// type directly — it's selected by config and handed to ingest as a
// geocode.Geocoder.
type GoogleMapsGeocoder struct {
	apiKey     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder returns a geocoder bound to apiKey.
func NewGoogleMapsGeocoder(apiKey string) *GoogleMapsGeocoder {
	return NewGoogleMapsGeocoderWithClient(apiKey, &http.Client{Timeout: 10 * time.Second})
}

// NewGoogleMapsGeocoderWithClient is like NewGoogleMapsGeocoder but lets
// the caller supply the HTTP client, e.g. one wrapped with
// NewTracingClient for debugging.
func NewGoogleMapsGeocoderWithClient(apiKey string, client *http.Client) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{apiKey: apiKey, httpClient: client}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"`
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, address string) (Result, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)

	reqURL := "https://maps.googleapis.com/maps/api/geocode/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, &Error{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Result{}, &Error{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, ClassifyHTTPError(resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return Result{}, &Error{Type: ErrorTypeUnknown, Message: "decoding response", Err: err}
	}

	if gmResp.Status == "ZERO_RESULTS" {
		return Result{}, &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results for %q", address)}
	}

	if gmResp.Status != "OK" {
		return Result{}, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("google maps status: %s", gmResp.Status)}
	}

	if len(gmResp.Results) == 0 {
		return Result{}, &Error{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results for %q", address)}
	}

	loc := gmResp.Results[0].Geometry.Location

	return Result{Lat: loc.Lat, Lon: loc.Lng}, nil
}

// APIKeyFromADC discovers a Google Maps Geocoding API key through
// Application Default Credentials, for operators who provision the key
// via a GCP project rather than an env var.
func APIKeyFromADC(ctx context.Context, displayName string) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("geocode: finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", fmt.Errorf("geocode: no project id in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("geocode: creating apikeys client: %w", err)
	}
	defer client.Close()

	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("geocode: listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		log.Printf("geocode: found key resource %q, retrieving secret", key.Name)

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("geocode: getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("geocode: key %q found but its string is empty", displayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("geocode: no API key named %q found in project %q", displayName, projectID)
}
