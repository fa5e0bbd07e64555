// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package config assembles the process-wide Config struct from cobra
// persistent flags, falling back to environment variables and then a
// hardcoded default for each knob, in that priority order.
package config

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// Config holds the service's runtime knobs: where it listens, where it
// persists datasets, how it reaches a geocoder, and how much ingest
// concurrency and archive size it allows.
type Config struct {
	ListenAddr       string
	StoreRoot        string
	GeocoderBase     string
	GoogleMapsAPIKey string
	MaxArchiveBytes  int64
	IngestMaxProcs   int
	TraceGeocoder    bool
}

// Default returns the configuration with environment variables
// overriding each field's fallback. BindPersistentFlags uses it for flag
// defaults and FromFlags starts from it.
func Default() Config {
	return Config{
		ListenAddr:       envOr("CAMPUSQL_LISTEN", ":8080"),
		StoreRoot:        envOr("CAMPUSQL_STORE_ROOT", "./data"),
		GeocoderBase:     os.Getenv("CAMPUSQL_GEOCODER_BASE"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		MaxArchiveBytes:  envOrInt64("CAMPUSQL_MAX_ARCHIVE_BYTES", 10*1024*1024),
		IngestMaxProcs:   envOrInt("CAMPUSQL_INGEST_MAX_PROCS", 0),
		TraceGeocoder:    os.Getenv("CAMPUSQL_TRACE_GEOCODER") == "1",
	}
}

// BindPersistentFlags registers this service's configuration knobs as
// persistent flags on flags, each defaulting to Default()'s
// environment-or-hardcoded value, the way the teacher's impoCmd binds
// ClientOptions onto impoCmd.PersistentFlags(). FromFlags reads the
// bound values back out after cobra has parsed argv.
func BindPersistentFlags(flags *pflag.FlagSet) {
	d := Default()

	flags.String("listen", d.ListenAddr, "address the HTTP surface listens on (env CAMPUSQL_LISTEN)")
	flags.String("store-root", d.StoreRoot, "root directory for persisted datasets (env CAMPUSQL_STORE_ROOT)")
	flags.String("geocoder-base", d.GeocoderBase, "base URL of the HTTP-contract geocoder (env CAMPUSQL_GEOCODER_BASE)")
	flags.Int64("max-archive-bytes", d.MaxArchiveBytes, "maximum accepted archive size in bytes (env CAMPUSQL_MAX_ARCHIVE_BYTES)")
	flags.Int("ingest-max-procs", d.IngestMaxProcs, "parallel archive-entry workers, 0 means runtime.NumCPU() (env CAMPUSQL_INGEST_MAX_PROCS)")
	flags.Bool("trace-geocoder", d.TraceGeocoder, "log every outbound geocoder HTTP request/response (env CAMPUSQL_TRACE_GEOCODER)")
}

// FromFlags builds a Config from flags bound by BindPersistentFlags,
// falling back to Default() for any flag the caller never registered
// (e.g. a subcommand that only cares about StoreRoot).
func FromFlags(flags *pflag.FlagSet) Config {
	cfg := Default()

	if v, err := flags.GetString("listen"); err == nil {
		cfg.ListenAddr = v
	}

	if v, err := flags.GetString("store-root"); err == nil {
		cfg.StoreRoot = v
	}

	if v, err := flags.GetString("geocoder-base"); err == nil {
		cfg.GeocoderBase = v
	}

	if v, err := flags.GetInt64("max-archive-bytes"); err == nil {
		cfg.MaxArchiveBytes = v
	}

	if v, err := flags.GetInt("ingest-max-procs"); err == nil {
		cfg.IngestMaxProcs = v
	}

	if v, err := flags.GetBool("trace-geocoder"); err == nil {
		cfg.TraceGeocoder = v
	}

	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	return cfg
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}

	return fallback
}

func envOrInt(key string, fallback int) int {
	return int(envOrInt64(key, int64(fallback)))
}
