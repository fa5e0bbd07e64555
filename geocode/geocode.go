// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves a building address to a latitude/longitude
// pair. The room ingester depends only on the Geocoder interface, never
// on a concrete provider, so the HTTP-contract geocoder (http.go) and the
// production Google Maps-backed one (google.go) are interchangeable.
package geocode

import (
	"context"
)

// Result is what a successful geocode resolves to.
type Result struct {
	Lat float64
	Lon float64
}

// Geocoder maps an address to a Result.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Result, error)
}
