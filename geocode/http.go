// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPGeocoder implements a simple geocoding contract:
// GET <base>/<urlencoded-address> returns {lat, lon} on success or
// {error} on failure.
type HTTPGeocoder struct {
	base   string
	client *http.Client
}

// NewHTTPGeocoder returns a Geocoder against baseURL.
func NewHTTPGeocoder(baseURL string, client *http.Client) *HTTPGeocoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTPGeocoder{base: baseURL, client: client}
}

type httpGeocodeResponse struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Error string   `json:"error"`
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (Result, error) {
	reqURL := g.base + "/" + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, &Error{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, &Error{Type: ErrorTypeNetworkError, Message: "calling geocoder", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, ClassifyHTTPError(resp.StatusCode)
	}

	var out httpGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, &Error{Type: ErrorTypeUnknown, Message: "decoding geocoder response", Err: err}
	}

	if out.Error != "" {
		return Result{}, &Error{Type: ErrorTypeNotFound, Message: out.Error}
	}

	if out.Lat == nil || out.Lon == nil {
		return Result{}, &Error{Type: ErrorTypeUnknown, Message: fmt.Sprintf("geocoder response missing lat/lon for %q", address)}
	}

	return Result{Lat: *out.Lat, Lon: *out.Lon}, nil
}
