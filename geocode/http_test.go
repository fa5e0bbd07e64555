// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPGeocoderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2366%20Main%20Mall" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		w.Write([]byte(`{"lat": 49.26, "lon": -123.25}`))
	}))
	defer srv.Close()

	g := NewHTTPGeocoder(srv.URL, nil)

	res, err := g.Geocode(context.Background(), "2366 Main Mall")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	if res.Lat != 49.26 || res.Lon != -123.25 {
		t.Errorf("Geocode() = %+v, want {49.26 -123.25}", res)
	}
}

func TestHTTPGeocoderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "not found"}`))
	}))
	defer srv.Close()

	g := NewHTTPGeocoder(srv.URL, nil)

	_, err := g.Geocode(context.Background(), "nowhere")
	if err == nil {
		t.Fatal("Geocode() expected an error")
	}

	ge, ok := err.(*Error)
	if !ok || ge.Type != ErrorTypeNotFound {
		t.Errorf("expected a not-found geocode error, got %v", err)
	}
}
