// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"net/http"
	"os"
	"time"

	"github.com/campusql/campusql/utils/httputils"
)

// NewTracingClient builds an http.Client that logs every outbound
// geocoding request/response to stderr and stamps a User-Agent header,
// for operators debugging geocoder connectivity issues.
func NewTracingClient() *http.Client {
	transport := &httputils.AppendRequestHeadersRoundTripper{
		Transport: http.DefaultTransport,
		Headers:   map[string]string{"User-Agent": "campusql-geocoder/1.0"},
	}

	logging := &httputils.LoggingRoundTripper{
		Transport: transport,
		Writer:    os.Stderr,
		DumpBody:  false,
	}

	return &http.Client{Transport: logging, Timeout: 10 * time.Second}
}
