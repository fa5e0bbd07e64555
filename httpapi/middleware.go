// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpapi exposes the facade over HTTP using gin. Routing is
// deliberately thin: each handler decodes its request, calls one facade
// method, and maps the resulting query.Error to a status code.
package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// requestID stamps every request with a correlation id, logged alongside
// gin's own access-log line.
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := uuid.NewString()
		ctx.Set("requestID", id)
		ctx.Header(requestIDHeader, id)

		start := time.Now()
		ctx.Next()

		gin.DefaultWriter.Write([]byte(
			"[campusql] " + id + " " + ctx.Request.Method + " " + ctx.Request.URL.Path +
				" " + time.Since(start).String() + "\n"))
	}
}
