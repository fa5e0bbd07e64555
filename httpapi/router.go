// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/campusql/campusql/facade"
)

// Server wraps a Facade behind a gin router.
type Server struct {
	facade          *facade.Facade
	router          *gin.Engine
	maxArchiveBytes int64
}

// New builds a Server over f. maxArchiveBytes caps the size of an
// archive body accepted by PUT /dataset/:id/:kind; 0 means unlimited.
func New(f *facade.Facade, maxArchiveBytes int64) *Server {
	s := &Server{facade: f, router: gin.New(), maxArchiveBytes: maxArchiveBytes}

	s.router.Use(gin.Logger(), gin.Recovery(), requestID())
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.router.PUT("/dataset/:id/:kind", s.handleAddDataset)
	s.router.DELETE("/dataset/:id", s.handleRemoveDataset)
	s.router.GET("/datasets", s.handleListDatasets)
	s.router.POST("/query", s.handlePerformQuery)
	s.router.GET("/echo/:msg", s.handleEcho)
}

// Run starts the HTTP listener on addr, blocking until it exits.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the underlying http.Handler, e.g. for httptest.
func (s *Server) Handler() *gin.Engine {
	return s.router
}
