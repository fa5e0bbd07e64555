// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/query"
)

func fail(ctx *gin.Context, err error) {
	kind := query.KindOf(err)
	ctx.JSON(kind.HTTPStatus(), gin.H{"error": err.Error()})
}

func (s *Server) handleAddDataset(ctx *gin.Context) {
	id := ctx.Param("id")
	kind := model.Kind(ctx.Param("kind"))

	if s.maxArchiveBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, s.maxArchiveBytes)
	}

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(query.InvalidContent.HTTPStatus(), gin.H{"error": "archive exceeds the maximum accepted size"})

		return
	}

	payload := base64.StdEncoding.EncodeToString(body)

	ids, err := s.facade.AddDataset(ctx.Request.Context(), id, kind, payload)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"result": ids})
}

func (s *Server) handleRemoveDataset(ctx *gin.Context) {
	id, err := s.facade.RemoveDataset(ctx.Param("id"))
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"result": id})
}

func (s *Server) handleListDatasets(ctx *gin.Context) {
	summaries, err := s.facade.ListDatasets()
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"result": summaries})
}

func (s *Server) handlePerformQuery(ctx *gin.Context) {
	var q query.Query
	if err := ctx.BindJSON(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "malformed query JSON"})

		return
	}

	records, err := s.facade.PerformQuery(q)
	if err != nil {
		fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"result": records})
}

func (s *Server) handleEcho(ctx *gin.Context) {
	msg := ctx.Param("msg")
	ctx.JSON(http.StatusOK, gin.H{"result": msg + "..." + msg})
}
