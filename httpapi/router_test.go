// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/campusql/campusql/facade"
	"github.com/campusql/campusql/ingest"
	"github.com/campusql/campusql/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const oneCourseFile = `{"result":[
  {"id":"1","Course":"310","Title":"t","Professor":"p","Subject":"cpsc","Avg":80,"Pass":10,"Fail":1,"Audit":0,"Year":"2015","Section":"001"}
]}`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s := store.New(t.TempDir())
	f := facade.New(s, nil, ingest.Options{Quiet: true})

	return New(f, 0)
}

func buildArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	w, err := zw.Create("courses/CPSC310")
	require.NoError(t, err)

	_, err = w.Write([]byte(oneCourseFile))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestEcho(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("GET", "/echo/hi", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "hi...hi", body["result"])
}

func TestAddDatasetRejectsArchiveOverMaxBytes(t *testing.T) {
	s := store.New(t.TempDir())
	f := facade.New(s, nil, ingest.Options{Quiet: true})
	srv := New(f, 10)

	archive := buildArchive(t)
	require.Greater(t, len(archive), 10)

	req := httptest.NewRequest("PUT", "/dataset/sections/sections", bytes.NewReader(archive))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, 400, rec.Code)
}

func TestAddListQueryRemove(t *testing.T) {
	s := newTestServer(t)
	archive := buildArchive(t)

	req := httptest.NewRequest("PUT", "/dataset/sections/sections", bytes.NewReader(archive))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	req = httptest.NewRequest("GET", "/datasets", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	queryBody := `{"WHERE":{},"OPTIONS":{"COLUMNS":["sections_dept"]}}`
	req = httptest.NewRequest("POST", "/query", bytes.NewReader([]byte(queryBody)))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	req = httptest.NewRequest("DELETE", "/dataset/sections", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	req = httptest.NewRequest("DELETE", "/dataset/sections", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
}
