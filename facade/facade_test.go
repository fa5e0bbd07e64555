// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package facade

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"github.com/campusql/campusql/ingest"
	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/query"
	"github.com/campusql/campusql/store"
)

func zipPayload(t *testing.T, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}

		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

const oneCourseFile = `{"result":[
  {"id":"1","Course":"310","Title":"t","Professor":"p","Subject":"cpsc","Avg":80,"Pass":10,"Fail":1,"Audit":0,"Year":"2015","Section":"001"}
]}`

func newTestFacade(t *testing.T) *Facade {
	t.Helper()

	s := store.New(t.TempDir())

	return New(s, nil, ingest.Options{Quiet: true})
}

func TestAddListRemoveLifecycle(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	payload := zipPayload(t, map[string]string{"courses/CPSC310": oneCourseFile})

	ids, err := f.AddDataset(ctx, "sections", model.Sections, payload)
	if err != nil {
		t.Fatalf("AddDataset() error = %v", err)
	}

	if len(ids) != 1 || ids[0] != "sections" {
		t.Fatalf("AddDataset() ids = %v", ids)
	}

	summaries, err := f.ListDatasets()
	if err != nil {
		t.Fatalf("ListDatasets() error = %v", err)
	}

	if len(summaries) != 1 || summaries[0].ID != "sections" || summaries[0].NumRows != 1 {
		t.Fatalf("ListDatasets() = %+v", summaries)
	}

	if _, err := f.AddDataset(ctx, "sections", model.Sections, payload); err == nil {
		t.Fatal("expected duplicate add to fail")
	} else if query.KindOf(err) != query.InvalidContent {
		t.Errorf("duplicate add KindOf = %v, want InvalidContent", query.KindOf(err))
	}

	removed, err := f.RemoveDataset("sections")
	if err != nil || removed != "sections" {
		t.Fatalf("RemoveDataset() = (%q, %v)", removed, err)
	}

	if _, err := f.RemoveDataset("sections"); query.KindOf(err) != query.NotFound {
		t.Errorf("second remove KindOf = %v, want NotFound", query.KindOf(err))
	}

	summaries, err = f.ListDatasets()
	if err != nil || len(summaries) != 0 {
		t.Fatalf("ListDatasets() after remove = %+v, %v", summaries, err)
	}
}

func TestAddDatasetRejectsInvalidID(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	for _, id := range []string{"", "   ", "has_underscore"} {
		if _, err := f.AddDataset(ctx, id, model.Sections, ""); query.KindOf(err) != query.InvalidId {
			t.Errorf("id %q: KindOf = %v, want InvalidId", id, query.KindOf(err))
		}
	}
}

func TestPerformQueryAgainstMissingDatasetIsInvalidQuery(t *testing.T) {
	f := newTestFacade(t)

	q := query.Query{Options: query.Options{Columns: []string{"sections_uuid"}}}

	_, err := f.PerformQuery(q)
	if query.KindOf(err) != query.InvalidQuery {
		t.Errorf("KindOf(err) = %v, want InvalidQuery", query.KindOf(err))
	}
}

func TestPerformQueryEndToEnd(t *testing.T) {
	f := newTestFacade(t)
	ctx := context.Background()

	payload := zipPayload(t, map[string]string{"courses/CPSC310": oneCourseFile})

	if _, err := f.AddDataset(ctx, "sections", model.Sections, payload); err != nil {
		t.Fatalf("AddDataset() error = %v", err)
	}

	q := query.Query{Options: query.Options{Columns: []string{"sections_dept", "sections_avg"}}}

	records, err := f.PerformQuery(q)
	if err != nil {
		t.Fatalf("PerformQuery() error = %v", err)
	}

	if len(records) != 1 || records[0]["sections_dept"] != "cpsc" {
		t.Fatalf("PerformQuery() = %+v", records)
	}
}
