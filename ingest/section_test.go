// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/query"
)

func buildZip(t *testing.T, files map[string]string) string {
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

const validCourseFile = `{"result":[
  {"id":"1234","Course":"310","Title":"intro sw eng","Professor":"kiczales","Subject":"cpsc","Avg":80.5,"Pass":100,"Fail":5,"Audit":2,"Year":"2015","Section":"001"},
  {"id":"5678","Course":"310","Title":"intro sw eng","Professor":"","Subject":"cpsc","Avg":81.2,"Pass":400,"Fail":10,"Audit":0,"Year":"2015","Section":"overall"}
]}`

func TestSectionsHappyPath(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"courses/CPSC310": validCourseFile,
	})

	rows, err := Sections(payload, Options{Quiet: true})
	if err != nil {
		t.Fatalf("Sections() error = %v", err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].UUID < rows[j].UUID })

	want := []model.Section{
		{UUID: "1234", ID: "310", Title: "intro sw eng", Instructor: "kiczales", Dept: "cpsc", Year: 2015, Avg: 80.5, Pass: 100, Fail: 5, Audit: 2},
		{UUID: "5678", ID: "310", Title: "intro sw eng", Instructor: "", Dept: "cpsc", Year: 1900, Avg: 81.2, Pass: 400, Fail: 10, Audit: 0},
	}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Sections() rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionsCollapsesWhitespaceInTextFields(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"courses/CPSC310": `{"result":[
  {"id":"1","Course":"310","Title":"  intro   sw  eng  ","Professor":"  kiczales  ","Subject":"  cpsc  ","Avg":80.5,"Pass":100,"Fail":5,"Audit":2,"Year":"2015","Section":"001"}
]}`,
	})

	rows, err := Sections(payload, Options{Quiet: true})
	if err != nil {
		t.Fatalf("Sections() error = %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	r := rows[0]
	if r.Title != "intro sw eng" || r.Instructor != "kiczales" || r.Dept != "cpsc" {
		t.Errorf("unexpected section: %+v, want whitespace collapsed", r)
	}
}

func TestSectionsRejectsWrongTopLevelLayout(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"other/CPSC310": validCourseFile,
	})

	_, err := Sections(payload, Options{Quiet: true})
	if err == nil {
		t.Fatal("Sections() expected an error for bad layout")
	}

	if query.KindOf(err) != query.InvalidContent {
		t.Errorf("KindOf(err) = %v, want InvalidContent", query.KindOf(err))
	}
}

func TestSectionsRejectsMissingField(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"courses/CPSC310": `{"result":[{"id":"1","Course":"310","Title":"x","Professor":"y","Subject":"cpsc","Avg":1,"Pass":1,"Fail":1,"Audit":1}]}`,
	})

	_, err := Sections(payload, Options{Quiet: true})
	if err == nil {
		t.Fatal("Sections() expected an error for missing Year field")
	}
}

func TestSectionsRejectsEmptyArchive(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"courses/CPSC310": `{"result":[]}`,
	})

	_, err := Sections(payload, Options{Quiet: true})
	if err == nil {
		t.Fatal("Sections() expected an error for zero rows")
	}
}

func TestSectionsRejectsBadBase64(t *testing.T) {
	_, err := Sections("not-base64!!!", Options{Quiet: true})
	if query.KindOf(err) != query.InvalidContent {
		t.Errorf("KindOf(err) = %v, want InvalidContent", query.KindOf(err))
	}
}
