// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/campusql/campusql/model"
)

func sectionsDataset() model.Dataset {
	return model.Dataset{
		ID:   "sections/2015",
		Kind: model.Sections,
		Sections: []model.Section{
			{UUID: "1", ID: "310", Title: "intro", Instructor: "p", Dept: "cpsc", Year: 2015, Avg: 80, Pass: 10, Fail: 1, Audit: 0},
			{UUID: "2", ID: "310", Title: "intro", Instructor: "p", Dept: "cpsc", Year: 1900, Avg: 82, Pass: 20, Fail: 2, Audit: 1},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	ds := sectionsDataset()

	if err := s.Save(ds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ds.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if diff := cmp.Diff(ds, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Load("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s := New(t.TempDir())

	if err := s.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestExists(t *testing.T) {
	s := New(t.TempDir())
	ds := sectionsDataset()

	if s.Exists(ds.ID) {
		t.Fatal("Exists() = true before Save")
	}

	if err := s.Save(ds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !s.Exists(ds.ID) {
		t.Error("Exists() = false after Save")
	}
}

func TestListIDsDecodesIdsWithSlashes(t *testing.T) {
	s := New(t.TempDir())

	for _, id := range []string{"sections/2015", "rooms winter"} {
		ds := model.Dataset{ID: id, Kind: model.Rooms, Rooms: []model.Room{{FullName: "x"}}}
		if err := s.Save(ds); err != nil {
			t.Fatalf("Save(%q) error = %v", id, err)
		}
	}

	ids, err := s.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}

	got := map[string]bool{}
	for _, id := range ids {
		got[id] = true
	}

	for _, want := range []string{"sections/2015", "rooms winter"} {
		if !got[want] {
			t.Errorf("ListIDs() = %v, missing %q", ids, want)
		}
	}
}

func TestListAllAndDeleteRemovesFromListing(t *testing.T) {
	s := New(t.TempDir())
	ds := sectionsDataset()

	if err := s.Save(ds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	all, err := s.ListAll()
	if err != nil || len(all) != 1 {
		t.Fatalf("ListAll() = %v, %v", all, err)
	}

	if err := s.Delete(ds.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	all, err = s.ListAll()
	if err != nil || len(all) != 0 {
		t.Fatalf("ListAll() after delete = %v, %v", all, err)
	}
}

func TestListIDsOnMissingRootIsEmptyNotError(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))

	ids, err := s.ListIDs()
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}

	if len(ids) != 0 {
		t.Errorf("ListIDs() = %v, want empty", ids)
	}
}

func TestSaveLeavesNoTempFileOnSuccess(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.Save(sectionsDataset()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	for _, e := range entries {
		if filepath.Ext(e.Name()) != ext {
			t.Errorf("leftover non-dataset file in store root: %s", e.Name())
		}
	}
}
