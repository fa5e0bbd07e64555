// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists datasets under a single root directory, one file
// per dataset, named by the identifier codec and holding a self-describing
// JSON document. The root directory is created lazily; writes go through
// a temp file and rename to stay atomic; a missing file is reported as
// ErrNotFound by Load and Delete, and a missing root lists as empty.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campusql/campusql/identifier"
	"github.com/campusql/campusql/model"
)

const ext = ".json"

// ErrNotFound is returned by Load and Delete when id names no dataset.
var ErrNotFound = errors.New("store: dataset not found")

// document is the on-disk shape of one dataset: self-describing, so
// reloading reconstructs an equivalent container without any metadata
// outside this file.
type document struct {
	ID       string          `json:"id"`
	Kind     model.Kind      `json:"kind"`
	Sections []model.Section `json:"sections,omitempty"`
	Rooms    []model.Room    `json:"rooms,omitempty"`
}

// Store persists Datasets under root, one JSON file per dataset.
type Store struct {
	root string
}

// New returns a Store rooted at dir. The directory is created lazily on
// first Save, by mustExistDir.
func New(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) path(id string) string {
	return filepath.Join(s.root, identifier.Encode(id)+ext)
}

func (s *Store) mustExistDir() error {
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return fmt.Errorf("store: creating root %s: %w", s.root, err)
	}

	return nil
}

// Save writes dataset to disk. Overwriting an existing file is a
// programmer error — callers (the facade) must establish non-existence
// first via Exists. The write is atomic-enough that a crash mid-write
// never leaves a partial file where a valid dataset is expected: the
// document is written to a temp file in the same directory, then renamed
// into place.
func (s *Store) Save(dataset model.Dataset) error {
	if err := s.mustExistDir(); err != nil {
		return err
	}

	doc := document{ID: dataset.ID, Kind: dataset.Kind}
	if dataset.Kind == model.Sections {
		doc.Sections = dataset.Sections
	} else {
		doc.Rooms = dataset.Rooms
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encoding dataset %q: %w", dataset.ID, err)
	}

	final := s.path(dataset.ID)

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: creating temp file for %q: %w", dataset.ID, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("store: writing dataset %q: %w", dataset.ID, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("store: closing temp file for %q: %w", dataset.ID, err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("store: committing dataset %q: %w", dataset.ID, err)
	}

	return nil
}

// Load parses the stored document for id, rebuilding the typed rows from
// the embedded kind. Returns ErrNotFound if no such dataset is stored.
func (s *Store) Load(id string) (model.Dataset, error) {
	body, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Dataset{}, ErrNotFound
		}

		return model.Dataset{}, fmt.Errorf("store: reading dataset %q: %w", id, err)
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.Dataset{}, fmt.Errorf("store: decoding dataset %q: %w", id, err)
	}

	ds := model.Dataset{ID: doc.ID, Kind: doc.Kind}
	if doc.Kind == model.Sections {
		ds.Sections = doc.Sections
	} else {
		ds.Rooms = doc.Rooms
	}

	return ds, nil
}

// Exists reports whether id has a file on disk.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))

	return err == nil
}

// ListIDs enumerates every stored dataset id, decoding each basename.
// Order is unspecified.
func (s *Store) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("store: listing %s: %w", s.root, err)
	}

	ids := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}

		fname := e.Name()[:len(e.Name())-len(ext)]

		id, err := identifier.Decode(fname)
		if err != nil {
			return nil, fmt.Errorf("store: decoding filename %q: %w", e.Name(), err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// ListAll parses every stored dataset. Derived from disk on every call —
// there is no in-memory cache to keep coherent with removes, per the
// source's dead-cache open question resolved in favor of always reading
// through.
func (s *Store) ListAll() ([]model.Dataset, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return nil, err
	}

	datasets := make([]model.Dataset, 0, len(ids))

	for _, id := range ids {
		ds, err := s.Load(id)
		if err != nil {
			return nil, err
		}

		datasets = append(datasets, ds)
	}

	return datasets, nil
}

// Delete removes id's file. Returns ErrNotFound if absent.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}

		return fmt.Errorf("store: deleting dataset %q: %w", id, err)
	}

	return nil
}
