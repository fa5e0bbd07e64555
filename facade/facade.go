// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package facade orchestrates ingest, storage, and querying behind the
// four operations the HTTP surface and CLI call: addDataset,
// removeDataset, listDatasets, performQuery.
package facade

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/campusql/campusql/geocode"
	"github.com/campusql/campusql/identifier"
	"github.com/campusql/campusql/ingest"
	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/query"
	"github.com/campusql/campusql/store"
)

// DatasetSummary is one row of listDatasets' result.
type DatasetSummary struct {
	ID      string     `json:"id"`
	Kind    model.Kind `json:"kind"`
	NumRows int        `json:"numRows"`
}

// Facade is the single entry point the HTTP surface and CLI share.
//
// Concurrency: add/remove on one dataset id are serialized against each
// other and against queries of that same id; operations on different
// ids proceed independently, via a map of per-id mutexes rather than one
// global lock so unrelated datasets never contend. ListDatasets takes no
// lock: it reads whatever files are in the store directory at the time.
type Facade struct {
	store    *store.Store
	geocoder geocode.Geocoder
	ingest   ingest.Options

	mu    sync.Mutex // guards locks map itself
	locks map[string]*sync.RWMutex
}

// New builds a Facade over s, using geocoder for room ingestion.
func New(s *store.Store, geocoder geocode.Geocoder, ingestOpts ingest.Options) *Facade {
	return &Facade{
		store:    s,
		geocoder: geocoder,
		ingest:   ingestOpts,
		locks:    make(map[string]*sync.RWMutex),
	}
}

func (f *Facade) lockFor(id string) *sync.RWMutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		f.locks[id] = l
	}

	return l
}

// AddDataset validates id, ingests payload per kind, and stores the
// result. On success it returns the current set of stored dataset ids.
func (f *Facade) AddDataset(ctx context.Context, id string, kind model.Kind, payloadBase64 string) ([]string, error) {
	if !identifier.Valid(id) {
		return nil, query.New(query.InvalidId, "dataset id must be non-empty, non-whitespace, and contain no '_'")
	}

	if !kind.Valid() {
		return nil, query.New(query.InvalidContent, "kind must be sections or rooms")
	}

	lock := f.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if f.store.Exists(id) {
		return nil, query.New(query.InvalidContent, "dataset already exists")
	}

	dataset, err := f.ingestDataset(ctx, id, kind, payloadBase64)
	if err != nil {
		return nil, err
	}

	if err := f.store.Save(dataset); err != nil {
		return nil, query.Wrap(query.Internal, "saving dataset", err)
	}

	ids, err := f.store.ListIDs()
	if err != nil {
		return nil, query.Wrap(query.Internal, "listing datasets", err)
	}

	sort.Strings(ids)

	return ids, nil
}

func (f *Facade) ingestDataset(ctx context.Context, id string, kind model.Kind, payloadBase64 string) (model.Dataset, error) {
	if kind == model.Sections {
		rows, err := ingest.Sections(payloadBase64, f.ingest)
		if err != nil {
			return model.Dataset{}, err
		}

		return model.Dataset{ID: id, Kind: kind, Sections: rows}, nil
	}

	if f.geocoder == nil {
		return model.Dataset{}, query.New(query.Internal, "no geocoder configured for room ingestion")
	}

	rows, err := ingest.Rooms(ctx, payloadBase64, f.geocoder, f.ingest)
	if err != nil {
		return model.Dataset{}, err
	}

	return model.Dataset{ID: id, Kind: kind, Rooms: rows}, nil
}

// RemoveDataset deletes id from the store, returning the removed id.
func (f *Facade) RemoveDataset(id string) (string, error) {
	if !identifier.Valid(id) {
		return "", query.New(query.InvalidId, "dataset id must be non-empty, non-whitespace, and contain no '_'")
	}

	lock := f.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if err := f.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", query.New(query.NotFound, "no such dataset")
		}

		return "", query.Wrap(query.Internal, "deleting dataset", err)
	}

	return id, nil
}

// ListDatasets returns, for every stored dataset, its id/kind/row count.
// Always derived from disk — there is no cache to keep coherent with
// concurrent removes.
func (f *Facade) ListDatasets() ([]DatasetSummary, error) {
	datasets, err := f.store.ListAll()
	if err != nil {
		return nil, query.Wrap(query.Internal, "listing datasets", err)
	}

	out := make([]DatasetSummary, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, DatasetSummary{ID: d.ID, Kind: d.Kind, NumRows: d.NumRows()})
	}

	return out, nil
}

// PerformQuery validates q, loads the single dataset it references, and
// runs the filter/transform/project pipeline over it.
func (f *Facade) PerformQuery(q query.Query) ([]map[string]any, error) {
	v, err := query.Validate(q)
	if err != nil {
		return nil, err
	}

	lock := f.lockFor(v.DatasetID)
	lock.RLock()
	defer lock.RUnlock()

	ds, err := f.store.Load(v.DatasetID)
	if err != nil {
		// A query referencing an absent dataset is legal shape but fails
		// to resolve — surfaced as InvalidQuery, not NotFound.
		return nil, query.New(query.InvalidQuery, "referenced dataset does not exist")
	}

	if ds.Kind != v.Kind {
		return nil, query.New(query.InvalidQuery, "query fields do not match the referenced dataset's kind")
	}

	return query.Execute(v, ds)
}
