// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package debug

import (
	"fmt"
	"sort"

	"github.com/uber/h3-go/v4"

	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/spatial"
)

// CellCount is one row of an H3 cell histogram.
type CellCount struct {
	Cell  string
	Count int
}

// H3Histogram buckets every Room's coordinate into its H3 cell at res and
// returns the buckets ordered by descending count, most populous first —
// a quick way to spot clustering or geocoding drift across a rooms
// dataset.
func H3Histogram(rooms []model.Room, res int) ([]CellCount, error) {
	counts := make(map[h3.Cell]int)
	order := make([]h3.Cell, 0)

	for _, r := range rooms {
		p := spatial.FromRoom(r)

		cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
		if err != nil {
			return nil, fmt.Errorf("debug: converting %s to h3 cell at res %d: %w", r.Name, res, err)
		}

		if _, seen := counts[cell]; !seen {
			order = append(order, cell)
		}

		counts[cell]++
	}

	out := make([]CellCount, 0, len(order))
	for _, c := range order {
		out = append(out, CellCount{Cell: c.String(), Count: counts[c]})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	return out, nil
}
