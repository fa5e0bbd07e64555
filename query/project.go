// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package query

import "sort"

// project reduces rows to flat records holding only the COLUMNS fields,
// keyed by column name.
func project(rows []row, columns []string) []map[string]any {
	out := make([]map[string]any, len(rows))

	for i, r := range rows {
		rec := make(map[string]any, len(columns))

		for _, c := range columns {
			rec[c] = r.field(splitField(c))
		}

		out[i] = rec
	}

	return out
}

// projectGrouped does the same for TRANSFORMATIONS output, where each
// groupedRow is already keyed by column name (GROUP dataset keys and
// APPLY keys alike).
func projectGrouped(rows []groupedRow, columns []string) []map[string]any {
	out := make([]map[string]any, len(rows))

	for i, gr := range rows {
		rec := make(map[string]any, len(columns))

		for _, c := range columns {
			rec[c] = gr[c]
		}

		out[i] = rec
	}

	return out
}

// sortRecords orders records in place per ORDER's multi-key priority,
// stable on full ties so rows equal on every key keep their relative
// input order.
func sortRecords(records []map[string]any, ord *order) {
	if ord == nil {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		for k, key := range ord.keys {
			a, b := records[i][key], records[j][key]

			cmp := compareValues(a, b)
			if cmp == 0 {
				continue
			}

			if ord.desc[k] {
				return cmp > 0
			}

			return cmp < 0
		}

		return false
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv := b.(float64)

		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)

		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}
