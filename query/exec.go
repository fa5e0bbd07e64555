// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"fmt"

	"github.com/campusql/campusql/model"
)

// MaxResultRows is the result-size cap, enforced after filter/transform,
// before projection, to avoid wasted projection work on an oversized
// result.
const MaxResultRows = 5000

// Execute runs filter, transform, and projection over ds, which must
// already be confirmed to match v.DatasetID/v.Kind by the caller (the
// facade, right after loading it from the store).
func Execute(v *Validated, ds model.Dataset) ([]map[string]any, error) {
	var rows []row
	if ds.Kind == model.Sections {
		rows = sectionRows(ds.Sections)
	} else {
		rows = roomRows(ds.Rooms)
	}

	filtered := make([]row, 0, len(rows))

	for _, r := range rows {
		if evalWhere(v.Where, r) {
			filtered = append(filtered, r)
		}
	}

	var records []map[string]any

	if len(v.Group) > 0 {
		grouped := transform(filtered, v.Group, v.Apply)
		if len(grouped) > MaxResultRows {
			return nil, New(ResultTooLarge, fmt.Sprintf("result has %d rows, limit is %d", len(grouped), MaxResultRows))
		}

		records = projectGrouped(grouped, v.Columns)
	} else {
		if len(filtered) > MaxResultRows {
			return nil, New(ResultTooLarge, fmt.Sprintf("result has %d rows, limit is %d", len(filtered), MaxResultRows))
		}

		records = project(filtered, v.Columns)
	}

	sortRecords(records, v.Order)

	return records, nil
}
