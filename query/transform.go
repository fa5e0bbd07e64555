// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// groupedRow is one synthetic output row produced by TRANSFORMATIONS: the
// GROUP field values plus one computed value per APPLY rule, keyed by
// column name (dataset key for GROUP fields, apply key for APPLY
// results).
type groupedRow map[string]any

// transform groups rows by the tuple of GROUP field values and computes
// one APPLY aggregate per group. An empty group never occurs — groups
// are only formed from rows actually observed after filtering.
func transform(rows []row, group []string, apply []ApplyRule) []groupedRow {
	order := make([]string, 0)
	buckets := make(map[string][]row)

	groupFields := make([]string, len(group))
	for i, g := range group {
		groupFields[i] = splitField(g)
	}

	for _, r := range rows {
		key := groupKey(r, groupFields)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}

		buckets[key] = append(buckets[key], r)
	}

	out := make([]groupedRow, 0, len(order))

	for _, key := range order {
		members := buckets[key]
		gr := groupedRow{}

		for i, g := range group {
			gr[g] = members[0].field(groupFields[i])
		}

		for _, a := range apply {
			gr[a.ApplyKey] = applyAggregate(a, members)
		}

		out = append(out, gr)
	}

	return out
}

func groupKey(r row, fields []string) string {
	key := ""

	for _, f := range fields {
		key += fmt.Sprintf("\x1f%v", r.field(f))
	}

	return key
}

func applyAggregate(a ApplyRule, members []row) any {
	field := splitField(a.DatasetKey)

	switch a.Op {
	case OpMax:
		return numericReduce(members, field, func(acc, v float64) float64 {
			if v > acc {
				return v
			}

			return acc
		})
	case OpMin:
		return numericReduce(members, field, func(acc, v float64) float64 {
			if v < acc {
				return v
			}

			return acc
		})
	case OpSum:
		return decimalSum(members, field).Round(2).InexactFloat64()
	case OpAvg:
		sum := decimalSum(members, field)
		avg := sum.Div(decimal.NewFromInt(int64(len(members))))

		return avg.Round(2).InexactFloat64()
	case OpCount:
		seen := make(map[any]bool, len(members))

		for _, r := range members {
			seen[r.field(field)] = true
		}

		return float64(len(seen))
	default:
		panic(fmt.Sprintf("query: unknown apply op %q", a.Op))
	}
}

func numericReduce(members []row, field string, combine func(acc, v float64) float64) float64 {
	acc := members[0].field(field).(float64)

	for _, r := range members[1:] {
		acc = combine(acc, r.field(field).(float64))
	}

	return acc
}

// decimalSum accumulates field across members using arbitrary-precision
// decimal addition, avoiding the float drift an IEEE-754 accumulator
// would introduce over many rows (spec's decimal-arithmetic design note).
func decimalSum(members []row, field string) decimal.Decimal {
	sum := decimal.Zero

	for _, r := range members {
		sum = sum.Add(decimal.NewFromFloat(r.field(field).(float64)))
	}

	return sum
}
