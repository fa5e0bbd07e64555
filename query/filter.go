// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package query

import "strings"

// row is the minimal interface the filter/transform/project stages need
// over a single Section or Room: resolve a field name (already stripped
// of its dataset-id prefix) to a scalar value.
type row interface {
	field(name string) any
}

// evalWhere evaluates a WHERE AST against one row. Semantics are total:
// every node yields true or false, never an error — Validate has already
// rejected anything that could fail at evaluation time.
func evalWhere(n *whereNode, r row) bool {
	switch {
	case n.true:
		return true
	case n.and != nil:
		for _, c := range n.and {
			if !evalWhere(c, r) {
				return false
			}
		}

		return true
	case n.or != nil:
		for _, c := range n.or {
			if evalWhere(c, r) {
				return true
			}
		}

		return false
	case n.not != nil:
		return !evalWhere(n.not, r)
	case n.gt != nil:
		return numericValue(r, n.gt.key) > n.gt.numeric
	case n.lt != nil:
		return numericValue(r, n.lt.key) < n.lt.numeric
	case n.eq != nil:
		return numericValue(r, n.eq.key) == n.eq.numeric
	case n.is != nil:
		return matchPattern(stringValue(r, n.is.key), n.is.pattern)
	default:
		return false
	}
}

func numericValue(r row, key string) float64 {
	_, field, _ := splitKey(key)

	return r.field(field).(float64)
}

func stringValue(r row, key string) string {
	_, field, _ := splitKey(key)

	return r.field(field).(string)
}

// matchPattern implements IS's restricted wildcard semantics: '*' may be
// a leading prefix, trailing suffix, both, or absent (exact match).
func matchPattern(value, pattern string) bool {
	hasPrefix := strings.HasPrefix(pattern, "*")
	hasSuffix := strings.HasSuffix(pattern, "*")

	switch {
	case hasPrefix && hasSuffix:
		if len(pattern) == 1 {
			return true // bare "*" matches anything, including empty
		}

		inner := pattern[1 : len(pattern)-1]

		return strings.Contains(value, inner)
	case hasPrefix:
		return strings.HasSuffix(value, pattern[1:])
	case hasSuffix:
		return strings.HasPrefix(value, pattern[:len(pattern)-1])
	default:
		return value == pattern
	}
}
