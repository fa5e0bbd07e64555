// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package textnorm normalizes free-text strings from ingested archives:
// a folded comparison key for room addresses, and whitespace cleanup of
// section text fields.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldASCII strips accents, lowercases, and trims s — used to compare
// room addresses that differ only by diacritics or casing, so that they
// share one geocode call.
func FoldASCII(s string) string {
	folded, _, _ := transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return folded
}

// CollapseWhitespace trims s and collapses runs of interior whitespace to
// a single space, then applies NFC normalization — used on free-text
// section fields (department, instructor, title) scraped from course
// archives, where casing and diacritics are part of the value and must
// survive, unlike FoldASCII's comparison-only folding.
func CollapseWhitespace(s string) string {
	fields := strings.Fields(s)
	collapsed := strings.Join(fields, " ")

	normalized, _, _ := transform.String(norm.NFC, collapsed)

	return normalized
}
