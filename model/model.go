// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package model holds the row variants and dataset container this service
// persists and queries: Section, Room, and the Kind-discriminated Dataset
// that binds an id to a homogeneous row collection.
package model

import "fmt"

// Kind discriminates the two row families this service ever stores.
type Kind string

const (
	Sections Kind = "sections"
	Rooms    Kind = "rooms"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Sections || k == Rooms
}

// Section is one offering of a course, or its "overall" aggregate row.
type Section struct {
	UUID       string
	ID         string
	Title      string
	Instructor string
	Dept       string
	Year       int
	Avg        float64
	Pass       int
	Fail       int
	Audit      int
}

// Room is one bookable campus room.
type Room struct {
	FullName  string
	ShortName string
	Number    string
	Name      string
	Address   string
	Lat       float64
	Lon       float64
	Seats     int
	Type      string
	Furniture string
	Href      string
}

// FieldType is the scalar type a query field resolves to.
type FieldType int

const (
	NumericField FieldType = iota
	StringField
)

// SectionFields maps the closed set of queryable Section field names to
// their type. These are the exact suffixes usable after a dataset id in
// a query key, e.g. "sections_avg".
var SectionFields = map[string]FieldType{
	"avg":        NumericField,
	"pass":       NumericField,
	"fail":       NumericField,
	"audit":      NumericField,
	"year":       NumericField,
	"dept":       StringField,
	"instructor": StringField,
	"title":      StringField,
	"uuid":       StringField,
	"id":         StringField,
}

// RoomFields maps the closed set of queryable Room field names.
var RoomFields = map[string]FieldType{
	"fullname":  StringField,
	"shortname": StringField,
	"number":    StringField,
	"name":      StringField,
	"address":   StringField,
	"lat":       NumericField,
	"lon":       NumericField,
	"seats":     NumericField,
	"type":      StringField,
	"furniture": StringField,
	"href":      StringField,
}

// FieldsFor returns the closed field-name set for kind.
func FieldsFor(k Kind) map[string]FieldType {
	if k == Sections {
		return SectionFields
	}

	return RoomFields
}

// SectionValue resolves a field name against one Section, panicking on an
// unknown field — callers must validate the field name against
// SectionFields first.
func SectionValue(s Section, field string) any {
	switch field {
	case "avg":
		return s.Avg
	case "pass":
		return float64(s.Pass)
	case "fail":
		return float64(s.Fail)
	case "audit":
		return float64(s.Audit)
	case "year":
		return float64(s.Year)
	case "dept":
		return s.Dept
	case "instructor":
		return s.Instructor
	case "title":
		return s.Title
	case "uuid":
		return s.UUID
	case "id":
		return s.ID
	default:
		panic(fmt.Sprintf("model: unknown section field %q", field))
	}
}

// RoomValue resolves a field name against one Room — see SectionValue.
func RoomValue(r Room, field string) any {
	switch field {
	case "fullname":
		return r.FullName
	case "shortname":
		return r.ShortName
	case "number":
		return r.Number
	case "name":
		return r.Name
	case "address":
		return r.Address
	case "lat":
		return r.Lat
	case "lon":
		return r.Lon
	case "seats":
		return float64(r.Seats)
	case "type":
		return r.Type
	case "furniture":
		return r.Furniture
	case "href":
		return r.Href
	default:
		panic(fmt.Sprintf("model: unknown room field %q", field))
	}
}

// Dataset is a named, immutable collection of rows of one Kind.
//
// Exactly one of Sections/Rooms is populated, matching Kind — the facade
// and store never construct a Dataset with a mismatched pair.
type Dataset struct {
	ID       string
	Kind     Kind
	Sections []Section
	Rooms    []Room
}

// NumRows reports the row count regardless of kind.
func (d Dataset) NumRows() int {
	if d.Kind == Sections {
		return len(d.Sections)
	}

	return len(d.Rooms)
}
