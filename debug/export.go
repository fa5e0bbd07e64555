// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package debug holds ad hoc inspection tools that query a dataset
// without going through the query language: an ephemeral DuckDB export
// for SQL-shaped exploration, and an H3 cell histogram for room
// coordinates.
package debug

import (
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/spatial"
)

// ExportDataset loads ds into a fresh in-memory DuckDB database — one
// table named after ds.ID, one row per Section or Room — and returns the
// open handle for the caller to run ad hoc SQL against. The caller owns
// the returned *sql.DB and must Close it.
func ExportDataset(ds model.Dataset) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("debug: opening in-memory duckdb: %w", err)
	}

	if err := exportInto(db, ds); err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}

func exportInto(db *sql.DB, ds model.Dataset) error {
	switch ds.Kind {
	case model.Sections:
		return exportSections(db, ds)
	case model.Rooms:
		return exportRooms(db, ds)
	default:
		return fmt.Errorf("debug: unknown dataset kind %q", ds.Kind)
	}
}

func exportSections(db *sql.DB, ds model.Dataset) error {
	const schema = `CREATE TABLE sections (
		uuid VARCHAR, id VARCHAR, title VARCHAR, instructor VARCHAR,
		dept VARCHAR, year BIGINT, avg DOUBLE, pass BIGINT, fail BIGINT, audit BIGINT
	)`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("debug: creating sections table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO sections VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("debug: preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range ds.Sections {
		if _, err := stmt.Exec(s.UUID, s.ID, s.Title, s.Instructor, s.Dept, s.Year, s.Avg, s.Pass, s.Fail, s.Audit); err != nil {
			return fmt.Errorf("debug: inserting section %s: %w", s.ID, err)
		}
	}

	return nil
}

func exportRooms(db *sql.DB, ds model.Dataset) error {
	// rooms carry their coordinate as a POINT_2D column, the way the
	// teacher's own offense-location table does, rather than separate
	// lat/lon scalars.
	if _, err := db.Exec(`INSTALL spatial; LOAD spatial;`); err != nil {
		return fmt.Errorf("debug: loading spatial extension: %w", err)
	}

	const schema = `CREATE TABLE rooms (
		full_name VARCHAR, short_name VARCHAR, number VARCHAR, name VARCHAR,
		address VARCHAR, location POINT_2D, seats BIGINT, type VARCHAR, furniture VARCHAR, href VARCHAR
	)`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("debug: creating rooms table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO rooms VALUES (?, ?, ?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("debug: preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range ds.Rooms {
		p := spatial.FromRoom(r)
		if _, err := stmt.Exec(r.FullName, r.ShortName, r.Number, r.Name, r.Address, p.Lng, p.Lat, r.Seats, r.Type, r.Furniture, r.Href); err != nil {
			return fmt.Errorf("debug: inserting room %s: %w", r.Name, err)
		}
	}

	return nil
}

// RoomLocations reads back every room's location column from an
// exported rooms table, the way the teacher's repository Scans a
// POINT_2D column into a *spatial.Point.
func RoomLocations(db *sql.DB) ([]spatial.Point, error) {
	rows, err := db.Query(`SELECT location FROM rooms`)
	if err != nil {
		return nil, fmt.Errorf("debug: querying room locations: %w", err)
	}
	defer rows.Close()

	var points []spatial.Point

	for rows.Next() {
		var p spatial.Point
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("debug: scanning room location: %w", err)
		}

		points = append(points, p)
	}

	return points, rows.Err()
}

// Query runs sql against db and returns the result as row maps, the way
// a quick inspection tool prints results — column name to scalar value.
func Query(db *sql.DB, sqlText string) ([]map[string]any, error) {
	rows, err := db.Query(sqlText)
	if err != nil {
		return nil, fmt.Errorf("debug: running query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("debug: reading columns: %w", err)
	}

	var out []map[string]any

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("debug: scanning row: %w", err)
		}

		record := make(map[string]any, len(cols))
		for i, c := range cols {
			record[c] = values[i]
		}

		out = append(out, record)
	}

	return out, rows.Err()
}
