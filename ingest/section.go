// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package ingest turns archive bytes into typed rows: Section rows from a
// zip+JSON course archive, Room rows from a zip+HTML campus-room
// archive. Both ingesters are all-or-nothing — any failure aborts before
// a single row reaches the store.
package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/query"
	"github.com/campusql/campusql/textnorm"
)

// Options tunes ingest concurrency and progress reporting; the zero value
// is a sane default (NumCPU workers, progress bar only on a terminal).
type Options struct {
	MaxProcs int
	Quiet    bool
}

func (o Options) maxProcs() int {
	if o.MaxProcs > 0 {
		return o.MaxProcs
	}

	return runtime.NumCPU()
}

func invalidContent(format string, a ...any) error {
	return query.New(query.InvalidContent, fmt.Sprintf(format, a...))
}

// Sections parses a base64-encoded zip+JSON course archive into Section
// rows.
func Sections(payloadBase64 string, opts Options) ([]model.Section, error) {
	raw, err := base64.StdEncoding.DecodeString(payloadBase64)
	if err != nil {
		return nil, invalidContent("decoding base64 payload: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, invalidContent("opening zip archive: %v", err)
	}

	files, err := coursesFiles(zr)
	if err != nil {
		return nil, err
	}

	rows, err := parseCoursesFilesParallel(files, opts)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, invalidContent("archive produced zero section rows")
	}

	return rows, nil
}

// coursesFiles validates the zip layout — exactly one top-level
// directory named "courses/", with at least one file inside it — and
// returns the matching *zip.File entries.
func coursesFiles(zr *zip.Reader) ([]*zip.File, error) {
	var files []*zip.File

	for _, f := range zr.File {
		top := f.Name
		if i := strings.IndexByte(top, '/'); i >= 0 {
			top = top[:i]
		}

		if top != "courses" {
			return nil, invalidContent("unexpected top-level entry %q, want only courses/", f.Name)
		}

		if !f.FileInfo().IsDir() && f.Name != "courses/" {
			files = append(files, f)
		}
	}

	if len(files) == 0 {
		return nil, invalidContent("courses/ directory is empty")
	}

	return files, nil
}

// parseCoursesFilesParallel parses each course file concurrently, bounded
// by opts.maxProcs via a buffered channel used as a counting semaphore, a
// WaitGroup, and per-task error/result channels collected after Wait.
// Order of the resulting rows is not observable to any query.
func parseCoursesFilesParallel(files []*zip.File, opts Options) ([]model.Section, error) {
	n := len(files)
	maxProcs := opts.maxProcs()

	var bar *progressbar.ProgressBar
	if !opts.Quiet && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("parsing course files"),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxProcs)
	errChan := make(chan error, n)
	rowsChan := make(chan []model.Section, n)

	for _, f := range files {
		wg.Add(1)

		go func(f *zip.File) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rows, err := parseCourseFile(f)
			if bar != nil {
				_ = bar.Add(1)
			}

			if err != nil {
				errChan <- err

				return
			}

			rowsChan <- rows
		}(f)
	}

	wg.Wait()
	close(errChan)
	close(rowsChan)

	if err := <-errChan; err != nil {
		return nil, err
	}

	var all []model.Section
	for rows := range rowsChan {
		all = append(all, rows...)
	}

	return all, nil
}

type courseFile struct {
	Result []map[string]any `json:"result"`
}

func parseCourseFile(f *zip.File) ([]model.Section, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, invalidContent("opening %s: %v", f.Name, err)
	}
	defer rc.Close()

	var cf courseFile
	if err := json.NewDecoder(rc).Decode(&cf); err != nil {
		return nil, invalidContent("parsing %s: %v", f.Name, err)
	}

	rows := make([]model.Section, 0, len(cf.Result))

	for _, elem := range cf.Result {
		s, err := sectionFromElement(elem, f.Name)
		if err != nil {
			return nil, err
		}

		rows = append(rows, s)
	}

	return rows, nil
}

func sectionFromElement(elem map[string]any, source string) (model.Section, error) {
	uuid, ok := asString(elem["id"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field id", source)
	}

	id, ok := asString(elem["Course"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Course", source)
	}

	title, ok := asString(elem["Title"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Title", source)
	}

	instructor, ok := asString(elem["Professor"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Professor", source)
	}

	dept, ok := asString(elem["Subject"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Subject", source)
	}

	avg, ok := asFloat(elem["Avg"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Avg", source)
	}

	pass, ok := asInt(elem["Pass"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Pass", source)
	}

	fail, ok := asInt(elem["Fail"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Fail", source)
	}

	audit, ok := asInt(elem["Audit"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Audit", source)
	}

	year, ok := asInt(elem["Year"])
	if !ok {
		return model.Section{}, invalidContent("%s: row missing required field Year", source)
	}

	if sectionField, _ := asString(elem["Section"]); sectionField == "overall" {
		year = 1900
	}

	return model.Section{
		UUID:       uuid,
		ID:         id,
		Title:      textnorm.CollapseWhitespace(title),
		Instructor: textnorm.CollapseWhitespace(instructor),
		Dept:       textnorm.CollapseWhitespace(dept),
		Year:       year,
		Avg:        avg,
		Pass:       pass,
		Fail:       fail,
		Audit:      audit,
	}, nil
}

func asString(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}

	return int(f), true
}
