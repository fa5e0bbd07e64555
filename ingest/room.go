// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/campusql/campusql/geocode"
	"github.com/campusql/campusql/htmlutil"
	"github.com/campusql/campusql/model"
	"github.com/campusql/campusql/textnorm"
	"golang.org/x/net/html"
)

const (
	classTitle          = "views-field-title"
	classBuildingAddr   = "views-field-field-building-address"
	classRoomNumber     = "views-field-field-room-number"
	classRoomCapacity   = "views-field-field-room-capacity"
	classRoomFurniture  = "views-field-field-room-furniture"
	classRoomType       = "views-field-field-room-type"
	viewsFieldClassBase = "views-field"
)

type building struct {
	fullname  string
	shortname string
	href      string
	address   string
	lat, lon  float64
}

// Rooms parses a base64-encoded zip+HTML campus archive into Room rows.
func Rooms(ctx context.Context, payloadBase64 string, geocoder geocode.Geocoder, opts Options) ([]model.Room, error) {
	raw, err := base64.StdEncoding.DecodeString(payloadBase64)
	if err != nil {
		return nil, invalidContent("decoding base64 payload: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, invalidContent("opening zip archive: %v", err)
	}

	index, err := openArchiveFile(zr, "index.htm")
	if err != nil {
		return nil, invalidContent("locating index.htm: %v", err)
	}

	buildings, err := parseBuildings(index)
	if err != nil {
		return nil, err
	}

	geocoded, err := geocodeBuildings(ctx, buildings, geocoder, opts)
	if err != nil {
		return nil, err
	}

	rooms := make([]model.Room, 0)

	for _, b := range geocoded {
		roomFile, err := openArchiveFile(zr, b.href)
		if err != nil {
			// a building whose room table is absent contributes zero rooms.
			continue
		}

		rooms = append(rooms, parseRooms(roomFile, b)...)
	}

	if len(rooms) == 0 {
		return nil, invalidContent("archive produced zero room rows")
	}

	return rooms, nil
}

func openArchiveFile(zr *zip.Reader, name string) (*html.Node, error) {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")

	for _, f := range zr.File {
		if strings.TrimPrefix(strings.TrimPrefix(f.Name, "./"), "/") == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", name, err)
			}
			defer rc.Close()

			return htmlutil.Parse(rc)
		}
	}

	return nil, fmt.Errorf("no archive entry named %q", name)
}

// parseBuildings finds the first table whose cells carry both the title
// and building-address class fingerprints, and extracts one building per
// row.
func parseBuildings(doc *html.Node) ([]building, error) {
	table := findTableWithClasses(doc, classTitle, classBuildingAddr)
	if table == nil {
		return nil, invalidContent("index.htm has no building table")
	}

	var out []building

	for _, tr := range htmlutil.FindAll(table, "tr") {
		titleCell := findCellWithClass(tr, classTitle)
		addrCell := findCellWithClass(tr, classBuildingAddr)

		if titleCell == nil || addrCell == nil {
			continue
		}

		anchor := htmlutil.FindFirst(titleCell, "a", nil)
		if anchor == nil {
			continue
		}

		href, _ := htmlutil.Attr(anchor, "href")

		out = append(out, building{
			fullname:  htmlutil.Text(anchor),
			shortname: shortNameFromHref(href),
			href:      href,
			address:   htmlutil.Text(addrCell),
		})
	}

	return out, nil
}

func shortNameFromHref(href string) string {
	base := href
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}

	return strings.TrimSuffix(base, ".htm")
}

// geocodeBuildings resolves every building's address concurrently,
// bounded by opts.maxProcs. Buildings whose addresses fold to the same
// normalized form (case/diacritics only) share a single geocode call. A
// building whose geocode returns any error is skipped — geocode
// failures are per-address and never fatal to the run.
func geocodeBuildings(ctx context.Context, buildings []building, geocoder geocode.Geocoder, opts Options) ([]building, error) {
	type result struct {
		b  building
		ok bool
	}

	results := make([]result, len(buildings))

	groups := make(map[string][]int)
	addressOf := make(map[string]string)

	for i, b := range buildings {
		key := textnorm.FoldASCII(b.address)
		groups[key] = append(groups[key], i)
		addressOf[key] = b.address
	}

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, opts.maxProcs())

	for key, indices := range groups {
		wg.Add(1)

		go func(key string, indices []int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			loc, err := geocoder.Geocode(ctx, addressOf[key])
			if err != nil {
				return
			}

			for _, i := range indices {
				b := buildings[i]
				b.lat, b.lon = loc.Lat, loc.Lon
				results[i] = result{b: b, ok: true}
			}
		}(key, indices)
	}

	wg.Wait()

	out := make([]building, 0, len(buildings))

	for _, r := range results {
		if r.ok {
			out = append(out, r.b)
		}
	}

	return out, nil
}

func findTableWithClasses(doc *html.Node, classes ...string) *html.Node {
	for _, table := range htmlutil.FindAll(doc, "table") {
		ok := true

		for _, c := range classes {
			if !htmlutil.TableHasClassedCells(table, viewsFieldClassBase, c) {
				ok = false

				break
			}
		}

		if ok {
			return table
		}
	}

	return nil
}

func findCellWithClass(n *html.Node, class string) *html.Node {
	for _, tag := range []string{"td", "th"} {
		if cell := htmlutil.FindFirst(n, tag, func(c *html.Node) bool {
			return htmlutil.HasClasses(c, viewsFieldClassBase, class)
		}); cell != nil {
			return cell
		}
	}

	return nil
}

// parseRooms extracts one Room per body row of the first table whose
// header cells carry the room-number/capacity/furniture/type class
// fingerprints. Rows missing a required field are silently skipped.
func parseRooms(doc *html.Node, b building) []model.Room {
	table := findTableWithClasses(doc, classRoomNumber, classRoomCapacity, classRoomFurniture, classRoomType)
	if table == nil {
		return nil
	}

	var rooms []model.Room

	for _, tr := range htmlutil.FindAll(table, "tr") {
		numberCell := findCellWithClass(tr, classRoomNumber)
		capacityCell := findCellWithClass(tr, classRoomCapacity)
		furnitureCell := findCellWithClass(tr, classRoomFurniture)
		typeCell := findCellWithClass(tr, classRoomType)

		if numberCell == nil || capacityCell == nil || furnitureCell == nil || typeCell == nil {
			continue
		}

		number := htmlutil.Unescape(htmlutil.Text(numberCell))
		capacityText := htmlutil.Unescape(htmlutil.Text(capacityCell))

		capacity, err := strconv.Atoi(strings.TrimSpace(capacityText))
		if err != nil || number == "" {
			continue
		}

		roomHref := b.href

		if anchor := htmlutil.FindFirst(numberCell, "a", nil); anchor != nil {
			if href, ok := htmlutil.Attr(anchor, "href"); ok {
				roomHref = href
			}
		}

		rooms = append(rooms, model.Room{
			FullName:  b.fullname,
			ShortName: b.shortname,
			Number:    number,
			Name:      b.shortname + "_" + number,
			Address:   b.address,
			Lat:       b.lat,
			Lon:       b.lon,
			Seats:     capacity,
			Type:      htmlutil.Unescape(htmlutil.Text(typeCell)),
			Furniture: htmlutil.Unescape(htmlutil.Text(furnitureCell)),
			Href:      roomHref,
		})
	}

	return rooms
}
