// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"testing"

	"github.com/campusql/campusql/geocode"
)

type fakeGeocoder struct{}

func (fakeGeocoder) Geocode(_ context.Context, address string) (geocode.Result, error) {
	return geocode.Result{Lat: 49.26, Lon: -123.25}, nil
}

// failingGeocoder errors for any address in fail, and geocodes
// everything else normally.
type failingGeocoder struct {
	fail map[string]bool
}

func (g failingGeocoder) Geocode(_ context.Context, address string) (geocode.Result, error) {
	if g.fail[address] {
		return geocode.Result{}, &geocode.Error{Type: geocode.ErrorTypeNetworkError, Message: "simulated network failure"}
	}

	return geocode.Result{Lat: 49.26, Lon: -123.25}, nil
}

const indexHTML = `<html><body><table>
<tr>
  <td class="views-field views-field-title"><a href="./BUCH.htm">Buchanan</a></td>
  <td class="views-field views-field-field-building-address">1866 Main Mall</td>
</tr>
</table></body></html>`

const buildingHTML = `<html><body><table>
<tr>
  <th class="views-field views-field-field-room-number">Room</th>
  <th class="views-field views-field-field-room-capacity">Capacity</th>
  <th class="views-field views-field-field-room-furniture">Furniture</th>
  <th class="views-field views-field-field-room-type">Type</th>
</tr>
<tr>
  <td class="views-field views-field-field-room-number"><a href="./BUCH_B313.htm">B313</a></td>
  <td class="views-field views-field-field-room-capacity">42</td>
  <td class="views-field views-field-field-room-furniture">Classroom-Fixed Tables/Fixed Chairs</td>
  <td class="views-field views-field-field-room-type">Open Design General Purpose</td>
</tr>
</table></body></html>`

func TestRoomsHappyPath(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"index.htm":  indexHTML,
		"./BUCH.htm": buildingHTML,
	})

	rooms, err := Rooms(context.Background(), payload, fakeGeocoder{}, Options{Quiet: true})
	if err != nil {
		t.Fatalf("Rooms() error = %v", err)
	}

	if len(rooms) != 1 {
		t.Fatalf("len(rooms) = %d, want 1", len(rooms))
	}

	r := rooms[0]
	if r.ShortName != "BUCH" || r.Number != "B313" || r.Name != "BUCH_B313" {
		t.Errorf("unexpected room: %+v", r)
	}

	if r.Seats != 42 {
		t.Errorf("Seats = %d, want 42", r.Seats)
	}

	if r.Lat != 49.26 || r.Lon != -123.25 {
		t.Errorf("unexpected geocode result: %+v", r)
	}
}

const secondIndexHTML = `<html><body><table>
<tr>
  <td class="views-field views-field-title"><a href="./BUCH.htm">Buchanan</a></td>
  <td class="views-field views-field-field-building-address">1866 Main Mall</td>
</tr>
<tr>
  <td class="views-field views-field-title"><a href="./ANGU.htm">Angus</a></td>
  <td class="views-field views-field-field-building-address">2053 Main Mall</td>
</tr>
</table></body></html>`

const secondBuildingHTML = `<html><body><table>
<tr>
  <th class="views-field views-field-field-room-number">Room</th>
  <th class="views-field views-field-field-room-capacity">Capacity</th>
  <th class="views-field views-field-field-room-furniture">Furniture</th>
  <th class="views-field views-field-field-room-type">Type</th>
</tr>
<tr>
  <td class="views-field views-field-field-room-number"><a href="./ANGU_110.htm">110</a></td>
  <td class="views-field views-field-field-room-capacity">30</td>
  <td class="views-field views-field-field-room-furniture">Classroom-Movable Tablet Arms</td>
  <td class="views-field views-field-field-room-type">Tiered Large Group</td>
</tr>
</table></body></html>`

func TestRoomsSkipsBuildingWhenGeocodeFails(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"index.htm":  secondIndexHTML,
		"./BUCH.htm": buildingHTML,
		"./ANGU.htm": secondBuildingHTML,
	})

	geocoder := failingGeocoder{fail: map[string]bool{"1866 Main Mall": true}}

	rooms, err := Rooms(context.Background(), payload, geocoder, Options{Quiet: true})
	if err != nil {
		t.Fatalf("Rooms() error = %v, want nil (geocode failures are per-building, never fatal)", err)
	}

	if len(rooms) != 1 {
		t.Fatalf("len(rooms) = %d, want 1 (only the building whose geocode succeeded)", len(rooms))
	}

	r := rooms[0]
	if r.ShortName != "ANGU" || r.Number != "110" {
		t.Errorf("unexpected room: %+v, want the Angus room from the building that geocoded", r)
	}
}

func TestRoomsRejectsMissingIndex(t *testing.T) {
	payload := buildZip(t, map[string]string{
		"other.htm": indexHTML,
	})

	_, err := Rooms(context.Background(), payload, fakeGeocoder{}, Options{Quiet: true})
	if err == nil {
		t.Fatal("Rooms() expected an error for a missing index.htm")
	}
}
