// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package query

import "github.com/campusql/campusql/model"

type sectionRow struct{ s model.Section }

func (r sectionRow) field(name string) any { return model.SectionValue(r.s, name) }

type roomRow struct{ rm model.Room }

func (r roomRow) field(name string) any { return model.RoomValue(r.rm, name) }

func sectionRows(sections []model.Section) []row {
	rows := make([]row, len(sections))
	for i, s := range sections {
		rows[i] = sectionRow{s}
	}

	return rows
}

func roomRows(rooms []model.Room) []row {
	rows := make([]row, len(rooms))
	for i, rm := range rooms {
		rows[i] = roomRow{rm}
	}

	return rows
}
