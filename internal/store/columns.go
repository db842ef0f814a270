// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package store

import "fmt"

// Column identifies a canonical column of the paper metadata table.
type Column string

// Canonical columns. Request payloads and responses use these names; source
// CSV headers are mapped onto them via the alias table below.
const (
	ColPaperID          Column = "paper_id"
	ColTitle            Column = "title"
	ColTypePresentation Column = "type_presentation"
	ColAttendanceType   Column = "attendance_type"
	ColRoomLocation     Column = "room_location"
	ColSession          Column = "session"
)

// FilterColumns are the categorical columns a request may filter on.
var FilterColumns = []Column{
	ColTypePresentation,
	ColAttendanceType,
	ColRoomLocation,
	ColSession,
}

// columnAliases is the ordered alias table for source CSV headers. For each
// canonical column the first matching header wins. Order matters: it encodes
// the precedence the upstream exports have used over time.
var columnAliases = map[Column][]string{
	ColPaperID:          {"paper_id", "Paper number", "Paper Number", "Paper ID", "id"},
	ColTitle:            {"Title", "title"},
	ColTypePresentation: {"Type of Presentation", "type_presentation"},
	ColAttendanceType:   {"Attendance Type", "attendance_type"},
	ColRoomLocation:     {"Room Location", "room_location"},
	ColSession:          {"Session", "session"},
}

// ErrColumnNotFound reports a required canonical column that could not be
// resolved against the source header, naming the accepted aliases.
type ErrColumnNotFound struct {
	Column  Column
	Aliases []string
}

func (e *ErrColumnNotFound) Error() string {
	return fmt.Sprintf("no %s column found; expected one of %v", e.Column, e.Aliases)
}

// resolveColumn returns the index of the first alias of col present in the
// header, or an ErrColumnNotFound.
func resolveColumn(header []string, col Column) (int, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}
	for _, alias := range columnAliases[col] {
		if i, ok := pos[alias]; ok {
			return i, nil
		}
	}
	return -1, &ErrColumnNotFound{Column: col, Aliases: columnAliases[col]}
}
