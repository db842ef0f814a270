// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"testing"

	"github.com/paperatlas/paperatlas/internal/store"
)

// newTestEngine builds an engine over a small fixed corpus. Row order is the
// declaration order below; vectors are unit-normalized by the store.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	records := []store.PaperRecord{
		{PaperID: "p1", Title: "Graph Neural Networks", TypePresentation: "Oral", AttendanceType: "In-Person", RoomLocation: "Hall A", Session: "Session A"},
		{PaperID: "p2", Title: "Graph Kernels", TypePresentation: "Poster", AttendanceType: "In-Person", RoomLocation: "Hall A", Session: "Session A"},
		{PaperID: "p3", Title: "Transformers for Tables", TypePresentation: "Oral", AttendanceType: "Online", RoomLocation: "Hall B", Session: "Session B"},
		{PaperID: "p4", Title: "Table Understanding", TypePresentation: "Poster", AttendanceType: "In-Person", RoomLocation: "Hall B", Session: "Session B"},
		{PaperID: "p5", Title: "Diffusion Models", TypePresentation: "Oral Presentation", AttendanceType: " In-Person ", RoomLocation: "Hall C", Session: "Session C"},
		{PaperID: "p6", Title: "Choral Music Retrieval", TypePresentation: "Choral", AttendanceType: "In-Person", RoomLocation: "Hall C", Session: "Session C"},
	}
	vectors := [][]float64{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
		{0, 0.9, 0.1},
		{0, 0, 1},
		{0.5, 0.5, 0},
	}
	return New(store.New(records, vectors), opts...)
}

func allRows(e *Engine) []int {
	rows := make([]int, e.Store().Len())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
