// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Package store holds the in-memory paper corpus: metadata records joined
// with their embedding vectors.
//
// The DataStore is built exactly once at process start and is immutable
// afterwards, so request handlers may read it concurrently without locks.
package store

import "sort"

// Unknown is the placeholder for absent or empty categorical values.
const Unknown = "Unknown"

// PaperRecord is one row of the corpus.
type PaperRecord struct {
	PaperID          string
	Title            string
	TypePresentation string
	AttendanceType   string
	RoomLocation     string
	Session          string
}

// Field returns the record's value for a canonical column.
func (r *PaperRecord) Field(col Column) string {
	switch col {
	case ColPaperID:
		return r.PaperID
	case ColTitle:
		return r.Title
	case ColTypePresentation:
		return r.TypePresentation
	case ColAttendanceType:
		return r.AttendanceType
	case ColRoomLocation:
		return r.RoomLocation
	case ColSession:
		return r.Session
	default:
		return ""
	}
}

// DataStore is the immutable-after-load corpus aggregate. The record order
// defines the canonical row index; vectors are aligned to it 1:1 and are
// unit L2 norm (zero vectors stay zero).
type DataStore struct {
	records      []PaperRecord
	vectors      [][]float64
	paperToIndex map[string]int
	dim          int
}

// New assembles a DataStore from pre-joined records and their aligned
// vectors. Vectors are normalized to unit L2 norm; the record order becomes
// the canonical row index. Load is the production path, New serves fixtures
// and embedded pipelines.
func New(records []PaperRecord, vectors [][]float64) *DataStore {
	s := &DataStore{
		records:      records,
		vectors:      make([][]float64, len(vectors)),
		paperToIndex: make(map[string]int, len(records)),
	}
	if len(vectors) > 0 {
		s.dim = len(vectors[0])
	}
	for i, vec := range vectors {
		v := make([]float64, len(vec))
		copy(v, vec)
		normalizeL2(v)
		s.vectors[i] = v
	}
	// Duplicate ids resolve to the last row, matching Load.
	for i := range records {
		s.paperToIndex[records[i].PaperID] = i
	}
	return s
}

// Len returns the number of rows in the store.
func (s *DataStore) Len() int { return len(s.records) }

// Dim returns the embedding dimensionality.
func (s *DataStore) Dim() int { return s.dim }

// Record returns the record at canonical row i.
func (s *DataStore) Record(i int) *PaperRecord { return &s.records[i] }

// Vector returns the unit-normalized embedding at canonical row i. Callers
// must not mutate the returned slice.
func (s *DataStore) Vector(i int) []float64 { return s.vectors[i] }

// Index returns the canonical row index for a paper id.
func (s *DataStore) Index(paperID string) (int, bool) {
	i, ok := s.paperToIndex[paperID]
	return i, ok
}

// UniqueValues returns the sorted distinct values of a categorical column.
func (s *DataStore) UniqueValues(col Column) []string {
	seen := make(map[string]struct{})
	for i := range s.records {
		seen[s.records[i].Field(col)] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
