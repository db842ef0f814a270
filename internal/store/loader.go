// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package store

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/paperatlas/paperatlas/internal/logging"
	"github.com/paperatlas/paperatlas/internal/npz"
)

// virtualSessionRe matches a whole-word "virtual" in a session label.
var virtualSessionRe = regexp.MustCompile(`(?i)\bvirtual\b`)

// Load builds the DataStore from the metadata CSV and the embeddings NPZ.
// Any failure here is a startup configuration error: the process must not
// begin serving with a partial store.
func Load(csvPath, npzPath string) (*DataStore, error) {
	records, err := loadMetadata(csvPath)
	if err != nil {
		return nil, err
	}
	nMetadata := len(records)

	records = dropVirtual(records)

	ids, embeddings, err := loadEmbeddings(npzPath)
	if err != nil {
		return nil, err
	}

	// Inner join on paper_id: metadata rows without a vector (and vectors
	// without a metadata row) are dropped silently. Metadata order is kept
	// and becomes the canonical row index.
	embIndex := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := embIndex[id]; !ok {
			embIndex[id] = i
		}
	}

	s := &DataStore{paperToIndex: make(map[string]int)}
	if len(embeddings) > 0 {
		s.dim = len(embeddings[0])
	}
	for i := range records {
		embIdx, ok := embIndex[records[i].PaperID]
		if !ok {
			continue
		}
		vec := make([]float64, len(embeddings[embIdx]))
		copy(vec, embeddings[embIdx])
		normalizeL2(vec)

		s.paperToIndex[records[i].PaperID] = len(s.records)
		s.records = append(s.records, records[i])
		s.vectors = append(s.vectors, vec)
	}

	logging.Info().
		Int("metadata_rows", nMetadata).
		Int("non_virtual_rows", len(records)).
		Int("embedding_rows", len(ids)).
		Int("store_rows", s.Len()).
		Int("dimension", s.Dim()).
		Msg("data store loaded")

	return s, nil
}

// loadMetadata reads the program CSV and maps it onto canonical columns.
func loadMetadata(path string) ([]PaperRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("metadata CSV %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("metadata CSV %s: empty file", path)
	}

	header := rows[0]

	// paper_id and title are required; the categorical filter columns are
	// synthesized as "Unknown" when the export lacks them.
	idCol, err := resolveColumn(header, ColPaperID)
	if err != nil {
		return nil, err
	}
	titleCol, err := resolveColumn(header, ColTitle)
	if err != nil {
		return nil, err
	}
	catCols := make(map[Column]int, len(FilterColumns))
	for _, col := range FilterColumns {
		if i, err := resolveColumn(header, col); err == nil {
			catCols[col] = i
		} else {
			catCols[col] = -1
		}
	}

	records := make([]PaperRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return Unknown
			}
			return coerce(row[i])
		}
		records = append(records, PaperRecord{
			PaperID:          cell(idCol),
			Title:            cell(titleCol),
			TypePresentation: cell(catCols[ColTypePresentation]),
			AttendanceType:   cell(catCols[ColAttendanceType]),
			RoomLocation:     cell(catCols[ColRoomLocation]),
			Session:          cell(catCols[ColSession]),
		})
	}
	return records, nil
}

// coerce normalizes a raw CSV cell: missing, empty and "nan" become Unknown.
func coerce(v string) string {
	if v == "" || v == "nan" {
		return Unknown
	}
	return v
}

// dropVirtual removes virtual-session rows. This runs once at load and is
// irreversible for the lifetime of the store: a record is virtual when its
// attendance is "virtual", its room is "zoom", or its session label contains
// the whole word "virtual" (all case-insensitive).
func dropVirtual(records []PaperRecord) []PaperRecord {
	kept := records[:0]
	for i := range records {
		attendance := strings.ToLower(strings.TrimSpace(records[i].AttendanceType))
		room := strings.ToLower(strings.TrimSpace(records[i].RoomLocation))
		if attendance == "virtual" || room == "zoom" || virtualSessionRe.MatchString(records[i].Session) {
			continue
		}
		kept = append(kept, records[i])
	}
	return kept
}

// loadEmbeddings reads the id array and embedding matrix from the NPZ source.
func loadEmbeddings(path string) ([]string, [][]float64, error) {
	archive, err := npz.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer archive.Close()

	if !archive.Has("ids") || !archive.Has("embeddings") {
		return nil, nil, fmt.Errorf("NPZ %s must contain 'ids' and 'embeddings' arrays", path)
	}

	ids, err := archive.Strings("ids")
	if err != nil {
		return nil, nil, err
	}
	embeddings, err := archive.Matrix("embeddings")
	if err != nil {
		return nil, nil, err
	}
	if len(ids) != len(embeddings) {
		return nil, nil, fmt.Errorf("NPZ %s: ids length %d != embeddings length %d",
			path, len(ids), len(embeddings))
	}
	return ids, embeddings, nil
}

// normalizeL2 scales v to unit L2 norm in place; zero vectors are left as-is.
func normalizeL2(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
