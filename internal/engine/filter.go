// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"regexp"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/paperatlas/paperatlas/internal/store"
)

// oralRe matches a whole-word "oral" in a presentation type label.
var oralRe = regexp.MustCompile(`(?i)\boral\b`)

// FilterSpec is a request-scoped description of which rows to keep.
type FilterSpec struct {
	// Filters maps canonical column names to allowed-value sets. Columns
	// outside the categorical filter columns are ignored.
	Filters map[string][]string

	// Mode is "all" or "session".
	Mode string

	// SessionValue is the exact session to keep when Mode is "session".
	SessionValue string

	// OralOnly keeps only in-person oral presentations.
	OralOnly bool

	// SearchText is a ';'-separated list of literal title search terms.
	SearchText string

	// SearchMode is "highlight" (mark matches) or "filter" (drop non-matches).
	SearchMode string
}

// ParseSearchTerms splits search text on ';', trims each term and drops
// empties. Terms are literal substrings, not patterns.
func ParseSearchTerms(text string) []string {
	if text == "" {
		return nil
	}
	var terms []string
	for _, term := range strings.Split(text, ";") {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// MatchesSearch reports whether a title contains any of the terms,
// case-insensitively.
func MatchesSearch(title string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	folded := strings.ToLower(title)
	for _, term := range terms {
		if strings.Contains(folded, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Filter computes the boolean row mask for a spec: the AND of the per-column
// allowed-value sets, the session restriction, the oral-only restriction and
// (in filter search mode) the title search. An empty mask is a valid result.
func (e *Engine) Filter(spec FilterSpec) (*roaring.Bitmap, error) {
	if spec.Mode == "session" && spec.SessionValue == "" {
		return nil, ErrSessionValueRequired
	}

	allowed := make(map[store.Column]map[string]struct{})
	for _, col := range store.FilterColumns {
		values, ok := spec.Filters[string(col)]
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		allowed[col] = set
	}

	var searchTerms []string
	if spec.SearchMode == "filter" {
		searchTerms = ParseSearchTerms(spec.SearchText)
	}

	mask := roaring.New()
	for i := 0; i < e.store.Len(); i++ {
		rec := e.store.Record(i)
		if !rowAllowed(rec, allowed) {
			continue
		}
		if spec.Mode == "session" && rec.Session != spec.SessionValue {
			continue
		}
		if spec.OralOnly && !isOralInPerson(rec) {
			continue
		}
		if len(searchTerms) > 0 && !MatchesSearch(rec.Title, searchTerms) {
			continue
		}
		mask.Add(uint32(i))
	}
	return mask, nil
}

// rowAllowed checks the per-column allowed-value sets (AND across columns).
func rowAllowed(rec *store.PaperRecord, allowed map[store.Column]map[string]struct{}) bool {
	for col, set := range allowed {
		if _, ok := set[rec.Field(col)]; !ok {
			return false
		}
	}
	return true
}

// isOralInPerson requires a whole-word "oral" presentation type and an
// attendance type of exactly "in-person" after trimming and lowering.
func isOralInPerson(rec *store.PaperRecord) bool {
	if !oralRe.MatchString(rec.TypePresentation) {
		return false
	}
	return strings.ToLower(strings.TrimSpace(rec.AttendanceType)) == "in-person"
}

// maskRows lists the set rows of a mask as canonical indices in ascending
// (canonical) order.
func maskRows(mask *roaring.Bitmap) []int {
	rows := make([]int, 0, mask.GetCardinality())
	it := mask.Iterator()
	for it.HasNext() {
		rows = append(rows, int(it.Next()))
	}
	return rows
}

// MaskRows exposes maskRows for callers assembling responses.
func MaskRows(mask *roaring.Bitmap) []int { return maskRows(mask) }
