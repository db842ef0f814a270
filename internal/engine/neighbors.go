// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import "sort"

// Neighbor is one ranked result of a similarity query.
type Neighbor struct {
	// Row is the neighbor's canonical row index.
	Row int

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}

// Neighbors ranks papers by cosine similarity to the query paper's vector.
//
// When candidateIDs is non-empty the candidate set is its intersection with
// the store (unknown ids are dropped; an empty intersection yields an empty
// result, not an error). The query paper never appears in its own results.
// Ranking is descending similarity with ties broken by canonical row order,
// and at most max(1, k) neighbors are returned.
func (e *Engine) Neighbors(paperID string, candidateIDs []string, k int) ([]Neighbor, error) {
	queryRow, ok := e.store.Index(paperID)
	if !ok {
		return nil, &ErrPaperNotFound{PaperID: paperID}
	}
	queryVec := e.store.Vector(queryRow)

	var rows []int
	if len(candidateIDs) > 0 {
		seen := make(map[int]struct{}, len(candidateIDs))
		for _, id := range candidateIDs {
			if row, ok := e.store.Index(id); ok {
				seen[row] = struct{}{}
			}
		}
		rows = make([]int, 0, len(seen))
		for row := range seen {
			rows = append(rows, row)
		}
		sort.Ints(rows)
	} else {
		rows = make([]int, e.store.Len())
		for i := range rows {
			rows[i] = i
		}
	}

	neighbors := make([]Neighbor, 0, len(rows))
	for _, row := range rows {
		if row == queryRow {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Row:        row,
			Similarity: dot(queryVec, e.store.Vector(row)),
		})
	}

	// Candidates are in canonical order, so the stable sort preserves it
	// among equal similarities.
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})

	if limit := max(1, k); len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}
