// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"math"
	"sort"
)

// baselineMu is the rating baseline: only ratings above it carry direct
// weight in the preference vector.
const baselineMu = 1500.0

// topKMin and topKMax bound the per-slot averaging window.
const (
	topKMin = 1
	topKMax = 10
)

// SlotScore is the topic-match result for one candidate group.
type SlotScore struct {
	SlotKey     string
	TopicMatch  float64
	NCandidates int
	NUsed       int
}

// PreferenceVector aggregates rated papers into a single unit vector of
// topical interest. Ratings for unknown papers are ignored.
//
// Each rated paper gets weight max(0, mu−1500). When no rating clears the
// baseline, rank-based weights take over: papers sorted by mu descending get
// (count−rank)/count, so the highest-rated paper dominates and later entries
// approach zero. A nil return means there is no preference signal — an
// explicit state, not an error.
func (e *Engine) PreferenceVector(ratings map[string]float64) []float64 {
	type rated struct {
		row int
		id  string
		mu  float64
	}
	var items []rated
	for id, mu := range ratings {
		if row, ok := e.store.Index(id); ok {
			items = append(items, rated{row: row, id: id, mu: mu})
		}
	}
	if len(items) == 0 {
		return nil
	}

	weights := make([]float64, len(items))
	anyPositive := false
	for i, it := range items {
		weights[i] = math.Max(0, it.mu-baselineMu)
		if weights[i] > 0 {
			anyPositive = true
		}
	}

	if !anyPositive {
		// Rank fallback. Map iteration order is random, so ties on mu are
		// broken by paper id to keep the weights deterministic.
		sort.Slice(items, func(i, j int) bool {
			if items[i].mu != items[j].mu {
				return items[i].mu > items[j].mu
			}
			return items[i].id < items[j].id
		})
		count := float64(len(items))
		for i := range items {
			weights[i] = (count - float64(i)) / count
		}
	}

	pref := make([]float64, e.store.Dim())
	var totalWeight float64
	for i, it := range items {
		if weights[i] <= 0 {
			continue
		}
		vec := e.store.Vector(it.row)
		for j := range pref {
			pref[j] += vec[j] * weights[i]
		}
		totalWeight += weights[i]
	}
	if totalWeight <= 0 {
		return nil
	}

	var norm float64
	for _, x := range pref {
		norm += x * x
	}
	if norm <= 0 {
		return nil
	}
	inv := 1 / math.Sqrt(norm)
	for j := range pref {
		pref[j] *= inv
	}
	return pref
}

// ScoreSlot scores one candidate group against a preference vector: the mean
// similarity of the top min(topK, n) candidates, with topK clamped to [1,10].
// Without a preference signal or valid candidates the score is 0.0 with
// NUsed 0.
func (e *Engine) ScoreSlot(pref []float64, slotKey string, paperIDs []string, topK int) SlotScore {
	if topK < topKMin {
		topK = topKMin
	}
	if topK > topKMax {
		topK = topKMax
	}

	var rows []int
	for _, id := range paperIDs {
		if row, ok := e.store.Index(id); ok {
			rows = append(rows, row)
		}
	}

	score := SlotScore{SlotKey: slotKey, NCandidates: len(rows)}
	if pref == nil || len(rows) == 0 {
		return score
	}

	sims := make([]float64, len(rows))
	for i, row := range rows {
		sims[i] = dot(pref, e.store.Vector(row))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sims)))

	used := min(topK, len(sims))
	var sum float64
	for _, s := range sims[:used] {
		sum += s
	}
	score.TopicMatch = sum / float64(used)
	score.NUsed = used
	return score
}

// ClampTopK normalizes a requested averaging window to [1,10] for reporting.
func ClampTopK(topK int) int {
	if topK < topKMin {
		return topKMin
	}
	if topK > topKMax {
		return topKMax
	}
	return topK
}
