// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"math"
	"testing"
)

func vecNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func TestPreferenceVectorWeighted(t *testing.T) {
	e := newTestEngine(t)

	// p1 carries twice the above-baseline weight of p3, so the preference
	// leans toward p1's axis.
	pref := e.PreferenceVector(map[string]float64{"p1": 1700, "p3": 1600})
	if pref == nil {
		t.Fatal("PreferenceVector() = nil, want a signal")
	}
	if math.Abs(vecNorm(pref)-1) > 1e-12 {
		t.Errorf("PreferenceVector() norm = %g, want 1", vecNorm(pref))
	}
	if pref[0] <= pref[1] || pref[1] <= 0 {
		t.Errorf("PreferenceVector() = %v, want component 0 > component 1 > 0", pref)
	}
}

func TestPreferenceVectorIgnoresAtOrBelowBaselineWhenMixed(t *testing.T) {
	e := newTestEngine(t)

	// p3 sits exactly at the baseline: zero weight. Only p1 contributes.
	pref := e.PreferenceVector(map[string]float64{"p1": 1600, "p3": 1500})
	if pref == nil {
		t.Fatal("PreferenceVector() = nil, want a signal")
	}
	if math.Abs(pref[0]-1) > 1e-12 || math.Abs(pref[1]) > 1e-12 {
		t.Errorf("PreferenceVector() = %v, want p1's axis only", pref)
	}
}

func TestPreferenceVectorRankFallback(t *testing.T) {
	e := newTestEngine(t)

	// Nothing clears the baseline, so ranks decide: p1 (highest mu) gets the
	// largest weight, p3 half of it.
	pref := e.PreferenceVector(map[string]float64{"p1": 1400, "p3": 1300})
	if pref == nil {
		t.Fatal("PreferenceVector() = nil, want a rank-based signal")
	}
	if pref[0] <= pref[1] || pref[1] <= 0 {
		t.Errorf("PreferenceVector() = %v, want component 0 > component 1 > 0", pref)
	}
}

func TestPreferenceVectorRankFallbackTieBreak(t *testing.T) {
	e := newTestEngine(t)

	// Equal mu ties are broken by paper id, so the result is stable across
	// map iteration orders.
	first := e.PreferenceVector(map[string]float64{"p1": 1400, "p3": 1400, "p5": 1400})
	for i := 0; i < 10; i++ {
		again := e.PreferenceVector(map[string]float64{"p1": 1400, "p3": 1400, "p5": 1400})
		for j := range first {
			if math.Abs(first[j]-again[j]) > 1e-12 {
				t.Fatalf("PreferenceVector() unstable: %v vs %v", first, again)
			}
		}
	}
}

func TestPreferenceVectorNoSignal(t *testing.T) {
	e := newTestEngine(t)

	if pref := e.PreferenceVector(nil); pref != nil {
		t.Errorf("PreferenceVector(nil) = %v, want nil", pref)
	}
	if pref := e.PreferenceVector(map[string]float64{"unknown": 1800}); pref != nil {
		t.Errorf("PreferenceVector(unknown ids) = %v, want nil", pref)
	}
}

func TestScoreSlot(t *testing.T) {
	e := newTestEngine(t)
	pref := e.PreferenceVector(map[string]float64{"p1": 1700})

	// The graph-flavored slot must outscore the orthogonal one.
	graph := e.ScoreSlot(pref, "mon-9am", []string{"p2", "p6"}, 2)
	tables := e.ScoreSlot(pref, "mon-10am", []string{"p3", "p4"}, 2)

	if graph.NCandidates != 2 || graph.NUsed != 2 {
		t.Errorf("ScoreSlot() counts = %+v, want 2 candidates, 2 used", graph)
	}
	if graph.TopicMatch <= tables.TopicMatch {
		t.Errorf("graph slot %g not above tables slot %g", graph.TopicMatch, tables.TopicMatch)
	}
}

func TestScoreSlotTopKWindow(t *testing.T) {
	e := newTestEngine(t)
	pref := e.PreferenceVector(map[string]float64{"p1": 1700})

	// topK 1 keeps only the best candidate, so the mean rises.
	wide := e.ScoreSlot(pref, "slot", []string{"p2", "p3", "p4"}, 3)
	narrow := e.ScoreSlot(pref, "slot", []string{"p2", "p3", "p4"}, 1)

	if narrow.NUsed != 1 || wide.NUsed != 3 {
		t.Fatalf("NUsed = %d and %d, want 1 and 3", narrow.NUsed, wide.NUsed)
	}
	if narrow.TopicMatch <= wide.TopicMatch {
		t.Errorf("top-1 score %g not above top-3 score %g", narrow.TopicMatch, wide.TopicMatch)
	}
}

func TestScoreSlotEdgeCases(t *testing.T) {
	e := newTestEngine(t)
	pref := e.PreferenceVector(map[string]float64{"p1": 1700})

	// Unknown candidates are dropped before counting.
	got := e.ScoreSlot(pref, "slot", []string{"p2", "nope"}, 5)
	if got.NCandidates != 1 || got.NUsed != 1 {
		t.Errorf("ScoreSlot() counts = %+v, want 1 candidate, 1 used", got)
	}

	// No preference signal: zero score, zero used, candidates still counted.
	got = e.ScoreSlot(nil, "slot", []string{"p2"}, 5)
	if got.TopicMatch != 0 || got.NUsed != 0 || got.NCandidates != 1 {
		t.Errorf("ScoreSlot(nil pref) = %+v", got)
	}

	// No valid candidates.
	got = e.ScoreSlot(pref, "slot", nil, 5)
	if got.TopicMatch != 0 || got.NCandidates != 0 {
		t.Errorf("ScoreSlot(no candidates) = %+v", got)
	}
}

func TestClampTopK(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{5, 5},
		{10, 10},
		{40, 10},
	}
	for _, tt := range tests {
		if got := ClampTopK(tt.in); got != tt.want {
			t.Errorf("ClampTopK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
