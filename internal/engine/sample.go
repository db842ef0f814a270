// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"math"
	"math/rand"
	"sort"
)

// Sampling strategies.
const (
	StrategyRandom     = "random"
	StrategyStratified = "stratified_by_session"
)

// SampleSpec is a request-scoped description of how to bound a filtered row
// set before projection.
type SampleSpec struct {
	Enabled   bool
	MaxPoints int
	Strategy  string

	// RandomState seeds the sampler. The same state over the same input row
	// set yields the same selection.
	RandomState int64
}

// Sample reduces a filtered row set to at most MaxPoints rows. When sampling
// is disabled, MaxPoints is non-positive, or the set already fits, the input
// is returned unchanged.
//
// Randomness comes from a single generator seeded with RandomState; every
// random draw consumes a freshly derived sub-seed in a fixed order (per-group
// draws in first-seen group order, then the trim or fill draw), so results do
// not depend on incidental call order.
func (e *Engine) Sample(rows []int, spec SampleSpec) []int {
	if !spec.Enabled || spec.MaxPoints <= 0 || len(rows) <= spec.MaxPoints {
		return rows
	}

	rng := rand.New(rand.NewSource(spec.RandomState))

	if spec.Strategy == StrategyStratified {
		return e.sampleStratified(rows, spec.MaxPoints, rng)
	}
	return drawWithoutReplacement(rows, spec.MaxPoints, rng.Int63())
}

// sampleStratified partitions rows by session and draws from each group in
// proportion to its share of the filtered set, then corrects the total back
// to exactly maxPoints.
func (e *Engine) sampleStratified(rows []int, maxPoints int, rng *rand.Rand) []int {
	// Group rows by session in first-seen order.
	var order []string
	groups := make(map[string][]int)
	for _, row := range rows {
		session := e.store.Record(row).Session
		if _, ok := groups[session]; !ok {
			order = append(order, session)
		}
		groups[session] = append(groups[session], row)
	}

	total := len(rows)
	var selected []int
	for _, session := range order {
		group := groups[session]
		frac := float64(len(group)) / float64(total)
		take := int(math.Round(float64(maxPoints) * frac))
		if take < 1 {
			take = 1
		}
		if take > len(group) {
			take = len(group)
		}
		selected = append(selected, drawWithoutReplacement(group, take, rng.Int63())...)
	}

	if len(selected) > maxPoints {
		selected = drawWithoutReplacement(selected, maxPoints, rng.Int63())
	} else if len(selected) < maxPoints {
		remainder := subtract(rows, selected)
		if len(remainder) > 0 {
			fill := maxPoints - len(selected)
			if fill > len(remainder) {
				fill = len(remainder)
			}
			selected = append(selected, drawWithoutReplacement(remainder, fill, rng.Int63())...)
		}
	}

	sort.Ints(selected)
	return selected
}

// drawWithoutReplacement selects n distinct elements of items using a
// dedicated generator built from seed. The result is sorted ascending so the
// canonical row order survives sampling.
func drawWithoutReplacement(items []int, n int, seed int64) []int {
	if n >= len(items) {
		out := make([]int, len(items))
		copy(out, items)
		sort.Ints(out)
		return out
	}
	sub := rand.New(rand.NewSource(seed))
	perm := sub.Perm(len(items))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = items[perm[i]]
	}
	sort.Ints(out)
	return out
}

// subtract returns the elements of all that are not in picked.
func subtract(all, picked []int) []int {
	in := make(map[int]struct{}, len(picked))
	for _, row := range picked {
		in[row] = struct{}{}
	}
	var out []int
	for _, row := range all {
		if _, ok := in[row]; !ok {
			out = append(out, row)
		}
	}
	return out
}
