// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func columnVariance(m *mat.Dense, j int) float64 {
	n, _ := m.Dims()
	col := make([]float64, n)
	mat.Col(col, j, m)
	return stat.Variance(col, nil)
}

func TestPCAProjectVarianceOrder(t *testing.T) {
	// Points spread widely along one axis, narrowly along another: the first
	// component must capture the wide axis.
	X := mat.NewDense(6, 3, []float64{
		-10, 1, 0,
		-6, -1, 0,
		-2, 1, 0,
		2, -1, 0,
		6, 1, 0,
		10, -1, 0,
	})

	scores, err := pcaProject(X, 2, false)
	if err != nil {
		t.Fatalf("pcaProject() error: %v", err)
	}
	n, c := scores.Dims()
	if n != 6 || c != 2 {
		t.Fatalf("pcaProject() shape = %dx%d, want 6x2", n, c)
	}

	v0, v1 := columnVariance(scores, 0), columnVariance(scores, 1)
	if v0 <= v1 {
		t.Errorf("component variances not descending: %g <= %g", v0, v1)
	}

	// Scores of the centered data are centered themselves.
	for j := 0; j < 2; j++ {
		col := make([]float64, n)
		mat.Col(col, j, scores)
		if mean := stat.Mean(col, nil); math.Abs(mean) > 1e-9 {
			t.Errorf("score column %d mean = %g, want 0", j, mean)
		}
	}
}

func TestPCAProjectWhiten(t *testing.T) {
	X := mat.NewDense(5, 3, []float64{
		4, 0, 1,
		2, 3, -1,
		-1, 2, 2,
		-3, -2, 0,
		-2, -3, -2,
	})

	scores, err := pcaProject(X, 2, true)
	if err != nil {
		t.Fatalf("pcaProject() error: %v", err)
	}
	for j := 0; j < 2; j++ {
		if v := columnVariance(scores, j); math.Abs(v-1) > 1e-9 {
			t.Errorf("whitened component %d variance = %g, want 1", j, v)
		}
	}
}

func TestPCAProjectClampsComponents(t *testing.T) {
	// Two points can only support one non-trivial component; the requested
	// two are clamped to min(n, d).
	X := mat.NewDense(2, 5, []float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
	})
	scores, err := pcaProject(X, 4, false)
	if err != nil {
		t.Fatalf("pcaProject() error: %v", err)
	}
	if _, c := scores.Dims(); c != 2 {
		t.Errorf("pcaProject() components = %d, want 2", c)
	}
}

func TestPCAProjectEmptyInput(t *testing.T) {
	scores, err := pcaProject(new(mat.Dense), 2, false)
	if err != nil {
		t.Fatalf("pcaProject() error: %v", err)
	}
	if n, _ := scores.Dims(); n != 0 {
		t.Errorf("pcaProject() rows = %d, want 0", n)
	}
}
