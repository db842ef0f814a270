// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// pcaProject reduces X (n×d) to its first `components` principal components
// via thin SVD of the column-centered matrix. The component scores are
// U·diag(σ); with whiten they are U·sqrt(n−1), giving unit-variance scores.
func pcaProject(X *mat.Dense, components int, whiten bool) (*mat.Dense, error) {
	n, d := X.Dims()
	if n == 0 {
		return new(mat.Dense), nil
	}
	if k := min(n, d); components > k {
		components = k
	}

	centered := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, X.At(i, j)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	var u mat.Dense
	svd.UTo(&u)
	sigma := svd.Values(nil)

	scores := mat.NewDense(n, components, nil)
	for j := 0; j < components; j++ {
		scale := sigma[j]
		if whiten {
			scale = math.Sqrt(float64(n - 1))
		}
		for i := 0; i < n; i++ {
			scores.Set(i, j, u.At(i, j)*scale)
		}
	}
	return scores, nil
}
