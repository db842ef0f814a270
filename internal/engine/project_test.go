// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestProjectPCA(t *testing.T) {
	e := newTestEngine(t)
	rows := allRows(e)

	coords, hit, err := e.Project("pca", nil, rows)
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if hit {
		t.Error("Project() reported a cache hit on first computation")
	}
	if len(coords) != len(rows) {
		t.Fatalf("Project() returned %d coords, want %d", len(coords), len(rows))
	}
	if e.CachedProjections() != 1 {
		t.Errorf("CachedProjections() = %d, want 1", e.CachedProjections())
	}
}

func TestProjectCacheHit(t *testing.T) {
	e := newTestEngine(t)
	rows := allRows(e)
	params := map[string]any{"whiten": true}

	first, hit, err := e.Project("pca", params, rows)
	if err != nil || hit {
		t.Fatalf("first Project() = hit %v, err %v", hit, err)
	}
	second, hit, err := e.Project("pca", params, rows)
	if err != nil {
		t.Fatalf("second Project() error: %v", err)
	}
	if !hit {
		t.Error("second Project() missed the cache")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached coords differ at %d: %v vs %v", i, first[i], second[i])
		}
	}

	// Method names are case-insensitive, so PCA hits the pca entry.
	if _, hit, err := e.Project("PCA", params, rows); err != nil || !hit {
		t.Errorf("Project(PCA) = hit %v, err %v; want cache hit", hit, err)
	}
}

func TestProjectParamEncodingDistinct(t *testing.T) {
	e := newTestEngine(t)
	rows := allRows(e)

	// The numeric and string encodings parse identically but are cached as
	// distinct requests.
	if _, _, err := e.Project("pca", map[string]any{"random_state": 42}, rows); err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if _, hit, err := e.Project("pca", map[string]any{"random_state": "42"}, rows); err != nil || hit {
		t.Errorf("Project() with re-encoded param = hit %v, err %v; want fresh entry", hit, err)
	}
	if e.CachedProjections() != 2 {
		t.Errorf("CachedProjections() = %d, want 2", e.CachedProjections())
	}
}

func TestProjectSubsetIdentityMatters(t *testing.T) {
	e := newTestEngine(t)

	if _, _, err := e.Project("pca", nil, []int{0, 1, 2}); err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	if _, hit, err := e.Project("pca", nil, []int{0, 1, 3}); err != nil || hit {
		t.Errorf("Project() over a different subset = hit %v, err %v; want miss", hit, err)
	}
	if e.CachedProjections() != 2 {
		t.Errorf("CachedProjections() = %d, want 2", e.CachedProjections())
	}
}

func TestProjectUnsupportedMethod(t *testing.T) {
	e := newTestEngine(t)

	_, _, err := e.Project("sammon", nil, allRows(e))
	var unsupported *ErrUnsupportedMethod
	if !errors.As(err, &unsupported) {
		t.Fatalf("Project() error = %v, want ErrUnsupportedMethod", err)
	}
	if e.CachedProjections() != 0 {
		t.Error("failed projection populated the cache")
	}
}

func TestProjectUMAPUnavailable(t *testing.T) {
	e := newTestEngine(t)

	_, _, err := e.Project("umap", nil, allRows(e))
	var unavailable *ErrMethodUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("Project() error = %v, want ErrMethodUnavailable", err)
	}
}

func TestProjectUMAPBackend(t *testing.T) {
	var gotCfg UMAPConfig
	backend := func(cfg UMAPConfig, X *mat.Dense) (*mat.Dense, error) {
		gotCfg = cfg
		n, _ := X.Dims()
		return mat.NewDense(n, 2, nil), nil
	}
	e := newTestEngine(t, WithUMAP(backend))

	if !e.SupportsUMAP() {
		t.Fatal("SupportsUMAP() = false with a backend installed")
	}

	coords, _, err := e.Project("umap", map[string]any{"n_neighbors": 5, "min_dist": 0.25}, allRows(e))
	if err != nil {
		t.Fatalf("Project(umap) error: %v", err)
	}
	if len(coords) != e.Store().Len() {
		t.Errorf("Project(umap) returned %d coords, want %d", len(coords), e.Store().Len())
	}
	if gotCfg.Neighbors != 5 || gotCfg.MinDist != 0.25 {
		t.Errorf("backend config = %+v, want n_neighbors 5, min_dist 0.25", gotCfg)
	}
}

func TestProjectEmptyRows(t *testing.T) {
	e := newTestEngine(t)
	coords, hit, err := e.Project("pca", nil, nil)
	if err != nil || hit {
		t.Fatalf("Project(empty) = hit %v, err %v", hit, err)
	}
	if len(coords) != 0 {
		t.Errorf("Project(empty) returned %d coords, want 0", len(coords))
	}
}

func TestParseMethodConfigTSNE(t *testing.T) {
	cfg, err := parseMethodConfig("tsne", map[string]any{
		"perplexity":    "12.5",
		"learning_rate": "auto",
		"n_iter":        500.0,
		"metric":        "euclidean",
	})
	if err != nil {
		t.Fatalf("parseMethodConfig() error: %v", err)
	}
	tc, ok := cfg.(TSNEConfig)
	if !ok {
		t.Fatalf("parseMethodConfig() returned %T, want TSNEConfig", cfg)
	}
	if tc.Perplexity != 12.5 {
		t.Errorf("Perplexity = %g, want 12.5", tc.Perplexity)
	}
	if !tc.LearningRateAuto {
		t.Error("LearningRateAuto = false, want true for the auto token")
	}
	if tc.MaxIter != 500 {
		t.Errorf("MaxIter = %d, want 500", tc.MaxIter)
	}
	if tc.Metric != "euclidean" {
		t.Errorf("Metric = %q, want euclidean", tc.Metric)
	}
	if tc.PreReduceCap != defaultPreReduceCap {
		t.Errorf("PreReduceCap = %d, want %d", tc.PreReduceCap, defaultPreReduceCap)
	}
}

func TestPreReduce(t *testing.T) {
	// d <= cap: input passes through untouched.
	X := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	})
	out, err := preReduce(X, 50)
	if err != nil {
		t.Fatalf("preReduce() error: %v", err)
	}
	if out != X {
		t.Error("preReduce() copied a matrix that already fits")
	}

	// d > cap: reduced to min(cap, n-1) components.
	wide := mat.NewDense(4, 10, nil)
	for i := 0; i < 4; i++ {
		wide.Set(i, i, float64(i+1))
	}
	out, err = preReduce(wide, 3)
	if err != nil {
		t.Fatalf("preReduce() error: %v", err)
	}
	if _, c := out.Dims(); c != 3 {
		t.Errorf("preReduce() columns = %d, want 3", c)
	}
}

func TestRunTSNEEmbedsSmallMatrix(t *testing.T) {
	X := mat.NewDense(6, 3, []float64{
		1, 0, 0,
		0.9, 0.1, 0,
		0, 1, 0,
		0, 0.9, 0.1,
		0, 0, 1,
		0.5, 0.5, 0,
	})
	cfg := TSNEConfig{
		Perplexity:   2,
		LearningRate: 50,
		MaxIter:      60,
		Metric:       "euclidean",
	}

	for _, metric := range []string{"euclidean", "cosine"} {
		cfg.Metric = metric
		Y, err := runTSNE(cfg, X)
		if err != nil {
			t.Fatalf("runTSNE(%s) error: %v", metric, err)
		}
		n, c := Y.Dims()
		if n != 6 || c != 2 {
			t.Errorf("runTSNE(%s) shape = %dx%d, want 6x2", metric, n, c)
		}
	}

	cfg.Metric = "mahalanobis"
	if _, err := runTSNE(cfg, X); err == nil {
		t.Error("runTSNE() accepted an unsupported metric")
	}
}

func TestCosineDistances(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 2,
		3, 0,
	})
	D := cosineDistances(X)

	if got := D.At(0, 0); got != 0 {
		t.Errorf("D[0][0] = %g, want 0", got)
	}
	if got := D.At(0, 1); got != 1 {
		t.Errorf("D[0][1] = %g, want 1 for orthogonal vectors", got)
	}
	if got := D.At(0, 2); got > 1e-12 {
		t.Errorf("D[0][2] = %g, want 0 for parallel vectors", got)
	}
	if D.At(1, 2) != D.At(2, 1) {
		t.Error("cosineDistances() not symmetric")
	}
}
