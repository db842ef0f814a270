// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danaugrs/go-tsne/tsne"
	"github.com/paperatlas/paperatlas/internal/metrics"
	"gonum.org/v1/gonum/mat"
)

// Projection method names (case-insensitive in requests).
const (
	MethodPCA  = "pca"
	MethodTSNE = "tsne"
	MethodUMAP = "umap"
)

// defaultPreReduceCap is the PCA pre-reduction component cap for the
// non-linear methods, applied only when the native dimensionality exceeds it.
const defaultPreReduceCap = 50

// UMAPFunc is an optional UMAP backend: given its config and a pre-reduced
// matrix it returns the n×2 embedding.
type UMAPFunc func(cfg UMAPConfig, X *mat.Dense) (*mat.Dense, error)

// PCAConfig parameterizes the pca method.
type PCAConfig struct {
	Whiten      bool
	RandomState int64
}

// TSNEConfig parameterizes the tsne method.
type TSNEConfig struct {
	Perplexity float64

	// LearningRate applies when LearningRateAuto is false. The literal token
	// "auto" (and any unparseable value) selects the automatic rate
	// max(n/48, 50).
	LearningRate     float64
	LearningRateAuto bool

	MaxIter     int
	Init        string
	Metric      string
	RandomState int64

	// PreReduceCap bounds the PCA pre-reduction dimensionality.
	PreReduceCap int
}

// UMAPConfig parameterizes the umap method.
type UMAPConfig struct {
	Neighbors    int
	MinDist      float64
	Metric       string
	Spread       float64
	RandomState  int64
	PreReduceCap int
}

// methodConfig is the tagged union of per-method configurations, validated
// and defaulted at the boundary before reaching the projection code.
type methodConfig interface {
	methodName() string
}

func (PCAConfig) methodName() string  { return MethodPCA }
func (TSNEConfig) methodName() string { return MethodTSNE }
func (UMAPConfig) methodName() string { return MethodUMAP }

// parseMethodConfig normalizes the method name and converts the loosely
// typed parameter map into the method's typed configuration with defaults
// applied. Unknown methods fail with ErrUnsupportedMethod.
func parseMethodConfig(method string, params map[string]any) (methodConfig, error) {
	switch strings.ToLower(method) {
	case MethodPCA:
		return PCAConfig{
			Whiten:      boolParam(params, "whiten", false),
			RandomState: intParam(params, "random_state", 42),
		}, nil
	case MethodTSNE:
		lr, auto := learningRateParam(params, "learning_rate")
		return TSNEConfig{
			Perplexity:       floatParam(params, "perplexity", 30.0),
			LearningRate:     lr,
			LearningRateAuto: auto,
			MaxIter:          int(intParam(params, "n_iter", 1000)),
			Init:             stringParam(params, "init", "pca"),
			Metric:           stringParam(params, "metric", "cosine"),
			RandomState:      intParam(params, "random_state", 42),
			PreReduceCap:     int(intParam(params, "pca_components_for_tsne_umap", defaultPreReduceCap)),
		}, nil
	case MethodUMAP:
		return UMAPConfig{
			Neighbors:    int(intParam(params, "n_neighbors", 15)),
			MinDist:      floatParam(params, "min_dist", 0.1),
			Metric:       stringParam(params, "metric", "cosine"),
			Spread:       floatParam(params, "spread", 1.0),
			RandomState:  intParam(params, "random_state", 42),
			PreReduceCap: int(intParam(params, "pca_components_for_tsne_umap", defaultPreReduceCap)),
		}, nil
	default:
		return nil, &ErrUnsupportedMethod{Method: method}
	}
}

// Project reduces the vectors of the given canonical rows to 2D coordinates,
// serving from the projection cache when an identical request (method, params
// as supplied, exact ordered id list) has been computed before. The second
// return reports a cache hit. Errors never populate the cache.
func (e *Engine) Project(method string, params map[string]any, rows []int) ([][2]float64, bool, error) {
	cfg, err := parseMethodConfig(method, params)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return [][2]float64{}, false, nil
	}

	ids := e.paperIDs(rows)
	sig, err := signature(strings.ToLower(method), params, ids)
	if err != nil {
		return nil, false, err
	}

	if coords, ok := e.cache.get(sig); ok {
		metrics.ProjectionCacheHits.Inc()
		return coords, true, nil
	}
	metrics.ProjectionCacheMisses.Inc()

	coords, err := e.cache.compute(sig, func() ([][2]float64, error) {
		started := time.Now()
		result, err := e.projectVectors(cfg, e.matrixFor(rows))
		if err == nil {
			metrics.ProjectionDuration.WithLabelValues(cfg.methodName()).
				Observe(time.Since(started).Seconds())
		}
		return result, err
	})
	return coords, false, err
}

// projectVectors dispatches one stateless reduction. No model state survives
// the call; memoization happens only through the projection cache.
func (e *Engine) projectVectors(cfg methodConfig, X *mat.Dense) ([][2]float64, error) {
	switch c := cfg.(type) {
	case PCAConfig:
		scores, err := pcaProject(X, 2, c.Whiten)
		if err != nil {
			return nil, &ErrComputation{Method: MethodPCA, cause: err}
		}
		return toCoords(scores), nil

	case TSNEConfig:
		reduced, err := preReduce(X, c.PreReduceCap)
		if err != nil {
			return nil, &ErrComputation{Method: MethodTSNE, cause: err}
		}
		Y, err := runTSNE(c, reduced)
		if err != nil {
			return nil, &ErrComputation{Method: MethodTSNE, cause: err}
		}
		return toCoords(Y), nil

	case UMAPConfig:
		if e.umap == nil {
			return nil, &ErrMethodUnavailable{Method: MethodUMAP}
		}
		reduced, err := preReduce(X, c.PreReduceCap)
		if err != nil {
			return nil, &ErrComputation{Method: MethodUMAP, cause: err}
		}
		Y, err := e.umap(c, reduced)
		if err != nil {
			return nil, &ErrComputation{Method: MethodUMAP, cause: err}
		}
		return toCoords(Y), nil

	default:
		return nil, &ErrUnsupportedMethod{Method: cfg.methodName()}
	}
}

// preReduce projects X down to max(2, min(cap, n−1, d)) components via PCA,
// but only when the native dimensionality exceeds that target. The non-linear
// methods run on the result.
func preReduce(X *mat.Dense, limit int) (*mat.Dense, error) {
	n, d := X.Dims()
	if limit <= 0 {
		limit = defaultPreReduceCap
	}
	components := limit
	if n-1 < components {
		components = n - 1
	}
	if d < components {
		components = d
	}
	if components < 2 {
		components = 2
	}
	if d <= components {
		return X, nil
	}
	return pcaProject(X, components, false)
}

// runTSNE embeds the pre-reduced matrix with t-SNE. A failure under the
// cosine metric is retried exactly once with euclidean before surfacing;
// failures under any other metric surface immediately.
func runTSNE(cfg TSNEConfig, X *mat.Dense) (*mat.Dense, error) {
	Y, err := runTSNEOnce(cfg, cfg.Metric, X)
	if err != nil && cfg.Metric == "cosine" {
		return runTSNEOnce(cfg, "euclidean", X)
	}
	return Y, err
}

// runTSNEOnce performs a single t-SNE run, converting backend panics into
// errors so a failing reduction cannot crash the process.
func runTSNEOnce(cfg TSNEConfig, metric string, X *mat.Dense) (Y *mat.Dense, err error) {
	defer func() {
		if r := recover(); r != nil {
			Y, err = nil, fmt.Errorf("t-SNE failed: %v", r)
		}
	}()

	n, _ := X.Dims()
	lr := cfg.LearningRate
	if cfg.LearningRateAuto {
		// Mirrors the common "auto" heuristic: n / early_exaggeration / 4,
		// floored at 50.
		lr = float64(n) / 48.0
		if lr < 50 {
			lr = 50
		}
	}

	t := tsne.NewTSNE(2, cfg.Perplexity, lr, cfg.MaxIter, false)
	var embedded mat.Matrix
	switch metric {
	case "euclidean":
		embedded = t.EmbedData(X, nil)
	case "cosine":
		embedded = t.EmbedDistances(cosineDistances(X), nil)
	default:
		return nil, fmt.Errorf("unsupported t-SNE metric: %s", metric)
	}
	if embedded == nil {
		return nil, fmt.Errorf("t-SNE returned no embedding")
	}
	return mat.DenseCopyOf(embedded), nil
}

// cosineDistances builds the pairwise cosine-distance matrix 1−cos(xi, xj).
// Pre-reduced rows are no longer unit norm, so norms are recomputed here.
func cosineDistances(X *mat.Dense) *mat.Dense {
	n, d := X.Dims()
	norms := make([]float64, n)
	for i := 0; i < n; i++ {
		norms[i] = mat.Norm(X.RowView(i), 2)
	}

	D := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var dp float64
			for k := 0; k < d; k++ {
				dp += X.At(i, k) * X.At(j, k)
			}
			dist := 1.0
			if norms[i] > 0 && norms[j] > 0 {
				dist = 1 - dp/(norms[i]*norms[j])
			}
			D.Set(i, j, dist)
			D.Set(j, i, dist)
		}
	}
	return D
}

// toCoords copies the first two columns of Y into a compact coordinate list.
func toCoords(Y *mat.Dense) [][2]float64 {
	n, _ := Y.Dims()
	coords := make([][2]float64, n)
	for i := 0; i < n; i++ {
		coords[i] = [2]float64{Y.At(i, 0), Y.At(i, 1)}
	}
	return coords
}

// Parameter coercion: request parameters arrive as loosely typed JSON values
// and tolerate both native and string encodings.

func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return def
}

func intParam(params map[string]any, key string, def int64) int64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return int64(x)
	case int:
		return int64(x)
	case string:
		if i, err := strconv.ParseInt(x, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return int64(f)
		}
	}
	return def
}

func boolParam(params map[string]any, key string, def bool) bool {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
	}
	return def
}

func stringParam(params map[string]any, key string, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// RandomState extracts the shared random_state parameter (default 42) so the
// sampler and the projection backends derive from the same seed.
func RandomState(params map[string]any) int64 {
	return intParam(params, "random_state", 42)
}

// learningRateParam resolves the tsne learning rate: a numeric value (or a
// numeric string) is used directly; the token "auto", a missing value, or
// anything unparseable selects the automatic rate.
func learningRateParam(params map[string]any, key string) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, true
	}
	switch x := v.(type) {
	case float64:
		return x, false
	case int:
		return float64(x), false
	case string:
		if strings.EqualFold(x, "auto") {
			return 0, true
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f, false
		}
	}
	return 0, true
}
