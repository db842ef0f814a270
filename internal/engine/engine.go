// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Package engine is the in-memory analytical core: filter and sample
// pipelines over the paper corpus, multi-method 2D projection with
// content-addressed caching, cosine-similarity neighbor search, and
// preference-vector topic scoring.
//
// All operations are read-only against the DataStore and safe for
// concurrent use; the projection cache is the only mutable state and
// synchronizes internally.
package engine

import (
	"github.com/paperatlas/paperatlas/internal/store"
	"gonum.org/v1/gonum/mat"
)

// Engine bundles the shared DataStore with the process-lifetime projection
// cache and the optional projection capabilities.
type Engine struct {
	store *store.DataStore
	cache *projectionCache

	// umap is the optional UMAP backend. When nil, requesting the umap
	// method yields ErrMethodUnavailable rather than a silent substitute.
	umap UMAPFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithUMAP installs a UMAP backend, enabling the umap projection method.
func WithUMAP(fn UMAPFunc) Option {
	return func(e *Engine) { e.umap = fn }
}

// New creates an Engine over a loaded DataStore.
func New(s *store.DataStore, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		cache: newProjectionCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying DataStore.
func (e *Engine) Store() *store.DataStore { return e.store }

// SupportsUMAP reports whether the umap projection method is available.
func (e *Engine) SupportsUMAP() bool { return e.umap != nil }

// matrixFor assembles the dense vector matrix for the given canonical rows.
func (e *Engine) matrixFor(rows []int) *mat.Dense {
	d := e.store.Dim()
	m := mat.NewDense(len(rows), d, nil)
	for i, row := range rows {
		m.SetRow(i, e.store.Vector(row))
	}
	return m
}

// paperIDs returns the paper ids for the given canonical rows, in order.
func (e *Engine) paperIDs(rows []int) []string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = e.store.Record(row).PaperID
	}
	return ids
}

// dot is the inner product of two equal-length vectors. Store vectors are
// unit L2 norm, so this is cosine similarity.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
