// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// projectionCache memoizes projection results by content signature for the
// process lifetime. Entries are never evicted or invalidated; coordinates are
// treated as immutable once inserted.
type projectionCache struct {
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string][][2]float64
}

func newProjectionCache() *projectionCache {
	return &projectionCache{entries: make(map[string][][2]float64)}
}

// get returns the cached coordinates for a signature.
func (c *projectionCache) get(sig string) ([][2]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coords, ok := c.entries[sig]
	return coords, ok
}

// compute runs fn for a signature with a single-writer-per-key guarantee:
// concurrent callers for the same signature share one computation, and a
// successful result is inserted exactly once. Failed computations leave the
// cache untouched.
func (c *projectionCache) compute(sig string, fn func() ([][2]float64, error)) ([][2]float64, error) {
	v, err, _ := c.group.Do(sig, func() (any, error) {
		// A racing caller may have inserted between the caller's lookup and
		// this flight starting.
		if coords, ok := c.get(sig); ok {
			return coords, nil
		}
		coords, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[sig] = coords
		c.mu.Unlock()
		return coords, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([][2]float64), nil
}

// len reports the number of cached projections.
func (c *projectionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachedProjections reports the number of memoized projection results.
func (e *Engine) CachedProjections() int { return e.cache.len() }

// signaturePayload is digested to form a cache key. Field order matches the
// sorted-key JSON the cache has always used; parameter values are kept as
// supplied, so semantically equal but differently encoded parameters (42 vs
// "42") intentionally produce distinct entries.
type signaturePayload struct {
	Method   string         `json:"method"`
	PaperIDs []string       `json:"paper_ids"`
	Params   map[string]any `json:"params"`
}

// signature derives the deterministic cache key for one projection request:
// a SHA-1 digest over compact JSON of method, the exact ordered id list of
// the sampled subset, and the parameter set.
func signature(method string, params map[string]any, paperIDs []string) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	if paperIDs == nil {
		paperIDs = []string{}
	}
	blob, err := json.Marshal(signaturePayload{
		Method:   method,
		PaperIDs: paperIDs,
		Params:   params,
	})
	if err != nil {
		return "", fmt.Errorf("signature: %w", err)
	}
	sum := sha1.Sum(blob)
	return hex.EncodeToString(sum[:]), nil
}
