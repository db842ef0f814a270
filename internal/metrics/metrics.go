// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Package metrics provides Prometheus metrics for observability, exposed at
// the /metrics endpoint in Prometheus text format.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProjectionDuration tracks reduction compute time per method. Cache
	// hits are not observed here.
	ProjectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projection_duration_seconds",
			Help:    "Duration of dimensionality reductions in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"method"},
	)

	// ProjectionCacheHits counts projection requests served from cache.
	ProjectionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projection_cache_hits_total",
			Help: "Projection requests served from the in-process cache",
		},
	)

	// ProjectionCacheMisses counts projection requests that computed.
	ProjectionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projection_cache_misses_total",
			Help: "Projection requests that required a fresh reduction",
		},
	)

	// StorePapers reports the number of rows in the loaded data store.
	StorePapers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_papers",
			Help: "Number of papers in the in-memory data store",
		},
	)

	// HTTPRequestsTotal counts HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
