// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the HTTP surface: the JSON API under /api, plus the
// Prometheus scrape endpoint.
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(PrometheusMetrics)

		r.Get("/meta", h.Meta)
		r.Get("/health", h.Health)
		r.Post("/project", h.Project)
		r.Post("/nn", h.Neighbors)
		r.Post("/topic_match", h.TopicMatch)
		r.Post("/save_state", h.SaveState)
		r.Post("/save_scored_csv", h.SaveScoredCSV)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
