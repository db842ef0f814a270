// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Command server runs the Paperatlas HTTP API: it loads the paper corpus
// (CSV metadata joined with NPZ embeddings) into memory once, then serves
// projection, neighbor and topic-match queries until terminated.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperatlas/paperatlas/internal/api"
	"github.com/paperatlas/paperatlas/internal/config"
	"github.com/paperatlas/paperatlas/internal/engine"
	"github.com/paperatlas/paperatlas/internal/logging"
	"github.com/paperatlas/paperatlas/internal/metrics"
	"github.com/paperatlas/paperatlas/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("program_csv", cfg.Data.ProgramCSV).
		Str("embeddings_npz", cfg.Data.EmbeddingsNPZ).
		Msg("loading corpus")

	ds, err := store.Load(cfg.Data.ProgramCSV, cfg.Data.EmbeddingsNPZ)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load corpus")
	}
	metrics.StorePapers.Set(float64(ds.Len()))

	eng := engine.New(ds)
	handler := api.NewHandler(cfg, eng)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
	logging.Info().Msg("server stopped")
}
