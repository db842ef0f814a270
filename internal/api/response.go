// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Package api provides the HTTP surface of Paperatlas: request decoding and
// validation, thin handlers over the analytical engine, and structured error
// responses. Every per-request failure is converted to a JSON error body;
// nothing here can crash the process.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/paperatlas/paperatlas/internal/engine"
	"github.com/paperatlas/paperatlas/internal/logging"
)

// Error codes for API responses.
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeComputation = "COMPUTATION_ERROR"
	ErrCodePersistence = "PERSISTENCE_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// apiError is the machine-readable error payload.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorBody wraps an apiError for transport.
type errorBody struct {
	Error apiError `json:"error"`
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes a structured error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: apiError{Code: code, Message: message}})
}

// respondEngineError translates an engine error into the API taxonomy:
// validation failures and computation failures are client errors, unknown
// papers are not-found, anything else is an internal error.
func respondEngineError(w http.ResponseWriter, err error) {
	var (
		notFound    *engine.ErrPaperNotFound
		unsupported *engine.ErrUnsupportedMethod
		unavailable *engine.ErrMethodUnavailable
		computation *engine.ErrComputation
	)
	switch {
	case errors.Is(err, engine.ErrSessionValueRequired):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.As(err, &unsupported), errors.As(err, &unavailable), errors.As(err, &computation):
		respondError(w, http.StatusBadRequest, ErrCodeComputation, err.Error())
	default:
		logging.Error().Err(err).Msg("unexpected engine error")
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

// decodeJSON decodes a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
