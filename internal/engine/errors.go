// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionValueRequired is returned by Filter when mode is "session"
	// but no session value was supplied.
	ErrSessionValueRequired = errors.New("session_value is required when mode='session'")
)

// ErrPaperNotFound indicates an unknown paper id.
type ErrPaperNotFound struct {
	PaperID string
}

func (e *ErrPaperNotFound) Error() string {
	return fmt.Sprintf("paper_id not found: %s", e.PaperID)
}

// ErrUnsupportedMethod indicates an unknown projection method name.
type ErrUnsupportedMethod struct {
	Method string
}

func (e *ErrUnsupportedMethod) Error() string {
	return fmt.Sprintf("unsupported method: %s", e.Method)
}

// ErrMethodUnavailable indicates a projection method whose backend is not
// present in this build. It is distinct from ErrUnsupportedMethod: the method
// name is known, the capability is missing.
type ErrMethodUnavailable struct {
	Method string
}

func (e *ErrMethodUnavailable) Error() string {
	return fmt.Sprintf("%s is unavailable in this build", e.Method)
}

// ErrComputation wraps a reduction algorithm failure.
//
// The underlying error can be accessed via errors.Unwrap.
type ErrComputation struct {
	Method string
	cause  error
}

func (e *ErrComputation) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Method, e.cause)
}

func (e *ErrComputation) Unwrap() error { return e.cause }
