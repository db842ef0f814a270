// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Package config provides layered configuration for the Paperatlas server.
//
// Configuration is loaded via koanf v2 from three layers with increasing
// priority: built-in defaults, an optional YAML config file, and environment
// variables. The loaded Config is validated before the server starts; an
// invalid configuration is a fatal startup error.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the server process.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Data    DataConfig    `koanf:"data"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout bounds request read/write. Projection requests can be CPU-heavy,
	// so this also acts as the effective ceiling on reduction time visible to
	// a client.
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed origins for browser clients.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DataConfig holds input corpus and output artifact paths.
type DataConfig struct {
	// ProgramCSV is the tabular metadata source (one row per paper).
	ProgramCSV string `koanf:"program_csv"`

	// EmbeddingsNPZ is the vector source: an NPZ archive with aligned
	// "ids" and "embeddings" arrays.
	EmbeddingsNPZ string `koanf:"embeddings_npz"`

	// StateJSON is where client-submitted explorer state is persisted.
	StateJSON string `koanf:"state_json"`

	// ScoredCSV is where client-submitted scored exports are persisted.
	ScoredCSV string `koanf:"scored_csv"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would prevent the server
// from starting or serving correctly.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Data.ProgramCSV == "" {
		return fmt.Errorf("data.program_csv is required")
	}
	if c.Data.EmbeddingsNPZ == "" {
		return fmt.Errorf("data.embeddings_npz is required")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
