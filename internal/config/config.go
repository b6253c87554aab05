// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads farqad's configuration: defaults, then
// ~/.farqad/config.toml, then environment overrides (optionally from a
// .env file in the working directory).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/farqad/farqad-tui/internal/util"
)

// Environment variables that override the config file. A .env file in
// the working directory is honored, matching how the backend is usually
// run during development.
const (
	EnvAPIURL  = "FARQAD_API_URL"
	EnvAuthURL = "FARQAD_AUTH_URL"
)

// Config is the full client configuration.
type Config struct {
	API  APIConfig  `toml:"api"`
	Chat ChatConfig `toml:"chat"`
}

// APIConfig configures the backend endpoints.
type APIConfig struct {
	// BaseURL of the NLP backend, e.g. "http://localhost:8000".
	BaseURL string `toml:"base_url"`
	// AuthURL of the auth service, e.g. "http://localhost:8000/auth".
	AuthURL string `toml:"auth_url"`
	// TimeoutSeconds per request. Document analysis can be slow.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// MaxRetries for rate-limit and server errors.
	MaxRetries int `toml:"max_retries"`
}

// ChatConfig configures client behavior.
type ChatConfig struct {
	// DefaultProjectID used before any document is uploaded.
	DefaultProjectID string `toml:"default_project_id"`
	// LogFile receives diagnostics while the TUI owns the terminal.
	LogFile string `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			AuthURL:        "http://localhost:8000/auth",
			TimeoutSeconds: 60,
			MaxRetries:     3,
		},
		Chat: ChatConfig{
			DefaultProjectID: "0",
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".farqad", "config.toml"), nil
}

// Load reads the config file at path (missing file is fine) and applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Missing .env is normal; a present one feeds the env lookups below.
	_ = godotenv.Load()

	if url := os.Getenv(EnvAPIURL); url != "" {
		cfg.API.BaseURL = url
	}
	if url := os.Getenv(EnvAuthURL); url != "" {
		cfg.API.AuthURL = url
	}
	return cfg, nil
}

// WriteDefaultIfMissing seeds path with the built-in defaults so users
// have a file to edit. An existing file is left untouched.
func WriteDefaultIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file %s: %w", path, err)
	}
	return Default().Save(path)
}

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
