// Copyright 2026 Kirezi Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local
	// OpenAI-compatible server.
	EmbeddingHost string

	// EmbeddingModel is the model identifier used for text embeddings.
	// It is recorded in every index artifact; artifacts built with a
	// different model are rejected as stale rather than queried.
	// Example: "bge-m3", "text-embedding-3-small"
	EmbeddingModel string

	// PolishHost is the base URL for the answer-polishing chat API.
	// Defaults to EmbeddingHost when empty and a polish model is set.
	PolishHost string

	// PolishModel is the chat model used to rewrite accepted answers.
	// Empty disables polishing entirely (NopPolisher).
	PolishModel string
}

// Config validation errors.
var (
	ErrEmbeddingHostRequired  = errors.New("embedding host required")
	ErrEmbeddingModelRequired = errors.New("embedding model required")
)

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithPolishHost sets the polishing service host URL.
func WithPolishHost(host string) ConfigOption {
	return func(c *Config) {
		c.PolishHost = host
	}
}

// WithPolishModel sets the polishing chat model. Empty disables
// polishing.
func WithPolishModel(model string) ConfigOption {
	return func(c *Config) {
		c.PolishModel = model
	}
}

// WithHost sets both the embedding and polishing hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.PolishHost = host
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service. Polishing is off by default.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "bge-m3",
	}
}

// NewConfig creates a Config with default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks the configuration and normalizes host URLs
// (trailing slashes are trimmed). PolishHost falls back to
// EmbeddingHost when a polish model is configured without its own
// host.
func (c *Config) Validate() error {
	c.EmbeddingHost = strings.TrimRight(strings.TrimSpace(c.EmbeddingHost), "/")
	c.PolishHost = strings.TrimRight(strings.TrimSpace(c.PolishHost), "/")
	c.EmbeddingModel = strings.TrimSpace(c.EmbeddingModel)
	c.PolishModel = strings.TrimSpace(c.PolishModel)

	if c.EmbeddingHost == "" {
		return ErrEmbeddingHostRequired
	}
	if c.EmbeddingModel == "" {
		return ErrEmbeddingModelRequired
	}
	if c.PolishModel != "" && c.PolishHost == "" {
		c.PolishHost = c.EmbeddingHost
	}
	return nil
}
