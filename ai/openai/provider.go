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


package openai

import (
	"log/slog"

	"github.com/kirezi/inyishu/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages the embedder and, when configured, the answer polisher.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	polisher ai.Polisher
	logger   *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible
// services. The config is validated and normalized before use. When no
// polish model is configured the provider hands out ai.NopPolisher.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	var polisher ai.Polisher = ai.NopPolisher{}
	if config.PolishModel != "" {
		polisher, err = newPolisher(config)
		if err != nil {
			return nil, err
		}
	}

	return &Provider{
		config:   config,
		embedder: embedder,
		polisher: polisher,
		logger:   slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Polisher returns the answer polishing service.
func (p *Provider) Polisher() ai.Polisher {
	return p.polisher
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
