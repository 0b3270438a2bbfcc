package mock

import "github.com/kirezi/inyishu/ai"

// Provider is a test double for ai.Provider aggregating the mock
// embedder and polisher.
type Provider struct {
	MockEmbedder *Embedder
	MockPolisher *Polisher
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a provider with default deterministic mocks.
func NewProvider() *Provider {
	return &Provider{
		MockEmbedder: NewEmbedder(),
		MockPolisher: NewPolisher(),
	}
}

// Embedder returns the mock embedder.
func (p *Provider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Polisher returns the mock polisher.
func (p *Provider) Polisher() ai.Polisher {
	return p.MockPolisher
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
