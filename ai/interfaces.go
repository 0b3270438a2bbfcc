package ai

import "context"

// Embedder generates vector embeddings from text for semantic
// similarity search. Implementations must be thread-safe for
// concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings
	// in a batch. The returned slice contains embeddings in the same
	// order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Polisher optionally rewrites a raw corpus answer for style. It must
// never add facts; callers treat any error, timeout or empty result as
// "use the raw answer unchanged", so a Polisher can never affect
// correctness, only phrasing.
type Polisher interface {
	// Polish returns a stylistic rewrite of answer. The citation is
	// provided so the rewrite can keep referring to it.
	Polish(ctx context.Context, answer, citation string) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Polisher returns the answer polishing service. Providers without
	// a configured polish model return NopPolisher.
	Polisher() Polisher

	// Close releases resources held by the provider and its services.
	Close() error
}

// NopPolisher is the default Polisher: it returns the answer
// unchanged. The retrieval core depends on no enhancement service
// being reachable.
type NopPolisher struct{}

var _ Polisher = NopPolisher{}

// Polish returns the answer untouched.
func (NopPolisher) Polish(_ context.Context, answer, _ string) (string, error) {
	return answer, nil
}
