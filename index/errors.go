package index

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrModelRequired is returned when no embedding model identifier
	// is provided. Every snapshot is tagged with the model that built
	// it; an untagged snapshot could not be checked for staleness.
	ErrModelRequired = errors.New("embedding model identifier required")

	// ErrDimensionMismatch indicates embedding vectors of differing
	// dimensions, usually because the embedding model changed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyEmbedding indicates the embedder returned a zero-length
	// vector.
	ErrEmptyEmbedding = errors.New("embedder returned empty vector")

	// ErrSnapshotIncomplete indicates snapshot parts that do not agree
	// on the record set.
	ErrSnapshotIncomplete = errors.New("snapshot parts incomplete or inconsistent")
)
