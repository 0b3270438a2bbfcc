package storage

import (
	"context"

	"github.com/kirezi/inyishu/index"
)

// ArtifactStore persists built index artifacts across process restarts.
// Implementations must be safe for concurrent use.
type ArtifactStore interface {
	// Save persists the snapshot's records, vectors and manifest.
	// A successful Save fully replaces any previous build; a failed
	// Save leaves the previous build intact and loadable.
	Save(ctx context.Context, snap *index.Snapshot) error

	// Load reconstructs the most recently saved snapshot.
	// Returns ErrNoArtifacts when nothing has been saved, and
	// ErrStaleArtifacts when the stored build used a different
	// embedding model than the one given.
	Load(ctx context.Context, model string) (*index.Snapshot, error)

	// Manifest returns the manifest of the most recently saved build.
	// Returns ErrNoArtifacts when nothing has been saved.
	Manifest(ctx context.Context) (index.Manifest, error)

	// Close releases the underlying storage.
	Close() error
}
