package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirezi/inyishu/ai/mock"
	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
	"github.com/kirezi/inyishu/storage"
)

func storeCorpus() []*core.KnowledgeRecord {
	return []*core.KnowledgeRecord{
		{
			ID:         1,
			Question:   "Qu'est-ce qu'une attestation de réussite?",
			Answer:     "Un document officiel délivré par le secrétariat.",
			Keywords:   []string{"attestation", "réussite"},
			Category:   "documents",
			Importance: core.ImportanceHigh,
			Citation:   "Section 1",
			Related:    []core.RecordID{2},
		},
		{
			ID:         2,
			Question:   "Quand a lieu la soutenance?",
			Answer:     "En fin de semestre.",
			Keywords:   []string{"soutenance"},
			Category:   "scolarité",
			Importance: core.ImportanceMedium,
			Citation:   "Section 4",
			Related:    []core.RecordID{1},
		},
	}
}

func buildStoreSnapshot(t *testing.T, model string, records []*core.KnowledgeRecord) *index.Snapshot {
	t.Helper()
	b, err := index.NewBuilder(mock.NewEmbedder(), model)
	require.NoError(t, err)
	snap, err := b.Build(context.Background(), records)
	require.NoError(t, err)
	return snap
}

func newMemoryStore(t *testing.T) storage.ArtifactStore {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSnapshotStore(t *testing.T) {
	_, err := NewSnapshotStore(nil)
	assert.ErrorIs(t, err, storage.ErrBackendRequired)
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	built := buildStoreSnapshot(t, "bge-m3", storeCorpus())
	require.NoError(t, store.Save(ctx, built))

	loaded, err := store.Load(ctx, "bge-m3")
	require.NoError(t, err)

	assert.Equal(t, built.Manifest(), loaded.Manifest())
	assert.Equal(t, built.Len(), loaded.Len())

	rec, ok := loaded.Record(1)
	require.True(t, ok)
	assert.Equal(t, "Section 1", rec.Citation)
	assert.Equal(t, []core.RecordID{2}, rec.Related)

	// Vectors survive byte-exact, no re-embedding.
	assert.Equal(t, built.Dense().Vectors, loaded.Dense().Vectors)
	assert.Equal(t, built.Dense().IDs, loaded.Dense().IDs)

	// The recomputed indexes answer like the originals.
	tokens := core.Tokenize("attestation de réussite")
	assert.Equal(t,
		built.Sparse().Search(tokens, 10),
		loaded.Sparse().Search(tokens, 10))
	q := core.Normalize("attestation de reussite")
	assert.Equal(t,
		built.Fuzzy().Search(q, index.DefaultMinFuzzyRatio, 10),
		loaded.Fuzzy().Search(q, index.DefaultMinFuzzyRatio, 10))
}

func TestSnapshotStoreNoArtifacts(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	_, err := store.Load(ctx, "bge-m3")
	assert.ErrorIs(t, err, storage.ErrNoArtifacts)

	_, err = store.Manifest(ctx)
	assert.ErrorIs(t, err, storage.ErrNoArtifacts)
}

func TestSnapshotStoreStaleModel(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	built := buildStoreSnapshot(t, "bge-m3", storeCorpus())
	require.NoError(t, store.Save(ctx, built))

	_, err := store.Load(ctx, "nomic-embed-text")
	assert.ErrorIs(t, err, storage.ErrStaleArtifacts)

	// Empty model skips the check.
	loaded, err := store.Load(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "bge-m3", loaded.Manifest().EmbeddingModel)
}

func TestSnapshotStoreResave(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)

	first := buildStoreSnapshot(t, "bge-m3", storeCorpus())
	require.NoError(t, store.Save(ctx, first))

	smaller := storeCorpus()[:1]
	smaller[0].Related = nil
	second := buildStoreSnapshot(t, "bge-m3", smaller)
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, "bge-m3")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
	assert.Equal(t, second.Manifest().Fingerprint, loaded.Manifest().Fingerprint)

	m, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Manifest(), m)
}
