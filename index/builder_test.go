package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirezi/inyishu/ai/mock"
	"github.com/kirezi/inyishu/core"
)

func builderCorpus() []*core.KnowledgeRecord {
	return []*core.KnowledgeRecord{
		{
			ID:         2,
			Question:   "Quand a lieu la soutenance?",
			Answer:     "En fin de semestre.",
			Keywords:   []string{"soutenance", "calendrier"},
			Category:   "scolarité",
			Importance: core.ImportanceMedium,
			Citation:   "Section 4",
		},
		{
			ID:         1,
			Question:   "Qu'est-ce qu'une attestation de réussite?",
			Answer:     "Un document officiel délivré par le secrétariat.",
			Keywords:   []string{"attestation", "réussite"},
			Category:   "documents",
			Importance: core.ImportanceHigh,
			Citation:   "Section 1",
		},
	}
}

func TestNewBuilder(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewBuilder(nil, "bge-m3")
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("requires model", func(t *testing.T) {
		_, err := NewBuilder(mock.NewEmbedder(), "")
		assert.ErrorIs(t, err, ErrModelRequired)
	})

	t.Run("rejects invalid retry option", func(t *testing.T) {
		_, err := NewBuilder(mock.NewEmbedder(), "bge-m3", WithRetry(0, time.Millisecond))
		assert.Error(t, err)
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("produces complete snapshot", func(t *testing.T) {
		b, err := NewBuilder(mock.NewEmbedder(), "bge-m3")
		require.NoError(t, err)

		snap, err := b.Build(ctx, builderCorpus())
		require.NoError(t, err)

		assert.Equal(t, 2, snap.Len())
		m := snap.Manifest()
		assert.Equal(t, "bge-m3", m.EmbeddingModel)
		assert.Equal(t, mock.DefaultDimension, m.Dimension)
		assert.Equal(t, 2, m.RecordCount)
		assert.NotEmpty(t, m.Fingerprint)
		assert.False(t, m.BuiltAt.IsZero())

		// Records come back in ascending id order regardless of input order.
		recs := snap.Records()
		assert.Equal(t, core.RecordID(1), recs[0].ID)
		assert.Equal(t, core.RecordID(2), recs[1].ID)

		rec, ok := snap.Record(1)
		require.True(t, ok)
		assert.Equal(t, "Section 1", rec.Citation)
	})

	t.Run("indexes are queryable", func(t *testing.T) {
		b, err := NewBuilder(mock.NewEmbedder(), "bge-m3")
		require.NoError(t, err)

		snap, err := b.Build(ctx, builderCorpus())
		require.NoError(t, err)

		got := snap.Sparse().Search(core.Tokenize("attestation de réussite"), 10)
		require.NotEmpty(t, got)
		assert.Equal(t, core.RecordID(1), got[0].ID)

		// The dense index holds the same vectors the embedder produced,
		// so querying with a record's own normalized text ranks it first.
		rec, _ := snap.Record(2)
		qv := mock.DeterministicVector(core.Normalize(rec.SearchText()), mock.DefaultDimension)
		dense, err := snap.Dense().Search(qv, DefaultMinSimilarity, 10)
		require.NoError(t, err)
		require.NotEmpty(t, dense)
		assert.Equal(t, core.RecordID(2), dense[0].ID)
	})

	t.Run("fingerprint stable across rebuilds", func(t *testing.T) {
		b, err := NewBuilder(mock.NewEmbedder(), "bge-m3")
		require.NoError(t, err)

		first, err := b.Build(ctx, builderCorpus())
		require.NoError(t, err)
		second, err := b.Build(ctx, builderCorpus())
		require.NoError(t, err)

		assert.Equal(t, first.Manifest().Fingerprint, second.Manifest().Fingerprint)
	})

	t.Run("invalid corpus aborts build", func(t *testing.T) {
		b, err := NewBuilder(mock.NewEmbedder(), "bge-m3")
		require.NoError(t, err)

		bad := builderCorpus()
		bad[0].Citation = ""
		snap, err := b.Build(ctx, bad)
		assert.ErrorIs(t, err, core.ErrEmptyCitation)
		assert.Nil(t, snap)
	})

	t.Run("embedder failure aborts build", func(t *testing.T) {
		boom := errors.New("model unavailable")
		emb := mock.NewEmbedder()
		emb.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, boom
		}

		b, err := NewBuilder(emb, "bge-m3", WithRetry(1, time.Millisecond))
		require.NoError(t, err)

		snap, err := b.Build(ctx, builderCorpus())
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, snap)
	})

	t.Run("inconsistent dimensions abort build", func(t *testing.T) {
		calls := 0
		emb := mock.NewEmbedder()
		emb.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			calls++
			if calls == 1 {
				return mock.DeterministicVector(text, 8), nil
			}
			return mock.DeterministicVector(text, 16), nil
		}

		b, err := NewBuilder(emb, "bge-m3", WithPoolSize(1))
		require.NoError(t, err)

		snap, err := b.Build(ctx, builderCorpus())
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Nil(t, snap)
	})

	t.Run("cancelled context aborts build", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		b, err := NewBuilder(mock.NewEmbedder(), "bge-m3", WithRetry(1, time.Millisecond))
		require.NoError(t, err)

		snap, err := b.Build(cancelled, builderCorpus())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, snap)
	})
}

func TestNewSnapshotConsistency(t *testing.T) {
	t.Run("missing index rejected", func(t *testing.T) {
		_, err := NewSnapshot(nil, nil, &DenseIndex{}, &FuzzyIndex{}, Manifest{})
		assert.ErrorIs(t, err, ErrSnapshotIncomplete)
	})

	t.Run("count mismatch rejected", func(t *testing.T) {
		recs := builderCorpus()
		sparse := NewSparseIndex(DefaultBM25K1, DefaultBM25B)
		for _, r := range recs {
			sparse.Add(r.ID, core.Tokenize(r.SearchText()))
		}
		dense := &DenseIndex{Model: "m", Dim: 2, IDs: []core.RecordID{1}, Vectors: [][]float32{{1, 0}}}
		fuzzy := &FuzzyIndex{IDs: []core.RecordID{1, 2}, Texts: []string{"a", "b"}}

		_, err := NewSnapshot(recs, sparse, dense, fuzzy, Manifest{})
		assert.ErrorIs(t, err, ErrSnapshotIncomplete)
	})
}
