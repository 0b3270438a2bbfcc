package inyishu

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirezi/inyishu/ai/mock"
	"github.com/kirezi/inyishu/core"
	badgerstore "github.com/kirezi/inyishu/storage/badger"
)

const testCorpus = `{
  "records": [
    {
      "id": 1,
      "question": "Qu'est-ce qu'une attestation de réussite?",
      "answer": "Un document officiel délivré par le secrétariat après validation du semestre.",
      "keywords": ["attestation", "réussite"],
      "category": "documents",
      "importance": "high",
      "citation": "Section 1",
      "related": [2]
    },
    {
      "id": 2,
      "question": "Quand a lieu la soutenance de mémoire?",
      "answer": "La soutenance a lieu en fin de semestre, selon le calendrier publié.",
      "keywords": ["soutenance", "mémoire"],
      "category": "scolarité",
      "importance": "medium",
      "citation": "Section 4",
      "related": [1]
    }
  ]
}`

const extendedCorpus = `{
  "records": [
    {
      "id": 1,
      "question": "Qu'est-ce qu'une attestation de réussite?",
      "answer": "Un document officiel délivré par le secrétariat après validation du semestre.",
      "keywords": ["attestation", "réussite"],
      "category": "documents",
      "importance": "high",
      "citation": "Section 1",
      "related": [2]
    },
    {
      "id": 2,
      "question": "Quand a lieu la soutenance de mémoire?",
      "answer": "La soutenance a lieu en fin de semestre, selon le calendrier publié.",
      "keywords": ["soutenance", "mémoire"],
      "category": "scolarité",
      "importance": "medium",
      "citation": "Section 4",
      "related": [1]
    },
    {
      "id": 3,
      "question": "Quelle est la note minimale de passage?",
      "answer": "La note minimale de passage est fixée à dix sur vingt.",
      "keywords": ["note", "passage"],
      "category": "évaluation",
      "importance": "high",
      "citation": "Section 7"
    }
  ]
}`

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithProvider(mock.NewProvider())}, opts...)
	e, err := Open(context.Background(), writeCorpus(t, testCorpus), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpen(t *testing.T) {
	t.Run("answers from the corpus", func(t *testing.T) {
		e := openTestEngine(t)

		got := e.Ask(context.Background(), "attestation de reussite")
		require.True(t, got.Known)
		assert.Equal(t, core.RecordID(1), got.RecordID)
		assert.Equal(t, "Section 1", got.Citation)
	})

	t.Run("unknown for out-of-corpus questions", func(t *testing.T) {
		e := openTestEngine(t)

		got := e.Ask(context.Background(), "xqzt florp wibble")
		assert.False(t, got.Known)
	})

	t.Run("missing corpus file fails", func(t *testing.T) {
		_, err := Open(context.Background(),
			filepath.Join(t.TempDir(), "nope.json"),
			WithProvider(mock.NewProvider()))
		assert.Error(t, err)
	})

	t.Run("invalid corpus fails", func(t *testing.T) {
		path := writeCorpus(t, `{"records": [{"id": 1, "question": "q", "answer": "a", "importance": "high"}]}`)
		_, err := Open(context.Background(), path, WithProvider(mock.NewProvider()))
		assert.ErrorIs(t, err, core.ErrEmptyCitation)
	})
}

func TestOpenReusesArtifacts(t *testing.T) {
	ctx := context.Background()
	path := writeCorpus(t, testCorpus)
	artifactDir := filepath.Join(t.TempDir(), "artifacts")

	provider := mock.NewProvider()
	first, err := Open(ctx, path, WithProvider(provider), WithArtifactPath(artifactDir))
	require.NoError(t, err)
	fingerprint := first.Manifest().Fingerprint
	require.NoError(t, first.Close())

	embedsAfterBuild := provider.MockEmbedder.CallCount()
	require.Greater(t, embedsAfterBuild, 0)

	second, err := Open(ctx, path, WithProvider(provider), WithArtifactPath(artifactDir))
	require.NoError(t, err)
	defer second.Close()

	// Same corpus and model: the saved build is reused, nothing is
	// re-embedded.
	assert.Equal(t, embedsAfterBuild, provider.MockEmbedder.CallCount())
	assert.Equal(t, fingerprint, second.Manifest().Fingerprint)

	got := second.Ask(ctx, "quand a lieu la soutenance")
	require.True(t, got.Known)
	assert.GreaterOrEqual(t, provider.MockEmbedder.CallCount(), embedsAfterBuild)
}

func TestOpenRebuildsOnCorpusChange(t *testing.T) {
	ctx := context.Background()
	path := writeCorpus(t, testCorpus)

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)

	provider := mock.NewProvider()
	first, err := Open(ctx, path, WithProvider(provider), WithArtifactStore(store))
	require.NoError(t, err)
	firstPrint := first.Manifest().Fingerprint

	// Change the corpus on disk and rebuild through the same engine.
	require.NoError(t, os.WriteFile(path, []byte(extendedCorpus), 0644))
	require.NoError(t, first.Rebuild(ctx))

	assert.NotEqual(t, firstPrint, first.Manifest().Fingerprint)
	assert.Equal(t, 3, first.Manifest().RecordCount)

	got := first.Ask(ctx, "note minimale de passage")
	require.True(t, got.Known)
	assert.Equal(t, core.RecordID(3), got.RecordID)

	require.NoError(t, first.Close())
}

func TestEngineRelatedStubs(t *testing.T) {
	e := openTestEngine(t)

	got := e.Ask(context.Background(), "attestation de reussite")
	require.True(t, got.Known)
	require.Len(t, got.Related, 1)
	assert.Equal(t, core.RecordID(2), got.Related[0].ID)
}
