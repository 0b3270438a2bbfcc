package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirezi/inyishu/ai/mock"
	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
)

func searchCorpus() []*core.KnowledgeRecord {
	return []*core.KnowledgeRecord{
		{
			ID:         1,
			Question:   "Qu'est-ce qu'une attestation de réussite?",
			Answer:     "Un document officiel délivré par le secrétariat après validation du semestre.",
			Keywords:   []string{"attestation", "réussite", "document"},
			Category:   "documents",
			Importance: core.ImportanceHigh,
			Citation:   "Section 1",
			Related:    []core.RecordID{2},
		},
		{
			ID:         2,
			Question:   "Quand a lieu la soutenance de mémoire?",
			Answer:     "La soutenance a lieu en fin de semestre, selon le calendrier publié.",
			Keywords:   []string{"soutenance", "mémoire", "calendrier"},
			Category:   "scolarité",
			Importance: core.ImportanceMedium,
			Citation:   "Section 4",
			Related:    []core.RecordID{1},
		},
		{
			ID:         3,
			Question:   "Quelle est la note minimale de passage?",
			Answer:     "La note minimale de passage est fixée à dix sur vingt.",
			Keywords:   []string{"note", "passage"},
			Category:   "évaluation",
			Importance: core.ImportanceHigh,
			Citation:   "Section 7",
		},
	}
}

func buildSnapshot(t *testing.T, emb *mock.Embedder) *index.Snapshot {
	t.Helper()
	b, err := index.NewBuilder(emb, "bge-m3")
	require.NoError(t, err)
	snap, err := b.Build(context.Background(), searchCorpus())
	require.NoError(t, err)
	return snap
}

func newTestSearcher(t *testing.T, opts ...Option) (*Searcher, *mock.Embedder) {
	t.Helper()
	emb := mock.NewEmbedder()
	snap := buildSnapshot(t, emb)
	s, err := NewSearcher(snap, emb, opts...)
	require.NoError(t, err)
	return s, emb
}

func TestNewSearcher(t *testing.T) {
	t.Run("requires snapshot", func(t *testing.T) {
		_, err := NewSearcher(nil, mock.NewEmbedder())
		assert.ErrorIs(t, err, ErrSnapshotRequired)
	})

	t.Run("requires embedder", func(t *testing.T) {
		emb := mock.NewEmbedder()
		snap := buildSnapshot(t, emb)
		_, err := NewSearcher(snap, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})
}

func TestAskAccepted(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSearcher(t)

	t.Run("corpus question is answered verbatim with citation", func(t *testing.T) {
		got := s.Ask(ctx, "Comment obtenir une attestation de réussite ?")
		require.True(t, got.Known)
		assert.Equal(t, core.RecordID(1), got.RecordID)
		assert.Equal(t, "Un document officiel délivré par le secrétariat après validation du semestre.", got.Text)
		assert.Equal(t, "Section 1", got.Citation)
		assert.Equal(t, "documents", got.Category)
		assert.Equal(t, core.ImportanceHigh, got.Importance)
		assert.GreaterOrEqual(t, got.Confidence, DefaultThreshold)
		assert.Greater(t, got.Latency.Nanoseconds(), int64(0))
	})

	t.Run("accents in the query do not matter", func(t *testing.T) {
		with := s.Ask(ctx, "attestation de réussite")
		without := s.Ask(ctx, "ATTESTATION DE REUSSITE")
		require.True(t, with.Known)
		require.True(t, without.Known)
		assert.Equal(t, with.RecordID, without.RecordID)
	})

	t.Run("same question answers identically", func(t *testing.T) {
		first := s.Ask(ctx, "quand a lieu la soutenance de memoire")
		second := s.Ask(ctx, "quand a lieu la soutenance de memoire")
		require.True(t, first.Known)
		assert.Equal(t, first.RecordID, second.RecordID)
		assert.Equal(t, first.Text, second.Text)
		assert.Equal(t, first.Confidence, second.Confidence)
	})
}

func TestAskUnknown(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSearcher(t)

	t.Run("gibberish answers unknown", func(t *testing.T) {
		got := s.Ask(ctx, "xqzt florp wibble glonk")
		assert.False(t, got.Known)
		assert.Empty(t, got.Text)
		assert.Empty(t, got.Citation)
		assert.Zero(t, got.RecordID)
		assert.Less(t, got.Confidence, DefaultThreshold)
	})

	t.Run("empty query short-circuits", func(t *testing.T) {
		for _, q := range []string{"", "   ", "\t\n"} {
			got := s.Ask(ctx, q)
			assert.False(t, got.Known)
			assert.Zero(t, got.Confidence)
		}
	})
}

func TestAskRelatedStubs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSearcher(t)

	// Records 1 and 2 reference each other; stubs must stay one level
	// deep so the cycle never recurses.
	got := s.Ask(ctx, "attestation de reussite")
	require.True(t, got.Known)
	require.Len(t, got.Related, 1)
	assert.Equal(t, core.RecordID(2), got.Related[0].ID)
	assert.Equal(t, "Quand a lieu la soutenance de mémoire?", got.Related[0].Question)
}

func TestAskDegradedDense(t *testing.T) {
	ctx := context.Background()
	s, emb := newTestSearcher(t)

	emb.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding endpoint down")
	}

	// Sparse and fuzzy still agree on the record, and the degraded
	// method drops out of the confidence denominator.
	got := s.Ask(ctx, "attestation de reussite")
	require.True(t, got.Known)
	assert.Equal(t, core.RecordID(1), got.RecordID)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestAskInclusiveThreshold(t *testing.T) {
	ctx := context.Background()

	// Script the embedder so the query lands exactly on record 1's
	// vector: rank 1 in all three methods is the maximum fused score
	// and confidence exactly 1.
	rec := searchCorpus()[0]
	target := mock.DeterministicVector(core.Normalize(rec.SearchText()), mock.DefaultDimension)

	emb := mock.NewEmbedder()
	snap := buildSnapshot(t, emb)
	emb.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return target, nil
	}

	s, err := NewSearcher(snap, emb, WithThreshold(1.0))
	require.NoError(t, err)

	got := s.Ask(ctx, "attestation de reussite")
	require.True(t, got.Known, "confidence equal to the threshold must be accepted")
	assert.Equal(t, 1.0, got.Confidence)
}

func TestAskPolisher(t *testing.T) {
	ctx := context.Background()

	t.Run("polished text replaces the stored answer", func(t *testing.T) {
		p := mock.NewPolisher()
		p.PolishFunc = func(ctx context.Context, answer, citation string) (string, error) {
			return "Réponse reformulée.", nil
		}
		s, _ := newTestSearcher(t, WithPolisher(p))

		got := s.Ask(ctx, "attestation de reussite")
		require.True(t, got.Known)
		assert.Equal(t, "Réponse reformulée.", got.Text)
		// The snippet always quotes the stored answer.
		assert.Contains(t, got.Snippet, "document officiel")
	})

	t.Run("polish failure falls back to the stored answer", func(t *testing.T) {
		p := mock.NewPolisher()
		p.PolishFunc = func(ctx context.Context, answer, citation string) (string, error) {
			return "", errors.New("llm unavailable")
		}
		s, _ := newTestSearcher(t, WithPolisher(p))

		got := s.Ask(ctx, "attestation de reussite")
		require.True(t, got.Known)
		assert.Equal(t, "Un document officiel délivré par le secrétariat après validation du semestre.", got.Text)
	})
}

func TestSwap(t *testing.T) {
	ctx := context.Background()
	s, emb := newTestSearcher(t)

	before := s.Snapshot()
	require.NotNil(t, before)

	t.Run("nil snapshot rejected", func(t *testing.T) {
		assert.ErrorIs(t, s.Swap(nil), ErrSnapshotRequired)
		assert.Same(t, before, s.Snapshot())
	})

	t.Run("queries see the new snapshot", func(t *testing.T) {
		extended := append(searchCorpus(), &core.KnowledgeRecord{
			ID:         4,
			Question:   "Où déposer une demande de bourse?",
			Answer:     "Au service des bourses, avant la fin du mois d'octobre.",
			Keywords:   []string{"bourse", "demande"},
			Category:   "financement",
			Importance: core.ImportanceMedium,
			Citation:   "Section 9",
		})

		b, err := index.NewBuilder(emb, "bge-m3")
		require.NoError(t, err)
		next, err := b.Build(ctx, extended)
		require.NoError(t, err)
		require.NoError(t, s.Swap(next))

		got := s.Ask(ctx, "demande de bourse")
		require.True(t, got.Known)
		assert.Equal(t, core.RecordID(4), got.RecordID)
	})
}

// recordingMonitor captures the pipeline stages for assertions.
type recordingMonitor struct {
	started    string
	normalized string
	lists      []core.RankedList
	fused      []core.FusedResult
	accepted   bool
	confidence float64
	finished   *core.Answer
}

func (m *recordingMonitor) Start(q string)                   { m.started = q }
func (m *recordingMonitor) Normalized(q string)              { m.normalized = q }
func (m *recordingMonitor) MethodReturned(l core.RankedList) { m.lists = append(m.lists, l) }
func (m *recordingMonitor) Fused(f []core.FusedResult)       { m.fused = f }
func (m *recordingMonitor) GateDecision(a bool, c, _ float64) {
	m.accepted = a
	m.confidence = c
}
func (m *recordingMonitor) Finish(a *core.Answer) { m.finished = a }

func TestAskWithMonitor(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSearcher(t)

	mon := &recordingMonitor{}
	got := s.AskWithMonitor(ctx, "Attestation de Réussite", mon)

	assert.Equal(t, "Attestation de Réussite", mon.started)
	assert.Equal(t, "attestation de reussite", mon.normalized)
	assert.Len(t, mon.lists, 3)
	assert.NotEmpty(t, mon.fused)
	assert.True(t, mon.accepted)
	assert.Equal(t, got.Confidence, mon.confidence)
	assert.Same(t, got, mon.finished)
}
