package search

import (
	"context"
	"strings"
	"time"

	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
)

// snippetWords is how many words of the stored answer the snippet keeps.
const snippetWords = 40

// assemble builds the accepted answer for the top fused record:
// verbatim answer text (optionally polished), snippet, citation,
// one-level related stubs and runner-up suggestions.
func (s *Searcher) assemble(ctx context.Context, snap *index.Snapshot, fused []core.FusedResult, conf float64, started time.Time) *core.Answer {
	top := fused[0]
	rec, ok := snap.Record(top.ID)
	if !ok {
		// A fused id always comes from the same snapshot's indexes, so
		// a miss here means a snapshot assembly bug. Degrade anyway.
		s.logger.Error("fused record missing from snapshot", "id", top.ID)
		return core.UnknownAnswer(conf, time.Since(started))
	}

	return &core.Answer{
		Known:       true,
		RecordID:    rec.ID,
		Text:        s.polish(ctx, rec.Answer, rec.Citation),
		Snippet:     snippet(rec.Answer, snippetWords),
		Citation:    rec.Citation,
		Category:    rec.Category,
		Importance:  rec.Importance,
		Related:     relatedStubs(snap, rec, s.maxRelated),
		Suggestions: suggestions(snap, fused[1:], s.maxSuggestions),
		Confidence:  conf,
		Latency:     time.Since(started),
	}
}

// polish runs the optional stylistic rewrite under its own deadline.
// Any failure, including timeout, falls back to the stored answer; the
// polisher can never change what the engine asserts, only how it reads.
func (s *Searcher) polish(ctx context.Context, answer, citation string) string {
	pctx, cancel := context.WithTimeout(ctx, s.polishTimeout)
	defer cancel()

	polished, err := s.polisher.Polish(pctx, answer, citation)
	if err != nil {
		s.logger.Warn("polish failed, returning stored answer", "err", err)
		return answer
	}
	if strings.TrimSpace(polished) == "" {
		return answer
	}
	return polished
}

// relatedStubs resolves the record's related ids to id+question stubs.
// One level only: related records' own links are not followed, so
// cyclic references in the corpus terminate here.
func relatedStubs(snap *index.Snapshot, rec *core.KnowledgeRecord, max int) []core.RelatedStub {
	if max <= 0 || len(rec.Related) == 0 {
		return nil
	}

	stubs := make([]core.RelatedStub, 0, min(len(rec.Related), max))
	for _, id := range rec.Related {
		if len(stubs) == max {
			break
		}
		related, ok := snap.Record(id)
		if !ok {
			// Corpus validation rejects dangling related ids at build
			// time, so this cannot happen for a built snapshot.
			continue
		}
		stubs = append(stubs, core.RelatedStub{ID: related.ID, Question: related.Question})
	}
	return stubs
}

// suggestions turns the fused runners-up into stubs the caller can
// offer as "did you mean" follow-ups.
func suggestions(snap *index.Snapshot, runnersUp []core.FusedResult, max int) []core.RelatedStub {
	if max <= 0 || len(runnersUp) == 0 {
		return nil
	}

	stubs := make([]core.RelatedStub, 0, min(len(runnersUp), max))
	for _, fr := range runnersUp {
		if len(stubs) == max {
			break
		}
		rec, ok := snap.Record(fr.ID)
		if !ok {
			continue
		}
		stubs = append(stubs, core.RelatedStub{ID: rec.ID, Question: rec.Question})
	}
	return stubs
}

// snippet returns the first maxWords words of text, with an ellipsis
// when the text is longer.
func snippet(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
