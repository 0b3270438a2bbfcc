package search

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
)

// retrieve dispatches the three retrieval methods concurrently against
// one snapshot and joins on all of them. A method that fails or whose
// context ends marks its list degraded instead of surfacing an error;
// degraded lists are empty and skew nothing downstream.
func (s *Searcher) retrieve(ctx context.Context, snap *index.Snapshot, normQuery string) []core.RankedList {
	lists := make([]core.RankedList, 3)

	var g errgroup.Group

	g.Go(func() error {
		tokens := strings.Fields(normQuery)
		lists[0] = core.RankedList{
			Method:     core.MethodSparse,
			Candidates: snap.Sparse().Search(tokens, s.topK),
		}
		return nil
	})

	g.Go(func() error {
		lists[1] = s.denseSearch(ctx, snap, normQuery)
		return nil
	})

	g.Go(func() error {
		lists[2] = core.RankedList{
			Method:     core.MethodFuzzy,
			Candidates: snap.Fuzzy().Search(normQuery, s.minFuzzyRatio, s.topK),
		}
		return nil
	})

	// No goroutine returns an error; Wait is only the join point.
	_ = g.Wait()

	return lists
}

// denseSearch embeds the query and scans the dense index. Embedding is
// the only retrieval step that leaves the process, so it is the one
// that can time out or fail; either way the method degrades.
func (s *Searcher) denseSearch(ctx context.Context, snap *index.Snapshot, normQuery string) core.RankedList {
	degraded := core.RankedList{Method: core.MethodDense, Degraded: true}

	vec, err := s.embedder.EmbedText(ctx, normQuery)
	if err != nil {
		s.logger.Warn("dense retrieval degraded", "err", err)
		return degraded
	}

	candidates, err := snap.Dense().Search(index.UnitVector(vec), s.minSimilarity, s.topK)
	if err != nil {
		s.logger.Warn("dense retrieval degraded", "err", err)
		return degraded
	}

	return core.RankedList{Method: core.MethodDense, Candidates: candidates}
}
