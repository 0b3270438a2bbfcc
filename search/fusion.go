package search

import (
	"sort"

	"github.com/kirezi/inyishu/core"
)

// DefaultFusionK is the reciprocal rank fusion constant. Larger values
// flatten the difference between adjacent ranks.
const DefaultFusionK = 60

// fuse combines the ranked lists with reciprocal rank fusion: each
// candidate contributes 1/(k+rank) per list it appears in, absent
// means zero. Results are sorted by fused score descending, ties
// broken by ascending record id. Degraded lists are empty and
// contribute nothing.
func fuse(lists []core.RankedList, k int) []core.FusedResult {
	scores := make(map[core.RecordID]float64)
	methods := make(map[core.RecordID][]core.MethodName)

	for _, list := range lists {
		for _, c := range list.Candidates {
			scores[c.ID] += 1.0 / float64(k+c.Rank)
			methods[c.ID] = append(methods[c.ID], list.Method)
		}
	}

	fused := make([]core.FusedResult, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, core.FusedResult{
			ID:      id,
			Score:   score,
			Methods: methods[id],
		})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ID < fused[j].ID
	})
	return fused
}

// confidence normalizes a fused score against the maximum achievable:
// rank 1 in every one of the m live methods, m/(k+1). Degraded methods
// are excluded from m so an outage does not depress confidence for
// answers the remaining methods agree on. Zero live methods means zero
// confidence.
func confidence(fusedScore float64, m, k int) float64 {
	if m <= 0 {
		return 0
	}
	max := float64(m) / float64(k+1)
	c := fusedScore / max
	if c > 1 {
		c = 1
	}
	return c
}
