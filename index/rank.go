package index

import (
	"sort"

	"github.com/kirezi/inyishu/core"
)

// rankCandidates turns per-record scores into a ranked candidate list:
// positive scores only, sorted by score descending with ties broken by
// ascending record id, truncated to k, 1-based ranks assigned. Every
// retrieval method ranks through this one function so tie-breaking is
// identical everywhere.
func rankCandidates(scores map[core.RecordID]float64, k int) []core.Candidate {
	if len(scores) == 0 || k <= 0 {
		return nil
	}

	candidates := make([]core.Candidate, 0, len(scores))
	for id, score := range scores {
		if score <= 0 {
			continue
		}
		candidates = append(candidates, core.Candidate{ID: id, Score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}
