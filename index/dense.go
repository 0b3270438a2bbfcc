package index

import (
	"math"

	"github.com/kirezi/inyishu/core"
)

// DefaultMinSimilarity is the cosine floor below which a record is not
// considered a dense candidate. Calibrated for multilingual sentence
// embeddings; tune per model.
const DefaultMinSimilarity = 0.50

// DenseIndex holds unit-norm embedding vectors for exact top-K cosine
// search. IDs and Vectors are parallel and id-sorted. An exact scan is
// fine at corpus scale (hundreds to low thousands of records); swap in
// an approximate structure before the corpus outgrows that.
type DenseIndex struct {
	Model   string
	Dim     int
	IDs     []core.RecordID
	Vectors [][]float32
}

// Search returns the top-k records by cosine similarity to the query
// vector, which must be unit-norm and of the index dimension.
// Similarities below minSimilarity are ignored. Returns
// ErrDimensionMismatch when the query vector does not match the
// dimension the index was built with, so a changed embedding model
// degrades loudly instead of producing garbage rankings.
func (idx *DenseIndex) Search(query []float32, minSimilarity float64, k int) ([]core.Candidate, error) {
	if len(idx.IDs) == 0 {
		return nil, nil
	}
	if len(query) != idx.Dim {
		return nil, ErrDimensionMismatch
	}

	scores := make(map[core.RecordID]float64, len(idx.IDs))
	for i, id := range idx.IDs {
		sim := float64(dotProduct(query, idx.Vectors[i]))
		if sim >= minSimilarity {
			scores[id] = sim
		}
	}

	return rankCandidates(scores, k), nil
}

// UnitVector L2-normalizes v in a copy. A zero vector is returned
// unchanged.
func UnitVector(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sumSq == 0 {
		copy(out, v)
		return out
	}
	n := float32(math.Sqrt(sumSq))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// dotProduct is cosine similarity for unit-norm vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
