package index

import (
	"math"

	"github.com/kirezi/inyishu/core"
)

// Default BM25 parameters, the usual Okapi values.
const (
	DefaultBM25K1 = 1.5
	DefaultBM25B  = 0.75
)

// Posting is one row of a term's postings list.
type Posting struct {
	ID core.RecordID
	TF int
}

// SparseIndex is a BM25 inverted index over normalized, whitespace
// tokenized record text. Fields are exported for persistence; the
// index is read-only once built.
type SparseIndex struct {
	K1       float64
	B        float64
	Postings map[string][]Posting
	DocLen   map[core.RecordID]int
}

// NewSparseIndex creates an empty BM25 index with the given parameters.
// Non-positive k1 or negative b fall back to the defaults.
func NewSparseIndex(k1, b float64) *SparseIndex {
	if k1 <= 0 {
		k1 = DefaultBM25K1
	}
	if b < 0 || b > 1 {
		b = DefaultBM25B
	}
	return &SparseIndex{
		K1:       k1,
		B:        b,
		Postings: make(map[string][]Posting),
		DocLen:   make(map[core.RecordID]int),
	}
}

// Add indexes one record's tokens. Build-time only; the builder adds
// records in ascending id order so postings lists stay id-sorted.
func (idx *SparseIndex) Add(id core.RecordID, tokens []string) {
	idx.DocLen[id] = len(tokens)

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	for tok := range tf {
		idx.Postings[tok] = append(idx.Postings[tok], Posting{ID: id, TF: tf[tok]})
	}
}

// Search scores the query tokens with classic BM25 and returns the
// top-k candidates. Records sharing no token with the query never
// appear. A repeated query token contributes once per occurrence.
func (idx *SparseIndex) Search(tokens []string, k int) []core.Candidate {
	if len(tokens) == 0 || len(idx.DocLen) == 0 {
		return nil
	}

	n := float64(len(idx.DocLen))
	avg := idx.avgDocLen()

	scores := make(map[core.RecordID]float64)
	for _, tok := range tokens {
		postings := idx.Postings[tok]
		if len(postings) == 0 {
			continue
		}
		df := float64(len(postings))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for _, p := range postings {
			tf := float64(p.TF)
			dl := float64(idx.DocLen[p.ID])
			denom := tf + idx.K1*(1-idx.B+idx.B*dl/avg)
			scores[p.ID] += idf * tf * (idx.K1 + 1) / denom
		}
	}

	return rankCandidates(scores, k)
}

func (idx *SparseIndex) avgDocLen() float64 {
	if len(idx.DocLen) == 0 {
		return 0
	}
	var total int
	for _, l := range idx.DocLen {
		total += l
	}
	return float64(total) / float64(len(idx.DocLen))
}
