package index

import (
	"fmt"
	"sort"
	"time"

	"github.com/kirezi/inyishu/core"
)

// Manifest describes how a snapshot was built. It travels with
// persisted artifacts so a stale or mismatched embedding model is
// detected as such instead of silently corrupting similarity
// comparisons.
type Manifest struct {
	EmbeddingModel string
	Dimension      int
	RecordCount    int
	Fingerprint    string
	BuiltAt        time.Time
	BM25K1         float64
	BM25B          float64
}

// Snapshot is one immutable build of the corpus and its three indexes.
// It is safe for unlimited concurrent readers; a rebuild produces a
// fresh Snapshot and the old one keeps serving in-flight queries until
// nothing references it.
type Snapshot struct {
	records  map[core.RecordID]*core.KnowledgeRecord
	ordered  []*core.KnowledgeRecord
	sparse   *SparseIndex
	dense    *DenseIndex
	fuzzy    *FuzzyIndex
	manifest Manifest
}

// NewSnapshot assembles a snapshot from its parts, checking that they
// agree on the record set. Used by the builder and by artifact loading.
func NewSnapshot(records []*core.KnowledgeRecord, sparse *SparseIndex, dense *DenseIndex, fuzzy *FuzzyIndex, manifest Manifest) (*Snapshot, error) {
	if sparse == nil || dense == nil || fuzzy == nil {
		return nil, fmt.Errorf("%w: missing index", ErrSnapshotIncomplete)
	}
	if len(records) != len(dense.IDs) || len(records) != len(fuzzy.IDs) || len(records) != len(sparse.DocLen) {
		return nil, fmt.Errorf("%w: %d records, %d dense, %d fuzzy, %d sparse",
			ErrSnapshotIncomplete, len(records), len(dense.IDs), len(fuzzy.IDs), len(sparse.DocLen))
	}

	byID := make(map[core.RecordID]*core.KnowledgeRecord, len(records))
	ordered := make([]*core.KnowledgeRecord, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	for _, r := range ordered {
		byID[r.ID] = r
	}

	manifest.RecordCount = len(records)
	manifest.Dimension = dense.Dim
	manifest.EmbeddingModel = dense.Model

	return &Snapshot{
		records:  byID,
		ordered:  ordered,
		sparse:   sparse,
		dense:    dense,
		fuzzy:    fuzzy,
		manifest: manifest,
	}, nil
}

// Record looks up a record by id.
func (s *Snapshot) Record(id core.RecordID) (*core.KnowledgeRecord, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Records returns all records in ascending id order. Callers must not
// mutate them.
func (s *Snapshot) Records() []*core.KnowledgeRecord {
	return s.ordered
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.ordered)
}

// Sparse returns the BM25 index.
func (s *Snapshot) Sparse() *SparseIndex {
	return s.sparse
}

// Dense returns the embedding index.
func (s *Snapshot) Dense() *DenseIndex {
	return s.dense
}

// Fuzzy returns the string-similarity table.
func (s *Snapshot) Fuzzy() *FuzzyIndex {
	return s.fuzzy
}

// Manifest returns the build manifest.
func (s *Snapshot) Manifest() Manifest {
	return s.manifest
}
