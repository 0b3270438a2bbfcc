// Copyright 2026 Kirezi Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package index

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/panjf2000/ants/v2"

	"github.com/kirezi/inyishu/ai"
	"github.com/kirezi/inyishu/core"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Builder produces immutable snapshots from a validated corpus.
type Builder struct {
	embedder   ai.Embedder
	model      string
	poolSize   int
	k1, b      float64
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithPoolSize sets the worker pool size for parallel embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) BuilderOption {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
		return nil
	}
}

// WithBM25Params sets the BM25 k1 and b tuning parameters.
func WithBM25Params(k1, bParam float64) BuilderOption {
	return func(b *Builder) error {
		b.k1 = k1
		b.b = bParam
		return nil
	}
}

// WithRetry configures embedding retry behavior.
func WithRetry(maxAttempts int, baseDelay time.Duration) BuilderOption {
	return func(b *Builder) error {
		if maxAttempts <= 0 {
			return ai.ErrInvalidMaxAttempts
		}
		b.maxRetries = maxAttempts
		b.retryDelay = baseDelay
		return nil
	}
}

// WithBuilderLogger sets a custom logger.
// Default is slog.Default().
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a builder that embeds with the given embedder and
// tags snapshots with the given embedding model identifier.
func NewBuilder(embedder ai.Embedder, model string, opts ...BuilderOption) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	b := &Builder{
		embedder:   embedder,
		model:      model,
		poolSize:   poolSize,
		k1:         DefaultBM25K1,
		b:          DefaultBM25B,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Build validates the corpus and produces a complete snapshot, or an
// error and nothing. Rerunning Build on the same corpus and model
// yields a snapshot with the same fingerprint. Embeddings are computed
// concurrently; any single failure (after retries) aborts the whole
// build.
func (b *Builder) Build(ctx context.Context, records []*core.KnowledgeRecord) (*Snapshot, error) {
	started := time.Now()

	if err := core.ValidateCorpus(records); err != nil {
		return nil, err
	}

	sorted := make([]*core.KnowledgeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	normTexts := make([]string, len(sorted))
	for i, r := range sorted {
		normTexts[i] = core.Normalize(r.SearchText())
	}

	vectors, err := b.embedAll(ctx, sorted, normTexts)
	if err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: record %d", ErrEmptyEmbedding, sorted[0].ID)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: record %d has dimension %d, expected %d",
				ErrDimensionMismatch, sorted[i].ID, len(v), dim)
		}
		vectors[i] = UnitVector(v)
	}

	sparse := NewSparseIndex(b.k1, b.b)
	dense := &DenseIndex{
		Model:   b.model,
		Dim:     dim,
		IDs:     make([]core.RecordID, len(sorted)),
		Vectors: vectors,
	}
	fuzzy := &FuzzyIndex{
		IDs:   make([]core.RecordID, len(sorted)),
		Texts: normTexts,
	}
	for i, r := range sorted {
		sparse.Add(r.ID, core.Tokenize(r.SearchText()))
		dense.IDs[i] = r.ID
		fuzzy.IDs[i] = r.ID
	}

	manifest := Manifest{
		EmbeddingModel: b.model,
		Dimension:      dim,
		RecordCount:    len(sorted),
		Fingerprint:    fingerprint(sorted, normTexts),
		// Microsecond precision so the value survives artifact storage.
		BuiltAt:        time.Now().UTC().Truncate(time.Microsecond),
		BM25K1:         sparse.K1,
		BM25B:          sparse.B,
	}

	snap, err := NewSnapshot(sorted, sparse, dense, fuzzy, manifest)
	if err != nil {
		return nil, err
	}

	b.logger.Info("index build complete",
		"records", len(sorted),
		"dimension", dim,
		"model", b.model,
		"fingerprint", manifest.Fingerprint,
		"elapsed", time.Since(started))
	return snap, nil
}

// embedAll computes one embedding per record through the worker pool.
// Records are independent, so order of completion does not matter;
// results land in their slot by index.
func (b *Builder) embedAll(ctx context.Context, records []*core.KnowledgeRecord, normTexts []string) ([][]float32, error) {
	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	vectors := make([][]float32, len(records))
	errs := make([]error, len(records))

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			errs[i] = ai.RetryWithBackoff(ctx, func() error {
				v, embedErr := b.embedder.EmbedText(ctx, normTexts[i])
				if embedErr != nil {
					return embedErr
				}
				vectors[i] = v
				return nil
			}, b.maxRetries, b.retryDelay)
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, embedErr := range errs {
		if embedErr != nil {
			return nil, fmt.Errorf("embedding record %d: %w", records[i].ID, embedErr)
		}
	}
	return vectors, nil
}

// Fingerprint computes the corpus fingerprint the builder stores in
// the manifest, without embedding anything. Comparing it against a
// saved manifest tells whether the corpus changed since that build.
func Fingerprint(records []*core.KnowledgeRecord) string {
	sorted := make([]*core.KnowledgeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	normTexts := make([]string, len(sorted))
	for i, r := range sorted {
		normTexts[i] = core.Normalize(r.SearchText())
	}
	return fingerprint(sorted, normTexts)
}

// fingerprint hashes the normalized corpus content. It is stable
// across rebuilds of the same corpus and independent of embedding
// output, so it identifies the corpus snapshot itself.
func fingerprint(records []*core.KnowledgeRecord, normTexts []string) string {
	h, _ := blake2b.New(16, nil)
	for i, r := range records {
		h.Write([]byte(strconv.FormatInt(int64(r.ID), 10)))
		h.Write([]byte{0})
		h.Write([]byte(normTexts[i]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
