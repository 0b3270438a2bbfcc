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


package search

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kirezi/inyishu/ai"
	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
)

// Defaults for the tunable query parameters.
const (
	DefaultTopK           = 20
	DefaultThreshold      = 0.35
	DefaultMaxRelated     = 3
	DefaultMaxSuggestions = 2
	DefaultQueryTimeout   = 10 * time.Second
	DefaultPolishTimeout  = 8 * time.Second
)

// Searcher answers questions against the current index snapshot.
// It is safe for concurrent use; Swap installs a new snapshot without
// interrupting in-flight queries.
type Searcher struct {
	snapshot atomic.Pointer[index.Snapshot]
	embedder ai.Embedder
	polisher ai.Polisher

	topK           int
	fusionK        int
	threshold      float64
	minSimilarity  float64
	minFuzzyRatio  float64
	maxRelated     int
	maxSuggestions int
	queryTimeout   time.Duration
	polishTimeout  time.Duration

	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithPolisher sets the answer polisher.
// Default is the no-op polisher.
func WithPolisher(p ai.Polisher) Option {
	return func(s *Searcher) error {
		if p == nil {
			p = ai.NopPolisher{}
		}
		s.polisher = p
		return nil
	}
}

// WithTopK sets how many candidates each retrieval method returns.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k > 0 {
			s.topK = k
		}
		return nil
	}
}

// WithFusionK sets the reciprocal rank fusion constant.
func WithFusionK(k int) Option {
	return func(s *Searcher) error {
		if k > 0 {
			s.fusionK = k
		}
		return nil
	}
}

// WithThreshold sets the confidence gate threshold. A fused top hit at
// or above the threshold is accepted; anything below answers Unknown.
func WithThreshold(t float64) Option {
	return func(s *Searcher) error {
		if t >= 0 && t <= 1 {
			s.threshold = t
		}
		return nil
	}
}

// WithMinSimilarity sets the cosine floor for dense candidates.
func WithMinSimilarity(m float64) Option {
	return func(s *Searcher) error {
		s.minSimilarity = m
		return nil
	}
}

// WithMinFuzzyRatio sets the string-similarity floor for fuzzy candidates.
func WithMinFuzzyRatio(m float64) Option {
	return func(s *Searcher) error {
		s.minFuzzyRatio = m
		return nil
	}
}

// WithMaxRelated caps the related stubs on an accepted answer.
func WithMaxRelated(n int) Option {
	return func(s *Searcher) error {
		if n >= 0 {
			s.maxRelated = n
		}
		return nil
	}
}

// WithMaxSuggestions caps the runner-up suggestions on an accepted answer.
func WithMaxSuggestions(n int) Option {
	return func(s *Searcher) error {
		if n >= 0 {
			s.maxSuggestions = n
		}
		return nil
	}
}

// WithQueryTimeout bounds the whole retrieval phase of one query.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d > 0 {
			s.queryTimeout = d
		}
		return nil
	}
}

// WithPolishTimeout bounds the optional polish call.
func WithPolishTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d > 0 {
			s.polishTimeout = d
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a searcher over the given snapshot. The embedder
// must be the one the snapshot was built with; a different model makes
// query and record vectors incomparable.
func NewSearcher(snap *index.Snapshot, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if snap == nil {
		return nil, ErrSnapshotRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		embedder:       embedder,
		polisher:       ai.NopPolisher{},
		topK:           DefaultTopK,
		fusionK:        DefaultFusionK,
		threshold:      DefaultThreshold,
		minSimilarity:  index.DefaultMinSimilarity,
		minFuzzyRatio:  index.DefaultMinFuzzyRatio,
		maxRelated:     DefaultMaxRelated,
		maxSuggestions: DefaultMaxSuggestions,
		queryTimeout:   DefaultQueryTimeout,
		polishTimeout:  DefaultPolishTimeout,
		logger:         slog.Default(),
	}
	s.snapshot.Store(snap)

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Ask answers one question. The result is always non-nil: either an
// accepted answer quoting a corpus record, or Unknown. Ask never
// returns an error; anything that goes wrong inside degrades to
// Unknown.
func (s *Searcher) Ask(ctx context.Context, question string) *core.Answer {
	return s.AskWithMonitor(ctx, question, nil)
}

// AskWithMonitor answers one question with stage callbacks.
// The monitor receives each retrieval list, the fused ranking and the
// gate decision; pass nil for no monitoring.
func (s *Searcher) AskWithMonitor(ctx context.Context, question string, monitor Monitor) *core.Answer {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	started := time.Now()
	monitor.Start(question)

	normQuery := core.Normalize(question)
	monitor.Normalized(normQuery)
	if normQuery == "" {
		answer := core.UnknownAnswer(0, time.Since(started))
		monitor.GateDecision(false, 0, s.threshold)
		monitor.Finish(answer)
		return answer
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	snap := s.snapshot.Load()
	lists := s.retrieve(ctx, snap, normQuery)

	live := 0
	for _, list := range lists {
		monitor.MethodReturned(list)
		if !list.Degraded {
			live++
		}
	}

	fused := fuse(lists, s.fusionK)
	monitor.Fused(fused)

	if len(fused) == 0 || live == 0 {
		answer := core.UnknownAnswer(0, time.Since(started))
		monitor.GateDecision(false, 0, s.threshold)
		monitor.Finish(answer)
		return answer
	}

	conf := confidence(fused[0].Score, live, s.fusionK)
	accepted := conf >= s.threshold
	monitor.GateDecision(accepted, conf, s.threshold)

	if !accepted {
		s.logger.Debug("query below confidence threshold",
			"confidence", conf, "threshold", s.threshold, "top", fused[0].ID)
		answer := core.UnknownAnswer(conf, time.Since(started))
		monitor.Finish(answer)
		return answer
	}

	answer := s.assemble(ctx, snap, fused, conf, started)
	monitor.Finish(answer)
	return answer
}

// Swap installs a new snapshot for subsequent queries. In-flight
// queries keep reading the snapshot they started with.
func (s *Searcher) Swap(snap *index.Snapshot) error {
	if snap == nil {
		return ErrSnapshotRequired
	}
	s.snapshot.Store(snap)
	return nil
}

// Snapshot returns the snapshot currently serving queries.
func (s *Searcher) Snapshot() *index.Snapshot {
	return s.snapshot.Load()
}
