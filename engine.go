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


// Package inyishu answers questions from a closed corpus of curated
// question/answer records. Every answer quotes a corpus record and its
// citation; when no record clears the confidence gate the engine says
// so explicitly instead of guessing.
package inyishu

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kirezi/inyishu/ai"
	"github.com/kirezi/inyishu/ai/openai"
	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/corpus"
	"github.com/kirezi/inyishu/index"
	"github.com/kirezi/inyishu/search"
	"github.com/kirezi/inyishu/storage"
	badgerstore "github.com/kirezi/inyishu/storage/badger"
)

// Engine ties the corpus, the index, optional artifact persistence and
// the searcher together behind one handle.
type Engine struct {
	corpusPath string
	provider   ai.Provider
	builder    *index.Builder
	store      storage.ArtifactStore
	searcher   *search.Searcher
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	storePath   string
	store       storage.ArtifactStore
	searchOpts  []search.Option
	builderOpts []index.BuilderOption
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider injects an AI provider, bypassing the OpenAI-compatible
// default. The engine takes ownership and closes it.
func WithProvider(p ai.Provider) Option {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithArtifactPath enables artifact persistence at the given
// directory: builds are saved there and reloaded on later opens,
// skipping re-embedding when the corpus has not changed.
func WithArtifactPath(path string) Option {
	return func(o *engineOptions) {
		o.storePath = path
	}
}

// WithArtifactStore injects an artifact store. The engine takes
// ownership and closes it.
func WithArtifactStore(store storage.ArtifactStore) Option {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithSearchOptions passes options through to the searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *engineOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// WithBuildOptions passes options through to the index builder.
func WithBuildOptions(opts ...index.BuilderOption) Option {
	return func(o *engineOptions) {
		o.builderOpts = append(o.builderOpts, opts...)
	}
}

// Open loads the corpus at corpusPath and prepares the engine: an AI
// provider, an index snapshot (loaded from saved artifacts when they
// match the corpus and model, built otherwise) and a searcher over it.
func Open(ctx context.Context, corpusPath string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	records, err := corpus.Load(corpusPath)
	if err != nil {
		provider.Close()
		return nil, err
	}

	builder, err := index.NewBuilder(provider.Embedder(), options.aiConfig.EmbeddingModel, options.builderOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	store := options.store
	if store == nil && options.storePath != "" {
		backend, err := badgerstore.OpenBackend(options.storePath, false)
		if err != nil {
			provider.Close()
			return nil, err
		}
		store, err = badgerstore.NewSnapshotStore(backend)
		if err != nil {
			backend.Close()
			provider.Close()
			return nil, err
		}
	}

	e := &Engine{
		corpusPath: corpusPath,
		provider:   provider,
		builder:    builder,
		store:      store,
		logger:     slog.Default().With("component", "engine"),
	}

	snap, err := e.loadOrBuild(ctx, records, options.aiConfig.EmbeddingModel)
	if err != nil {
		e.closeQuietly()
		return nil, err
	}

	searchOpts := append(
		[]search.Option{search.WithPolisher(provider.Polisher())},
		options.searchOpts...)
	searcher, err := search.NewSearcher(snap, provider.Embedder(), searchOpts...)
	if err != nil {
		e.closeQuietly()
		return nil, err
	}
	e.searcher = searcher

	return e, nil
}

// loadOrBuild returns a snapshot for the given corpus: the saved one
// when it matches the corpus fingerprint and embedding model, a fresh
// build otherwise. Fresh builds are saved when a store is configured.
func (e *Engine) loadOrBuild(ctx context.Context, records []*core.KnowledgeRecord, model string) (*index.Snapshot, error) {
	if e.store != nil {
		snap, err := e.store.Load(ctx, model)
		switch {
		case err == nil:
			if snap.Manifest().Fingerprint == index.Fingerprint(records) {
				return snap, nil
			}
			e.logger.Info("corpus changed since last build, rebuilding")
		case errors.Is(err, storage.ErrNoArtifacts):
			e.logger.Info("no saved artifacts, building")
		case errors.Is(err, storage.ErrStaleArtifacts),
			errors.Is(err, storage.ErrCorruptArtifact):
			e.logger.Warn("saved artifacts unusable, rebuilding", "err", err)
		default:
			return nil, err
		}
	}

	snap, err := e.builder.Build(ctx, records)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.store.Save(ctx, snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Ask answers one question. The result is always non-nil: an accepted
// answer quoting a corpus record, or an explicit Unknown.
func (e *Engine) Ask(ctx context.Context, question string) *core.Answer {
	return e.searcher.Ask(ctx, question)
}

// AskWithMonitor answers one question with stage callbacks.
func (e *Engine) AskWithMonitor(ctx context.Context, question string, monitor search.Monitor) *core.Answer {
	return e.searcher.AskWithMonitor(ctx, question, monitor)
}

// Rebuild reloads the corpus file, builds a fresh snapshot and swaps
// it in. In-flight queries finish on the snapshot they started with.
func (e *Engine) Rebuild(ctx context.Context) error {
	records, err := corpus.Load(e.corpusPath)
	if err != nil {
		return err
	}

	snap, err := e.builder.Build(ctx, records)
	if err != nil {
		return err
	}

	if e.store != nil {
		if err := e.store.Save(ctx, snap); err != nil {
			return err
		}
	}

	return e.searcher.Swap(snap)
}

// Manifest returns the manifest of the snapshot serving queries.
func (e *Engine) Manifest() index.Manifest {
	return e.searcher.Snapshot().Manifest()
}

// Searcher exposes the underlying searcher for callers that tune
// per-query behavior.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// Close releases the provider and the artifact store.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing artifact store", "err", err)
			return err
		}
	}
	return nil
}

func (e *Engine) closeQuietly() {
	if err := e.Close(); err != nil {
		e.logger.Debug("error during cleanup", "err", err)
	}
}
