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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
	"github.com/kirezi/inyishu/storage"
)

// SnapshotStore implements storage.ArtifactStore on BadgerDB.
//
// Each Save writes its rows under a fresh generation prefix and flips
// the manifest to that generation last, in its own transaction. A Save
// that dies partway leaves orphan rows under an unreferenced
// generation and the previous build fully loadable; the orphans are
// swept on the next successful Save.
type SnapshotStore struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ArtifactStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates an artifact store over the given backend.
// Closing the store closes the backend.
func NewSnapshotStore(backend *Backend) (*SnapshotStore, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &SnapshotStore{
		backend: backend,
		logger:  slog.Default().With("component", "artifact-store"),
	}, nil
}

// Close closes the underlying backend.
func (s *SnapshotStore) Close() error {
	return s.backend.Close()
}

// Save persists the snapshot under the next generation, then flips the
// manifest and sweeps the previous generation's rows.
func (s *SnapshotStore) Save(ctx context.Context, snap *index.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	previous, err := s.readManifestRow()
	generation := uint64(1)
	switch {
	case err == nil:
		generation = previous.Generation + 1
	case errors.Is(err, storage.ErrNoArtifacts):
		previous = storage.ManifestRow{}
	default:
		return err
	}

	dense := snap.Dense()
	wb := s.backend.NewWriteBatch()
	defer wb.Cancel()
	for i, rec := range snap.Records() {
		row := storage.ArtifactRow{Record: rec, Vector: dense.Vectors[i]}
		if err := wb.Set(makeArtifactRowKey(generation, rec.ID), storage.MarshalArtifactRow(row)); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	// The manifest flip is the commit point: readers see either the
	// previous complete build or this one, never a mix.
	manifestBytes := storage.MarshalManifestRow(storage.ManifestRow{
		Generation: generation,
		Manifest:   snap.Manifest(),
	})
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(manifestKey), manifestBytes); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	if previous.Generation > 0 {
		if err := s.backend.DropPrefix(makeGenerationPrefix(previous.Generation)); err != nil {
			// Orphan rows cost disk, not correctness.
			s.logger.Warn("failed to sweep previous artifact generation",
				"generation", previous.Generation, "err", err)
		}
	}

	s.logger.Info("artifacts saved",
		"generation", generation,
		"records", snap.Len(),
		"fingerprint", snap.Manifest().Fingerprint)
	return nil
}

// Load reconstructs the saved snapshot. The embeddings are read back;
// the sparse and fuzzy indexes are recomputed from the stored records,
// which is deterministic and needs no model.
func (s *SnapshotStore) Load(ctx context.Context, model string) (*index.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row, err := s.readManifestRow()
	if err != nil {
		return nil, err
	}
	manifest := row.Manifest

	if model != "" && manifest.EmbeddingModel != model {
		return nil, fmt.Errorf("%w: stored %q, configured %q",
			storage.ErrStaleArtifacts, manifest.EmbeddingModel, model)
	}

	var records []*core.KnowledgeRecord
	var vectors [][]float32
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeGenerationPrefix(row.Generation)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				artifact, err := storage.UnmarshalArtifactRow(val)
				if err != nil {
					return err
				}
				records = append(records, artifact.Record)
				vectors = append(vectors, artifact.Vector)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if len(records) != manifest.RecordCount {
		return nil, fmt.Errorf("%w: manifest says %d records, found %d",
			storage.ErrCorruptArtifact, manifest.RecordCount, len(records))
	}

	sparse := index.NewSparseIndex(manifest.BM25K1, manifest.BM25B)
	dense := &index.DenseIndex{
		Model:   manifest.EmbeddingModel,
		Dim:     manifest.Dimension,
		IDs:     make([]core.RecordID, len(records)),
		Vectors: vectors,
	}
	fuzzy := &index.FuzzyIndex{
		IDs:   make([]core.RecordID, len(records)),
		Texts: make([]string, len(records)),
	}
	for i, rec := range records {
		sparse.Add(rec.ID, core.Tokenize(rec.SearchText()))
		dense.IDs[i] = rec.ID
		fuzzy.IDs[i] = rec.ID
		fuzzy.Texts[i] = core.Normalize(rec.SearchText())
	}

	snap, err := index.NewSnapshot(records, sparse, dense, fuzzy, manifest)
	if err != nil {
		return nil, err
	}

	s.logger.Info("artifacts loaded",
		"generation", row.Generation,
		"records", len(records),
		"model", manifest.EmbeddingModel)
	return snap, nil
}

// Manifest returns the manifest of the current generation.
func (s *SnapshotStore) Manifest(ctx context.Context) (index.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return index.Manifest{}, err
	}
	row, err := s.readManifestRow()
	if err != nil {
		return index.Manifest{}, err
	}
	return row.Manifest, nil
}

func (s *SnapshotStore) readManifestRow() (storage.ManifestRow, error) {
	var row storage.ManifestRow
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(manifestKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNoArtifacts
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			row, err = storage.UnmarshalManifestRow(val)
			return err
		})
	}, false)
	return row, err
}
