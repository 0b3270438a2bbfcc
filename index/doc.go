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


// Package index builds and holds the three read-only retrieval
// indexes over a corpus snapshot:
//
//   - SparseIndex: BM25 keyword search over normalized tokens
//   - DenseIndex: top-K cosine similarity over unit-norm embeddings
//   - FuzzyIndex: string-similarity scan over normalized record text
//
// A build is offline, atomic and idempotent for a fixed corpus and
// embedding model: it either yields a complete immutable Snapshot or
// an error, never a partial result. Per-record embedding runs through
// a worker pool since records are independent.
//
// Snapshots are immutable after build and safe for unlimited
// concurrent readers; a rebuild produces a new Snapshot that callers
// swap in atomically.
package index
