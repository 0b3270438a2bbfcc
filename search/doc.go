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


// Package search answers questions against an immutable index snapshot.
//
// The Searcher type implements a multi-method retrieval pipeline:
//   - BM25 keyword search over the sparse index
//   - Cosine similarity search over the dense embedding index
//   - Token-set string similarity over the fuzzy table
//
// The three ranked lists are combined with reciprocal rank fusion and
// the top fused score passes through a confidence gate. A query either
// produces an answer copied verbatim from a corpus record, with its
// citation, or an explicit Unknown. There is no third outcome: every
// internal failure degrades to Unknown.
package search
