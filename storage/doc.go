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


// Package storage defines persistence for built index artifacts.
//
// An ArtifactStore saves the expensive output of an index build, the
// records and their embedding vectors, together with the build
// manifest. Loading reconstructs a full snapshot: the sparse and fuzzy
// indexes are recomputed from the stored records, which is exact and
// cheap, while the embeddings are read back so no model call is needed.
//
// Artifacts carry the embedding model identity. Loading artifacts
// built with a different model than the one configured fails with
// ErrStaleArtifacts rather than serving incomparable vectors.
package storage
