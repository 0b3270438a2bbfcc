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


package storage

import "errors"

var (
	// ErrNoArtifacts is returned when the store holds no saved build.
	ErrNoArtifacts = errors.New("no artifacts stored")

	// ErrStaleArtifacts is returned when stored artifacts were built
	// with a different embedding model than the one configured.
	ErrStaleArtifacts = errors.New("stored artifacts built with a different embedding model")

	// ErrCorruptArtifact is returned when stored bytes do not decode.
	ErrCorruptArtifact = errors.New("corrupt artifact")

	// ErrBackendRequired is returned when a store is created without a backend.
	ErrBackendRequired = errors.New("backend required")
)
