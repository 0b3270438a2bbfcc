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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a KnowledgeRecord failed validation.
	ErrInvalidRecord = errors.New("invalid knowledge record")

	// ErrInvalidCorpus indicates the corpus as a whole failed validation.
	ErrInvalidCorpus = errors.New("invalid corpus")

	// ErrInvalidID indicates a record id is not a positive integer.
	ErrInvalidID = errors.New("record id must be positive")

	// ErrDuplicateID indicates two records share the same id.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrEmptyQuestion indicates the Question field is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrEmptyAnswer indicates the Answer field is empty.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrEmptyCitation indicates the Citation field is empty.
	ErrEmptyCitation = errors.New("citation cannot be empty")

	// ErrInvalidImportance indicates an unknown importance level.
	ErrInvalidImportance = errors.New("invalid importance level")

	// ErrDanglingRelated indicates a related id references no record.
	ErrDanglingRelated = errors.New("related id references no record")
)
