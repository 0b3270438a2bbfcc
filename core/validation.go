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

import "fmt"

// ValidateRecord validates a KnowledgeRecord according to domain rules.
//
// Validation rules:
//   - ID must be positive
//   - Question, Answer and Citation must not be empty
//   - Importance must be a defined level
//
// NOT validated here (requires the whole corpus):
//   - Related ids (checked by ValidateCorpus)
func ValidateRecord(record *KnowledgeRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.ID <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidID)
	}

	if record.Question == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyQuestion)
	}

	if record.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyAnswer)
	}

	if record.Citation == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyCitation)
	}

	if !record.Importance.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidImportance)
	}

	return nil
}

// ValidateCorpus validates a complete corpus snapshot: every record
// must validate, ids must be unique, and every related id must
// reference a record in the corpus. The first violation aborts; a
// corpus is accepted whole or not at all.
func ValidateCorpus(records []*KnowledgeRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: corpus is empty", ErrInvalidCorpus)
	}

	seen := make(map[RecordID]struct{}, len(records))
	for _, record := range records {
		if err := ValidateRecord(record); err != nil {
			return err
		}
		if _, ok := seen[record.ID]; ok {
			return fmt.Errorf("%w: %w: %d", ErrInvalidCorpus, ErrDuplicateID, record.ID)
		}
		seen[record.ID] = struct{}{}
	}

	for _, record := range records {
		for _, rel := range record.Related {
			if _, ok := seen[rel]; !ok {
				return fmt.Errorf("%w: %w: record %d references %d",
					ErrInvalidCorpus, ErrDanglingRelated, record.ID, rel)
			}
		}
	}

	return nil
}
