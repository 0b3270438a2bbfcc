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


package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kirezi/inyishu/core"
)

// ErrMalformedCorpus indicates the corpus file is not valid JSON in
// either accepted shape.
var ErrMalformedCorpus = errors.New("malformed corpus file")

// fileRecord mirrors one record of the corpus file.
type fileRecord struct {
	ID         int64    `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Keywords   []string `json:"keywords"`
	Category   string   `json:"category"`
	Importance string   `json:"importance"`
	Citation   string   `json:"citation"`
	Related    []int64  `json:"related"`
}

// corpusFile mirrors the wrapped corpus file shape.
type corpusFile struct {
	Records []fileRecord `json:"records"`
}

// Load reads and validates the corpus file at path.
func Load(path string) ([]*core.KnowledgeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates a corpus from r. It accepts either a bare
// array of records or an object with a "records" array.
func Parse(r io.Reader) ([]*core.KnowledgeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows []fileRecord
	var wrapped corpusFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Records != nil {
		rows = wrapped.Records
	} else if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCorpus, err)
	}

	records := make([]*core.KnowledgeRecord, 0, len(rows))
	for i, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d (id %d): %w", i, row.ID, err)
		}
		records = append(records, record)
	}

	if err := core.ValidateCorpus(records); err != nil {
		return nil, err
	}

	return records, nil
}

func (fr fileRecord) toRecord() (*core.KnowledgeRecord, error) {
	importance, err := core.ParseImportance(fr.Importance)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, fr.Importance)
	}

	related := make([]core.RecordID, len(fr.Related))
	for i, id := range fr.Related {
		related[i] = core.RecordID(id)
	}

	record := &core.KnowledgeRecord{
		ID:         core.RecordID(fr.ID),
		Question:   fr.Question,
		Answer:     fr.Answer,
		Keywords:   fr.Keywords,
		Category:   fr.Category,
		Importance: importance,
		Citation:   fr.Citation,
		Related:    related,
	}

	if err := core.ValidateRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}
