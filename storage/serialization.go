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

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/kirezi/inyishu/core"
	"github.com/kirezi/inyishu/index"
)

// maxCount bounds decoded element counts so corrupt length prefixes
// fail instead of allocating unbounded memory.
const maxCount = 1 << 24

// ArtifactRow is one record's persisted artifact: the record itself
// and its unit-normalized embedding vector.
type ArtifactRow struct {
	Record *core.KnowledgeRecord
	Vector []float32
}

// ManifestRow couples the build manifest with the artifact generation
// whose rows it describes.
type ManifestRow struct {
	Generation uint64
	Manifest   index.Manifest
}

// MarshalArtifactRow serializes an ArtifactRow to bytes.
func MarshalArtifactRow(row ArtifactRow) []byte {
	r := row.Record

	size := varint.Int64.Size(int64(r.ID))
	size += ord.String.Size(r.Question)
	size += ord.String.Size(r.Answer)
	size += varint.Int.Size(len(r.Keywords))
	for _, kw := range r.Keywords {
		size += ord.String.Size(kw)
	}
	size += ord.String.Size(r.Category)
	size += varint.Int.Size(int(r.Importance))
	size += ord.String.Size(r.Citation)
	size += varint.Int.Size(len(r.Related))
	for _, id := range r.Related {
		size += varint.Int64.Size(int64(id))
	}
	size += varint.Int.Size(len(row.Vector))
	size += len(row.Vector) * raw.Float32.Size(0)

	buf := make([]byte, size)
	n := varint.Int64.Marshal(int64(r.ID), buf)
	n += ord.String.Marshal(r.Question, buf[n:])
	n += ord.String.Marshal(r.Answer, buf[n:])
	n += varint.Int.Marshal(len(r.Keywords), buf[n:])
	for _, kw := range r.Keywords {
		n += ord.String.Marshal(kw, buf[n:])
	}
	n += ord.String.Marshal(r.Category, buf[n:])
	n += varint.Int.Marshal(int(r.Importance), buf[n:])
	n += ord.String.Marshal(r.Citation, buf[n:])
	n += varint.Int.Marshal(len(r.Related), buf[n:])
	for _, id := range r.Related {
		n += varint.Int64.Marshal(int64(id), buf[n:])
	}
	n += varint.Int.Marshal(len(row.Vector), buf[n:])
	for _, v := range row.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalArtifactRow deserializes an ArtifactRow from bytes.
func UnmarshalArtifactRow(data []byte) (ArtifactRow, error) {
	var row ArtifactRow
	r := &core.KnowledgeRecord{}

	id, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return row, corrupt(err)
	}
	r.ID = core.RecordID(id)

	if r.Question, n, err = next(ord.String, data, n); err != nil {
		return row, err
	}
	if r.Answer, n, err = next(ord.String, data, n); err != nil {
		return row, err
	}

	count, n, err := nextCount(data, n)
	if err != nil {
		return row, err
	}
	if count > 0 {
		r.Keywords = make([]string, count)
		for i := range r.Keywords {
			if r.Keywords[i], n, err = next(ord.String, data, n); err != nil {
				return row, err
			}
		}
	}

	if r.Category, n, err = next(ord.String, data, n); err != nil {
		return row, err
	}

	imp, n, err := next(varint.Int, data, n)
	if err != nil {
		return row, err
	}
	r.Importance = core.Importance(imp)

	if r.Citation, n, err = next(ord.String, data, n); err != nil {
		return row, err
	}

	if count, n, err = nextCount(data, n); err != nil {
		return row, err
	}
	if count > 0 {
		r.Related = make([]core.RecordID, count)
		for i := range r.Related {
			rid, m, err := next(varint.Int64, data, n)
			if err != nil {
				return row, err
			}
			r.Related[i] = core.RecordID(rid)
			n = m
		}
	}

	if count, n, err = nextCount(data, n); err != nil {
		return row, err
	}
	vec := make([]float32, count)
	for i := range vec {
		if vec[i], n, err = next(raw.Float32, data, n); err != nil {
			return row, err
		}
	}

	row.Record = r
	row.Vector = vec
	return row, nil
}

// MarshalManifestRow serializes a ManifestRow to bytes.
func MarshalManifestRow(row ManifestRow) []byte {
	m := row.Manifest

	size := varint.Uint64.Size(row.Generation)
	size += ord.String.Size(m.EmbeddingModel)
	size += varint.Int.Size(m.Dimension)
	size += varint.Int.Size(m.RecordCount)
	size += ord.String.Size(m.Fingerprint)
	size += varint.Int64.Size(m.BuiltAt.UnixMicro())
	size += varint.Float64.Size(m.BM25K1)
	size += varint.Float64.Size(m.BM25B)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(row.Generation, buf)
	n += ord.String.Marshal(m.EmbeddingModel, buf[n:])
	n += varint.Int.Marshal(m.Dimension, buf[n:])
	n += varint.Int.Marshal(m.RecordCount, buf[n:])
	n += ord.String.Marshal(m.Fingerprint, buf[n:])
	n += varint.Int64.Marshal(m.BuiltAt.UnixMicro(), buf[n:])
	n += varint.Float64.Marshal(m.BM25K1, buf[n:])
	n += varint.Float64.Marshal(m.BM25B, buf[n:])
	return buf
}

// UnmarshalManifestRow deserializes a ManifestRow from bytes.
func UnmarshalManifestRow(data []byte) (ManifestRow, error) {
	var row ManifestRow

	gen, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return row, corrupt(err)
	}
	row.Generation = gen

	if row.Manifest.EmbeddingModel, n, err = next(ord.String, data, n); err != nil {
		return row, err
	}
	if row.Manifest.Dimension, n, err = next(varint.Int, data, n); err != nil {
		return row, err
	}
	if row.Manifest.RecordCount, n, err = next(varint.Int, data, n); err != nil {
		return row, err
	}
	if row.Manifest.Fingerprint, n, err = next(ord.String, data, n); err != nil {
		return row, err
	}

	builtAt, n, err := next(varint.Int64, data, n)
	if err != nil {
		return row, err
	}
	row.Manifest.BuiltAt = time.UnixMicro(builtAt).UTC()

	if row.Manifest.BM25K1, n, err = next(varint.Float64, data, n); err != nil {
		return row, err
	}
	if row.Manifest.BM25B, _, err = next(varint.Float64, data, n); err != nil {
		return row, err
	}
	return row, nil
}

// serializer is the subset of the mus-go serializer surface the
// decoders below need.
type serializer[T any] interface {
	Unmarshal(bs []byte) (T, int, error)
}

// next decodes one value at offset n and returns the new offset.
func next[T any](s serializer[T], data []byte, n int) (T, int, error) {
	v, m, err := s.Unmarshal(data[n:])
	if err != nil {
		var zero T
		return zero, 0, corrupt(err)
	}
	return v, n + m, nil
}

// nextCount decodes a length prefix and rejects nonsense values.
func nextCount(data []byte, n int) (int, int, error) {
	count, n, err := next(varint.Int, data, n)
	if err != nil {
		return 0, 0, err
	}
	if count < 0 || count > maxCount {
		return 0, 0, fmt.Errorf("%w: count %d out of range", ErrCorruptArtifact, count)
	}
	return count, n, nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
}
