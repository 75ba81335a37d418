// Copyright 2025 The Historia Authors
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
	"maps"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/jagath-jaikumar/historia/core"
)

// Serializers are hand-written against the MUS format primitives.
// Metadata keys are sorted before marshalling so the encoding of a record
// is deterministic.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	size := varint.Uint64.Size(uint64(doc.Id)) +
		ord.String.Size(doc.URL) +
		ord.String.Size(doc.Title) +
		ord.String.Size(doc.Content) +
		sizeMetadata(doc.Metadata) +
		varint.Int64.Size(doc.InsertedAt.UnixMicro()) +
		varint.Int64.Size(doc.UpdatedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(doc.Id), buf)
	n += ord.String.Marshal(doc.URL, buf[n:])
	n += ord.String.Marshal(doc.Title, buf[n:])
	n += ord.String.Marshal(doc.Content, buf[n:])
	n += marshalMetadata(doc.Metadata, buf[n:])
	n += varint.Int64.Marshal(doc.InsertedAt.UnixMicro(), buf[n:])
	varint.Int64.Marshal(doc.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc := &core.Document{}
	off := 0

	id, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: document id: %w", ErrSerializationFailed, err)
	}
	doc.Id = core.ID(id)
	off += n

	if doc.URL, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: document url: %w", ErrSerializationFailed, err)
	}
	off += n

	if doc.Title, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: document title: %w", ErrSerializationFailed, err)
	}
	off += n

	if doc.Content, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: document content: %w", ErrSerializationFailed, err)
	}
	off += n

	if doc.Metadata, n, err = unmarshalMetadata(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: document metadata: %w", ErrSerializationFailed, err)
	}
	off += n

	if doc.InsertedAt, n, err = unmarshalTime(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: document inserted_at: %w", ErrSerializationFailed, err)
	}
	off += n

	if doc.UpdatedAt, _, err = unmarshalTime(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: document updated_at: %w", ErrSerializationFailed, err)
	}

	return doc, nil
}

// MarshalIndex serializes an Index to bytes.
func MarshalIndex(index *core.Index) []byte {
	size := varint.Uint64.Size(uint64(index.Id)) +
		ord.String.Size(index.Name) +
		varint.Int.Size(index.Dimensions) +
		varint.Int64.Size(index.InsertedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(index.Id), buf)
	n += ord.String.Marshal(index.Name, buf[n:])
	n += varint.Int.Marshal(index.Dimensions, buf[n:])
	varint.Int64.Marshal(index.InsertedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalIndex deserializes an Index from bytes.
func UnmarshalIndex(data []byte) (*core.Index, error) {
	index := &core.Index{}
	off := 0

	id, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: index id: %w", ErrSerializationFailed, err)
	}
	index.Id = core.ID(id)
	off += n

	if index.Name, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: index name: %w", ErrSerializationFailed, err)
	}
	off += n

	if index.Dimensions, n, err = varint.Int.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: index dimensions: %w", ErrSerializationFailed, err)
	}
	off += n

	if index.InsertedAt, _, err = unmarshalTime(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: index inserted_at: %w", ErrSerializationFailed, err)
	}

	return index, nil
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(embedding *core.Embedding) []byte {
	size := varint.Uint64.Size(uint64(embedding.Id)) +
		varint.Int.Size(embedding.Dimensions) +
		varint.Int.Size(len(embedding.Vector)) +
		len(embedding.Vector)*raw.Float32.Size(0)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(embedding.Id), buf)
	n += varint.Int.Marshal(embedding.Dimensions, buf[n:])
	n += varint.Int.Marshal(len(embedding.Vector), buf[n:])
	for _, v := range embedding.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	embedding := &core.Embedding{}
	off := 0

	id, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: embedding id: %w", ErrSerializationFailed, err)
	}
	embedding.Id = core.ID(id)
	off += n

	if embedding.Dimensions, n, err = varint.Int.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: embedding dimensions: %w", ErrSerializationFailed, err)
	}
	off += n

	count, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: embedding vector length: %w", ErrSerializationFailed, err)
	}
	off += n

	embedding.Vector = make([]float32, count)
	for i := 0; i < count; i++ {
		v, n, err := raw.Float32.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: embedding vector: %w", ErrSerializationFailed, err)
		}
		embedding.Vector[i] = v
		off += n
	}

	return embedding, nil
}

// MarshalIndexedSnippet serializes an IndexedSnippet to bytes.
func MarshalIndexedSnippet(snippet *core.IndexedSnippet) []byte {
	size := varint.Uint64.Size(uint64(snippet.Id)) +
		varint.Uint64.Size(uint64(snippet.IndexId)) +
		varint.Uint64.Size(uint64(snippet.DocumentId)) +
		ord.String.Size(snippet.Snippet) +
		varint.Uint64.Size(uint64(snippet.EmbeddingId)) +
		varint.Int64.Size(snippet.InsertedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(snippet.Id), buf)
	n += varint.Uint64.Marshal(uint64(snippet.IndexId), buf[n:])
	n += varint.Uint64.Marshal(uint64(snippet.DocumentId), buf[n:])
	n += ord.String.Marshal(snippet.Snippet, buf[n:])
	n += varint.Uint64.Marshal(uint64(snippet.EmbeddingId), buf[n:])
	varint.Int64.Marshal(snippet.InsertedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalIndexedSnippet deserializes an IndexedSnippet from bytes.
func UnmarshalIndexedSnippet(data []byte) (*core.IndexedSnippet, error) {
	snippet := &core.IndexedSnippet{}
	off := 0

	for _, field := range []*core.ID{&snippet.Id, &snippet.IndexId, &snippet.DocumentId} {
		v, n, err := varint.Uint64.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: snippet ids: %w", ErrSerializationFailed, err)
		}
		*field = core.ID(v)
		off += n
	}

	text, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: snippet text: %w", ErrSerializationFailed, err)
	}
	snippet.Snippet = text
	off += n

	embeddingId, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: snippet embedding id: %w", ErrSerializationFailed, err)
	}
	snippet.EmbeddingId = core.ID(embeddingId)
	off += n

	if snippet.InsertedAt, _, err = unmarshalTime(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: snippet inserted_at: %w", ErrSerializationFailed, err)
	}

	return snippet, nil
}

func sizeMetadata(metadata map[string]string) int {
	size := varint.Int.Size(len(metadata))
	for k, v := range metadata {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return size
}

func marshalMetadata(metadata map[string]string, buf []byte) int {
	n := varint.Int.Marshal(len(metadata), buf)
	for _, k := range slices.Sorted(maps.Keys(metadata)) {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(metadata[k], buf[n:])
	}
	return n
}

func unmarshalMetadata(data []byte) (map[string]string, int, error) {
	count, off, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, off, nil
	}

	metadata := make(map[string]string, count)
	for i := 0; i < count; i++ {
		k, n, err := ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n

		v, n, err := ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n

		metadata[k] = v
	}
	return metadata, off, nil
}

func unmarshalTime(data []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return time.Time{}, 0, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}
