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


package core

import "fmt"

// ValidateTextDocument validates a TextDocument according to domain rules.
//
// Validation rules:
//   - URL must not be empty
//
// NOT validated:
//   - Content (sources may legitimately fetch empty pages; the snipper
//     yields nothing for them)
//   - Metadata (opaque to the pipeline)
func ValidateTextDocument(doc *TextDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyURL)
	}

	return nil
}

// ValidateIndex validates an Index according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Dimensions must be positive
func ValidateIndex(index *Index) error {
	if index == nil {
		return fmt.Errorf("%w: index is nil", ErrInvalidIndex)
	}

	if index.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndex, ErrEmptyIndexName)
	}

	if index.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidIndex, index.Dimensions)
	}

	return nil
}

// ValidateEmbedding validates an Embedding according to domain rules.
//
// Validation rules:
//   - Dimensions must equal the vector length
func ValidateEmbedding(embedding *Embedding) error {
	if embedding == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidEmbedding)
	}

	if embedding.Dimensions != len(embedding.Vector) {
		return fmt.Errorf("%w: %w (dimensions %d, vector length %d)",
			ErrInvalidEmbedding, ErrDimensionMismatch, embedding.Dimensions, len(embedding.Vector))
	}

	return nil
}

// ValidateIndexedSnippet validates an IndexedSnippet according to domain rules.
//
// Validation rules:
//   - IndexId and DocumentId must be set
//   - Snippet must not be empty
//
// NOT validated:
//   - EmbeddingId (0 is valid: dummy and no-op embedders may be skipped)
func ValidateIndexedSnippet(snippet *IndexedSnippet) error {
	if snippet == nil {
		return fmt.Errorf("%w: snippet is nil", ErrInvalidSnippet)
	}

	if snippet.IndexId == 0 {
		return fmt.Errorf("%w: index id required", ErrInvalidSnippet)
	}

	if snippet.DocumentId == 0 {
		return fmt.Errorf("%w: document id required", ErrInvalidSnippet)
	}

	if snippet.Snippet == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSnippet, ErrEmptySnippet)
	}

	return nil
}
