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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document or TextDocument failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidIndex indicates an Index failed validation.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrInvalidEmbedding indicates an Embedding failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrInvalidSnippet indicates an IndexedSnippet failed validation.
	ErrInvalidSnippet = errors.New("invalid indexed snippet")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrEmptyIndexName indicates the index Name field is empty.
	ErrEmptyIndexName = errors.New("index name cannot be empty")

	// ErrDimensionMismatch indicates an embedding's declared dimensions
	// do not match its vector length.
	ErrDimensionMismatch = errors.New("dimensions do not match vector length")

	// ErrEmptySnippet indicates the Snippet field is empty.
	ErrEmptySnippet = errors.New("snippet cannot be empty")
)
