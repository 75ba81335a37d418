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


package pipeline

import "errors"

// Configuration errors. All of these are raised before any stage runs
// and are never retried.
var (
	ErrInvalidConfig     = errors.New("invalid pipeline configuration")
	ErrUnknownDataSource    = errors.New("unknown data source")
	ErrUnknownSnipper       = errors.New("unknown snipper type")
	ErrUnknownEmbedder      = errors.New("unknown embedder type")
	ErrUnknownDocumentModel = errors.New("unknown document data model")
	ErrMissingIndexName     = errors.New("index name is required")
)

// Runtime errors
var (
	// ErrPipelineFatal indicates the run failed on every retry attempt.
	ErrPipelineFatal = errors.New("pipeline failed after all retry attempts")

	// ErrInvalidMaxAttempts indicates a retry was requested with a
	// non-positive attempt ceiling.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrEmbeddingBackendDown indicates the embedding backend failed for
	// every document in a run attempt. Treated as a systemic failure so
	// the top-level retry engages.
	ErrEmbeddingBackendDown = errors.New("embedding backend failed for every document")
)
