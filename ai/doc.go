// Package ai defines the embedding contract used by the indexing stage.
//
// The Embedder interface converts snippet text into fixed-dimension
// vectors. Backend failures are surfaced as errors wrapping
// ErrEmbeddingBackend so callers can distinguish per-document embedding
// failures from systemic ones.
package ai
