package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error wrapping ErrEmbeddingBackend if the backend call fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. The returned slice contains exactly one embedding per input
	// text, in input order.
	// Returns an error wrapping ErrEmbeddingBackend if the backend call fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
