package ai

import "context"

// DummyDimensions is the vector width produced by the dummy embedder.
const DummyDimensions = 768

// DummyEmbedder returns zero vectors of a fixed width for every input.
// It is used for pipelines that should not depend on a live model backend.
type DummyEmbedder struct {
	dimensions int
}

var _ Embedder = (*DummyEmbedder)(nil)

// NewDummyEmbedder creates a dummy embedder producing DummyDimensions-wide
// zero vectors.
func NewDummyEmbedder() *DummyEmbedder {
	return &DummyEmbedder{dimensions: DummyDimensions}
}

// EmbedText returns a zero vector.
func (d *DummyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, d.dimensions), nil
}

// EmbedTexts returns one zero vector per input text.
func (d *DummyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, d.dimensions)
	}
	return embeddings, nil
}
