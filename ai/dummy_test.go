package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyEmbedder_ZeroVectors(t *testing.T) {
	embedder := NewDummyEmbedder()

	embeddings, err := embedder.EmbedTexts(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	for _, vector := range embeddings {
		require.Len(t, vector, DummyDimensions)
		for _, v := range vector {
			assert.Zero(t, v)
		}
	}
}

func TestDummyEmbedder_EmptyInput(t *testing.T) {
	embedder := NewDummyEmbedder()

	embeddings, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, embeddings)
}

func TestDummyEmbedder_SingleText(t *testing.T) {
	embedder := NewDummyEmbedder()

	vector, err := embedder.EmbedText(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vector, DummyDimensions)
}
