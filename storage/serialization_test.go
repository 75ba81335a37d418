package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagath-jaikumar/historia/core"
)

func TestDocumentRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:         core.IDFromContent("https://en.wikipedia.org/?curid=736"),
		URL:        "https://en.wikipedia.org/?curid=736",
		Title:      "Albert Einstein",
		Content:    "Albert Einstein was a theoretical physicist.\n\nHe developed relativity.",
		Metadata:   map[string]string{"url": "https://en.wikipedia.org/?curid=736", "source": "wikipedia"},
		InsertedAt: now,
		UpdatedAt:  now,
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestDocumentRoundTrip_EmptyMetadata(t *testing.T) {
	doc := &core.Document{
		Id:         1,
		URL:        "https://en.wikipedia.org/?curid=1",
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Nil(t, decoded.Metadata)
	assert.Equal(t, doc.URL, decoded.URL)
}

func TestEmbeddingRoundTrip(t *testing.T) {
	embedding := &core.Embedding{
		Id:         42,
		Vector:     []float32{0.25, -1.5, 0, 3.75},
		Dimensions: 4,
	}

	decoded, err := UnmarshalEmbedding(MarshalEmbedding(embedding))
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestIndexedSnippetRoundTrip(t *testing.T) {
	snippet := &core.IndexedSnippet{
		Id:          core.IDFromContent(core.SnippetTuple(7, 9, "snippet text")),
		IndexId:     7,
		DocumentId:  9,
		Snippet:     "snippet text",
		EmbeddingId: 3,
		InsertedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalIndexedSnippet(MarshalIndexedSnippet(snippet))
	require.NoError(t, err)
	assert.Equal(t, snippet, decoded)
}

func TestUnmarshalDocument_Truncated(t *testing.T) {
	doc := &core.Document{Id: 1, URL: "https://example.org", Title: "t"}
	data := MarshalDocument(doc)

	_, err := UnmarshalDocument(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
