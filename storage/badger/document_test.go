package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagath-jaikumar/historia/core"
)

func newTestRepos(t *testing.T) (*DocumentRepository, *IndexRepository) {
	t.Helper()

	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	documents, err := NewDocumentRepository(backend)
	require.NoError(t, err)

	indexes, err := NewIndexRepository(backend)
	require.NoError(t, err)
	t.Cleanup(func() { indexes.Close() })

	return documents, indexes
}

func TestUpsertDocumentsAssignsContentDerivedIDs(t *testing.T) {
	documents, _ := newTestRepos(t)
	ctx := context.Background()

	docs, err := documents.UpsertDocuments(ctx,
		&core.Document{URL: "https://example.org/a", Title: "A", Content: "alpha"},
		&core.Document{URL: "https://example.org/b", Title: "B", Content: "beta"},
	)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, core.IDFromContent("https://example.org/a"), docs[0].Id)
	assert.Equal(t, core.IDFromContent("https://example.org/b"), docs[1].Id)
	assert.False(t, docs[0].InsertedAt.IsZero())
	assert.False(t, docs[0].UpdatedAt.IsZero())
}

func TestUpsertDocumentsIsIdempotentByURL(t *testing.T) {
	documents, _ := newTestRepos(t)
	ctx := context.Background()

	first, err := documents.UpsertDocuments(ctx,
		&core.Document{URL: "https://example.org/a", Title: "A", Content: "original"},
	)
	require.NoError(t, err)

	second, err := documents.UpsertDocuments(ctx,
		&core.Document{URL: "https://example.org/a", Title: "A2", Content: "revised"},
	)
	require.NoError(t, err)

	got, err := documents.GetDocumentsByURL(ctx, "https://example.org/a")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, first[0].Id, got[0].Id)
	assert.Equal(t, "revised", got[0].Content)
	assert.Equal(t, "A2", got[0].Title)
	assert.Equal(t, first[0].InsertedAt, got[0].InsertedAt)
	assert.Equal(t, second[0].UpdatedAt, got[0].UpdatedAt)
}

func TestUpsertDocumentsRejectsEmptyURL(t *testing.T) {
	documents, _ := newTestRepos(t)

	_, err := documents.UpsertDocuments(context.Background(), &core.Document{Title: "no url"})
	assert.ErrorIs(t, err, core.ErrEmptyURL)
}

func TestGetDocumentsByURLSkipsMissing(t *testing.T) {
	documents, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := documents.UpsertDocuments(ctx,
		&core.Document{URL: "https://example.org/a", Content: "alpha"},
	)
	require.NoError(t, err)

	got, err := documents.GetDocumentsByURL(ctx, "https://example.org/a", "https://example.org/missing")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://example.org/a", got[0].URL)
}

func TestUpsertDocumentsPreservesMetadata(t *testing.T) {
	documents, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := documents.UpsertDocuments(ctx, &core.Document{
		URL:      "https://example.org/a",
		Content:  "alpha",
		Metadata: map[string]string{"category": "Physics", "depth": "1"},
	})
	require.NoError(t, err)

	got, err := documents.GetDocumentsByURL(ctx, "https://example.org/a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"category": "Physics", "depth": "1"}, got[0].Metadata)
}
