package storage

import (
	"context"

	"github.com/jagath-jaikumar/historia/core"
)

// DocumentRepository provides keyed upsert and keyed bulk-read of
// document records. Implementations must be thread-safe; each call is
// atomic for the set of documents passed to it, and no atomicity is
// promised across calls.
type DocumentRepository interface {
	// UpsertDocuments upserts each document by its URL key. If a record
	// with the same URL exists, its Title, Content and Metadata are
	// overwritten and UpdatedAt is refreshed; InsertedAt is preserved.
	// Returns the documents with IDs and timestamps populated.
	UpsertDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error)

	// GetDocumentsByURL bulk-reads document records by their URL keys.
	// Returns only the records that exist (no error for missing URLs).
	GetDocumentsByURL(ctx context.Context, urls ...string) ([]*core.Document, error)

	// Close releases resources held by the repository.
	Close() error
}

// SnippetEntry pairs an indexed snippet with its embedding. Embedding may
// be nil for snippets indexed without a vector.
type SnippetEntry struct {
	Snippet   *core.IndexedSnippet
	Embedding *core.Embedding
}

// IndexRepository provides operations for indexes, embeddings and indexed
// snippets. Implementations must be thread-safe.
type IndexRepository interface {
	// GetOrCreateIndex returns the named index, creating it with the given
	// dimensions if absent. Dimensions are fixed at creation; for an
	// existing index the argument is ignored.
	GetOrCreateIndex(ctx context.Context, name string, dimensions int) (*core.Index, error)

	// GetIndex retrieves an index by name.
	// Returns ErrNotFound if no such index exists.
	GetIndex(ctx context.Context, name string) (*core.Index, error)

	// AddSnippets upserts indexed snippets keyed by their
	// (index, document, snippet) tuple, atomically for the set passed in
	// one call. Entries whose tuple already exists are skipped, so
	// re-indexing the same snippet never duplicates rows. Embeddings are
	// stored only for newly added snippets.
	// Returns the number of entries actually added.
	AddSnippets(ctx context.Context, entries ...SnippetEntry) (int, error)

	// GetSnippetsByIndex retrieves all indexed snippets belonging to an index.
	GetSnippetsByIndex(ctx context.Context, indexId core.ID) ([]*core.IndexedSnippet, error)

	// GetEmbedding retrieves an embedding by ID.
	// Returns ErrNotFound if the embedding doesn't exist.
	GetEmbedding(ctx context.Context, id core.ID) (*core.Embedding, error)

	// Close releases resources held by the repository.
	Close() error
}
