// Package datasource defines the corpus connector contract. A DataSource
// knows how to discover candidate URLs in its corpus, resolve them to
// text documents, persist those documents, and index them as embedded
// snippets.
package datasource

import (
	"context"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/snipper"
)

// DataSource is the contract every corpus connector satisfies. The
// pipeline drives the four operations in order: discover, fetch,
// persist, index.
type DataSource interface {
	// GenerateURLs returns candidate identifiers for a run. When useAll
	// is false, identifiers whose persisted content is unchanged are
	// skipped so repeated runs stay incremental. This reads the document
	// repository during discovery; discovery is deliberately not a pure
	// function of the corpus.
	GenerateURLs(ctx context.Context, useAll bool) ([]string, error)

	// URLsToTextDocuments resolves identifiers to content. Safe to call
	// concurrently across disjoint URL subsets.
	URLsToTextDocuments(ctx context.Context, urls []string) ([]*core.TextDocument, error)

	// WriteDocumentsToDatabase upserts each document by its URL key.
	// Atomic within a single call only.
	WriteDocumentsToDatabase(ctx context.Context, documents []*core.TextDocument) error

	// IndexDocuments snips, embeds and indexes each persisted document
	// under the named index. Per-document errors are returned as
	// failures; the error return is reserved for systemic problems that
	// prevent indexing anything at all.
	IndexDocuments(ctx context.Context, documents []*core.Document, indexName string, sn snipper.Snipper, embedder ai.Embedder) ([]core.Failure, error)
}
