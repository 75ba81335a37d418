package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so identical content
// always maps to the same identity.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DefaultDimensions is the embedding width used when an index is created
// without an explicit dimension count (BERT base).
const DefaultDimensions = 768

// TextDocument is the transient output of the fetch stage. It carries the
// raw content for one external identifier and is discarded after the
// persist stage consumes it. Identity is the URL.
type TextDocument struct {
	Title    string
	Content  string
	Metadata map[string]string
	URL      string
}

// Document is the durable counterpart of a TextDocument, keyed uniquely
// by URL. Upserts overwrite Title, Content and Metadata; InsertedAt is
// preserved across upserts.
type Document struct {
	Id         ID
	URL        string
	Title      string
	Content    string
	Metadata   map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Index is a named collection of embedded snippets sharing a vector
// dimensionality. Dimensions is fixed at creation.
type Index struct {
	Id         ID
	Name       string
	Dimensions int
	InsertedAt time.Time
}

// Embedding is a vector of floats plus its dimension count.
// Dimensions must equal len(Vector).
type Embedding struct {
	Id         ID
	Vector     []float32
	Dimensions int
}

// IndexedSnippet associates one index, one document and one snippet of
// the document's content, optionally with an embedding (EmbeddingId 0
// means none). The tuple (index, document, snippet) is unique; Id is
// derived from the tuple so re-indexing cannot duplicate rows.
type IndexedSnippet struct {
	Id          ID
	IndexId     ID
	DocumentId  ID
	Snippet     string
	EmbeddingId ID
	InsertedAt  time.Time
}

// SnippetTuple returns the canonical string form of the uniqueness tuple
// for an indexed snippet. Used for generating deterministic IDs.
func SnippetTuple(indexId, documentId ID, snippet string) string {
	buf := make([]byte, 16, 16+len(snippet))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(indexId))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(documentId))
	return string(append(buf, snippet...))
}

// Failure records one per-item stage failure: the external identifier
// and the reason it failed. Reasons are stored as strings because they
// end up in durable failure reports; Err keeps the original error so
// callers can classify failures in flight, but it is never persisted.
type Failure struct {
	URL    string
	Reason string
	Err    error
}

// NewFailure builds a Failure from an identifier and an error.
func NewFailure(url string, err error) Failure {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return Failure{URL: url, Reason: reason, Err: err}
}
