package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/jagath-jaikumar/historia/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	indexPrefix        = "idxrec"
	embeddingPrefix    = "embrec"
	embeddingIDSeq     = "embrecseq"
	snippetPrefix      = "sniprec"
	snippetIndexPrefix = "snipidx"
)

// makeDocumentKey generates a key for a document record by ID.
// Document IDs are content-derived from the URL, so URL lookups resolve
// to direct key reads.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeIndexKey generates a key for an index record by ID.
func makeIndexKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", indexPrefix, id))
}

// makeEmbeddingKey generates a key for an embedding record by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}

// makeSnippetKey generates a key for an indexed snippet by ID.
func makeSnippetKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", snippetPrefix, id))
}

// makeSnippetIndexKey generates a composite key for the per-index snippet
// listing. Format: prefix:indexID:snippetID
func makeSnippetIndexKey(indexId, snippetId core.ID) []byte {
	prefix := snippetIndexPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for indexID + 8 bytes for snippetID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(indexId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(snippetId))
	return buf
}

// makePartialSnippetIndexKey generates a partial key for per-index
// snippet scans. Format: prefix:indexID
func makePartialSnippetIndexKey(indexId core.ID) []byte {
	prefix := snippetIndexPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for indexID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(indexId))
	return buf
}
