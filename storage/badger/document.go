package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &DocumentRepository{backend: backend}, nil
}

// Close releases resources held by the repository.
func (r *DocumentRepository) Close() error {
	return nil
}

// UpsertDocuments upserts documents by their URL key within a single
// transaction. Existing records keep their InsertedAt timestamp; Title,
// Content and Metadata are overwritten.
func (r *DocumentRepository) UpsertDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	// Timestamps persist at microsecond precision, so truncate up front to
	// keep returned documents equal to their stored form.
	now := time.Now().UTC().Truncate(time.Microsecond)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range documents {
			if doc.URL == "" {
				return core.ErrEmptyURL
			}
			doc.Id = core.IDFromContent(doc.URL)

			key := makeDocumentKey(doc.Id)
			existing, err := readDocument(tx, key)
			switch {
			case err == nil:
				doc.InsertedAt = existing.InsertedAt
			case errors.Is(err, storage.ErrNotFound):
				doc.InsertedAt = now
			default:
				return err
			}
			doc.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return documents, nil
}

// GetDocumentsByURL bulk-reads documents by URL. URLs with no persisted
// record are skipped without error.
func (r *DocumentRepository) GetDocumentsByURL(ctx context.Context, urls ...string) ([]*core.Document, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	documents := make([]*core.Document, 0, len(urls))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, url := range urls {
			doc, err := readDocument(tx, makeDocumentKey(core.IDFromContent(url)))
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			documents = append(documents, doc)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return documents, nil
}

// readDocument reads and unmarshals one document record inside tx.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
