package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
type IndexRepository struct {
	backend *Backend
	embSeq  *badger.Sequence
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) (*IndexRepository, error) {
	embSeq, err := backend.GetSequence(embeddingIDSeq)
	if err != nil {
		return nil, err
	}

	return &IndexRepository{
		backend: backend,
		embSeq:  embSeq,
	}, nil
}

// Close releases the embedding ID sequence.
func (r *IndexRepository) Close() error {
	return r.embSeq.Release()
}

// GetOrCreateIndex returns the named index, creating it lazily with the
// given dimensions on first use.
func (r *IndexRepository) GetOrCreateIndex(ctx context.Context, name string, dimensions int) (*core.Index, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	if dimensions <= 0 {
		dimensions = core.DefaultDimensions
	}

	var index *core.Index
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id := core.IDFromContent(name)
		key := makeIndexKey(id)

		existing, err := readIndex(tx, key)
		if err == nil {
			index = existing
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		index = &core.Index{
			Id:         id,
			Name:       name,
			Dimensions: dimensions,
			InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		if err := core.ValidateIndex(index); err != nil {
			return err
		}
		if err := tx.Set(key, storage.MarshalIndex(index)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return index, nil
}

// GetIndex retrieves an index by name.
func (r *IndexRepository) GetIndex(ctx context.Context, name string) (*core.Index, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var index *core.Index
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		index, err = readIndex(tx, makeIndexKey(core.IDFromContent(name)))
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	return index, nil
}

// AddSnippets upserts indexed snippets within a single transaction.
// Snippet IDs are content-derived from the (index, document, snippet)
// tuple; an entry whose ID already exists is skipped, which makes
// re-indexing idempotent.
func (r *IndexRepository) AddSnippets(ctx context.Context, entries ...storage.SnippetEntry) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	added := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, entry := range entries {
			snippet := entry.Snippet
			snippet.Id = core.IDFromContent(core.SnippetTuple(snippet.IndexId, snippet.DocumentId, snippet.Snippet))

			if err := core.ValidateIndexedSnippet(snippet); err != nil {
				return err
			}

			key := makeSnippetKey(snippet.Id)
			if _, err := tx.Get(key); err == nil {
				// Tuple already indexed.
				continue
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if entry.Embedding != nil {
				if err := core.ValidateEmbedding(entry.Embedding); err != nil {
					return err
				}
				id, err := r.nextEmbeddingID()
				if err != nil {
					return err
				}
				entry.Embedding.Id = id
				if err := tx.Set(makeEmbeddingKey(id), storage.MarshalEmbedding(entry.Embedding)); err != nil {
					return err
				}
				snippet.EmbeddingId = id
			}

			snippet.InsertedAt = now
			if err := tx.Set(key, storage.MarshalIndexedSnippet(snippet)); err != nil {
				return err
			}
			if err := tx.Set(makeSnippetIndexKey(snippet.IndexId, snippet.Id), storage.MarshalID(snippet.Id)); err != nil {
				return err
			}
			added++
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return added, nil
}

// GetSnippetsByIndex retrieves all snippets indexed under the given index.
func (r *IndexRepository) GetSnippetsByIndex(ctx context.Context, indexId core.ID) ([]*core.IndexedSnippet, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var snippets []*core.IndexedSnippet
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSnippetIndexKey(indexId)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var snippetId core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				snippetId, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			item, err := tx.Get(makeSnippetKey(snippetId))
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				snippet, err := storage.UnmarshalIndexedSnippet(val)
				if err != nil {
					return err
				}
				snippets = append(snippets, snippet)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return snippets, nil
}

// GetEmbedding retrieves an embedding by ID.
func (r *IndexRepository) GetEmbedding(ctx context.Context, id core.ID) (*core.Embedding, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var embedding *core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			embedding, err = storage.UnmarshalEmbedding(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return embedding, nil
}

// nextEmbeddingID draws the next embedding ID from the sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func (r *IndexRepository) nextEmbeddingID() (core.ID, error) {
	next, err := r.embSeq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = r.embSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// readIndex reads and unmarshals one index record inside tx.
func readIndex(tx *badger.Txn, key []byte) (*core.Index, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var index *core.Index
	err = item.Value(func(val []byte) error {
		var err error
		index, err = storage.UnmarshalIndex(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}
