package badger

import (
	"github.com/jagath-jaikumar/historia/storage"
)

// NewMemoryRepositories opens an in-memory backend and returns repositories
// bound to it. Intended for tests and ephemeral runs; callers own the
// backend and must Close it.
func NewMemoryRepositories() (storage.DocumentRepository, storage.IndexRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	indexes, err := NewIndexRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	documents, err := NewDocumentRepository(backend)
	if err != nil {
		indexes.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return documents, indexes, backend, nil
}
