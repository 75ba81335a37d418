// Copyright 2025 The Historia Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package historia ingests documents from external corpora and indexes
// them as embedded snippets for retrieval.
package historia

import (
	"log/slog"

	"github.com/jagath-jaikumar/historia/pipeline"
	"github.com/jagath-jaikumar/historia/storage"
	"github.com/jagath-jaikumar/historia/storage/badger"
)

// Database bundles the storage backend with the repositories the
// pipeline depends on.
type Database struct {
	backend   *badger.Backend
	documents storage.DocumentRepository
	indexes   storage.IndexRepository
	logger    *slog.Logger
}

// NewDatabase opens a database at the given directory, creating it if
// absent.
func NewDatabase(filePath string) (*Database, error) {
	return newDatabase(filePath, false)
}

// NewMemoryDatabase opens an ephemeral in-memory database. Used by tests
// and dry runs.
func NewMemoryDatabase() (*Database, error) {
	return newDatabase("", true)
}

func newDatabase(filePath string, inMemory bool) (*Database, error) {
	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	indexes, err := badger.NewIndexRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		documents: documents,
		indexes:   indexes,
		logger:    slog.Default(),
	}, nil
}

// Close releases repositories and the backend.
func (db *Database) Close() error {
	if err := db.indexes.Close(); err != nil {
		db.logger.Error("error closing index repository", "err", err)
		return err
	}
	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// DocumentRepository returns the document repository.
func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documents
}

// IndexRepository returns the index repository.
func (db *Database) IndexRepository() storage.IndexRepository {
	return db.indexes
}

// NewPipeline builds an ingestion pipeline bound to this database.
func (db *Database) NewPipeline(config *pipeline.Config, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	deps := pipeline.Deps{
		Documents: db.documents,
		Indexes:   db.indexes,
	}
	return pipeline.New(config, deps, opts...)
}
