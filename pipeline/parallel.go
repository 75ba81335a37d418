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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/snipper"
	"github.com/jagath-jaikumar/historia/storage"
)

// ParallelRunner executes each stage as a bounded fan-out over the
// previous stage's successful output. Ordering between items within a
// stage is not guaranteed; stage-to-stage order is.
type ParallelRunner struct {
	documents    storage.DocumentRepository
	fetchWorkers int
	batchSize    int
	logger       *slog.Logger
}

var _ Runner = (*ParallelRunner)(nil)

// NewParallelRunner creates a parallel dataflow runner. The document
// repository is used to re-resolve persisted records before the index
// stage.
func NewParallelRunner(documents storage.DocumentRepository, fetchWorkers, batchSize int) *ParallelRunner {
	if fetchWorkers <= 0 {
		fetchWorkers = DefaultFetchWorkers
	}
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &ParallelRunner{
		documents:    documents,
		fetchWorkers: fetchWorkers,
		batchSize:    batchSize,
		logger:       slog.Default().With("runner", RunnerParallel),
	}
}

// Run executes discover, fetch, persist and index. Per-item failures are
// collected into the report; only systemic errors are returned.
func (r *ParallelRunner) Run(ctx context.Context, source datasource.DataSource, sn snipper.Snipper, embedder ai.Embedder, indexName string, useAll bool) (*RunReport, error) {
	start := time.Now()
	report := newRunReport()

	urls, err := source.GenerateURLs(ctx, useAll)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	report.URLs = len(urls)
	r.logger.Info("discovered urls", "count", len(urls))

	fetched, fetchFailures, err := r.fetchStage(ctx, source, urls)
	if err != nil {
		return nil, err
	}
	report.Fetched = len(fetched)
	report.Failures[StageURLToDocuments] = fetchFailures

	persistedURLs, writeFailures, err := r.persistStage(ctx, source, fetched)
	if err != nil {
		return nil, err
	}
	report.Persisted = len(persistedURLs)
	report.Failures[StageWriteDocuments] = writeFailures

	// Re-resolve written documents to their persisted records so the
	// index stage operates on durable identities.
	records, err := r.documents.GetDocumentsByURL(ctx, persistedURLs...)
	if err != nil {
		return nil, fmt.Errorf("re-resolve persisted documents: %w", err)
	}

	indexFailures, err := r.indexStage(ctx, source, records, indexName, sn, embedder)
	if err != nil {
		return nil, err
	}
	if embeddingBackendDown(indexFailures, len(records)) {
		return nil, fmt.Errorf("indexing: %w", ErrEmbeddingBackendDown)
	}
	report.Indexed = len(records) - len(indexFailures)
	report.Failures[StageIndexing] = indexFailures

	report.Elapsed = time.Since(start)
	r.logger.Info("run complete",
		"urls", report.URLs,
		"fetched", report.Fetched,
		"persisted", report.Persisted,
		"indexed", report.Indexed,
		"failures", report.TotalFailures(),
		"elapsed", report.Elapsed)
	return report, nil
}

// fetchStage resolves URLs to text documents on a bounded worker pool.
func (r *ParallelRunner) fetchStage(ctx context.Context, source datasource.DataSource, urls []string) ([]*core.TextDocument, []core.Failure, error) {
	pool, err := ants.NewPool(r.fetchWorkers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fetched  []*core.TextDocument
		failures []core.Failure
	)

	for _, u := range urls {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			docs, err := source.URLsToTextDocuments(ctx, []string{u})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failures = append(failures, core.NewFailure(u, err))
			case len(docs) == 0:
				failures = append(failures, core.NewFailure(u, datasource.ErrFetch))
			default:
				fetched = append(fetched, docs...)
			}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, nil, submitErr
		}
	}

	wg.Wait()
	return fetched, failures, nil
}

// persistStage upserts each fetched document in its own repository call,
// fanned out on a bounded pool. Returns the URLs that were written.
func (r *ParallelRunner) persistStage(ctx context.Context, source datasource.DataSource, fetched []*core.TextDocument) ([]string, []core.Failure, error) {
	pool, err := ants.NewPool(r.fetchWorkers)
	if err != nil {
		return nil, nil, err
	}
	defer pool.Release()

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		persisted []string
		failures  []core.Failure
	)

	for _, doc := range fetched {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			err := source.WriteDocumentsToDatabase(ctx, []*core.TextDocument{doc})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, core.NewFailure(doc.URL, err))
				return
			}
			persisted = append(persisted, doc.URL)
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, nil, submitErr
		}
	}

	wg.Wait()
	return persisted, failures, nil
}

// indexStage processes persisted records in bounded batches.
func (r *ParallelRunner) indexStage(ctx context.Context, source datasource.DataSource, records []*core.Document, indexName string, sn snipper.Snipper, embedder ai.Embedder) ([]core.Failure, error) {
	var failures []core.Failure
	for start := 0; start < len(records); start += r.batchSize {
		end := min(start+r.batchSize, len(records))
		batchFailures, err := source.IndexDocuments(ctx, records[start:end], indexName, sn, embedder)
		if err != nil {
			return nil, fmt.Errorf("indexing: %w", err)
		}
		failures = append(failures, batchFailures...)
	}
	return failures, nil
}
