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
	"time"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/snipper"
	"github.com/jagath-jaikumar/historia/storage"
)

// SequentialRunner processes one URL at a time through fetch, persist
// and index before moving to the next. Fully ordered, single-threaded;
// meant for debugging and small corpora, not throughput.
type SequentialRunner struct {
	documents storage.DocumentRepository
	logger    *slog.Logger
}

var _ Runner = (*SequentialRunner)(nil)

// NewSequentialRunner creates a sequential runner.
func NewSequentialRunner(documents storage.DocumentRepository) *SequentialRunner {
	return &SequentialRunner{
		documents: documents,
		logger:    slog.Default().With("runner", RunnerSequential),
	}
}

// Run executes the stage sequence URL by URL. A failure at any stage for
// one URL is recorded and does not stop processing of subsequent URLs.
func (r *SequentialRunner) Run(ctx context.Context, source datasource.DataSource, sn snipper.Snipper, embedder ai.Embedder, indexName string, useAll bool) (*RunReport, error) {
	start := time.Now()
	report := newRunReport()

	urls, err := source.GenerateURLs(ctx, useAll)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}
	report.URLs = len(urls)
	r.logger.Info("discovered urls", "count", len(urls))

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.logger.Debug("processing url", "url", u)

		docs, err := source.URLsToTextDocuments(ctx, []string{u})
		if err != nil {
			report.Failures[StageURLToDocuments] = append(report.Failures[StageURLToDocuments], core.NewFailure(u, err))
			continue
		}
		if len(docs) == 0 {
			report.Failures[StageURLToDocuments] = append(report.Failures[StageURLToDocuments], core.NewFailure(u, datasource.ErrFetch))
			continue
		}
		report.Fetched++

		if err := source.WriteDocumentsToDatabase(ctx, docs); err != nil {
			report.Failures[StageWriteDocuments] = append(report.Failures[StageWriteDocuments], core.NewFailure(u, err))
			continue
		}
		report.Persisted++

		records, err := r.documents.GetDocumentsByURL(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("re-resolve persisted document: %w", err)
		}

		failures, err := source.IndexDocuments(ctx, records, indexName, sn, embedder)
		if err != nil {
			return nil, fmt.Errorf("indexing: %w", err)
		}
		if len(failures) > 0 {
			report.Failures[StageIndexing] = append(report.Failures[StageIndexing], failures...)
			continue
		}
		report.Indexed++
	}

	if embeddingBackendDown(report.Failures[StageIndexing], report.Persisted) {
		return nil, fmt.Errorf("indexing: %w", ErrEmbeddingBackendDown)
	}

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
