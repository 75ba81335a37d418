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


// Package pipeline orchestrates the ingestion-and-indexing flow:
// discover candidate URLs, fetch their content, persist documents, and
// index embedded snippets. Failures are isolated per item and reported
// per stage; only systemic failures retry the whole run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/snipper"
)

// defaultRetryBaseDelay is the initial delay between run attempts.
const defaultRetryBaseDelay = time.Second

// Pipeline composes a data source, snipper, embedder and runner into a
// retryable run.
type Pipeline struct {
	config   *Config
	source   datasource.DataSource
	snipper  snipper.Snipper
	embedder ai.Embedder
	runner   Runner
	reporter FailureReporter
	logger   *slog.Logger

	retryBaseDelay time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner overrides the runner strategy. The default is the parallel
// dataflow runner.
func WithRunner(runner Runner) Option {
	return func(p *Pipeline) { p.runner = runner }
}

// WithReporter overrides the failure report sink. The default writes to
// stderr.
func WithReporter(reporter FailureReporter) Option {
	return func(p *Pipeline) { p.reporter = reporter }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithRetryBaseDelay overrides the initial delay between run attempts.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(p *Pipeline) { p.retryBaseDelay = delay }
}

// New builds a pipeline from a validated configuration. All registry
// lookups happen here, before any I/O, so unknown component names fail
// as configuration errors rather than run failures.
func New(config *Config, deps Deps, opts ...Option) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	source, err := BuildDataSource(config, deps)
	if err != nil {
		return nil, err
	}
	sn, err := BuildSnipper(config.Snipper)
	if err != nil {
		return nil, err
	}
	embedder, err := BuildEmbedder(config.Embedder)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:         config,
		source:         source,
		snipper:        sn,
		embedder:       embedder,
		runner:         NewParallelRunner(deps.Documents, config.FetchWorkers, config.IndexBatchSize),
		reporter:       NewWriterReporter(os.Stderr),
		logger:         slog.Default().With("component", "pipeline"),
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the pipeline, retrying the whole run up to MaxRetries
// times on systemic failure. Per-item failures never trigger a retry;
// they are handed to the failure reporter after the run completes.
// Returns the final attempt's report, or ErrPipelineFatal when every
// attempt failed.
func (p *Pipeline) Run(ctx context.Context, useAll bool) (*RunReport, error) {
	var report *RunReport

	err := RetryWithBackoff(ctx, func(attempt int) error {
		p.logger.Info("starting run attempt",
			"attempt", attempt,
			"maxRetries", p.config.MaxRetries,
			"dataSource", p.config.DataSource,
			"index", p.config.IndexName,
			"useAll", useAll)

		var runErr error
		report, runErr = p.runner.Run(ctx, p.source, p.snipper, p.embedder, p.config.IndexName, useAll)
		if runErr != nil {
			p.logger.Error("run attempt failed", "attempt", attempt, "err", runErr)
		}
		return runErr
	}, p.config.MaxRetries, p.retryBaseDelay)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFatal, err)
	}

	p.reportFailures(report)
	return report, nil
}

// reportFailures hands each stage's non-empty failure list to the
// reporter. Reporter errors are logged, not propagated; a completed run
// stays completed.
func (p *Pipeline) reportFailures(report *RunReport) {
	for _, stage := range []string{StageURLToDocuments, StageWriteDocuments, StageIndexing} {
		failures := report.Failures[stage]
		if len(failures) == 0 {
			continue
		}
		summary := fmt.Sprintf("%d item(s) failed during %s", len(failures), stage)
		if err := p.reporter.Report(stage, summary, failures); err != nil {
			p.logger.Error("failed to write failure report", "stage", stage, "err", err)
		}
	}
}
