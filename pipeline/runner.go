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
	"errors"
	"time"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/snipper"
)

// Stage names used to tag per-item failures in reports.
const (
	StageURLToDocuments = "url_to_documents"
	StageWriteDocuments = "write_documents"
	StageIndexing       = "indexing"
)

// Runner names for the invocation surface.
const (
	RunnerParallel   = "parallel"
	RunnerSequential = "sequential"
)

// RunReport summarizes one completed run attempt. A run with per-item
// failures still completes; the failures are listed per stage.
type RunReport struct {
	URLs      int
	Fetched   int
	Persisted int
	Indexed   int
	Failures  map[string][]core.Failure
	Elapsed   time.Duration
}

func newRunReport() *RunReport {
	return &RunReport{Failures: make(map[string][]core.Failure)}
}

// TotalFailures counts failures across all stages.
func (r *RunReport) TotalFailures() int {
	total := 0
	for _, failures := range r.Failures {
		total += len(failures)
	}
	return total
}

// embeddingBackendDown reports whether every attempted document failed
// with an embedding backend error. Partial failures stay per-item; a
// clean sweep means the backend itself is unreachable.
func embeddingBackendDown(failures []core.Failure, attempted int) bool {
	if attempted == 0 || len(failures) != attempted {
		return false
	}
	for _, f := range failures {
		if !errors.Is(f.Err, ai.ErrEmbeddingBackend) {
			return false
		}
	}
	return true
}

// Runner executes the discover, fetch, persist, index stage sequence.
// An error return means the run attempt failed systemically; per-item
// failures are recorded in the report instead.
type Runner interface {
	Run(ctx context.Context, source datasource.DataSource, sn snipper.Snipper, embedder ai.Embedder, indexName string, useAll bool) (*RunReport, error)
}
