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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jagath-jaikumar/historia/core"
)

// FailureReporter turns a stage's failure list into a durable artifact.
// Report content carries the stage name, a summary and the full list of
// failed identifiers with their reasons.
type FailureReporter interface {
	Report(stage string, summary string, failures []core.Failure) error
}

// WriterReporter writes failure reports to a single io.Writer. Safe for
// concurrent use.
type WriterReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

var _ FailureReporter = (*WriterReporter)(nil)

// NewWriterReporter creates a reporter writing to w, typically os.Stderr.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{writer: w}
}

// Report writes one stage report to the underlying writer.
func (r *WriterReporter) Report(stage string, summary string, failures []core.Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeReport(r.writer, stage, summary, failures)
}

// FileReporter writes each failure report to a timestamped file in a
// directory, one file per stage per run.
type FileReporter struct {
	dir string
}

var _ FailureReporter = (*FileReporter)(nil)

// NewFileReporter creates a reporter writing under dir, creating the
// directory if needed.
func NewFileReporter(dir string) (*FileReporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileReporter{dir: dir}, nil
}

// Report writes one stage report to a new timestamped file.
func (r *FileReporter) Report(stage string, summary string, failures []core.Failure) error {
	name := fmt.Sprintf("failures_%s_%s.txt", stage, time.Now().UTC().Format("20060102T150405"))
	file, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return err
	}
	defer file.Close()
	return writeReport(file, stage, summary, failures)
}

func writeReport(w io.Writer, stage string, summary string, failures []core.Failure) error {
	if _, err := fmt.Fprintf(w, "stage: %s\nsummary: %s\nfailed: %d\n", stage, summary, len(failures)); err != nil {
		return err
	}
	for _, failure := range failures {
		if _, err := fmt.Fprintf(w, "  %s\t%s\n", failure.URL, failure.Reason); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
