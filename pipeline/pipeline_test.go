package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/snipper"
	"github.com/jagath-jaikumar/historia/storage"
	badgerstore "github.com/jagath-jaikumar/historia/storage/badger"
)

// stubSource is an in-memory DataSource with injectable failures, backed
// by real repositories for the persist and index operations.
type stubSource struct {
	mu            sync.Mutex
	urls          []string
	generateErr   error
	generateCalls int
	fetchFail     map[string]bool
	content       map[string]string

	documents storage.DocumentRepository
	indexes   storage.IndexRepository
}

var _ datasource.DataSource = (*stubSource)(nil)

func (s *stubSource) GenerateURLs(ctx context.Context, useAll bool) ([]string, error) {
	s.mu.Lock()
	s.generateCalls++
	s.mu.Unlock()

	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.urls, nil
}

func (s *stubSource) URLsToTextDocuments(ctx context.Context, urls []string) ([]*core.TextDocument, error) {
	var docs []*core.TextDocument
	for _, u := range urls {
		if s.fetchFail[u] {
			return nil, fmt.Errorf("%w: %s", datasource.ErrFetch, u)
		}
		docs = append(docs, &core.TextDocument{Title: u, Content: s.content[u], URL: u})
	}
	return docs, nil
}

func (s *stubSource) WriteDocumentsToDatabase(ctx context.Context, documents []*core.TextDocument) error {
	records := make([]*core.Document, len(documents))
	for i, doc := range documents {
		records[i] = &core.Document{URL: doc.URL, Title: doc.Title, Content: doc.Content}
	}
	_, err := s.documents.UpsertDocuments(ctx, records...)
	return err
}

func (s *stubSource) IndexDocuments(ctx context.Context, documents []*core.Document, indexName string, sn snipper.Snipper, embedder ai.Embedder) ([]core.Failure, error) {
	index, err := s.indexes.GetOrCreateIndex(ctx, indexName, core.DefaultDimensions)
	if err != nil {
		return nil, err
	}

	var failures []core.Failure
	for _, doc := range documents {
		var texts []string
		for snippet := range sn.GenerateSnippets(doc.Content) {
			texts = append(texts, snippet)
		}
		if len(texts) == 0 {
			continue
		}

		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			failures = append(failures, core.NewFailure(doc.URL, err))
			continue
		}

		entries := make([]storage.SnippetEntry, len(texts))
		for i, text := range texts {
			entries[i] = storage.SnippetEntry{
				Snippet:   &core.IndexedSnippet{IndexId: index.Id, DocumentId: doc.Id, Snippet: text},
				Embedding: &core.Embedding{Vector: vectors[i], Dimensions: len(vectors[i])},
			}
		}
		if _, err := s.indexes.AddSnippets(ctx, entries...); err != nil {
			failures = append(failures, core.NewFailure(doc.URL, err))
		}
	}
	return failures, nil
}

func newStubSource(t *testing.T, urls []string) *stubSource {
	t.Helper()

	documents, indexes, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		indexes.Close()
		backend.Close()
	})

	content := make(map[string]string, len(urls))
	for i, u := range urls {
		content[u] = fmt.Sprintf("document %d body %s", i, strings.Repeat("lorem ipsum ", 10))
	}

	return &stubSource{
		urls:      urls,
		fetchFail: map[string]bool{},
		content:   content,
		documents: documents,
		indexes:   indexes,
	}
}

func failureURLs(failures []core.Failure) []string {
	urls := make([]string, len(failures))
	for i, f := range failures {
		urls[i] = f.URL
	}
	return urls
}

func TestParallelRunnerIsolatesFetchFailures(t *testing.T) {
	urls := []string{"u://1", "u://2", "u://3", "u://4"}
	src := newStubSource(t, urls)
	src.fetchFail["u://2"] = true
	src.fetchFail["u://4"] = true

	runner := NewParallelRunner(src.documents, 4, MinIndexBatchSize)
	report, err := runner.Run(context.Background(), src, snipper.NewSimpleSnipper(10), ai.NewDummyEmbedder(), "test_idx", true)
	require.NoError(t, err)

	assert.Equal(t, 4, report.URLs)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 2, report.Persisted)
	assert.Equal(t, 2, report.Indexed)

	assert.ElementsMatch(t, []string{"u://2", "u://4"}, failureURLs(report.Failures[StageURLToDocuments]))
	assert.Empty(t, report.Failures[StageWriteDocuments])
	assert.Empty(t, report.Failures[StageIndexing])

	// The successful subset made it all the way through.
	stored, err := src.documents.GetDocumentsByURL(context.Background(), "u://1", "u://3")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	index, err := src.indexes.GetIndex(context.Background(), "test_idx")
	require.NoError(t, err)
	snippets, err := src.indexes.GetSnippetsByIndex(context.Background(), index.Id)
	require.NoError(t, err)
	assert.NotEmpty(t, snippets)
}

func TestParallelRunnerIsolatesIndexingFailures(t *testing.T) {
	urls := []string{"u://1", "u://2"}
	src := newStubSource(t, urls)

	embedder := &failingEmbedder{failFor: src.content["u://2"]}
	runner := NewParallelRunner(src.documents, 2, MinIndexBatchSize)
	report, err := runner.Run(context.Background(), src, snipper.NewSimpleSnipper(1000), embedder, "test_idx", true)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Persisted)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, []string{"u://2"}, failureURLs(report.Failures[StageIndexing]))
}

// failingEmbedder fails for batches containing a marker text and returns
// zero vectors otherwise.
type failingEmbedder struct {
	failFor string
}

func (f *failingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (f *failingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if strings.Contains(f.failFor, text) {
			return nil, fmt.Errorf("%w: injected", ai.ErrEmbeddingBackend)
		}
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, core.DefaultDimensions)
	}
	return vectors, nil
}

// downEmbedder simulates an unreachable embedding backend: every call
// fails with a backend error.
type downEmbedder struct{}

func (downEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("%w: connection refused", ai.ErrEmbeddingBackend)
}

func (downEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: connection refused", ai.ErrEmbeddingBackend)
}

func TestParallelRunnerEscalatesWhenBackendDownForAllDocuments(t *testing.T) {
	src := newStubSource(t, []string{"u://1", "u://2"})

	runner := NewParallelRunner(src.documents, 2, MinIndexBatchSize)
	_, err := runner.Run(context.Background(), src, snipper.NewSimpleSnipper(1000), downEmbedder{}, "test_idx", true)
	assert.ErrorIs(t, err, ErrEmbeddingBackendDown)
}

func TestSequentialRunnerEscalatesWhenBackendDownForAllDocuments(t *testing.T) {
	src := newStubSource(t, []string{"u://1", "u://2"})

	runner := NewSequentialRunner(src.documents)
	_, err := runner.Run(context.Background(), src, snipper.NewSimpleSnipper(1000), downEmbedder{}, "test_idx", true)
	assert.ErrorIs(t, err, ErrEmbeddingBackendDown)
}

func TestBackendDownRetriesThenFails(t *testing.T) {
	src := newStubSource(t, []string{"u://1", "u://2"})

	config := &Config{
		DataSource: DataSourceWikipedia,
		IndexName:  "test_idx",
		Snipper:    ComponentConfig{Type: SnipperSimple},
		Embedder:   ComponentConfig{Type: EmbedderDummy},
	}
	config.ApplyDefaults()

	p := &Pipeline{
		config:         config,
		source:         src,
		snipper:        snipper.NewSimpleSnipper(1000),
		embedder:       downEmbedder{},
		runner:         NewSequentialRunner(src.documents),
		reporter:       NewWriterReporter(io.Discard),
		logger:         slog.Default(),
		retryBaseDelay: time.Millisecond,
	}

	_, err := p.Run(context.Background(), true)
	assert.ErrorIs(t, err, ErrPipelineFatal)
	assert.ErrorIs(t, err, ErrEmbeddingBackendDown)
	assert.Equal(t, DefaultMaxRetries, src.generateCalls)
}

func TestSequentialRunnerMatchesParallelSemantics(t *testing.T) {
	urls := []string{"u://1", "u://2", "u://3"}

	runParallel := func() *RunReport {
		src := newStubSource(t, urls)
		src.fetchFail["u://2"] = true
		runner := NewParallelRunner(src.documents, 3, MinIndexBatchSize)
		report, err := runner.Run(context.Background(), src, snipper.NewSimpleSnipper(10), ai.NewDummyEmbedder(), "test_idx", true)
		require.NoError(t, err)
		return report
	}

	runSequential := func() *RunReport {
		src := newStubSource(t, urls)
		src.fetchFail["u://2"] = true
		runner := NewSequentialRunner(src.documents)
		report, err := runner.Run(context.Background(), src, snipper.NewSimpleSnipper(10), ai.NewDummyEmbedder(), "test_idx", true)
		require.NoError(t, err)
		return report
	}

	parallel := runParallel()
	sequential := runSequential()

	assert.Equal(t, parallel.URLs, sequential.URLs)
	assert.Equal(t, parallel.Fetched, sequential.Fetched)
	assert.Equal(t, parallel.Persisted, sequential.Persisted)
	assert.Equal(t, parallel.Indexed, sequential.Indexed)
	assert.ElementsMatch(t,
		failureURLs(parallel.Failures[StageURLToDocuments]),
		failureURLs(sequential.Failures[StageURLToDocuments]))
}

func TestRetryCeilingOnDiscoveryFailure(t *testing.T) {
	src := newStubSource(t, nil)
	src.generateErr = fmt.Errorf("corpus unavailable")

	config := &Config{
		DataSource: DataSourceWikipedia,
		IndexName:  "test_idx",
		Snipper:    ComponentConfig{Type: SnipperSimple},
		Embedder:   ComponentConfig{Type: EmbedderDummy},
	}
	config.ApplyDefaults()

	p := &Pipeline{
		config:         config,
		source:         src,
		snipper:        snipper.NewSimpleSnipper(10),
		embedder:       ai.NewDummyEmbedder(),
		runner:         NewSequentialRunner(src.documents),
		reporter:       NewWriterReporter(io.Discard),
		logger:         slog.Default(),
		retryBaseDelay: time.Millisecond,
	}

	_, err := p.Run(context.Background(), true)
	assert.ErrorIs(t, err, ErrPipelineFatal)
	assert.Equal(t, DefaultMaxRetries, src.generateCalls)
}

func TestPerItemFailuresDoNotTriggerRetry(t *testing.T) {
	src := newStubSource(t, []string{"u://1", "u://2"})
	src.fetchFail["u://1"] = true

	config := &Config{
		DataSource: DataSourceWikipedia,
		IndexName:  "test_idx",
		Snipper:    ComponentConfig{Type: SnipperSimple},
		Embedder:   ComponentConfig{Type: EmbedderDummy},
	}
	config.ApplyDefaults()

	reporter := &recordingReporter{}
	p := &Pipeline{
		config:         config,
		source:         src,
		snipper:        snipper.NewSimpleSnipper(10),
		embedder:       ai.NewDummyEmbedder(),
		runner:         NewSequentialRunner(src.documents),
		reporter:       reporter,
		logger:         slog.Default(),
		retryBaseDelay: time.Millisecond,
	}

	report, err := p.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, src.generateCalls)
	assert.Equal(t, 1, report.Indexed)

	// The reporter saw exactly the fetch failure, tagged with its stage.
	require.Len(t, reporter.calls, 1)
	assert.Equal(t, StageURLToDocuments, reporter.calls[0].stage)
	assert.Equal(t, []string{"u://1"}, failureURLs(reporter.calls[0].failures))
}

type reporterCall struct {
	stage    string
	summary  string
	failures []core.Failure
}

type recordingReporter struct {
	calls []reporterCall
}

func (r *recordingReporter) Report(stage string, summary string, failures []core.Failure) error {
	r.calls = append(r.calls, reporterCall{stage: stage, summary: summary, failures: failures})
	return nil
}
