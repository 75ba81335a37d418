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


// Package wikipedia is a DataSource connector for MediaWiki-backed wikis.
// It discovers pages by walking category trees and fetches plain-text
// extracts for each page.
package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/jagath-jaikumar/historia/ai"
	"github.com/jagath-jaikumar/historia/core"
	"github.com/jagath-jaikumar/historia/datasource"
	"github.com/jagath-jaikumar/historia/snipper"
	"github.com/jagath-jaikumar/historia/storage"
)

const (
	// PageIDURLBase is the stable identifier scheme for pages. curid
	// URLs survive page renames, unlike title-based URLs.
	PageIDURLBase = "https://en.wikipedia.org/?curid="

	defaultCategoryDepth = 1
	defaultFetchWorkers  = 20
)

// Source discovers, fetches, persists and indexes wiki pages reachable
// from a set of seed categories.
type Source struct {
	client     *Client
	documents  storage.DocumentRepository
	indexes    storage.IndexRepository
	categories []string
	depth      int
	workers    int
}

var _ datasource.DataSource = (*Source)(nil)

// NewSource builds a Source from run-configuration parameters. Recognized
// params: "categories" (required, list of category names without the
// "Category:" prefix), "base_url" (optional MediaWiki API endpoint),
// "depth" (optional subcategory recursion depth, default 1).
func NewSource(params map[string]any, documents storage.DocumentRepository, indexes storage.IndexRepository) (*Source, error) {
	categories, err := stringSliceParam(params, "categories")
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: categories must not be empty", datasource.ErrInvalidParams)
	}

	baseURL, _ := params["base_url"].(string)

	depth := defaultCategoryDepth
	if raw, ok := params["depth"]; ok {
		depth, err = intParam(raw)
		if err != nil || depth < 0 {
			return nil, fmt.Errorf("%w: depth must be a non-negative integer", datasource.ErrInvalidParams)
		}
	}

	return &Source{
		client:     NewClient(baseURL),
		documents:  documents,
		indexes:    indexes,
		categories: categories,
		depth:      depth,
		workers:    defaultFetchWorkers,
	}, nil
}

// GenerateURLs walks the seed categories and their subcategories down to
// the configured depth and returns one curid URL per distinct page. When
// useAll is false, pages already persisted with unchanged content are
// skipped, which requires fetching candidate content during discovery
// and reading the document repository.
func (s *Source) GenerateURLs(ctx context.Context, useAll bool) ([]string, error) {
	pageIDs, err := s.collectPageIDs(ctx)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(pageIDs))
	for i, id := range pageIDs {
		urls[i] = PageIDURLBase + strconv.FormatInt(id, 10)
	}

	if useAll {
		return urls, nil
	}
	return s.filterUnchanged(ctx, urls)
}

// URLsToTextDocuments fetches plain-text content for each curid URL.
// Batches run on a bounded worker pool. URLs whose pages are missing
// are omitted from the result.
func (s *Source) URLsToTextDocuments(ctx context.Context, urls []string) ([]*core.TextDocument, error) {
	pageIDs := make([]int64, 0, len(urls))
	for _, u := range urls {
		id, err := ParsePageIDURL(u)
		if err != nil {
			return nil, err
		}
		pageIDs = append(pageIDs, id)
	}

	extracts, err := s.fetchExtracts(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	docs := make([]*core.TextDocument, 0, len(urls))
	for _, id := range pageIDs {
		page, ok := extracts[id]
		if !ok {
			continue
		}
		docs = append(docs, &core.TextDocument{
			Title:   page.Title,
			Content: page.Extract,
			URL:     PageIDURLBase + strconv.FormatInt(id, 10),
			Metadata: map[string]string{
				"pageid": strconv.FormatInt(id, 10),
				"source": "wikipedia",
			},
		})
	}
	return docs, nil
}

// WriteDocumentsToDatabase upserts the documents by URL in one
// transaction.
func (s *Source) WriteDocumentsToDatabase(ctx context.Context, documents []*core.TextDocument) error {
	if len(documents) == 0 {
		return nil
	}

	records := make([]*core.Document, len(documents))
	for i, doc := range documents {
		if err := core.ValidateTextDocument(doc); err != nil {
			return err
		}
		records[i] = &core.Document{
			URL:      doc.URL,
			Title:    doc.Title,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		}
	}

	_, err := s.documents.UpsertDocuments(ctx, records...)
	return err
}

// IndexDocuments snips and embeds each document and upserts the
// resulting snippet rows under the named index. One embedding batch call
// is made per document. A failing document is reported and skipped; the
// rest of the batch proceeds.
func (s *Source) IndexDocuments(ctx context.Context, documents []*core.Document, indexName string, sn snipper.Snipper, embedder ai.Embedder) ([]core.Failure, error) {
	index, err := s.indexes.GetOrCreateIndex(ctx, indexName, core.DefaultDimensions)
	if err != nil {
		return nil, err
	}

	var failures []core.Failure
	for _, doc := range documents {
		if err := s.indexDocument(ctx, index, doc, sn, embedder); err != nil {
			failures = append(failures, core.NewFailure(doc.URL, err))
		}
	}
	return failures, nil
}

func (s *Source) indexDocument(ctx context.Context, index *core.Index, doc *core.Document, sn snipper.Snipper, embedder ai.Embedder) error {
	var snippets []string
	for snippet := range sn.GenerateSnippets(doc.Content) {
		snippets = append(snippets, snippet)
	}
	if len(snippets) == 0 {
		return nil
	}

	vectors, err := embedder.EmbedTexts(ctx, snippets)
	if err != nil {
		return err
	}
	if len(vectors) != len(snippets) {
		return fmt.Errorf("%w: %d snippets, %d vectors", ai.ErrEmbeddingMismatch, len(snippets), len(vectors))
	}

	entries := make([]storage.SnippetEntry, len(snippets))
	for i, snippet := range snippets {
		if len(vectors[i]) != index.Dimensions {
			return fmt.Errorf("%w: index %q expects %d, got %d", core.ErrDimensionMismatch, index.Name, index.Dimensions, len(vectors[i]))
		}
		entries[i] = storage.SnippetEntry{
			Snippet: &core.IndexedSnippet{
				IndexId:    index.Id,
				DocumentId: doc.Id,
				Snippet:    snippet,
			},
			Embedding: &core.Embedding{
				Vector:     vectors[i],
				Dimensions: len(vectors[i]),
			},
		}
	}

	_, err = s.indexes.AddSnippets(ctx, entries...)
	return err
}

// collectPageIDs walks the category tree breadth-first, bounded by the
// configured depth, and returns distinct main-namespace page IDs in
// discovery order.
func (s *Source) collectPageIDs(ctx context.Context) ([]int64, error) {
	type frontier struct {
		category string
		depth    int
	}

	queue := make([]frontier, 0, len(s.categories))
	for _, category := range s.categories {
		queue = append(queue, frontier{category: category, depth: 0})
	}

	seenCategories := make(map[string]bool, len(s.categories))
	seenPages := make(map[int64]bool)
	var pageIDs []int64

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if seenCategories[current.category] {
			continue
		}
		seenCategories[current.category] = true

		members, err := s.client.CategoryMembers(ctx, current.category)
		if err != nil {
			return nil, err
		}

		for _, member := range members {
			switch member.Namespace {
			case namespaceMain:
				if !seenPages[member.PageID] {
					seenPages[member.PageID] = true
					pageIDs = append(pageIDs, member.PageID)
				}
			case namespaceCategory:
				if current.depth < s.depth {
					name := strings.TrimPrefix(member.Title, "Category:")
					queue = append(queue, frontier{category: name, depth: current.depth + 1})
				}
			}
		}
	}

	return pageIDs, nil
}

// fetchExtracts fans the page IDs out over the worker pool in
// API-request-sized batches and merges the results.
func (s *Source) fetchExtracts(ctx context.Context, pageIDs []int64) (map[int64]PageExtract, error) {
	if len(pageIDs) == 0 {
		return map[int64]PageExtract{}, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		extracts = make(map[int64]PageExtract, len(pageIDs))
	)

	for start := 0; start < len(pageIDs); start += extractBatchSize {
		end := min(start+extractBatchSize, len(pageIDs))
		batch := pageIDs[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			fetched, err := s.client.PageExtracts(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for id, page := range fetched {
				extracts[id] = page
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return extracts, nil
}

// filterUnchanged drops URLs whose persisted document content matches the
// freshly fetched content, keeping repeated runs incremental.
func (s *Source) filterUnchanged(ctx context.Context, urls []string) ([]string, error) {
	persisted, err := s.documents.GetDocumentsByURL(ctx, urls...)
	if err != nil {
		return nil, err
	}
	if len(persisted) == 0 {
		return urls, nil
	}

	fingerprints := make(map[string]core.ID, len(persisted))
	for _, doc := range persisted {
		fingerprints[doc.URL] = core.IDFromContent(doc.Content)
	}

	knownIDs := make([]int64, 0, len(persisted))
	for _, u := range urls {
		if _, ok := fingerprints[u]; ok {
			id, err := ParsePageIDURL(u)
			if err != nil {
				return nil, err
			}
			knownIDs = append(knownIDs, id)
		}
	}

	extracts, err := s.fetchExtracts(ctx, knownIDs)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		fingerprint, known := fingerprints[u]
		if !known {
			kept = append(kept, u)
			continue
		}
		id, err := ParsePageIDURL(u)
		if err != nil {
			return nil, err
		}
		page, ok := extracts[id]
		if !ok || core.IDFromContent(page.Extract) != fingerprint {
			kept = append(kept, u)
		}
	}
	return kept, nil
}

// ParsePageIDURL extracts the numeric page ID from a curid URL.
func ParsePageIDURL(pageURL string) (int64, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", datasource.ErrFetch, pageURL, err)
	}
	curid := parsed.Query().Get("curid")
	if curid == "" {
		return 0, fmt.Errorf("%w: %s: missing curid parameter", datasource.ErrFetch, pageURL)
	}
	id, err := strconv.ParseInt(curid, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: malformed curid", datasource.ErrFetch, pageURL)
	}
	return id, nil
}

func stringSliceParam(params map[string]any, key string) ([]string, error) {
	raw, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", datasource.ErrInvalidParams, key)
	}

	switch values := raw.(type) {
	case []string:
		return slices.Clone(values), nil
	case []any:
		out := make([]string, 0, len(values))
		for _, v := range values {
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q must be a list of strings", datasource.ErrInvalidParams, key)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q must be a list of strings", datasource.ErrInvalidParams, key)
	}
}

func intParam(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: expected integer", datasource.ErrInvalidParams)
	}
}
