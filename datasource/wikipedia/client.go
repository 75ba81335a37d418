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


package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultAPIBaseURL is the MediaWiki action API endpoint for the
	// English Wikipedia.
	DefaultAPIBaseURL = "https://en.wikipedia.org/w/api.php"

	userAgent = "historia/1.0 (https://github.com/jagath-jaikumar/historia)"

	// MediaWiki caps extracts at 20 pages per request for explaintext.
	extractBatchSize = 20

	categoryMemberLimit = "500"

	namespaceMain     = 0
	namespaceCategory = 14
)

// defaultRequestsPerSecond keeps well under the API's anonymous-client
// throttling threshold.
const defaultRequestsPerSecond = 10

// Client is a minimal MediaWiki action API client covering category
// traversal and plain-text page extracts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a client for the given MediaWiki API endpoint.
// An empty baseURL selects the English Wikipedia.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), 1),
	}
}

// CategoryMember is one entry of a category listing.
type CategoryMember struct {
	PageID    int64  `json:"pageid"`
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
}

// PageExtract is the plain-text rendering of one page.
type PageExtract struct {
	PageID  int64  `json:"pageid"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Missing bool   `json:"missing"`
}

type categoryMembersResponse struct {
	Continue struct {
		CmContinue string `json:"cmcontinue"`
	} `json:"continue"`
	Query struct {
		CategoryMembers []CategoryMember `json:"categorymembers"`
	} `json:"query"`
}

type extractsResponse struct {
	Query struct {
		Pages []PageExtract `json:"pages"`
	} `json:"query"`
}

// CategoryMembers lists all members of a category, following the
// cmcontinue cursor until the listing is exhausted. The category name is
// given without the "Category:" prefix.
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]CategoryMember, error) {
	var members []CategoryMember
	cmContinue := ""

	for {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("format", "json")
		params.Set("formatversion", "2")
		params.Set("list", "categorymembers")
		params.Set("cmtitle", "Category:"+category)
		params.Set("cmlimit", categoryMemberLimit)
		if cmContinue != "" {
			params.Set("cmcontinue", cmContinue)
		}

		var resp categoryMembersResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("list category %q: %w", category, err)
		}

		members = append(members, resp.Query.CategoryMembers...)
		if resp.Continue.CmContinue == "" {
			return members, nil
		}
		cmContinue = resp.Continue.CmContinue
	}
}

// PageExtracts fetches plain-text extracts for the given page IDs,
// batching requests to the API's per-request page limit. Pages the API
// reports as missing are omitted from the result.
func (c *Client) PageExtracts(ctx context.Context, pageIDs []int64) (map[int64]PageExtract, error) {
	extracts := make(map[int64]PageExtract, len(pageIDs))

	for start := 0; start < len(pageIDs); start += extractBatchSize {
		end := min(start+extractBatchSize, len(pageIDs))
		batch := pageIDs[start:end]

		ids := make([]string, len(batch))
		for i, id := range batch {
			ids[i] = strconv.FormatInt(id, 10)
		}

		params := url.Values{}
		params.Set("action", "query")
		params.Set("format", "json")
		params.Set("formatversion", "2")
		params.Set("prop", "extracts")
		params.Set("explaintext", "1")
		params.Set("exlimit", "max")
		params.Set("pageids", strings.Join(ids, "|"))

		var resp extractsResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("fetch extracts: %w", err)
		}

		for _, page := range resp.Query.Pages {
			if page.Missing || page.PageID == 0 {
				continue
			}
			extracts[page.PageID] = page
		}
	}

	return extracts, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mediawiki api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode mediawiki response: %w", err)
	}
	return nil
}
