// Search index [Index] implementation.
//
// Talks to a private media index exposing a JSON search endpoint: the query
// is a structured object with free-text terms and scope flags, the response
// wraps results in a "data" array. Author metadata, when present, arrives as
// an id → name mapping that some deployments double-encode as a JSON string.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

const defaultSearchLimit = 25

// IndexService implements [Index] against the JSON search endpoint.
type IndexService struct {
	baseURL    string
	apiKey     string
	category   int
	limit      int
	httpClient *http.Client
}

// NewIndexService creates an IndexService.
//
// category scopes every query to one index category (0 disables the filter);
// limit caps the result page size. The HTTP client supplies the request
// timeout; nil falls back to [http.DefaultClient].
func NewIndexService(baseURL, apiKey string, category, limit int, client *http.Client) *IndexService {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &IndexService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		category:   category,
		limit:      limit,
		httpClient: client,
	}
}

type searchScope struct {
	Title  bool `json:"title"`
	Author bool `json:"author"`
}

type searchQuery struct {
	Text     string      `json:"text"`
	SearchIn searchScope `json:"srchIn"`
	Category int         `json:"cat,omitempty"`
	SortType string      `json:"sortType"`
	Start    int         `json:"startNumber"`
	PerPage  int         `json:"perpage"`
}

type searchRequest struct {
	Tor searchQuery `json:"tor"`
}

type indexResult struct {
	ID         json.Number     `json:"id"`
	Title      string          `json:"title"`
	DL         string          `json:"dl,omitempty"`
	AuthorInfo json.RawMessage `json:"author_info,omitempty"`
}

type searchResponse struct {
	Data []indexResult `json:"data"`
}

// Search queries the index with title and author as must-match phrase terms.
//
// Results come back in index relevance order. Transport failures and
// non-success statuses return [shared.ErrSearchService]; an empty result set
// is not an error.
func (s *IndexService) Search(ctx context.Context, title, author string) ([]models.SearchResult, error) {
	query := searchRequest{
		Tor: searchQuery{
			Text:     fmt.Sprintf("%q %q", shared.NormalizeText(title), shared.NormalizeText(author)),
			SearchIn: searchScope{Title: true, Author: true},
			Category: s.category,
			SortType: "default",
			Start:    0,
			PerPage:  s.limit,
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	apiURL := s.baseURL + "/api/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSearchService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrSearchService, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrSearchService, err)
	}

	results := make([]models.SearchResult, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		results = append(results, models.SearchResult{
			ID:      item.ID.String(),
			Title:   item.Title,
			Hash:    item.DL,
			Authors: decodeAuthorInfo(item.AuthorInfo),
		})
	}

	return results, nil
}

// DownloadURL resolves the download reference for a selected candidate.
// The hash endpoint is preferred; the numeric id works as a fallback.
func (s *IndexService) DownloadURL(result models.SearchResult) models.DownloadRef {
	if result.Hash != "" {
		return models.DownloadRef(fmt.Sprintf("%s/tor/download.php/%s", s.baseURL, result.Hash))
	}
	return models.DownloadRef(fmt.Sprintf("%s/tor/download.php?tid=%s", s.baseURL, result.ID))
}

// decodeAuthorInfo parses the author_info field, which is either an object
// or a JSON-encoded string containing one. Unparseable payloads yield nil,
// which the matcher treats as "author metadata unavailable".
func decodeAuthorInfo(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var direct map[string]string
	if err := json.Unmarshal(raw, &direct); err == nil {
		if len(direct) == 0 {
			return nil
		}
		return direct
	}

	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped == "" {
		return nil
	}

	var nested map[string]string
	if err := json.Unmarshal([]byte(wrapped), &nested); err != nil || len(nested) == 0 {
		return nil
	}
	return nested
}
