// Wishlist feed fetching and parsing.
//
// Feeds are RSS/Atom documents parsed with gofeed. Producers disagree on
// where the author name lives (item author, Dublin Core creator, or a custom
// element), so extraction falls through a configurable chain.
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/mmcdole/gofeed"
)

// FeedService implements [FeedFetcher] over gofeed.
type FeedService struct {
	parser      *gofeed.Parser
	authorField string
	httpClient  *http.Client
}

// NewFeedService creates a FeedService.
//
// authorField optionally names a custom per-item element to consult when the
// standard author fields are empty (e.g. "author_name" for Goodreads shelf
// feeds). The HTTP client supplies the request timeout; nil falls back to
// [http.DefaultClient].
func NewFeedService(authorField string, client *http.Client) *FeedService {
	if client == nil {
		client = http.DefaultClient
	}

	return &FeedService{
		parser:      gofeed.NewParser(),
		authorField: authorField,
		httpClient:  client,
	}
}

// Fetch retrieves and parses a single wishlist feed.
//
// Transport and HTTP failures return [shared.ErrFeedFetch]; structural parse
// failures return [shared.ErrFeedParse]. Both are fatal for this feed only.
// Entries missing an author or title are skipped and reported as warnings.
func (f *FeedService) Fetch(ctx context.Context, url string) (*FeedResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFeedFetch, url, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFeedFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status %d", shared.ErrFeedFetch, url, resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFeedParse, url, err)
	}

	result := &FeedResult{URL: url}

	for i, item := range feed.Items {
		title := shared.NormalizeText(item.Title)
		author := shared.NormalizeText(f.itemAuthor(item))

		if title == "" || author == "" {
			result.Skipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("entry %d of %s missing author or title, skipped", i+1, url))
			continue
		}

		result.Entries = append(result.Entries, models.WishlistEntry{
			Author: author,
			Title:  title,
		})
	}

	return result, nil
}

// itemAuthor extracts the author name from a feed item, falling through
// item authors → Dublin Core creator → the configured custom element.
func (f *FeedService) itemAuthor(item *gofeed.Item) string {
	for _, person := range item.Authors {
		if person != nil && person.Name != "" {
			return person.Name
		}
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return item.DublinCoreExt.Creator[0]
	}
	if f.authorField != "" {
		if v, ok := item.Custom[f.authorField]; ok {
			return v
		}
	}
	return ""
}
