package services

import (
	"context"

	"github.com/desertthunder/shelfsync/internal/models"
)

// Index defines the search index collaborator used by the acquisition stage.
type Index interface {
	// Search queries the index with title and author as must-match phrase
	// terms and returns candidates in index order.
	Search(ctx context.Context, title, author string) ([]models.SearchResult, error)

	// DownloadURL resolves the download reference for a selected candidate.
	DownloadURL(result models.SearchResult) models.DownloadRef
}

// Downloader defines the download client collaborator.
type Downloader interface {
	// Authenticate establishes a session with the download client.
	// Must succeed before any Submit call.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Submit hands a download reference to the client under the given category.
	Submit(ctx context.Context, ref models.DownloadRef, category string) error

	// Name returns the client name for logs and reports.
	Name() string
}

// FeedFetcher defines the wishlist feed collaborator.
type FeedFetcher interface {
	// Fetch retrieves and parses one feed. A fatal structural error is
	// returned as an error; per-entry problems are folded into the result.
	Fetch(ctx context.Context, url string) (*FeedResult, error)
}

// FeedResult is the outcome of parsing a single wishlist feed.
type FeedResult struct {
	URL      string                 // Feed locator
	Entries  []models.WishlistEntry // Entries in document order
	Skipped  int                    // Entries dropped for missing author or title
	Warnings []string               // One message per skipped entry
}
