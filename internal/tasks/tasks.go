// package tasks implements the batch pipeline that keeps the local
// collection, the tracked-book table, the wishlist feeds, and the download
// client in sync.
//
// The core abstraction is BatchEngine, which orchestrates import,
// reconciliation, wishlist diffing, and acquisition. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/matching"
	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/repositories"
	"github.com/desertthunder/shelfsync/internal/services"
	"github.com/desertthunder/shelfsync/internal/shared"
	"golang.org/x/time/rate"
)

// ImportResult summarizes one inventory import pass.
type ImportResult struct {
	RowsRead    int // Data rows found in the source
	SkippedRows int // Rows dropped for a blank author or title
	Inserted    int // New collection records persisted
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Total     int // Collection records considered
	Activated int // Tracked books flipped back to active
	Created   int // Tracked books inserted as active
	Unchanged int // Tracked books already active
}

// FeedError records a feed that could not be fetched or parsed. The rest of
// the batch proceeds without it.
type FeedError struct {
	URL string
	Err error
}

// DiffResult contains the wishlist entries not present in the collection,
// in first-seen order across feeds.
type DiffResult struct {
	Missing        []models.MissingEntry // Deduplicated entries not owned
	SkippedEntries int                   // Feed entries dropped for missing fields
	Warnings       []string              // One message per skipped entry
	FeedErrors     []FeedError           // Feeds skipped entirely
}

// OutcomeStatus classifies what happened to one missing entry during
// acquisition.
type OutcomeStatus int

const (
	OutcomeSubmitted OutcomeStatus = iota
	OutcomeNoMatch
	OutcomeSearchFailed
	OutcomeSubmitFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeSearchFailed:
		return "search_failed"
	case OutcomeSubmitFailed:
		return "submit_failed"
	default:
		return ""
	}
}

// EntryOutcome records the acquisition attempt for one missing entry.
type EntryOutcome struct {
	Entry     models.MissingEntry  // The requested entry
	Status    OutcomeStatus        // What happened
	Candidate *models.SearchResult // Selected candidate (nil if none passed)
	Ref       models.DownloadRef   // Resolved download reference
	Error     error                // Per-entry failure, nil for submitted/no-match
}

// AcquireResult contains the outcome of the acquisition loop.
type AcquireResult struct {
	Outcomes       []EntryOutcome // One per missing entry, in input order
	Submitted      int            // Entries handed to the download client
	NoMatch        int            // Entries with no passing candidate
	SearchFailures int            // Entries whose index query failed
	SubmitFailures int            // Entries whose submission was rejected
}

// BatchResult aggregates every stage of a full batch run for the end-of-run
// summary. Stages that did not run are nil.
type BatchResult struct {
	Import    *ImportResult
	Reconcile *ReconcileResult
	Diff      *DiffResult
	Acquire   *AcquireResult
}

// BatchEngine defines the stages of the collection sync pipeline. Each stage
// consumes the prior stage's persisted or returned output; Run chains all of
// them.
type BatchEngine interface {
	// Import reads the inventory source and persists new collection records.
	Import(ctx context.Context, progress chan<- ProgressUpdate) (*ImportResult, error)

	// Reconcile synchronizes the tracked-book table against the collection.
	Reconcile(ctx context.Context, progress chan<- ProgressUpdate) (*ReconcileResult, error)

	// Diff fetches the wishlist feeds and returns entries not owned.
	Diff(ctx context.Context, progress chan<- ProgressUpdate) (*DiffResult, error)

	// Acquire searches the index for each entry and submits matches to the
	// download client.
	Acquire(ctx context.Context, progress chan<- ProgressUpdate, entries []models.MissingEntry) (*AcquireResult, error)

	// Run executes the full pipeline: import, reconcile, diff, acquire.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error)
}

// ShelfEngine implements BatchEngine over the repositories and external
// service collaborators.
type ShelfEngine struct {
	collection  *repositories.CollectionRepository
	tracked     *repositories.TrackedBookRepository
	inventory   *services.InventoryService
	fetcher     services.FeedFetcher
	feedURLs    []string
	index       services.Index
	downloader  services.Downloader
	titles      matching.TitleMatcher
	authors     matching.AuthorMatcher
	limiter     *rate.Limiter
	credentials map[string]string
	category    string
}

// EngineOpts contains the collaborators and policies for a ShelfEngine.
//
// Titles and Authors default to the permissive token-subset and exact
// matchers. RateLimit throttles index queries in requests per second and
// defaults to 1.
type EngineOpts struct {
	Collection  *repositories.CollectionRepository
	Tracked     *repositories.TrackedBookRepository
	Inventory   *services.InventoryService
	Fetcher     services.FeedFetcher
	FeedURLs    []string
	Index       services.Index
	Downloader  services.Downloader
	Titles      matching.TitleMatcher
	Authors     matching.AuthorMatcher
	Credentials map[string]string
	Category    string
	RateLimit   float64
}

// NewShelfEngine creates a ShelfEngine with the provided collaborators.
func NewShelfEngine(opts EngineOpts) *ShelfEngine {
	if opts.Titles == nil {
		opts.Titles = matching.TokenSubsetMatcher{}
	}
	if opts.Authors == nil {
		opts.Authors = matching.ExactAuthorMatcher{}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	return &ShelfEngine{
		collection:  opts.Collection,
		tracked:     opts.Tracked,
		inventory:   opts.Inventory,
		fetcher:     opts.Fetcher,
		feedURLs:    opts.FeedURLs,
		index:       opts.Index,
		downloader:  opts.Downloader,
		titles:      opts.Titles,
		authors:     opts.Authors,
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		credentials: opts.Credentials,
		category:    opts.Category,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ShelfEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Import reads the inventory source and persists new collection records.
//
// Rows with a blank author or title after normalization are counted and
// skipped. Schema failures from the source abort the stage.
func (e *ShelfEngine) Import(ctx context.Context, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if e.inventory == nil || e.collection == nil {
		return nil, fmt.Errorf("%w: inventory source not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, readInventoryUpdate(1, 2, e.inventory.Path()))

	rows, err := e.inventory.ReadRows()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{RowsRead: len(rows)}
	records := make([]*models.CollectionRecord, 0, len(rows))

	for _, row := range rows {
		author, title := shared.NormalizeText(row.Author), shared.NormalizeText(row.Title)
		if author == "" || title == "" {
			result.SkippedRows++
			continue
		}
		records = append(records, models.NewCollectionRecord(0, author, title))
	}

	e.sendProgress(progress, importRecordsUpdate(2, 2, len(records)))

	inserted, err := e.collection.ImportAll(records)
	if err != nil {
		return nil, err
	}
	result.Inserted = inserted
	return result, nil
}

// Reconcile synchronizes the tracked-book table against the current
// collection in one transaction. Tracked books absent from the collection
// are left untouched.
func (e *ShelfEngine) Reconcile(ctx context.Context, progress chan<- ProgressUpdate) (*ReconcileResult, error) {
	if e.collection == nil || e.tracked == nil {
		return nil, fmt.Errorf("%w: repositories not initialized", shared.ErrServiceUnavailable)
	}

	records, err := e.collection.List(nil)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, reconcileUpdate(1, 1, len(records)))

	stats, err := e.tracked.ReconcileAll(records)
	if err != nil {
		return nil, err
	}

	return &ReconcileResult{
		Total:     len(records),
		Activated: stats.Activated,
		Created:   stats.Created,
		Unchanged: stats.Unchanged,
	}, nil
}

// Diff fetches each wishlist feed and computes the set difference against
// the collection.
//
// A feed that fails to fetch or parse is recorded and skipped; the other
// feeds still contribute. Output order is first-seen order across feeds in
// input order, entries within a feed in document order.
func (e *ShelfEngine) Diff(ctx context.Context, progress chan<- ProgressUpdate) (*DiffResult, error) {
	if e.collection == nil {
		return nil, fmt.Errorf("%w: repositories not initialized", shared.ErrServiceUnavailable)
	}
	if len(e.feedURLs) > 0 && e.fetcher == nil {
		return nil, fmt.Errorf("%w: feed fetcher not initialized", shared.ErrServiceUnavailable)
	}

	records, err := e.collection.List(nil)
	if err != nil {
		return nil, err
	}

	owned := make(map[string]bool, len(records))
	for _, rec := range records {
		owned[rec.Key()] = true
	}

	result := &DiffResult{}
	seen := make(map[string]bool)
	total := len(e.feedURLs)

	for i, url := range e.feedURLs {
		e.sendProgress(progress, fetchFeedUpdate(i+1, total, url))

		feed, err := e.fetcher.Fetch(ctx, url)
		if err != nil {
			result.FeedErrors = append(result.FeedErrors, FeedError{URL: url, Err: err})
			e.sendProgress(progress, feedFailedUpdate(i+1, total, url, err))
			continue
		}

		result.SkippedEntries += feed.Skipped
		result.Warnings = append(result.Warnings, feed.Warnings...)

		for _, entry := range feed.Entries {
			key := entry.Key()
			if owned[key] || seen[key] {
				continue
			}
			seen[key] = true
			result.Missing = append(result.Missing, models.MissingEntry{
				Author: entry.Author,
				Title:  entry.Title,
			})
		}
	}

	e.sendProgress(progress, diffUpdate(total, total, len(result.Missing)))
	return result, nil
}

// Acquire searches the index for each missing entry and submits the first
// passing candidate to the download client.
//
// The download client is authenticated once, up front; an auth failure
// aborts the stage before any submission attempt. Index queries are rate
// limited. Per-entry failures are recorded in the result and do not stop the
// loop; only context cancellation aborts it.
func (e *ShelfEngine) Acquire(ctx context.Context, progress chan<- ProgressUpdate, entries []models.MissingEntry) (*AcquireResult, error) {
	if e.index == nil {
		return nil, fmt.Errorf("%w: search index not initialized", shared.ErrServiceUnavailable)
	}
	if e.downloader == nil {
		return nil, fmt.Errorf("%w: download client not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, loginUpdate(e.downloader.Name()))
	if err := e.downloader.Authenticate(ctx, e.credentials); err != nil {
		return nil, err
	}

	result := &AcquireResult{Outcomes: make([]EntryOutcome, 0, len(entries))}
	total := len(entries)

	for i, entry := range entries {
		e.sendProgress(progress, searchEntryUpdate(i+1, total, entry))

		if err := e.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("acquisition interrupted: %w", err)
		}

		candidates, err := e.index.Search(ctx, entry.Title, entry.Author)
		if err != nil {
			result.SearchFailures++
			result.Outcomes = append(result.Outcomes, EntryOutcome{
				Entry:  entry,
				Status: OutcomeSearchFailed,
				Error:  err,
			})
			e.sendProgress(progress, entryFailedUpdate(SearchIndex, i+1, total, entry, err))
			continue
		}

		candidate, ok := e.selectCandidate(entry, candidates)
		if !ok {
			result.NoMatch++
			result.Outcomes = append(result.Outcomes, EntryOutcome{
				Entry:  entry,
				Status: OutcomeNoMatch,
			})
			e.sendProgress(progress, noMatchUpdate(i+1, total, entry))
			continue
		}

		ref := e.index.DownloadURL(candidate)
		if err := e.downloader.Submit(ctx, ref, e.category); err != nil {
			result.SubmitFailures++
			result.Outcomes = append(result.Outcomes, EntryOutcome{
				Entry:     entry,
				Status:    OutcomeSubmitFailed,
				Candidate: &candidate,
				Ref:       ref,
				Error:     err,
			})
			e.sendProgress(progress, entryFailedUpdate(SubmitDownload, i+1, total, entry, err))
			continue
		}

		result.Submitted++
		result.Outcomes = append(result.Outcomes, EntryOutcome{
			Entry:     entry,
			Status:    OutcomeSubmitted,
			Candidate: &candidate,
			Ref:       ref,
		})
		e.sendProgress(progress, submittedUpdate(i+1, total, entry, ref))
	}

	return result, nil
}

// selectCandidate picks the first candidate in index order whose display
// title passes the title policy. A candidate carrying author metadata must
// also pass the author policy; one without is accepted on title alone.
func (e *ShelfEngine) selectCandidate(entry models.MissingEntry, candidates []models.SearchResult) (models.SearchResult, bool) {
	for _, candidate := range candidates {
		if !e.titles.Match(entry.Title, candidate.Title) {
			continue
		}
		if len(candidate.Authors) > 0 && !e.authors.Match(entry.Author, candidate.Authors) {
			continue
		}
		return candidate, true
	}
	return models.SearchResult{}, false
}

// Run executes the full batch: import, reconcile, diff, then acquisition for
// any missing entries.
//
// Authentication happens once, before the first submission attempt; an auth
// failure aborts the acquisition stage entirely. Stages that completed are
// kept in the returned result even when a later stage fails.
func (e *ShelfEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*BatchResult, error) {
	result := &BatchResult{}

	imported, err := e.Import(ctx, progress)
	if err != nil {
		return result, err
	}
	result.Import = imported

	reconciled, err := e.Reconcile(ctx, progress)
	if err != nil {
		return result, err
	}
	result.Reconcile = reconciled

	diff, err := e.Diff(ctx, progress)
	if err != nil {
		return result, err
	}
	result.Diff = diff

	if len(diff.Missing) == 0 || e.index == nil || e.downloader == nil {
		return result, nil
	}

	acquired, err := e.Acquire(ctx, progress, diff.Missing)
	result.Acquire = acquired
	if err != nil {
		return result, err
	}

	return result, nil
}
