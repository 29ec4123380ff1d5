package tasks

import (
	"fmt"

	"github.com/desertthunder/shelfsync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadInventory Phase = iota
	ImportRecords
	ReconcileBooks
	FetchFeed
	DiffWishlist
	Login
	SearchIndex
	SubmitDownload
)

func (p Phase) String() string {
	switch p {
	case ReadInventory:
		return "read_inventory"
	case ImportRecords:
		return "import_records"
	case ReconcileBooks:
		return "reconcile_books"
	case FetchFeed:
		return "fetch_feed"
	case DiffWishlist:
		return "diff_wishlist"
	case Login:
		return "login"
	case SearchIndex:
		return "search_index"
	case SubmitDownload:
		return "submit_download"
	default:
		return ""
	}
}

func readInventoryUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadInventory,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Reading inventory (%s)...", path),
	}
}

func importRecordsUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportRecords,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Importing %d collection records...", count),
	}
}

func reconcileUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReconcileBooks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Reconciling %d collection records...", count),
	}
}

func fetchFeedUpdate(step, total int, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching feed: %s...", step, total, url),
	}
}

func feedFailedUpdate(step, total int, url string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, url, err),
	}
}

func diffUpdate(step, total, missing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiffWishlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d missing entries", missing),
	}
}

func loginUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Login,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Logging into %s...", name),
	}
}

func searchEntryUpdate(step, total int, entry models.MissingEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchIndex,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Author, entry.Title),
	}
}

func submittedUpdate(step, total int, entry models.MissingEntry, ref models.DownloadRef) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitDownload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, entry.Author, entry.Title),
		Data:    ref,
	}
}

func noMatchUpdate(step, total int, entry models.MissingEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchIndex,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] no match: %s - %s", step, total, entry.Author, entry.Title),
	}
}

func entryFailedUpdate(phase Phase, step, total int, entry models.MissingEntry, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, entry.Author, entry.Title, err),
	}
}
