package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Inventory errors
	ErrSchema = fmt.Errorf("invalid inventory schema")

	// Wishlist feed errors
	ErrFeedFetch = fmt.Errorf("feed fetch failed")
	ErrFeedParse = fmt.Errorf("feed parse failed")

	// Search index and download client errors
	ErrSearchService = fmt.Errorf("search index request failed")
	ErrSubmission    = fmt.Errorf("download submission failed")
	ErrAuth          = fmt.Errorf("download client authentication failed")

	// API and service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrBookNotFound       = fmt.Errorf("book not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
