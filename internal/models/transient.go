package models

import "github.com/desertthunder/shelfsync/internal/shared"

// WishlistEntry is one (author, title) pair parsed from a wishlist feed.
// Discarded after the diff stage.
type WishlistEntry struct {
	Author string
	Title  string
}

// Key returns the canonical comparison key for this entry.
func (e WishlistEntry) Key() string {
	return shared.NormalizeKey(e.Author, e.Title)
}

// MissingEntry is a wishlist item not present in the collection record set.
type MissingEntry struct {
	Author string
	Title  string
}

// Key returns the canonical comparison key for this entry.
func (e MissingEntry) Key() string {
	return shared.NormalizeKey(e.Author, e.Title)
}

// SearchResult is one candidate returned by the external search index.
type SearchResult struct {
	ID      string            // Index-assigned identifier
	Title   string            // Display title as listed on the index
	Hash    string            // Optional download hash
	Authors map[string]string // Optional structured author id → name mapping
}

// DownloadRef is the opaque URL or identifier handed to the download client.
type DownloadRef string
