// Package models defines the data model for the shelf sync pipeline.
//
// Persisted entities (CollectionRecord, TrackedBook) implement the Model
// interface and are stored through the repositories package. Transient types
// (WishlistEntry, MissingEntry, SearchResult) only live for the duration of a
// batch run and are never written to the database.
package models
