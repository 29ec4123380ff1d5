package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/shelfsync/internal/shared"
)

// CollectionRecord represents one owned book confirmed present in the local collection.
//
// Records are unique by normalized (author, title) and are never mutated or
// deleted within a batch run.
type CollectionRecord struct {
	id        string
	sequence  int
	author    string
	title     string
	createdAt time.Time
}

// NewCollectionRecord creates a CollectionRecord for the given (author, title) pair.
func NewCollectionRecord(sequence int, author, title string) *CollectionRecord {
	return &CollectionRecord{
		sequence:  sequence,
		author:    shared.NormalizeText(author),
		title:     shared.NormalizeText(title),
		createdAt: time.Now(),
	}
}

func (r *CollectionRecord) ID() string     { return r.id }
func (r *CollectionRecord) Sequence() int  { return r.sequence }
func (r *CollectionRecord) Author() string { return r.author }
func (r *CollectionRecord) Title() string  { return r.title }

func (r *CollectionRecord) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt equals CreatedAt; collection records are immutable.
func (r *CollectionRecord) UpdatedAt() time.Time { return r.createdAt }

func (r *CollectionRecord) SetID(id string)          { r.id = id }
func (r *CollectionRecord) SetSequence(seq int)      { r.sequence = seq }
func (r *CollectionRecord) SetCreatedAt(t time.Time) { r.createdAt = t }

// Key returns the canonical comparison key for this record.
func (r *CollectionRecord) Key() string {
	return shared.NormalizeKey(r.author, r.title)
}

// Validate checks that both author and title are non-blank after normalization.
func (r *CollectionRecord) Validate() error {
	if r.author == "" {
		return fmt.Errorf("collection record author is blank")
	}
	if r.title == "" {
		return fmt.Errorf("collection record title is blank")
	}
	return nil
}

// TrackedBook represents the system's persisted belief about whether a known
// title is currently owned.
//
// Rows are append-only for new (author, title) pairs and status-flip-only for
// existing pairs. Reconciliation never deletes a tracked book and never
// demotes one to missing; a missing status either arrives at creation time or
// goes stale.
type TrackedBook struct {
	id        string
	sequence  int
	author    string
	title     string
	status    BookStatus
	createdAt time.Time
	updatedAt time.Time
}

// NewTrackedBook creates a TrackedBook with the given status.
func NewTrackedBook(sequence int, author, title string, status BookStatus) *TrackedBook {
	now := time.Now()
	return &TrackedBook{
		sequence:  sequence,
		author:    shared.NormalizeText(author),
		title:     shared.NormalizeText(title),
		status:    status,
		createdAt: now,
		updatedAt: now,
	}
}

func (b *TrackedBook) ID() string         { return b.id }
func (b *TrackedBook) Sequence() int      { return b.sequence }
func (b *TrackedBook) Author() string     { return b.author }
func (b *TrackedBook) Title() string      { return b.title }
func (b *TrackedBook) Status() BookStatus { return b.status }

func (b *TrackedBook) CreatedAt() time.Time { return b.createdAt }
func (b *TrackedBook) UpdatedAt() time.Time { return b.updatedAt }

func (b *TrackedBook) SetID(id string)          { b.id = id }
func (b *TrackedBook) SetSequence(seq int)      { b.sequence = seq }
func (b *TrackedBook) SetCreatedAt(t time.Time) { b.createdAt = t }
func (b *TrackedBook) SetUpdatedAt(t time.Time) { b.updatedAt = t }

// MarkActive flips the book to active.
func (b *TrackedBook) MarkActive() {
	b.status = StatusActive
	b.updatedAt = time.Now()
}

// MarkMissing flips the book to missing.
func (b *TrackedBook) MarkMissing() {
	b.status = StatusMissing
	b.updatedAt = time.Now()
}

// Key returns the canonical comparison key for this book.
func (b *TrackedBook) Key() string {
	return shared.NormalizeKey(b.author, b.title)
}

// Validate checks field presence and that the status is a known value.
func (b *TrackedBook) Validate() error {
	if b.author == "" {
		return fmt.Errorf("tracked book author is blank")
	}
	if b.title == "" {
		return fmt.Errorf("tracked book title is blank")
	}
	if !b.status.Valid() {
		return fmt.Errorf("tracked book status %q is invalid", b.status)
	}
	return nil
}
