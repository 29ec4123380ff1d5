package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

// TrackedBookRepository persists [models.TrackedBook] rows.
//
// Tracked books are append-only by (author, title) pair; the only permitted
// mutation is a status flip, so there is no general field update method.
type TrackedBookRepository struct {
	db *sql.DB
}

// ReconcileStats summarizes the outcome of a reconciliation pass.
type ReconcileStats struct {
	Activated int // Existing books flipped from missing to active
	Created   int // New books inserted as active
	Unchanged int // Books already active
}

// NewTrackedBookRepository creates a new TrackedBookRepository with the given database connection
func NewTrackedBookRepository(db *sql.DB) *TrackedBookRepository {
	return &TrackedBookRepository{db: db}
}

// Create inserts a new [models.TrackedBook] with generated ID and sequence
func (r *TrackedBookRepository) Create(book *models.TrackedBook) error {
	sequence, err := NextSequence(r.db, "tracked_books")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	book.SetSequence(sequence)
	book.SetID(shared.GenerateID())

	if err := book.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return insertTrackedBook(r.db, book)
}

func insertTrackedBook(q dbtx, book *models.TrackedBook) error {
	authorKey, titleKey := recordKeys(book.Author(), book.Title())

	query := `
		INSERT INTO tracked_books (id, sequence, author, title, author_key, title_key, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.Exec(query,
		book.ID(),
		book.Sequence(),
		book.Author(),
		book.Title(),
		authorKey,
		titleKey,
		book.Status().String(),
		book.CreatedAt(),
		book.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tracked book: %w", err)
	}

	return nil
}

// Get retrieves a tracked book by ID
func (r *TrackedBookRepository) Get(id string) (*models.TrackedBook, error) {
	query := `
		SELECT id, sequence, author, title, status, created_at, updated_at
		FROM tracked_books
		WHERE id = ?
	`
	return scanTrackedBook(r.db.QueryRow(query, id))
}

// GetByKey retrieves a tracked book by normalized (author, title) equality
func (r *TrackedBookRepository) GetByKey(author, title string) (*models.TrackedBook, error) {
	authorKey, titleKey := recordKeys(author, title)

	query := `
		SELECT id, sequence, author, title, status, created_at, updated_at
		FROM tracked_books
		WHERE author_key = ? AND title_key = ?
	`
	return scanTrackedBook(r.db.QueryRow(query, authorKey, titleKey))
}

// SetStatus flips the status of a tracked book.
func (r *TrackedBookRepository) SetStatus(id string, status models.BookStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", shared.ErrInvalidArgument, status)
	}

	result, err := r.db.Exec(
		"UPDATE tracked_books SET status = ?, updated_at = ? WHERE id = ?",
		status.String(), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrBookNotFound, id)
	}

	return nil
}

// List retrieves all tracked books matching the given criteria, ordered by sequence
func (r *TrackedBookRepository) List(criteria map[string]any) ([]*models.TrackedBook, error) {
	query := `
		SELECT id, sequence, author, title, status, created_at, updated_at
		FROM tracked_books
	`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked books: %w", err)
	}
	defer rows.Close()

	var books []*models.TrackedBook
	for rows.Next() {
		book, err := scanTrackedBookRow(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return books, nil
}

// ReconcileAll synchronizes tracked books against the current collection
// record set inside a single transaction.
//
// For each record: an existing tracked book is flipped to active (a no-op if
// already active), a missing one is inserted as active. Books absent from the
// collection are left untouched; reconciliation never demotes to missing.
func (r *TrackedBookRepository) ReconcileAll(records []*models.CollectionRecord) (*ReconcileStats, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &ReconcileStats{}

	for _, rec := range records {
		authorKey, titleKey := recordKeys(rec.Author(), rec.Title())

		var (
			id     string
			status string
		)
		err := tx.QueryRow(
			"SELECT id, status FROM tracked_books WHERE author_key = ? AND title_key = ?",
			authorKey, titleKey,
		).Scan(&id, &status)

		switch {
		case err == sql.ErrNoRows:
			sequence, err := nextSequence(tx, "tracked_books")
			if err != nil {
				return nil, err
			}

			book := models.NewTrackedBook(sequence, rec.Author(), rec.Title(), models.StatusActive)
			book.SetID(shared.GenerateID())
			if err := insertTrackedBook(tx, book); err != nil {
				return nil, err
			}
			stats.Created++

		case err != nil:
			return nil, fmt.Errorf("failed to look up tracked book: %w", err)

		case models.BookStatus(status) == models.StatusActive:
			// Already active, skip the write
			stats.Unchanged++

		default:
			_, err := tx.Exec(
				"UPDATE tracked_books SET status = ?, updated_at = ? WHERE id = ?",
				models.StatusActive.String(), time.Now(), id,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to activate tracked book: %w", err)
			}
			stats.Activated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	return stats, nil
}

func scanTrackedBook(row *sql.Row) (*models.TrackedBook, error) {
	var (
		id        string
		sequence  int
		author    string
		title     string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &sequence, &author, &title, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracked book: %w", err)
	}

	book := models.NewTrackedBook(sequence, author, title, models.BookStatus(status))
	book.SetID(id)
	book.SetCreatedAt(createdAt)
	book.SetUpdatedAt(updatedAt)
	return book, nil
}

func scanTrackedBookRow(rows *sql.Rows) (*models.TrackedBook, error) {
	var (
		id        string
		sequence  int
		author    string
		title     string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := rows.Scan(&id, &sequence, &author, &title, &status, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan tracked book: %w", err)
	}

	book := models.NewTrackedBook(sequence, author, title, models.BookStatus(status))
	book.SetID(id)
	book.SetCreatedAt(createdAt)
	book.SetUpdatedAt(updatedAt)
	return book, nil
}
