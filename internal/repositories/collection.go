package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

// CollectionRepository persists [models.CollectionRecord] rows.
//
// Records are unique by normalized (author, title); the table carries an
// author_key/title_key pair with a unique index so duplicate inserts fail at
// the database even if a caller skips the lookup.
type CollectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new CollectionRepository with the given database connection
func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func recordKeys(author, title string) (string, string) {
	return strings.ToLower(shared.NormalizeText(author)), strings.ToLower(shared.NormalizeText(title))
}

// Create inserts a new [models.CollectionRecord] with generated ID and sequence
func (r *CollectionRepository) Create(rec *models.CollectionRecord) error {
	sequence, err := NextSequence(r.db, "collection_records")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	rec.SetSequence(sequence)
	rec.SetID(shared.GenerateID())

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return insertCollectionRecord(r.db, rec)
}

func insertCollectionRecord(q dbtx, rec *models.CollectionRecord) error {
	authorKey, titleKey := recordKeys(rec.Author(), rec.Title())

	query := `
		INSERT INTO collection_records (id, sequence, author, title, author_key, title_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.Exec(query, rec.ID(), rec.Sequence(), rec.Author(), rec.Title(), authorKey, titleKey, rec.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert collection record: %w", err)
	}

	return nil
}

// Get retrieves a collection record by ID
func (r *CollectionRepository) Get(id string) (*models.CollectionRecord, error) {
	query := `
		SELECT id, sequence, author, title, created_at
		FROM collection_records
		WHERE id = ?
	`
	return scanCollectionRecord(r.db.QueryRow(query, id))
}

// GetByKey retrieves a collection record by normalized (author, title) equality
func (r *CollectionRepository) GetByKey(author, title string) (*models.CollectionRecord, error) {
	authorKey, titleKey := recordKeys(author, title)

	query := `
		SELECT id, sequence, author, title, created_at
		FROM collection_records
		WHERE author_key = ? AND title_key = ?
	`
	return scanCollectionRecord(r.db.QueryRow(query, authorKey, titleKey))
}

// List retrieves all collection records ordered by sequence
func (r *CollectionRepository) List(criteria map[string]any) ([]*models.CollectionRecord, error) {
	query := `
		SELECT id, sequence, author, title, created_at
		FROM collection_records
	`
	args := []any{}

	if author, ok := criteria["author"].(string); ok && author != "" {
		authorKey, _ := recordKeys(author, "")
		query += " WHERE author_key = ?"
		args = append(args, authorKey)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection records: %w", err)
	}
	defer rows.Close()

	var records []*models.CollectionRecord
	for rows.Next() {
		rec, err := scanCollectionRecordRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Count returns the number of collection records
func (r *CollectionRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM collection_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count collection records: %w", err)
	}
	return count, nil
}

// ImportAll inserts the given records in a single transaction, skipping any
// pair already present in the table or earlier in the batch.
//
// Returns the number of newly inserted records. Re-running with the same
// input inserts nothing, which makes the import stage idempotent.
func (r *CollectionRepository) ImportAll(records []*models.CollectionRecord) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	seen := make(map[string]bool)

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}

		authorKey, titleKey := recordKeys(rec.Author(), rec.Title())
		batchKey := authorKey + "|" + titleKey
		if seen[batchKey] {
			continue
		}
		seen[batchKey] = true

		var exists bool
		err := tx.QueryRow(
			"SELECT EXISTS(SELECT 1 FROM collection_records WHERE author_key = ? AND title_key = ?)",
			authorKey, titleKey,
		).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("failed to check for existing record: %w", err)
		}
		if exists {
			continue
		}

		sequence, err := nextSequence(tx, "collection_records")
		if err != nil {
			return 0, err
		}
		rec.SetSequence(sequence)
		rec.SetID(shared.GenerateID())

		if err := insertCollectionRecord(tx, rec); err != nil {
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return inserted, nil
}

func scanCollectionRecord(row *sql.Row) (*models.CollectionRecord, error) {
	var (
		id        string
		sequence  int
		author    string
		title     string
		createdAt time.Time
	)

	err := row.Scan(&id, &sequence, &author, &title, &createdAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection record: %w", err)
	}

	rec := models.NewCollectionRecord(sequence, author, title)
	rec.SetID(id)
	rec.SetCreatedAt(createdAt)
	return rec, nil
}

func scanCollectionRecordRow(rows *sql.Rows) (*models.CollectionRecord, error) {
	var (
		id        string
		sequence  int
		author    string
		title     string
		createdAt time.Time
	)

	if err := rows.Scan(&id, &sequence, &author, &title, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan collection record: %w", err)
	}

	rec := models.NewCollectionRecord(sequence, author, title)
	rec.SetID(id)
	rec.SetCreatedAt(createdAt)
	return rec, nil
}
