package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the shelf sync service.
// Implementations include CollectionRecord and TrackedBook.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
//
// There is no generic Update or Delete: collection records are immutable and
// tracked books only ever flip status, so mutation surfaces are explicit
// per-repository methods instead of field-level updates.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// BookStatus is the persisted ownership belief for a tracked book.
type BookStatus string

const (
	StatusActive  BookStatus = "active"
	StatusMissing BookStatus = "missing"
)

// Valid reports whether s is a known status value.
func (s BookStatus) Valid() bool {
	return s == StatusActive || s == StatusMissing
}

func (s BookStatus) String() string {
	return string(s)
}
