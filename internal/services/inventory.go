// Tabular inventory source for the local collection.
//
// Reads the CSV export produced by the library manager. The file must carry
// "authors" and "title" columns (case-sensitive) and may start with a UTF-8
// byte-order mark, which some exporters emit on Windows.
package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/shelfsync/internal/shared"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	authorsColumn = "authors"
	titleColumn   = "title"
)

// InventoryRow is one raw (author, title) pair from the tabular source.
// Fields are unnormalized; the import stage decides what to skip.
type InventoryRow struct {
	Author string
	Title  string
}

// InventoryService reads collection rows from a CSV file.
type InventoryService struct {
	path string
}

// NewInventoryService creates an InventoryService for the given CSV path.
func NewInventoryService(path string) *InventoryService {
	return &InventoryService{path: path}
}

// Path returns the configured CSV path.
func (s *InventoryService) Path() string {
	return s.path
}

// ReadRows reads every data row from the CSV file.
//
// Returns [shared.ErrSchema] when the header is missing a required column.
// Extra columns are ignored; rows shorter than the header are padded with
// empty fields rather than rejected.
func (s *InventoryService) ReadRows() ([]InventoryRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer f.Close()

	return parseInventory(f)
}

func parseInventory(r io.Reader) ([]InventoryRow, error) {
	// Strip a leading BOM if present, decode as UTF-8 otherwise
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: inventory file is empty", shared.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", shared.ErrSchema, err)
	}

	authorsIdx, titleIdx := -1, -1
	for i, name := range header {
		switch name {
		case authorsColumn:
			authorsIdx = i
		case titleColumn:
			titleIdx = i
		}
	}
	if authorsIdx < 0 {
		return nil, fmt.Errorf("%w: missing required column %q", shared.ErrSchema, authorsColumn)
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("%w: missing required column %q", shared.ErrSchema, titleColumn)
	}

	var rows []InventoryRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read inventory row: %w", err)
		}

		row := InventoryRow{}
		if authorsIdx < len(record) {
			row.Author = record[authorsIdx]
		}
		if titleIdx < len(record) {
			row.Title = record[titleIdx]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
