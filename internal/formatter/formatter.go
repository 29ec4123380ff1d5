// package formatter provides functions to export batch results to various formats (CSV, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/desertthunder/shelfsync/internal/tasks"
)

// MissingToCSV converts missing entries to CSV with columns: authors, title.
//
// The column names match the inventory schema, so the output can be fed back
// through the importer once the items are acquired.
func MissingToCSV(entries []models.MissingEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"authors", "title"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		if err := writer.Write([]string{entry.Author, entry.Title}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// OutcomesToCSV converts acquisition outcomes to CSV with columns: authors, title, status, reference, error
func OutcomesToCSV(outcomes []tasks.EntryOutcome) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"authors", "title", "status", "reference", "error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, outcome := range outcomes {
		errMsg := ""
		if outcome.Error != nil {
			errMsg = outcome.Error.Error()
		}
		record := []string{
			outcome.Entry.Author,
			outcome.Entry.Title,
			outcome.Status.String(),
			string(outcome.Ref),
			errMsg,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// BatchToText converts a batch result to the plain text end-of-run summary.
// Stage lines appear only for stages that ran; every per-item failure is
// enumerated, never silently dropped.
func BatchToText(result *tasks.BatchResult) ([]byte, error) {
	var buf bytes.Buffer

	if result.Import != nil {
		buf.WriteString(fmt.Sprintf("Inventory: %d rows read, %d skipped, %d imported\n",
			result.Import.RowsRead, result.Import.SkippedRows, result.Import.Inserted))
	}
	if result.Reconcile != nil {
		buf.WriteString(fmt.Sprintf("Reconciled: %d created, %d reactivated, %d unchanged (%d records)\n",
			result.Reconcile.Created, result.Reconcile.Activated, result.Reconcile.Unchanged, result.Reconcile.Total))
	}
	if result.Diff != nil {
		buf.WriteString(fmt.Sprintf("Wishlist: %d missing, %d feeds failed, %d entries skipped\n",
			len(result.Diff.Missing), len(result.Diff.FeedErrors), result.Diff.SkippedEntries))
	}
	if result.Acquire != nil {
		buf.WriteString(fmt.Sprintf("Acquisition: %d submitted, %d no match, %d search failures, %d submission failures\n",
			result.Acquire.Submitted, result.Acquire.NoMatch, result.Acquire.SearchFailures, result.Acquire.SubmitFailures))
	}

	failures := collectFailures(result)
	if len(failures) > 0 {
		buf.WriteString("\nFailures:\n")
		for _, line := range failures {
			buf.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	return buf.Bytes(), nil
}

// BatchToJSON converts a batch result to pretty-printed JSON.
func BatchToJSON(result *tasks.BatchResult) ([]byte, error) {
	return shared.MarshalJSON(result, true)
}

// collectFailures flattens feed and per-entry failures into display lines.
func collectFailures(result *tasks.BatchResult) []string {
	var lines []string

	if result.Diff != nil {
		for _, feedErr := range result.Diff.FeedErrors {
			lines = append(lines, fmt.Sprintf("feed %s: %v", feedErr.URL, feedErr.Err))
		}
	}
	if result.Acquire != nil {
		for _, outcome := range result.Acquire.Outcomes {
			if outcome.Error == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s - %s: %s: %v",
				outcome.Entry.Author, outcome.Entry.Title, outcome.Status, outcome.Error))
		}
	}

	return lines
}

// WriteBatchReport writes the plain text batch report to the given path and
// returns the path written.
func WriteBatchReport(result *tasks.BatchResult, path string) (string, error) {
	data, err := BatchToText(result)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write batch report: %w", err)
	}
	return path, nil
}

// WriteMissingExport writes missing entries as CSV to the given path and
// returns the path written.
func WriteMissingExport(entries []models.MissingEntry, path string) (string, error) {
	data, err := MissingToCSV(entries)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write missing entries: %w", err)
	}
	return path, nil
}
