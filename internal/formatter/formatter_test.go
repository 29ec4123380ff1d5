package formatter

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/tasks"
)

func TestMissingToCSV(t *testing.T) {
	entries := []models.MissingEntry{
		{Author: "James Baldwin", Title: "The Fire Next Time"},
		{Author: "Ann Leckie", Title: "Ancillary, Justice"},
	}

	data, err := MissingToCSV(entries)
	if err != nil {
		t.Fatalf("failed to convert entries: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "authors" || records[0][1] != "title" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[2][1] != "Ancillary, Justice" {
		t.Errorf("expected embedded comma to survive quoting, got %q", records[2][1])
	}
}

func TestOutcomesToCSV(t *testing.T) {
	outcomes := []tasks.EntryOutcome{
		{
			Entry:  models.MissingEntry{Author: "James Baldwin", Title: "The Fire Next Time"},
			Status: tasks.OutcomeSubmitted,
			Ref:    "https://index.example.com/tor/download.php/abc123",
		},
		{
			Entry:  models.MissingEntry{Author: "Ann Leckie", Title: "Ancillary Justice"},
			Status: tasks.OutcomeSubmitFailed,
			Error:  errors.New("rejected"),
		},
	}

	data, err := OutcomesToCSV(outcomes)
	if err != nil {
		t.Fatalf("failed to convert outcomes: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if records[1][2] != "submitted" || records[1][3] != "https://index.example.com/tor/download.php/abc123" {
		t.Errorf("unexpected submitted row: %v", records[1])
	}
	if records[2][2] != "submit_failed" || records[2][4] != "rejected" {
		t.Errorf("unexpected failed row: %v", records[2])
	}
}

func TestBatchToText(t *testing.T) {
	t.Run("Full Batch", func(t *testing.T) {
		result := &tasks.BatchResult{
			Import:    &tasks.ImportResult{RowsRead: 10, SkippedRows: 1, Inserted: 3},
			Reconcile: &tasks.ReconcileResult{Total: 9, Created: 3, Activated: 1, Unchanged: 5},
			Diff: &tasks.DiffResult{
				Missing:    []models.MissingEntry{{Author: "B", Title: "T2"}},
				FeedErrors: []tasks.FeedError{{URL: "https://feeds.example.com/2", Err: errors.New("bad xml")}},
			},
			Acquire: &tasks.AcquireResult{
				Submitted: 1,
				Outcomes: []tasks.EntryOutcome{
					{Entry: models.MissingEntry{Author: "B", Title: "T2"}, Status: tasks.OutcomeSubmitted},
				},
			},
		}

		data, err := BatchToText(result)
		if err != nil {
			t.Fatalf("failed to render summary: %v", err)
		}
		text := string(data)

		for _, want := range []string{
			"10 rows read",
			"3 created",
			"1 missing",
			"1 submitted",
			"feed https://feeds.example.com/2: bad xml",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("expected summary to contain %q:\n%s", want, text)
			}
		}
	})

	t.Run("Omits Stages That Did Not Run", func(t *testing.T) {
		result := &tasks.BatchResult{
			Import: &tasks.ImportResult{RowsRead: 2, Inserted: 2},
		}

		data, err := BatchToText(result)
		if err != nil {
			t.Fatalf("failed to render summary: %v", err)
		}
		text := string(data)

		if strings.Contains(text, "Acquisition") || strings.Contains(text, "Wishlist") {
			t.Errorf("unexpected stage lines in summary:\n%s", text)
		}
		if strings.Contains(text, "Failures") {
			t.Errorf("unexpected failure section in summary:\n%s", text)
		}
	})
}

func TestWriteBatchReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	result := &tasks.BatchResult{
		Import: &tasks.ImportResult{RowsRead: 3, Inserted: 1},
		Diff:   &tasks.DiffResult{Missing: []models.MissingEntry{{Author: "B", Title: "T2"}}},
	}

	written, err := WriteBatchReport(result, path)
	if err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	if written != path {
		t.Errorf("expected path %s, got %s", path, written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	for _, want := range []string{"3 rows read", "1 missing"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected report to contain %q:\n%s", want, data)
		}
	}
}

func TestWriteMissingExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	written, err := WriteMissingExport([]models.MissingEntry{{Author: "A", Title: "T1"}}, path)
	if err != nil {
		t.Fatalf("failed to write export: %v", err)
	}
	if written != path {
		t.Errorf("expected path %s, got %s", path, written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "A,T1") {
		t.Errorf("unexpected file contents: %s", data)
	}
}
