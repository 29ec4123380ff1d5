package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>to-read</title>
    <item>
      <title>Ancillary Justice</title>
      <dc:creator>Ann Leckie</dc:creator>
    </item>
    <item>
      <title>The Fire Next Time</title>
      <dc:creator>James Baldwin</dc:creator>
    </item>
  </channel>
</rss>`

// writeBatchConfig lays out a config file, database path, and inventory CSV
// in a temp dir and returns the config path. Extra TOML sections are appended
// verbatim.
func writeBatchConfig(t *testing.T, feedURL string, extra ...string) string {
	t.Helper()

	tmp := t.TempDir()
	csvPath := filepath.Join(tmp, "library.csv")
	if err := os.WriteFile(csvPath, []byte("authors,title\nAnn Leckie,Ancillary Justice\n"), 0644); err != nil {
		t.Fatalf("failed to write inventory: %v", err)
	}

	content := "[database]\npath = \"" + filepath.Join(tmp, "shelfsync.db") + "\"\n\n" +
		"[inventory]\ncsv_path = \"" + csvPath + "\"\n\n" +
		"[wishlist]\nfeeds = [\"" + feedURL + "\"]\n"
	for _, section := range extra {
		content += "\n" + section + "\n"
	}

	configPath := filepath.Join(tmp, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestImportCommand(t *testing.T) {
	configPath := writeBatchConfig(t, "http://127.0.0.1:1/feed.rss")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	if err := setupCommand(runner).Run(context.Background(), []string{"setup", "database", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := importCommand(runner).Run(context.Background(), []string{"import", "--config", configPath}); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if !strings.Contains(output.String(), "1 imported") {
		t.Errorf("expected import confirmation, got %q", output.String())
	}
}

func TestSyncCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	configPath := writeBatchConfig(t, server.URL)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	if err := setupCommand(runner).Run(context.Background(), []string{"setup", "database", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if err := syncCommand(runner).Run(context.Background(), []string{"sync", "--config", configPath, "--quiet"}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	text := output.String()
	for _, want := range []string{"1 imported", "1 created", "1 missing"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected summary to contain %q:\n%s", want, text)
		}
	}
}

func TestSyncCommandReports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	t.Run("CSV Outcomes", func(t *testing.T) {
		configPath := writeBatchConfig(t, server.URL)

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		ctx := context.Background()
		if err := setupCommand(runner).Run(ctx, []string{"setup", "database", "--config", configPath}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := syncCommand(runner).Run(ctx, []string{"sync", "--config", configPath, "--quiet", "--csv"}); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		if !strings.Contains(output.String(), "authors,title,status,reference,error") {
			t.Errorf("expected outcome CSV header, got:\n%s", output.String())
		}
	})

	t.Run("Report File", func(t *testing.T) {
		configPath := writeBatchConfig(t, server.URL)
		reportPath := filepath.Join(t.TempDir(), "report.txt")

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		ctx := context.Background()
		if err := setupCommand(runner).Run(ctx, []string{"setup", "database", "--config", configPath}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if err := syncCommand(runner).Run(ctx, []string{"sync", "--config", configPath, "--quiet", "--output", reportPath}); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		data, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		for _, want := range []string{"1 rows read", "1 missing"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("expected report to contain %q:\n%s", want, data)
			}
		}
	})
}

func TestAcquireCommandCSV(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer feedServer.Close()

	indexServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	}))
	defer indexServer.Close()

	configPath := writeBatchConfig(t, feedServer.URL,
		"[search]\nbase_url = \""+indexServer.URL+"\"\napi_key = \"secret\"")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	ctx := context.Background()
	if err := setupCommand(runner).Run(ctx, []string{"setup", "database", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := importCommand(runner).Run(ctx, []string{"import", "--config", configPath}); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	output.Reset()
	if err := wishlistCommand(runner).Run(ctx, []string{"wishlist", "acquire", "--config", configPath, "--dry-run", "--csv"}); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	text := output.String()
	if !strings.Contains(text, "James Baldwin,The Fire Next Time,no_match") {
		t.Errorf("expected no-match outcome row, got:\n%s", text)
	}
	if strings.Contains(text, "Ancillary Justice") {
		t.Errorf("owned entry should not be acquired:\n%s", text)
	}
}

func TestWishlistDiffCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	configPath := writeBatchConfig(t, server.URL)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	ctx := context.Background()
	if err := setupCommand(runner).Run(ctx, []string{"setup", "database", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := importCommand(runner).Run(ctx, []string{"import", "--config", configPath}); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	output.Reset()
	if err := wishlistCommand(runner).Run(ctx, []string{"wishlist", "diff", "--config", configPath, "--csv"}); err != nil {
		t.Fatalf("diff failed: %v", err)
	}

	text := output.String()
	if !strings.Contains(text, "James Baldwin,The Fire Next Time") {
		t.Errorf("expected missing entry row, got:\n%s", text)
	}
	if strings.Contains(text, "Ancillary Justice") {
		t.Errorf("owned entry should not appear:\n%s", text)
	}
}
