// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/shelfsync/internal/models"
)

// FakeIndex is a test double for [services.Index] with scriptable results.
type FakeIndex struct {
	Results map[string][]models.SearchResult
	Err     error
	Queries []string
}

func (f *FakeIndex) Search(ctx context.Context, title, author string) ([]models.SearchResult, error) {
	f.Queries = append(f.Queries, title+"|"+author)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Results[title], nil
}

func (f *FakeIndex) DownloadURL(result models.SearchResult) models.DownloadRef {
	return models.DownloadRef("fake://download/" + result.ID)
}

// FakeDownloader is a test double for [services.Downloader] recording
// submitted references.
type FakeDownloader struct {
	AuthErr   error
	SubmitErr map[models.DownloadRef]error
	Submitted []models.DownloadRef
}

func (f *FakeDownloader) Authenticate(ctx context.Context, credentials map[string]string) error {
	return f.AuthErr
}

func (f *FakeDownloader) Submit(ctx context.Context, ref models.DownloadRef, category string) error {
	if err := f.SubmitErr[ref]; err != nil {
		return err
	}
	f.Submitted = append(f.Submitted, ref)
	return nil
}

func (f *FakeDownloader) Name() string { return "fake" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
