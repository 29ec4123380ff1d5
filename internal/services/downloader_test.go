package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/shelfsync/internal/shared"
)

func TestDownloadClient(t *testing.T) {
	creds := map[string]string{"username": "admin", "password": "hunter2"}

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("Success Stores Session", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/v2/auth/login" {
					t.Errorf("expected login path, got %s", r.URL.Path)
				}
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				if r.PostForm.Get("username") != "admin" {
					t.Errorf("expected username 'admin', got %q", r.PostForm.Get("username"))
				}
				http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session123"})
				w.Write([]byte("Ok."))
			}))
			defer server.Close()

			client, err := NewDownloadClient(server.URL, nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if err := client.Authenticate(context.Background(), creds); err != nil {
				t.Fatalf("authenticate failed: %v", err)
			}
		})

		t.Run("Rejecting Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("Fails."))
			}))
			defer server.Close()

			client, err := NewDownloadClient(server.URL, nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if err := client.Authenticate(context.Background(), creds); !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})

		t.Run("Non-Success Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			client, err := NewDownloadClient(server.URL, nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if err := client.Authenticate(context.Background(), creds); !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})

		t.Run("Missing Username", func(t *testing.T) {
			client, err := NewDownloadClient("http://localhost:9999", nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			err = client.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Submit", func(t *testing.T) {
		t.Run("Sends Reference And Category", func(t *testing.T) {
			var gotURLs, gotCategory string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/v2/auth/login":
					w.Write([]byte("Ok."))
				case "/api/v2/torrents/add":
					if err := r.ParseForm(); err != nil {
						t.Errorf("failed to parse form: %v", err)
					}
					gotURLs = r.PostForm.Get("urls")
					gotCategory = r.PostForm.Get("category")
					w.Write([]byte("Ok."))
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer server.Close()

			client, err := NewDownloadClient(server.URL, nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			if err := client.Authenticate(context.Background(), creds); err != nil {
				t.Fatalf("authenticate failed: %v", err)
			}

			if err := client.Submit(context.Background(), "https://index.example.com/tor/download.php/abc123", "books"); err != nil {
				t.Fatalf("submit failed: %v", err)
			}
			if gotURLs != "https://index.example.com/tor/download.php/abc123" {
				t.Errorf("unexpected urls field: %q", gotURLs)
			}
			if gotCategory != "books" {
				t.Errorf("unexpected category field: %q", gotCategory)
			}
		})

		t.Run("Requires Prior Login", func(t *testing.T) {
			client, err := NewDownloadClient("http://localhost:9999", nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if err := client.Submit(context.Background(), "ref", "books"); !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})

		t.Run("Rejected Submission", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/v2/auth/login":
					w.Write([]byte("Ok."))
				default:
					w.Write([]byte("Fails."))
				}
			}))
			defer server.Close()

			client, err := NewDownloadClient(server.URL, nil)
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			if err := client.Authenticate(context.Background(), creds); err != nil {
				t.Fatalf("authenticate failed: %v", err)
			}

			if err := client.Submit(context.Background(), "ref", "books"); !errors.Is(err, shared.ErrSubmission) {
				t.Errorf("expected ErrSubmission, got %v", err)
			}
		})
	})
}
