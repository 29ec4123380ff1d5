// Download client [Downloader] implementation.
//
// Speaks the qBittorrent WebUI API: form-encoded login that answers with a
// bare "Ok." body and a session cookie, then form-encoded submissions. Any
// non-2xx or non-"Ok." response is a failure.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/shared"
)

const okBody = "Ok."

// DownloadClient implements [Downloader] for a qBittorrent-compatible WebUI.
type DownloadClient struct {
	baseURL    string
	httpClient *http.Client
	authed     bool
}

// NewDownloadClient creates a DownloadClient.
//
// The client keeps the session cookie in a jar, so the same instance must be
// used for Authenticate and all subsequent Submit calls. A nil HTTP client
// falls back to a cookie-jar-equipped default.
func NewDownloadClient(baseURL string, client *http.Client) (*DownloadClient, error) {
	if client == nil {
		client = &http.Client{}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client.Jar = jar
	}

	return &DownloadClient{
		baseURL:    baseURL,
		httpClient: client,
	}, nil
}

// Name returns the client name.
func (d *DownloadClient) Name() string {
	return "qBittorrent"
}

// Authenticate logs into the WebUI with credentials["username"] and
// credentials["password"], storing the session cookie on success.
//
// Returns [shared.ErrAuth] on transport failure, non-2xx status, or a body
// other than "Ok.".
func (d *DownloadClient) Authenticate(ctx context.Context, credentials map[string]string) error {
	username, password := credentials["username"], credentials["password"]
	if username == "" {
		return fmt.Errorf("%w: missing username", shared.ErrMissingCredentials)
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	body, err := d.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}
	if strings.TrimSpace(body) != okBody {
		return fmt.Errorf("%w: unexpected response %q", shared.ErrAuth, strings.TrimSpace(body))
	}

	d.authed = true
	return nil
}

// Submit hands a download reference to the client under the given category.
//
// Requires a prior successful Authenticate. Returns [shared.ErrSubmission]
// on transport failure, non-2xx status, or a rejecting body.
func (d *DownloadClient) Submit(ctx context.Context, ref models.DownloadRef, category string) error {
	if !d.authed {
		return fmt.Errorf("%w: submit before login", shared.ErrAuth)
	}

	form := url.Values{}
	form.Set("urls", string(ref))
	if category != "" {
		form.Set("category", category)
	}

	body, err := d.postForm(ctx, "/api/v2/torrents/add", form)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSubmission, err)
	}
	if trimmed := strings.TrimSpace(body); trimmed != okBody && trimmed != "" {
		return fmt.Errorf("%w: unexpected response %q", shared.ErrSubmission, trimmed)
	}

	return nil
}

// postForm sends one form-encoded POST and returns the response body.
func (d *DownloadClient) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	apiURL := d.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	return string(body), nil
}
