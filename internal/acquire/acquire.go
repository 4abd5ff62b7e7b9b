// Package acquire lists the surveillance reports published on the WHO
// risk assessment index page and downloads them one at a time into a
// scratch directory.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/cgostic/who-pdf-reader/internal/httputil"
	"github.com/cgostic/who-pdf-reader/pkg/types"
)

// Fetcher talks to the report host. Every request waits on a shared rate
// limiter and, when enabled, is checked against the host's robots.txt.
type Fetcher struct {
	client  *http.Client
	cfg     types.FetchConfig
	limiter *rate.Limiter
	robots  *robotsChecker
	since   time.Time
}

// NewFetcher validates cfg and returns a Fetcher using client. A nil
// client gets one with the configured timeout.
func NewFetcher(cfg types.FetchConfig, client *http.Client) (*Fetcher, error) {
	if cfg.IndexURL == "" {
		return nil, fmt.Errorf("fetch: index_url is required")
	}
	if cfg.TmpDir == "" {
		return nil, fmt.Errorf("fetch: tmp_dir is required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	f := &Fetcher{client: client, cfg: cfg}
	if cfg.Since != "" {
		t, err := time.Parse(types.DateLayout, cfg.Since)
		if err != nil {
			return nil, fmt.Errorf("fetch: since %q: %w", cfg.Since, err)
		}
		f.since = t
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	f.limiter = rate.NewLimiter(limit, 1)
	if cfg.RespectRobots {
		f.robots = newRobotsChecker(client, cfg.UserAgent)
	}
	return f, nil
}

// ListReports fetches the index page and returns the report links
// published on or after the configured cutoff, in page order.
func (f *Fetcher) ListReports(ctx context.Context) ([]string, error) {
	resp, err := f.get(ctx, f.cfg.IndexURL, "text/html")
	if err != nil {
		return nil, fmt.Errorf("fetching index: %w", err)
	}
	defer resp.Body.Close()

	base := f.cfg.BaseURL
	if base == "" {
		base = f.cfg.IndexURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("base url %q: %w", base, err)
	}

	links, err := ParseIndex(resp.Body, baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	return FilterSince(links, f.since), nil
}

// Download saves the report at rawURL under the scratch directory and
// returns the local path. The file is written to a temporary name and
// renamed on success so a partial download never looks complete.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	if err := os.MkdirAll(f.cfg.TmpDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", f.cfg.TmpDir, err)
	}
	dest := filepath.Join(f.cfg.TmpDir, fileName(rawURL))

	resp, err := f.get(ctx, rawURL, "application/pdf")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(f.cfg.TmpDir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// Remove deletes a downloaded report. A file that is already gone is not
// an error.
func (f *Fetcher) Remove(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	return nil
}

// get performs a rate-limited GET with retries on 429 and 503, and fails
// on any other non-200 status.
func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if f.robots != nil {
		ok, err := f.robots.allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// fileName returns the last path segment of rawURL, the name the report
// is saved under.
func fileName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		if name := path.Base(u.Path); name != "/" && name != "." {
			return name
		}
	}
	return "report.pdf"
}
