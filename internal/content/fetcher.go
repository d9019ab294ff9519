// Package content retrieves rendered article pages and converts them to Markdown.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mostviewed/internal/logger"
	"mostviewed/pkg/utils"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrInvalidURL           = errors.New("invalid page url")
	ErrBodyTooLarge         = errors.New("page body exceeds size limit")
)

const defaultMaxBodyKb = 32768

// Fetcher performs the plain page retrieval. It does not retry.
type Fetcher struct {
	client    *http.Client
	headers   *utils.HTTPHelper
	logger    *logger.Logger
	maxBodyKb int
	timeout   time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = hc
	}
}

// WithTimeout sets the request timeout on a private copy of the HTTP client.
// Zero keeps the client's own timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyKb sets the largest page accepted. Bigger pages fail with ErrBodyTooLarge.
func WithMaxBodyKb(kb int) FetcherOption {
	return func(f *Fetcher) {
		if kb > 0 {
			f.maxBodyKb = kb
		}
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l *logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a fetcher that identifies itself as userAgent.
func NewFetcher(userAgent string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{},
		headers:   utils.NewHTTPHelper(userAgent),
		logger:    logger.NewNop(),
		maxBodyKb: defaultMaxBodyKb,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.timeout > 0 {
		hc := *f.client
		hc.Timeout = f.timeout
		f.client = &hc
	}

	return f
}

// FetchWithMetrics returns (body, statusCode, duration, error).
func (f *Fetcher) FetchWithMetrics(ctx context.Context, pageURL string) (string, int, time.Duration, error) {
	start := time.Now()

	if !f.headers.IsValidURL(pageURL) {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	f.headers.Apply(req, "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, time.Since(start), fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, time.Since(start), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	limit := int64(f.maxBodyKb) * 1024

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return "", resp.StatusCode, time.Since(start), fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > limit {
		f.logger.Warn(fmt.Sprintf("⚠️  Page larger than %d KiB: %s", f.maxBodyKb, pageURL))
		return "", resp.StatusCode, time.Since(start), fmt.Errorf("%w: more than %d KiB", ErrBodyTooLarge, f.maxBodyKb)
	}

	duration := time.Since(start)
	f.logger.Debug("page fetched", "url", pageURL, "bytes", len(body), "duration", duration)

	return string(body), resp.StatusCode, duration, nil
}

// Fetch returns the page body.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	body, _, _, err := f.FetchWithMetrics(ctx, pageURL)

	return body, err
}
