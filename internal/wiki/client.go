// Package wiki is a small client for the MediaWiki action API: the
// most-viewed ranking and revision lookups.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mostviewed/internal/logger"
	"mostviewed/pkg/utils"
)

// Client issues parameterized queries against a single api.php endpoint.
// It never retries.
type Client struct {
	httpClient *http.Client
	headers    *utils.HTTPHelper
	logger     *logger.Logger
	apiURL     string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout on a private copy of the HTTP client.
// Zero keeps the client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for apiURL that identifies itself as userAgent.
func NewClient(apiURL, userAgent string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		headers:    utils.NewHTTPHelper(userAgent),
		logger:     logger.NewNop(),
		apiURL:     apiURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c
}

// Query performs GET apiURL?params and decodes the JSON body into out.
// label names the request in error messages and may be empty.
func (c *Client) Query(ctx context.Context, params url.Values, label string, out any) error {
	endpoint, err := url.Parse(c.apiURL)
	if err != nil {
		return fmt.Errorf("%w: invalid api url %q: %w", ErrTransport, c.apiURL, err)
	}

	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}

	c.headers.Apply(req, "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: invoking api with parameters %v: %w", ErrTransport, params, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Label: label, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return &ParseError{Label: label, Payload: string(body), Err: err}
	}

	if envelope.Error != nil {
		envelope.Error.Label = label
		return envelope.Error
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Label: label, Payload: string(body), Err: err}
	}

	c.logger.Debug("api query completed", "label", label, "bytes", len(body))

	return nil
}
