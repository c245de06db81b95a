// Package googlebooks fetches book records from the Google Books volumes API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lepinkainen/bookfinder/internal/book"
	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
)

const (
	// DefaultBaseURL is the public Google Books API root.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"
	// DefaultMaxResults is the page size requested per search.
	DefaultMaxResults = 20

	// UpstreamRateLimitMessage is shown when the API answers 429.
	UpstreamRateLimitMessage = "Rate limit exceeded. Please try again in a few seconds."
	// FetchFailureMessage is shown for any other non-success status.
	FetchFailureMessage = "Failed to fetch books. Please try again later."
)

// Client performs catalog searches. One HTTP GET per Search call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURL overrides the API root (tests point this at httptest).
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = u }
}

// WithAPIKey adds the key query parameter to requests.
func WithAPIKey(key string) Option {
	return func(cl *Client) { cl.apiKey = key }
}

// WithMaxResults sets maxResults; non-positive values leave the default.
func WithMaxResults(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxResults = n
		}
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchURL builds the request URL for query. The query is URL-encoded
// but otherwise sent as typed.
func (c *Client) SearchURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", c.maxResults))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return c.baseURL + "/volumes?" + params.Encode()
}

// Search fetches and normalizes the volumes matching query. An empty
// items list is a successful, empty result.
func (c *Client) Search(ctx context.Context, query string) ([]book.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	slog.Debug("Fetching books from Google Books", "query", query)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google Books API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewUpstreamRateLimitError(UpstreamRateLimitMessage)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewFetchError(resp.StatusCode, FetchFailureMessage)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Google Books response: %w", err)
	}

	records := result.Records()
	slog.Debug("Fetched books from Google Books", "query", query, "count", len(records))
	return records, nil
}
