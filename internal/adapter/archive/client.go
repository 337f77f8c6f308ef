// Package archive fetches the plain-text source documents holding the
// fixed-width test tables.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/observability"
)

// Client retrieves source documents over HTTP and serves line ranges from
// them. Documents are cached per URL for the lifetime of the client, so
// multiple units reading different ranges of one table fetch it once. There
// is deliberately no retry: a transient failure is fatal to the unit.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu    sync.Mutex
	cache map[string][]string
}

// NewClient creates a document fetcher with the given per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    metrics,
		cache:      map[string][]string{},
	}
}

// FetchLines returns the lines [first,last) of the document at url. A
// negative last counts from the end of the document, matching slice
// semantics. An empty resulting range is a FetchError: the configured range
// is part of the data contract and silently processing nothing would hide a
// moved table.
func (c *Client) FetchLines(ctx context.Context, url string, first, last int) ([]string, error) {
	lines, err := c.document(ctx, url)
	if err != nil {
		return nil, err
	}

	if last < 0 {
		last = len(lines) + last
	}
	if last > len(lines) {
		last = len(lines)
	}
	if first >= last || first >= len(lines) {
		return nil, &domain.FetchError{
			URL:    url,
			Reason: fmt.Sprintf("empty line range [%d,%d) in %d-line document", first, last, len(lines)),
		}
	}
	return lines[first:last], nil
}

func (c *Client) document(ctx context.Context, url string) ([]string, error) {
	c.mu.Lock()
	lines, ok := c.cache[url]
	c.mu.Unlock()
	if ok {
		return lines, nil
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Reason: "create request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: url, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Reason: "read body", Err: err}
	}

	lines = splitLines(string(body))
	if c.metrics != nil {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}
	c.logger.Info("fetched source document", "url", url, "lines", len(lines), "duration", time.Since(start))

	c.mu.Lock()
	c.cache[url] = lines
	c.mu.Unlock()
	return lines, nil
}

func splitLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.Split(body, "\n")
}
