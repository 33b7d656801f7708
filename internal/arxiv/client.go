// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv queries the arXiv export API and parses its Atom feed
// into Documents. A single shared cooldown timer serializes outbound
// requests; transient failures are retried a bounded number of times.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/arxiv-triage/internal/httputil"
	"github.com/pdiddy/arxiv-triage/pkg/types"
)

// apiBase is the arXiv export endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// Named failure conditions surfaced by Search.
var (
	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("arxiv: request timed out")

	// ErrUnavailable indicates the feed stayed unreachable after all
	// retry attempts.
	ErrUnavailable = errors.New("arxiv: feed unavailable")
)

const (
	minResults = 1
	maxResults = 50
)

// Request holds the parameters of one feed query.
type Request struct {
	// Query is the free-text keyword query.
	Query string

	// Categories filters results to the given arXiv categories. Multiple
	// categories are combined with OR.
	Categories []string

	// MaxResults bounds the result count; clamped to [1, 50]. Zero means
	// the configured default.
	MaxResults int
}

// Client is a rate-limited arXiv feed client. The zero value is not
// usable; construct with NewClient.
type Client struct {
	http *http.Client
	cfg  types.RetrievalConfig

	// mu guards last and is held across the cooldown wait so that
	// concurrent callers queue behind it rather than erroring.
	mu   sync.Mutex
	last time.Time
}

// NewClient returns a Client using the given retrieval settings.
// Zero-valued settings fall back to the package defaults, except
// Cooldown, where zero disables the inter-request wait.
func NewClient(cfg types.RetrievalConfig) *Client {
	def := types.DefaultPipelineConfig().Retrieval
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Search queries the feed and returns the matching Documents,
// most-recent first. An empty but well-formed response yields an empty
// slice, not an error. Malformed fields within one entry degrade that
// entry in place; the rest of the feed still parses.
func (c *Client) Search(ctx context.Context, req Request) ([]types.Document, error) {
	expr := buildSearchQuery(req)
	if expr == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	max := req.MaxResults
	if max <= 0 {
		max = c.cfg.MaxResults
	}
	if max < minResults {
		max = minResults
	}
	if max > maxResults {
		max = maxResults
	}

	v := url.Values{}
	v.Set("search_query", expr)
	v.Set("start", "0")
	v.Set("max_results", strconv.Itoa(max))
	v.Set("sortBy", "submittedDate")
	v.Set("sortOrder", "descending")
	queryURL := apiBase + "?" + v.Encode()

	// Single retry loop: every outbound attempt, including retries on
	// rate-limit and server errors, waits out the shared cooldown first.
	attempts := c.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.waitCooldown(ctx); err != nil {
			return nil, err
		}

		docs, err := c.fetch(ctx, queryURL)
		c.markRequest()
		if err == nil {
			return docs, nil
		}
		if errors.Is(err, ErrTimeout) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w (after %d attempts): %v", ErrUnavailable, attempts, lastErr)
}

// waitCooldown blocks until the minimum inter-request interval has
// elapsed since the last outbound request, then claims the slot. The
// timer is shared across all callers of this client.
func (c *Client) waitCooldown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.Cooldown > 0 && !c.last.IsZero() {
		if wait := c.cfg.Cooldown - time.Since(c.last); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	c.last = time.Now()
	return nil
}

// markRequest refreshes the cooldown timer once an attempt has
// completed, so the next wait counts from the end of a slow request
// rather than from its start.
func (c *Client) markRequest() {
	c.mu.Lock()
	c.last = time.Now()
	c.mu.Unlock()
}

// fetch performs exactly one feed request and parses the response.
// Retrying is the caller's job; this keeps the cooldown the sole pacing
// mechanism for outbound requests.
func (c *Client) fetch(ctx context.Context, queryURL string) ([]types.Document, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := httputil.Get(reqCtx, c.http, queryURL, c.cfg.UserAgent)
	if err != nil {
		if httputil.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	return feed.documents(), nil
}

// buildSearchQuery constructs the search_query expression. Categories
// prefix the keyword query, e.g. "cat:quant-ph AND (quantum error correction)".
func buildSearchQuery(req Request) string {
	var parts []string

	switch len(req.Categories) {
	case 0:
	case 1:
		parts = append(parts, "cat:"+req.Categories[0])
	default:
		cats := make([]string, len(req.Categories))
		for i, c := range req.Categories {
			cats[i] = "cat:" + c
		}
		parts = append(parts, "("+strings.Join(cats, " OR ")+")")
	}

	if q := strings.TrimSpace(req.Query); q != "" {
		if len(parts) > 0 {
			parts = append(parts, "("+q+")")
		} else {
			parts = append(parts, q)
		}
	}

	return strings.Join(parts, " AND ")
}
