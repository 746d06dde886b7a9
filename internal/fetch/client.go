// Package fetch provides the outbound HTTP client used for remote sources
// and auxiliary lookups (feeds, transcripts). Retries are deliberately
// small and fixed: a converter waiting on a flaky endpoint should give up
// quickly rather than stall a batch pipeline.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultAttempts = 3
	defaultDelay    = 2 * time.Second
	defaultTimeout  = 30 * time.Second
)

// Client fetches remote resources with a fixed bounded retry.
// Implements domain.Fetcher.
type Client struct {
	http     *http.Client
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

// NewClient creates a client with the default retry policy: 3 attempts with
// a fixed 2s delay, 30s per-request timeout.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		delay:    defaultDelay,
		logger:   logger,
	}
}

// NewClientWithPolicy creates a client with an explicit retry policy.
// attempts < 1 is treated as 1.
func NewClientWithPolicy(logger *slog.Logger, attempts int, delay time.Duration, timeout time.Duration) *Client {
	c := NewClient(logger)
	if attempts < 1 {
		attempts = 1
	}
	c.attempts = attempts
	c.delay = delay
	c.http.Timeout = timeout
	return c
}

// Get retrieves rawURL, retrying transient failures up to the configured
// attempt count with a fixed delay. Non-2xx responses count as failures.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.logger.Warn("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"max_attempts", c.attempts,
			"error", err,
		)
	}
	return nil, fmt.Errorf("get %s after %d attempts: %w", rawURL, c.attempts, lastErr)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Download fetches rawURL into a scratch file under dir, preserving the URL
// path's extension so dispatch can route it. Returns the file path; the
// caller owns removal.
func (c *Client) Download(ctx context.Context, rawURL, dir string) (string, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}

	ext := ".html"
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(filepath.Ext(u.Path)); e != "" {
			ext = e
		}
	}

	path := filepath.Join(dir, "docmark-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return path, nil
}
