// Package remote is a rate-limited HTTP GET client with retry, shared by
// the play-by-play and people lookups.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBody   = 64 << 20
	maxRetryAfter    = 30 * time.Second
	maxErrorBodySize = 512
)

// DefaultBackoffs are the waits before each retry.
var DefaultBackoffs = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Client issues GET requests through a token bucket and retries on 429,
// 5xx and transport failures.
type Client struct {
	name      string
	http      *http.Client
	limiter   *rate.Limiter
	backoffs  []time.Duration
	maxBody   int64
	userAgent string
	logger    logger.Logger
}

// New returns a client; name labels its metrics and logs.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:      name,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(2), 1),
		backoffs:  DefaultBackoffs,
		maxBody:   defaultMaxBody,
		userAgent: "scorebook/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("remote").Named(name)
	}
	return c
}

// Get fetches url and returns the body of a 200 response. A 404 yields
// ErrNotFound; other failures wrap ErrFetch.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, url)

	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
		metrics.RecordError("remote", c.name)
	}
	metrics.RecordFetch(c.name, result, float64(time.Since(start).Milliseconds()))
	return body, err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= len(c.backoffs); attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: create request: %w", ErrFetch, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			if err := c.wait(ctx, attempt, 0); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			if err := c.wait(ctx, attempt, 0); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &StatusError{Code: resp.StatusCode, Body: truncate(body)}
			c.logger.Warn(ctx, "retryable response",
				logger.Int("status", resp.StatusCode),
				logger.Int("attempt", attempt+1),
			)
			if err := c.wait(ctx, attempt, retryAfter(resp)); err != nil {
				return nil, err
			}
			continue
		default:
			return nil, fmt.Errorf("%w: %w", ErrFetch, &StatusError{Code: resp.StatusCode, Body: truncate(body)})
		}
	}
	return nil, fmt.Errorf("%w after %d retries: %w", ErrFetch, len(c.backoffs), lastErr)
}

// wait sleeps before the next attempt; override replaces the scheduled
// backoff when positive. It returns immediately after the last attempt.
func (c *Client) wait(ctx context.Context, attempt int, override time.Duration) error {
	if attempt >= len(c.backoffs) {
		return nil
	}
	delay := c.backoffs[attempt]
	if override > 0 {
		delay = override
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}
	return min(time.Duration(seconds)*time.Second, maxRetryAfter)
}

func truncate(b []byte) string {
	if len(b) > maxErrorBodySize {
		return string(b[:maxErrorBodySize])
	}
	return string(b)
}
