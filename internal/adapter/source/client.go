package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultTimeoutWait = 2 * time.Second
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Code)
}

// retryable: 429 and 5xx are throttling/transient, any other 4xx is
// permanent and retrying it would only burn the rate limit budget.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client is the HTTP client shared by all source adapters. One connection
// pool per process; every request carries the configured timeout. Transient
// failures (429, 5xx, timeouts) are retried with bounded backoff before the
// error reaches the adapter.
type Client struct {
	http        *http.Client
	logger      *zap.Logger
	maxAttempts int
	backoffBase time.Duration
	timeoutWait time.Duration
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:        &http.Client{Timeout: timeout},
		logger:      logger.With(zap.String("component", "http_client")),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		timeoutWait: defaultTimeoutWait,
	}
}

// GetJSON fetches url and decodes the body into out. Retry policy:
// 429/5xx back off exponentially, timeouts and connection errors wait a
// short fixed delay, other 4xx and malformed payloads fail immediately.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, lastErr, attempt-1); err != nil {
				return err
			}
		}

		err := c.getOnce(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}
		c.logger.Warn("request failed, will retry",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return fmt.Errorf("all %d attempts failed: %w", c.maxAttempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", url, err)
	}
	return nil
}

// wait sleeps the delay appropriate for the previous failure: exponential
// for rate limiting, fixed for timeouts.
func (c *Client) wait(ctx context.Context, prev error, retries int) error {
	delay := c.timeoutWait
	var se *StatusError
	if errors.As(prev, &se) {
		delay = c.backoffBase << (retries - 1)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	// http.Client.Do wraps transport failures in *url.Error, which
	// satisfies net.Error; decode errors do not match and stay permanent.
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Close releases idle connections in the shared pool. Safe to call more
// than once or before any request was made.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
