package upstage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// do performs one logical API call with bounded retry. newRequest is
// invoked once per attempt so request bodies are rebuilt (and files
// re-read) instead of replaying a consumed reader. On success the full
// response body is returned; on exhaustion the last error is surfaced.
func (c *Client) do(ctx context.Context, op string, newRequest func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	delay := c.retryBaseDelay

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, c.retryMaxDelay)
		}

		body, err := c.attempt(ctx, op, newRequest)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
		slog.Warn("transient Upstage API failure, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.maxAttempts),
			slog.String("error", err.Error()),
		)
	}
	return nil, lastErr
}

// attempt performs a single request/response round trip under the
// per-attempt timeout.
func (c *Client) attempt(ctx context.Context, op string, newRequest func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	start := time.Now()

	req, err := newRequest(attemptCtx)
	if err != nil {
		return nil, err
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Upstage request failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := c.parseError(resp)
		slog.Debug("Upstage request returned error",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	slog.Debug("Upstage request completed",
		slog.String("operation", op),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return body, nil
}

// isRetryable reports whether another attempt may succeed. Rate limits
// (429) and server errors are transient; other 4xx responses are permanent
// and fail immediately. Connection errors and per-attempt timeouts retry;
// cancellation of the caller's context does not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return apiErr.StatusCode < 400 || apiErr.StatusCode >= 500
	}
	return true
}
