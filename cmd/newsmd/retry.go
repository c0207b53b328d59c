package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/newsmd"
)

// DefaultRetryDelays returns the backoff delays for n fetch retries,
// doubling from one second: 1s, 2s, 4s, ...
func DefaultRetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// Ensure RetryFetcher implements newsmd.Fetcher at compile time.
var _ newsmd.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries failed fetches with a fixed backoff schedule.
type RetryFetcher struct {
	next   newsmd.Fetcher
	delays []time.Duration
	logger *slog.Logger // optional
}

// NewRetryFetcher wraps next so that a failed fetch is retried once per
// entry in delays, waiting that long before each attempt.
func NewRetryFetcher(next newsmd.Fetcher, delays []time.Duration, logger *slog.Logger) *RetryFetcher {
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// Fetch returns the first successful result or the last error.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := len(f.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		// Don't retry after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		if f.logger != nil {
			f.logger.Info("retry", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}

	return "", lastErr
}

// Close delegates to the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}
