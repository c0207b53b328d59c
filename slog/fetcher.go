package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/newsmd"
)

var _ newsmd.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every page download of the wrapped Fetcher.
type LoggingFetcher struct {
	next   newsmd.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher decorates next.
func NewLoggingFetcher(next newsmd.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		logStep(ctx, f.logger, "fetch", begin, err,
			slog.String("url", url),
			slog.Int("bytes", len(html)),
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

func (f *LoggingFetcher) Close() error {
	if err := f.next.Close(); err != nil {
		f.logger.Warn("close fetcher", "err", err)
		return err
	}
	return nil
}
