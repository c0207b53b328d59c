// Package slog logs each step of the conversion pipeline by decorating the
// newsmd services with a *slog.Logger.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/newsmd"
)

// logStep records one completed pipeline step. Failed steps are logged at
// warn level with the application error code.
func logStep(ctx context.Context, logger *slog.Logger, step string, begin time.Time, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.Duration("duration", time.Since(begin)))
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("code", newsmd.ErrorCode(err)), slog.Any("err", err))
	}
	logger.LogAttrs(ctx, level, step, attrs...)
}
