package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/newsmd"
)

var _ newsmd.ArticleConverter = (*LoggingArticleConverter)(nil)

// LoggingArticleConverter logs each page-to-article conversion.
type LoggingArticleConverter struct {
	next   newsmd.ArticleConverter
	logger *slog.Logger
}

// NewLoggingArticleConverter decorates next.
func NewLoggingArticleConverter(next newsmd.ArticleConverter, logger *slog.Logger) *LoggingArticleConverter {
	return &LoggingArticleConverter{next: next, logger: logger}
}

// ConvertArticle logs the selectors used and the resulting title and size.
func (c *LoggingArticleConverter) ConvertArticle(html, sourceURL string, sel newsmd.Selectors) (article *newsmd.Article, err error) {
	defer func(begin time.Time) {
		attrs := []slog.Attr{
			slog.String("url", sourceURL),
			slog.String("include", sel.Include),
			slog.String("ignore", sel.Ignore),
		}
		if article != nil {
			attrs = append(attrs, slog.String("title", article.Title), slog.Int("bytes", len(article.Content)))
		}
		logStep(context.Background(), c.logger, "convert", begin, err, attrs...)
	}(time.Now())
	return c.next.ConvertArticle(html, sourceURL, sel)
}

var _ newsmd.ArticleWriter = (*LoggingArticleWriter)(nil)

// LoggingArticleWriter logs where each article is written.
type LoggingArticleWriter struct {
	next   newsmd.ArticleWriter
	logger *slog.Logger
}

// NewLoggingArticleWriter decorates next.
func NewLoggingArticleWriter(next newsmd.ArticleWriter, logger *slog.Logger) *LoggingArticleWriter {
	return &LoggingArticleWriter{next: next, logger: logger}
}

func (w *LoggingArticleWriter) WriteArticle(ctx context.Context, article *newsmd.Article) (path string, err error) {
	defer func(begin time.Time) {
		logStep(ctx, w.logger, "write", begin, err,
			slog.String("url", article.SourceURL),
			slog.String("path", path),
		)
	}(time.Now())
	return w.next.WriteArticle(ctx, article)
}
