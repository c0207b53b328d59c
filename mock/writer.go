package mock

import (
	"context"

	"github.com/fwojciec/newsmd"
)

var _ newsmd.ArticleWriter = (*ArticleWriter)(nil)

// ArticleWriter is a mock implementation of newsmd.ArticleWriter.
type ArticleWriter struct {
	WriteArticleFn func(ctx context.Context, article *newsmd.Article) (string, error)
}

func (w *ArticleWriter) WriteArticle(ctx context.Context, article *newsmd.Article) (string, error) {
	return w.WriteArticleFn(ctx, article)
}
