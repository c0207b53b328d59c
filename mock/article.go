package mock

import (
	"context"

	"github.com/fwojciec/newsmd"
)

var _ newsmd.ArticleConverter = (*ArticleConverter)(nil)

// ArticleConverter is a mock implementation of newsmd.ArticleConverter.
type ArticleConverter struct {
	ConvertArticleFn func(html, sourceURL string, sel newsmd.Selectors) (*newsmd.Article, error)
}

func (c *ArticleConverter) ConvertArticle(html, sourceURL string, sel newsmd.Selectors) (*newsmd.Article, error) {
	return c.ConvertArticleFn(html, sourceURL, sel)
}

var _ newsmd.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of newsmd.ArticleService.
type ArticleService struct {
	CreateArticleFn          func(ctx context.Context, article *newsmd.Article) error
	FindArticleBySourceURLFn func(ctx context.Context, sourceURL string) (*newsmd.Article, error)
	FindArticlesFn           func(ctx context.Context, filter newsmd.ArticleFilter) ([]*newsmd.Article, error)
	DeleteArticleFn          func(ctx context.Context, id string) error
}

func (s *ArticleService) CreateArticle(ctx context.Context, article *newsmd.Article) error {
	return s.CreateArticleFn(ctx, article)
}

func (s *ArticleService) FindArticleBySourceURL(ctx context.Context, sourceURL string) (*newsmd.Article, error) {
	return s.FindArticleBySourceURLFn(ctx, sourceURL)
}

func (s *ArticleService) FindArticles(ctx context.Context, filter newsmd.ArticleFilter) ([]*newsmd.Article, error) {
	return s.FindArticlesFn(ctx, filter)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	return s.DeleteArticleFn(ctx, id)
}
