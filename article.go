package newsmd

import (
	"context"
	"strings"
	"time"
)

// MoreMarker separates the teaser excerpt from the full article body.
const MoreMarker = "<!-- more -->"

// Metadata holds the fields read from an article page's marker elements.
// Title is always set on a successfully converted article; Author and
// AuthorURL are empty for anonymous articles.
type Metadata struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	AuthorURL string `json:"authorUrl"`
}

// Article represents a converted news article.
type Article struct {
	Metadata

	ID          string    `json:"id"`
	SourceURL   string    `json:"sourceUrl"`
	FilePath    string    `json:"filePath"`
	Content     string    `json:"content"` // Markdown
	ContentHash string    `json:"contentHash"`
	ConvertedAt time.Time `json:"convertedAt"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.SourceURL == "" {
		return Errorf(EINVALID, "article source URL required")
	}
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	return nil
}

// Selectors narrows a page to the content worth converting.
// Both fields are CSS selectors; empty means "not set".
type Selectors struct {
	// Include replaces the page body with the elements it matches.
	Include string

	// Ignore removes matching elements after Include has been applied.
	Ignore string
}

// ArticleConverter turns a fetched article page into an Article.
type ArticleConverter interface {
	// ConvertArticle parses html, applies sel, and returns the article's
	// metadata and Markdown content. The conversion is all-or-nothing.
	//
	// Returns ENOMATCH if sel.Include matches nothing, ENOTITLE if the title
	// marker is absent, and EINVALID for empty input or a malformed selector.
	ConvertArticle(html string, sourceURL string, sel Selectors) (*Article, error)
}

// ArticleWriter persists a converted article.
type ArticleWriter interface {
	// WriteArticle stores the article and returns the location it was written to.
	WriteArticle(ctx context.Context, article *Article) (string, error)
}

// Commenter posts a status report about a conversion run.
type Commenter interface {
	Comment(ctx context.Context, body string) error
}

// ArticleService represents a service for managing the archive of
// converted articles.
type ArticleService interface {
	// CreateArticle records an article, replacing any previous record with
	// the same source URL.
	CreateArticle(ctx context.Context, article *Article) error

	// FindArticleBySourceURL retrieves an article by its original URL.
	// Returns ENOTFOUND if the article does not exist.
	FindArticleBySourceURL(ctx context.Context, sourceURL string) (*Article, error)

	// FindArticles retrieves articles matching the filter, newest first.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// DeleteArticle removes an article record.
	// Returns ENOTFOUND if the article does not exist.
	DeleteArticle(ctx context.Context, id string) error
}

// ArticleFilter represents a filter for FindArticles.
type ArticleFilter struct {
	Author *string `json:"author"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// InsertMoreMarker places MoreMarker in the first blank-line gap of content.
// Later gaps are left untouched. Content without a blank line is returned
// unchanged.
func InsertMoreMarker(content string) string {
	return strings.Replace(content, "\n\n", "\n\n"+MoreMarker+"\n\n", 1)
}
