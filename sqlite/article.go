package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/newsmd"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ newsmd.ArticleService = (*ArticleService)(nil)

// ArticleService implements newsmd.ArticleService using SQLite.
type ArticleService struct {
	db  *DB
	now func() time.Time
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db, now: time.Now}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	b := binary.BigEndian.AppendUint64(nil, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

const articleColumns = "id, source_url, file_path, title, author, author_url, content, content_hash, converted_at"

// CreateArticle records an article. Converting the same source URL again
// replaces the stored record and keeps its ID.
func (s *ArticleService) CreateArticle(ctx context.Context, article *newsmd.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}

	article.ConvertedAt = s.now().UTC()
	article.ContentHash = hashContent(article.Content)

	var id string
	err := s.db.conn.QueryRowContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			file_path = excluded.file_path,
			title = excluded.title,
			author = excluded.author,
			author_url = excluded.author_url,
			content = excluded.content,
			content_hash = excluded.content_hash,
			converted_at = excluded.converted_at
		RETURNING id
	`, uuid.New().String(), article.SourceURL, article.FilePath, article.Title, article.Author,
		article.AuthorURL, article.Content, article.ContentHash,
		article.ConvertedAt.Format(time.RFC3339)).Scan(&id)
	if err != nil {
		return err
	}

	article.ID = id
	return nil
}

// FindArticleBySourceURL retrieves an article by its original URL.
func (s *ArticleService) FindArticleBySourceURL(ctx context.Context, sourceURL string) (*newsmd.Article, error) {
	row := s.db.conn.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE source_url = ?`, sourceURL)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, newsmd.Errorf(newsmd.ENOTFOUND, "article not found")
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// FindArticles retrieves articles matching the filter, newest first.
func (s *ArticleService) FindArticles(ctx context.Context, filter newsmd.ArticleFilter) ([]*newsmd.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + articleColumns + " FROM articles WHERE 1=1")

	if filter.Author != nil {
		query.WriteString(" AND author = ?")
		args = append(args, *filter.Author)
	}

	query.WriteString(" ORDER BY converted_at DESC, rowid DESC")
	page, pageArgs := pageClause(filter.Limit, filter.Offset)
	query.WriteString(page)
	args = append(args, pageArgs...)

	rows, err := s.db.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*newsmd.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// DeleteArticle permanently removes an article record.
func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.db.conn.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return newsmd.Errorf(newsmd.ENOTFOUND, "article not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*newsmd.Article, error) {
	var a newsmd.Article
	var convertedAt string

	if err := row.Scan(&a.ID, &a.SourceURL, &a.FilePath, &a.Title, &a.Author, &a.AuthorURL,
		&a.Content, &a.ContentHash, &convertedAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, convertedAt)
	if err != nil {
		return nil, fmt.Errorf("article %s has invalid converted_at %q: %w", a.ID, convertedAt, err)
	}
	a.ConvertedAt = t
	return &a, nil
}

// pageClause returns the LIMIT and OFFSET suffix for a listing query.
// SQLite only accepts OFFSET after LIMIT, and LIMIT -1 means no limit.
func pageClause(limit, offset int) (string, []any) {
	switch {
	case limit > 0 && offset > 0:
		return " LIMIT ? OFFSET ?", []any{limit, offset}
	case limit > 0:
		return " LIMIT ?", []any{limit}
	case offset > 0:
		return " LIMIT -1 OFFSET ?", []any{offset}
	default:
		return "", nil
	}
}
