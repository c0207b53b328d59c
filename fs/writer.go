// Package fs provides file-based storage for converted articles.
package fs

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/fwojciec/newsmd"
	"gopkg.in/yaml.v3"
)

// ArticlePath derives an article's file name from its source URL: the last
// non-empty path segment plus ".md".
// Example: https://example.com/news/my-post/ → my-post.md
func ArticlePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", newsmd.Errorf(newsmd.EINVALID, "invalid article URL %q: %v", rawURL, err)
	}

	name := path.Base(strings.TrimRight(u.Path, "/"))
	if name == "." || name == "/" || name == "" {
		return "", newsmd.Errorf(newsmd.EINVALID, "article URL %q has no path segment to name the file after", rawURL)
	}

	return name + ".md", nil
}

// frontMatter is the YAML header written above the article body.
// Translator and reviewer are placeholders filled in by hand later.
type frontMatter struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author,omitempty"`
	AuthorURL   string `yaml:"authorURL,omitempty"`
	OriginalURL string `yaml:"originalURL"`
	Translator  string `yaml:"translator"`
	Reviewer    string `yaml:"reviewer"`
}

// FormatArticle formats an article with YAML front matter and inserts the
// read-more marker at the first blank line of the body.
func FormatArticle(a *newsmd.Article) (string, error) {
	header, err := yaml.Marshal(frontMatter{
		Title:       a.Title,
		Author:      a.Author,
		AuthorURL:   a.AuthorURL,
		OriginalURL: a.SourceURL,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(strings.TrimSpace(string(header)))
	b.WriteString("\n---\n\n")
	b.WriteString(newsmd.InsertMoreMarker(a.Content))
	return b.String(), nil
}

// ReadArticle parses a file written by Writer back into an Article.
func ReadArticle(filePath string) (*newsmd.Article, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, newsmd.Errorf(newsmd.EINVALID, "failed to parse front matter of %s: %v", filePath, err)
	}

	content := strings.TrimSpace(string(body))
	content = strings.Replace(content, "\n\n"+newsmd.MoreMarker+"\n\n", "\n\n", 1)

	return &newsmd.Article{
		Metadata: newsmd.Metadata{
			Title:     fm.Title,
			Author:    fm.Author,
			AuthorURL: fm.AuthorURL,
		},
		SourceURL: fm.OriginalURL,
		FilePath:  filePath,
		Content:   content,
	}, nil
}

// Ensure Writer implements newsmd.ArticleWriter at compile time.
var _ newsmd.ArticleWriter = (*Writer)(nil)

// Writer writes articles as markdown files to a directory.
type Writer struct {
	baseDir   string
	overwrite bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithOverwrite allows replacing an existing file of the same name.
// By default an existing file is reported as ECONFLICT.
func WithOverwrite(overwrite bool) Option {
	return func(w *Writer) {
		w.overwrite = overwrite
	}
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string, opts ...Option) *Writer {
	w := &Writer{baseDir: baseDir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteArticle writes an article to disk and returns the file path.
// The file is written to a temporary name and renamed into place, so a
// failed write never leaves a partial article behind.
func (w *Writer) WriteArticle(ctx context.Context, a *newsmd.Article) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	name, err := ArticlePath(a.SourceURL)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(w.baseDir, name)

	if !w.overwrite {
		if err := checkNotExists(fullPath); err != nil {
			return "", err
		}
	}

	content, err := FormatArticle(a)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", err
	}

	a.FilePath = fullPath
	return fullPath, nil
}

func checkNotExists(fullPath string) error {
	_, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	if existing, err := ReadArticle(fullPath); err == nil && existing.SourceURL != "" {
		return newsmd.Errorf(newsmd.ECONFLICT, "%s already exists (original URL %s)", fullPath, existing.SourceURL)
	}
	return newsmd.Errorf(newsmd.ECONFLICT, "%s already exists", fullPath)
}
