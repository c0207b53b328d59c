package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/newsmd"
	main "github.com/fwojciec/newsmd/cmd/newsmd"
	"github.com/fwojciec/newsmd/fs"
	"github.com/fwojciec/newsmd/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	include = "article.post-full"
	ignore  = ".ad-slot, .post-full-meta-date, .author-card-content p"
)

// newArticleServer serves the example article page at /news/testexample/.
func newArticleServer(t *testing.T) *httptest.Server {
	t.Helper()

	page, err := os.ReadFile("../../goquery/testdata/example.html")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news/testexample/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newMain returns a Main that sees env instead of the process environment.
func newMain(env map[string]string) *main.Main {
	m := main.NewMain()
	m.Getenv = func(key string) string { return env[key] }
	return m
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no arguments shows help and fails", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newMain(nil).Run(context.Background(), nil, stdout, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "convert")
		assert.Contains(t, stdout.String(), "history")
	})

	t.Run("help flag succeeds", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		err := newMain(nil).Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "newsmd")
	})

	t.Run("unknown engine is rejected", func(t *testing.T) {
		t.Parallel()

		err := newMain(nil).Run(context.Background(), []string{"convert", "--engine", "pandoc", sourceText}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})

	t.Run("history without database fails", func(t *testing.T) {
		t.Parallel()

		err := newMain(nil).Run(context.Background(), []string{"history"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "NEWSMD_DB")
	})
}

func TestMain_Run_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts article page to markdown file", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		dir := t.TempDir()
		articleURL := srv.URL + "/news/testexample/"
		stdout := &bytes.Buffer{}

		err := newMain(nil).Run(context.Background(), []string{
			"convert", "- Source: [Test Example](" + articleURL + ")",
			"--include", include,
			"--ignore", ignore,
			"--dir", dir,
		}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		path := filepath.Join(dir, "testexample.md")
		assert.Equal(t, path+"\n", stdout.String())

		golden, err := os.ReadFile("../../goquery/testdata/example.md")
		require.NoError(t, err)
		want, err := fs.FormatArticle(&newsmd.Article{
			Metadata: newsmd.Metadata{
				Title:     "testexample post-full-title",
				Author:    "authorName",
				AuthorURL: "/news/author/authorURL/",
			},
			SourceURL: articleURL,
			Content:   strings.TrimRight(string(golden), "\n"),
		})
		require.NoError(t, err)
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	})

	t.Run("dash-led text is accepted in every position", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		text := "- Source: [[Solved] Test Example](" + srv.URL + "/news/testexample/)"
		// dirArg is replaced with a fresh output directory for each run.
		const dirArg = "DIR"
		argSets := map[string][]string{
			"text before flags":    {"convert", text, "--include", include, "--dir", dirArg},
			"text after flags":     {"convert", "-i", include, "-d", dirArg, text},
			"news-link flag":       {"convert", "--news-link", text, "-i", include, "--dir", dirArg},
			"after end of flags":   {"convert", "--include", include, "--dir", dirArg, "--", text},
			"news-link with =":     {"convert", "--news-link=" + text, "--include", include, "--dir", dirArg},
			"global flag preceded": {"--verbose", "convert", text, "--dir", dirArg},
		}

		for name, args := range argSets {
			dir := t.TempDir()
			stdout := &bytes.Buffer{}
			resolved := make([]string, len(args))
			for i, arg := range args {
				if arg == dirArg {
					arg = dir
				}
				resolved[i] = arg
			}

			err := newMain(nil).Run(context.Background(), resolved, stdout, &bytes.Buffer{})

			require.NoError(t, err, name)
			assert.Equal(t, filepath.Join(dir, "testexample.md")+"\n", stdout.String(), name)
		}
	})

	t.Run("library engine produces a file", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		dir := t.TempDir()

		err := newMain(nil).Run(context.Background(), []string{
			"convert", "[x](" + srv.URL + "/news/testexample/)",
			"--include", include,
			"--dir", dir,
			"--engine", "library",
		}, &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
		got, err := fs.ReadArticle(filepath.Join(dir, "testexample.md"))
		require.NoError(t, err)
		assert.Equal(t, "testexample post-full-title", got.Title)
		assert.Contains(t, got.Content, "# testexample post-full-title")
	})

	t.Run("second run conflicts unless overwrite", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		dir := t.TempDir()
		args := []string{"convert", "[x](" + srv.URL + "/news/testexample/)", "--dir", dir}

		require.NoError(t, newMain(nil).Run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{}))

		err := newMain(nil).Run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{})
		require.Error(t, err)
		assert.Equal(t, newsmd.ECONFLICT, newsmd.ErrorCode(err))

		err = newMain(nil).Run(context.Background(), append(args, "--overwrite"), &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)
	})

	t.Run("missing page fails with ELOAD", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)

		err := newMain(nil).Run(context.Background(), []string{
			"convert", "[x](" + srv.URL + "/news/missing/)", "--dir", t.TempDir(),
		}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Equal(t, newsmd.ELOAD, newsmd.ErrorCode(err))
	})

	t.Run("unmatched include fails with ENOMATCH", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		dir := t.TempDir()

		err := newMain(nil).Run(context.Background(), []string{
			"convert", "[x](" + srv.URL + "/news/testexample/)", "--include", ".nothing-here", "--dir", dir,
		}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Equal(t, newsmd.ENOMATCH, newsmd.ErrorCode(err))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("comments and sets output inside a workflow", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		dir := t.TempDir()
		outputFile := filepath.Join(t.TempDir(), "github_output")
		var comments []string
		m := newMain(map[string]string{
			"GITHUB_REPOSITORY": "acme/news",
			"GITHUB_REF":        "refs/heads/main",
			"GITHUB_OUTPUT":     outputFile,
		})
		m.Commenter = &mock.Commenter{
			CommentFn: func(_ context.Context, body string) error {
				comments = append(comments, body)
				return nil
			},
		}

		err := m.Run(context.Background(), []string{
			"convert", "[x](" + srv.URL + "/news/testexample/)", "--include", include, "--dir", dir,
		}, &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Contains(t, comments[0], "- Original author: [authorName](/news/author/authorURL/)")
		assert.Contains(t, comments[0], "https://github.com/acme/news/edit/main/")
		data, err := os.ReadFile(outputFile)
		require.NoError(t, err)
		assert.Equal(t, "markdown_file_path="+filepath.Join(dir, "testexample.md")+"\n", string(data))
	})

	t.Run("skip comment disables commenter", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		m := newMain(nil)
		m.Commenter = &mock.Commenter{
			CommentFn: func(_ context.Context, _ string) error {
				t.Error("comment must not be posted")
				return nil
			},
		}

		err := m.Run(context.Background(), []string{
			"convert", "[x](" + srv.URL + "/news/testexample/)", "--dir", t.TempDir(), "--skip-comment",
		}, &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
	})

	t.Run("retries transient fetch failures", func(t *testing.T) {
		t.Parallel()

		page, err := os.ReadFile("../../goquery/testdata/example.html")
		require.NoError(t, err)
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write(page)
		}))
		defer srv.Close()

		err = newMain(nil).Run(context.Background(), []string{
			"convert", "[x](" + srv.URL + "/news/testexample/)", "--dir", t.TempDir(), "--retries", "1",
		}, &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Equal(t, int32(2), requests.Load())
	})

	t.Run("verbose logs pipeline steps", func(t *testing.T) {
		t.Parallel()

		srv := newArticleServer(t)
		stderr := &bytes.Buffer{}

		err := newMain(nil).Run(context.Background(), []string{
			"--verbose", "convert", "[x](" + srv.URL + "/news/testexample/)", "--dir", t.TempDir(),
		}, &bytes.Buffer{}, stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "msg=fetch")
		assert.Contains(t, stderr.String(), "msg=convert")
		assert.Contains(t, stderr.String(), "msg=write")
	})
}

func TestMain_Run_History(t *testing.T) {
	t.Parallel()

	srv := newArticleServer(t)
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "newsmd.db")

	err := newMain(nil).Run(context.Background(), []string{
		"--db", dbPath, "convert", "[x](" + srv.URL + "/news/testexample/)", "--dir", dir,
	}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	err = newMain(nil).Run(context.Background(), []string{"--db", dbPath, "history"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), filepath.Join(dir, "testexample.md"))
	assert.Contains(t, stdout.String(), "testexample post-full-title")
	assert.Contains(t, stdout.String(), srv.URL+"/news/testexample/")
}

// TestMain_Run_ActionInputs runs convert the way the container action does:
// every declared input arrives as an INPUT_* variable, empty when unset.
func TestMain_Run_ActionInputs(t *testing.T) {
	srv := newArticleServer(t)
	dir := t.TempDir()
	outputFile := filepath.Join(t.TempDir(), "github_output")

	t.Setenv("INPUT_NEWSLINK", "- Source: [Test Example]("+srv.URL+"/news/testexample/)")
	t.Setenv("INPUT_INCLUDESELECTOR", include)
	t.Setenv("INPUT_IGNORESELECTOR", "")
	t.Setenv("INPUT_MARKDOWNFILEPATH", dir)
	t.Setenv("INPUT_SKIPSAMEARTICLECHECK", "")
	t.Setenv("INPUT_SKIPISSUECOMMENT", "")
	t.Setenv("GITHUB_REPOSITORY", "acme/news")
	t.Setenv("GITHUB_REF", "refs/heads/main")
	t.Setenv("GITHUB_OUTPUT", outputFile)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("NEWSMD_DB", "")

	var comments []string
	run := func() error {
		m := main.NewMain()
		m.Commenter = &mock.Commenter{
			CommentFn: func(_ context.Context, body string) error {
				comments = append(comments, body)
				return nil
			},
		}
		return m.Run(context.Background(), []string{"convert"}, &bytes.Buffer{}, &bytes.Buffer{})
	}

	require.NoError(t, run())
	got, err := fs.ReadArticle(filepath.Join(dir, "testexample.md"))
	require.NoError(t, err)
	assert.Equal(t, "testexample post-full-title", got.Title)
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0], "https://github.com/acme/news/edit/main/")

	// Empty inputs are false: the same article now conflicts.
	err = run()
	require.Error(t, err)
	assert.Equal(t, newsmd.ECONFLICT, newsmd.ErrorCode(err))

	t.Setenv("INPUT_SKIPSAMEARTICLECHECK", "true")
	t.Setenv("INPUT_SKIPISSUECOMMENT", "true")
	comments = nil

	require.NoError(t, run())
	assert.Empty(t, comments)
}
