package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/newsmd"
	"github.com/fwojciec/newsmd/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepository(t *testing.T) {
	t.Parallel()

	t.Run("owner and name", func(t *testing.T) {
		t.Parallel()

		repo, err := github.ParseRepository("freeCodeCamp-China/news-translation")

		require.NoError(t, err)
		assert.Equal(t, github.Repository{Owner: "freeCodeCamp-China", Name: "news-translation"}, repo)
		assert.Equal(t, "freeCodeCamp-China/news-translation", repo.String())
	})

	for _, s := range []string{"", "owner", "owner/", "/name", "a/b/c"} {
		t.Run("invalid "+s, func(t *testing.T) {
			t.Parallel()

			_, err := github.ParseRepository(s)

			require.Error(t, err)
			assert.Equal(t, newsmd.EINVALID, newsmd.ErrorCode(err))
		})
	}
}

func TestIssueNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{name: "issue event", payload: `{"action":"opened","issue":{"number":42}}`, want: 42},
		{name: "issue comment event", payload: `{"issue":{"number":7},"comment":{"id":1}}`, want: 7},
		{name: "pull request event", payload: `{"number":3,"pull_request":{"number":3}}`, want: 3},
		{name: "bare number", payload: `{"number":9}`, want: 9},
		{name: "no number", payload: `{"ref":"refs/heads/main"}`, wantErr: true},
		{name: "malformed", payload: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "event.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.payload), 0644))

			got, err := github.IssueNumber(path)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, newsmd.EINVALID, newsmd.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommenter_Comment(t *testing.T) {
	t.Parallel()

	t.Run("posts body to issue comments endpoint", func(t *testing.T) {
		t.Parallel()

		type request struct {
			method, path, auth string
			body               map[string]string
		}
		got := make(chan request, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			got <- request{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":1}`))
		}))
		defer srv.Close()

		c := github.NewCommenter(github.Repository{Owner: "acme", Name: "news"}, 12, "secret",
			github.WithAPIURL(srv.URL+"/"))

		err := c.Comment(context.Background(), "- Original URL: [T](https://example.com/t/)")

		require.NoError(t, err)
		req := <-got
		assert.Equal(t, http.MethodPost, req.method)
		assert.Equal(t, "/repos/acme/news/issues/12/comments", req.path)
		assert.Equal(t, "Bearer secret", req.auth)
		assert.Equal(t, "- Original URL: [T](https://example.com/t/)", req.body["body"])
	})

	t.Run("non-created status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
		}))
		defer srv.Close()

		c := github.NewCommenter(github.Repository{Owner: "acme", Name: "news"}, 1, "t",
			github.WithAPIURL(srv.URL), github.WithHTTPClient(srv.Client()))

		err := c.Comment(context.Background(), "hi")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "Resource not accessible")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := github.NewCommenter(github.Repository{Owner: "acme", Name: "news"}, 1, "t", github.WithAPIURL(srv.URL))

		err := c.Comment(ctx, "hi")

		require.Error(t, err)
	})
}

func TestSuccessMessage(t *testing.T) {
	t.Parallel()

	repo := github.Repository{Owner: "acme", Name: "news"}

	t.Run("names author and edit link", func(t *testing.T) {
		t.Parallel()

		a := &newsmd.Article{
			Metadata: newsmd.Metadata{
				Title:     "testexample post-full-title",
				Author:    "testexample author-card-name",
				AuthorURL: "/news/author/authorURL/",
			},
			SourceURL: "https://www.freecodecamp.org/news/testexample/",
		}

		got := github.SuccessMessage(a, "articles/testexample.md", repo, "refs/heads/main")

		want := "- Original URL: [testexample post-full-title](https://www.freecodecamp.org/news/testexample/)\n" +
			"- Original author: [testexample author-card-name](/news/author/authorURL/)\n" +
			"- Markdown file: [click to edit](https://github.com/acme/news/edit/main/articles/testexample.md)"
		assert.Equal(t, want, got)
	})

	t.Run("anonymous author", func(t *testing.T) {
		t.Parallel()

		a := &newsmd.Article{
			Metadata:  newsmd.Metadata{Title: "T"},
			SourceURL: "https://example.com/news/t/",
		}

		got := github.SuccessMessage(a, "./t.md", repo, "main")

		assert.Contains(t, got, "- Original author: [anonymous]()")
		assert.True(t, strings.HasSuffix(got, "/edit/main/t.md)"))
	})
}

func TestSetOutput(t *testing.T) {
	t.Parallel()

	t.Run("appends name=value lines", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output")
		require.NoError(t, os.WriteFile(path, []byte("existing=1\n"), 0644))

		require.NoError(t, github.SetOutput(path, github.OutputPathName, "articles/post.md"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "existing=1\nmarkdown_file_path=articles/post.md\n", string(data))
	})

	t.Run("multiline value uses delimiter", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output")

		require.NoError(t, github.SetOutput(path, "report", "a\nb"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, 4)
		delim := strings.TrimPrefix(lines[0], "report<<")
		assert.True(t, strings.HasPrefix(delim, "ghadelimiter_"))
		assert.Equal(t, []string{"a", "b", delim}, lines[1:])
	})
}
