// Package github reports conversion results back to GitHub: issue comments
// through the REST API and step outputs through the GITHUB_OUTPUT file.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/newsmd"
	"github.com/google/uuid"
	"github.com/nao1215/markdown"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// OutputPathName is the step output holding the written markdown file path.
const OutputPathName = "markdown_file_path"

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository parses an "owner/name" string such as GITHUB_REPOSITORY.
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, newsmd.Errorf(newsmd.EINVALID, "invalid repository %q, want owner/name", s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

// IssueNumber reads the issue or pull request number from a workflow event
// payload, the file named by GITHUB_EVENT_PATH.
func IssueNumber(eventPath string) (int, error) {
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return 0, err
	}

	var event struct {
		Number int `json:"number"`
		Issue  struct {
			Number int `json:"number"`
		} `json:"issue"`
		PullRequest struct {
			Number int `json:"number"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return 0, newsmd.Errorf(newsmd.EINVALID, "failed to parse event payload: %v", err)
	}

	switch {
	case event.Issue.Number > 0:
		return event.Issue.Number, nil
	case event.PullRequest.Number > 0:
		return event.PullRequest.Number, nil
	case event.Number > 0:
		return event.Number, nil
	}
	return 0, newsmd.Errorf(newsmd.EINVALID, "event payload has no issue number")
}

// Ensure Commenter implements newsmd.Commenter at compile time.
var _ newsmd.Commenter = (*Commenter)(nil)

// Commenter posts comments on a single issue.
type Commenter struct {
	client *http.Client
	apiURL string
	repo   Repository
	issue  int
	token  string
}

// Option configures a Commenter.
type Option func(*Commenter)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Commenter) {
		c.client = client
	}
}

// WithAPIURL sets the API base URL, as given by GITHUB_API_URL on
// GitHub Enterprise runners.
func WithAPIURL(apiURL string) Option {
	return func(c *Commenter) {
		if apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

// NewCommenter creates a Commenter for issue in repo, authenticated by token.
func NewCommenter(repo Repository, issue int, token string, opts ...Option) *Commenter {
	c := &Commenter{
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: DefaultAPIURL,
		repo:   repo,
		issue:  issue,
		token:  token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Comment creates a new comment with the given markdown body.
func (c *Commenter) Comment(ctx context.Context, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.apiURL, c.repo.Owner, c.repo.Name, c.issue)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("comment on %s#%d: status %d: %s", c.repo, c.issue, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// SuccessMessage formats the report posted after an article is written.
// ref is the workflow ref; a refs/heads/ prefix is stripped to form the
// branch in the edit link.
func SuccessMessage(a *newsmd.Article, filePath string, repo Repository, ref string) string {
	author := a.Author
	if author == "" {
		author = "anonymous"
	}
	branch := strings.TrimPrefix(ref, "refs/heads/")
	editURL := fmt.Sprintf("https://github.com/%s/%s/edit/%s", repo.Owner, repo.Name, path.Join(branch, filepath.ToSlash(filePath)))

	md := markdown.NewMarkdown(io.Discard)
	md.BulletList(
		"Original URL: "+markdown.Link(a.Title, a.SourceURL),
		"Original author: "+markdown.Link(author, a.AuthorURL),
		"Markdown file: "+markdown.Link("click to edit", editURL),
	)
	return strings.TrimSpace(md.String())
}

// SetOutput appends a step output to the GITHUB_OUTPUT file. Values that
// span lines use the heredoc form with a random delimiter.
func SetOutput(outputPath, name, value string) error {
	f, err := os.OpenFile(outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	var line string
	if strings.ContainsAny(value, "\r\n") {
		delim := "ghadelimiter_" + uuid.NewString()
		line = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim)
	} else {
		line = name + "=" + value + "\n"
	}

	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
