package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/newsmd"
	"github.com/fwojciec/newsmd/fs"
	"github.com/fwojciec/newsmd/github"
	"github.com/fwojciec/newsmd/goquery"
	"github.com/fwojciec/newsmd/htmltomarkdown"
	newshttp "github.com/fwojciec/newsmd/http"
	"github.com/fwojciec/newsmd/markdown"
	"github.com/fwojciec/newsmd/rod"
	newsslog "github.com/fwojciec/newsmd/slog"
	"github.com/fwojciec/newsmd/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the archive, opened when --db is set.
	DB *sqlite.DB

	// Services for end-to-end testing. Real implementations are wired
	// when these are nil.
	Fetcher   newsmd.Fetcher
	Commenter newsmd.Commenter

	// Getenv reads the GitHub runner environment.
	Getenv func(string) string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv: os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("newsmd"),
		kong.Description("Convert news articles to markdown files with front matter"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'newsmd --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(protectDashText(parser.Model, args))
	if err != nil {
		return err
	}

	var logger *slog.Logger
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, nil))
	}

	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set NEWSMD_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer m.Close()
		deps.Archive = sqlite.NewArticleService(m.DB)
	}

	if strings.HasPrefix(kongCtx.Command(), "convert") {
		cleanup, err := m.wireConvert(&cli.Convert, deps, logger)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	if kongCtx.Command() == "history" && deps.Archive == nil {
		return fmt.Errorf("history needs an archive database: set --db or NEWSMD_DB")
	}

	return kongCtx.Run(deps)
}

// wireConvert builds the conversion pipeline for the convert command. The
// returned cleanup releases the fetcher.
func (m *Main) wireConvert(c *ConvertCmd, deps *Dependencies, logger *slog.Logger) (func(), error) {
	fetcher := m.Fetcher
	if fetcher == nil {
		if c.Browser {
			f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
			if err != nil {
				fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
				return nil, fmt.Errorf("failed to start browser: %w", err)
			}
			fetcher = f
		} else {
			fetcher = newshttp.NewFetcher(newshttp.WithTimeout(c.Timeout))
		}
	}

	var conv newsmd.Converter = markdown.NewConverter()
	if c.Engine == "library" {
		conv = htmltomarkdown.NewConverter()
	}
	var articles newsmd.ArticleConverter = goquery.NewArticleConverter(conv)

	dir := c.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	overwrite := c.Overwrite || inputEnabled(m.Getenv, inputOverwrite)
	var writer newsmd.ArticleWriter = fs.NewWriter(dir, fs.WithOverwrite(overwrite))

	if logger != nil {
		fetcher = newsslog.NewLoggingFetcher(fetcher, logger)
	}
	if c.Retries > 0 {
		fetcher = NewRetryFetcher(fetcher, DefaultRetryDelays(c.Retries), logger)
	}

	if logger != nil {
		articles = newsslog.NewLoggingArticleConverter(articles, logger)
		writer = newsslog.NewLoggingArticleWriter(writer, logger)
	}

	deps.Fetcher = fetcher
	deps.Articles = articles
	deps.Writer = writer

	if repo, err := github.ParseRepository(m.Getenv("GITHUB_REPOSITORY")); err == nil {
		deps.Repo = repo
	}
	deps.Ref = m.Getenv("GITHUB_REF")
	deps.OutputFile = m.Getenv("GITHUB_OUTPUT")

	if !c.SkipComment && !inputEnabled(m.Getenv, inputSkipComment) {
		deps.Commenter = m.Commenter
		if deps.Commenter == nil {
			deps.Commenter = m.githubCommenter(deps)
		}
	}

	return func() { _ = fetcher.Close() }, nil
}

// githubCommenter returns a commenter for the triggering issue, or nil when
// the process is not running inside a GitHub workflow.
func (m *Main) githubCommenter(deps *Dependencies) newsmd.Commenter {
	token := m.Getenv("GITHUB_TOKEN")
	eventPath := m.Getenv("GITHUB_EVENT_PATH")
	if token == "" || eventPath == "" || deps.Repo.Name == "" {
		return nil
	}

	issue, err := github.IssueNumber(eventPath)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: issue comments disabled: %s\n", newsmd.ErrorMessage(err))
		return nil
	}

	return github.NewCommenter(deps.Repo, issue, token, github.WithAPIURL(m.Getenv("GITHUB_API_URL")))
}
