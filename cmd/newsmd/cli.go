package main

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/newsmd"
	"github.com/fwojciec/newsmd/github"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Fetcher   newsmd.Fetcher
	Articles  newsmd.ArticleConverter
	Writer    newsmd.ArticleWriter
	Commenter newsmd.Commenter      // nil disables status comments
	Archive   newsmd.ArticleService // nil when no database is configured

	// GitHub workflow context used for the success report and step output.
	Repo       github.Repository
	Ref        string
	OutputFile string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"NEWSMD_DB" help:"SQLite archive of converted articles"`
	Verbose bool   `short:"v" help:"Log each pipeline step to stderr"`

	Convert ConvertCmd `cmd:"" help:"Convert a news article to a markdown file"`
	History HistoryCmd `cmd:"" help:"List archived articles"`
}

// ConvertCmd is the "convert" subcommand. Flags also read the inputs of the
// GitHub Action so the binary runs unchanged as a container action.
type ConvertCmd struct {
	Text        string        `arg:"" optional:"" help:"Text containing a [title](URL) link to the article"`
	NewsLink    string        `name:"news-link" env:"INPUT_NEWSLINK" help:"Text containing the article link, used when TEXT is empty"`
	Include     string        `short:"i" env:"INPUT_INCLUDESELECTOR" help:"CSS selector for the content to keep"`
	Ignore      string        `short:"x" env:"INPUT_IGNORESELECTOR" help:"CSS selector for elements to remove"`
	Dir         string        `short:"d" default:"." env:"INPUT_MARKDOWNFILEPATH" help:"Directory the markdown file is written to"`
	Overwrite   bool          `short:"f" help:"Replace an existing file of the same name (INPUT_SKIPSAMEARTICLECHECK=true)"`
	SkipComment bool          `help:"Don't post a status comment on the triggering issue (INPUT_SKIPISSUECOMMENT=true)"`
	Browser     bool          `short:"b" help:"Render the page in headless Chrome before converting"`
	Engine      string        `enum:"core,library" default:"core" help:"Markdown engine (core, library)"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout"`
	Retries     int           `short:"r" default:"0" help:"Retry a failed fetch up to this many times with backoff"`
	Stdout      bool          `name:"stdout" help:"Print the document instead of writing it"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Author string `short:"a" help:"Only show articles by this author"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of articles to list"`
}

// Action inputs that switch behaviour on. The runner sets declared inputs
// without a value to "", so only the literal "true" enables them.
const (
	inputOverwrite   = "INPUT_SKIPSAMEARTICLECHECK"
	inputSkipComment = "INPUT_SKIPISSUECOMMENT"
)

// inputEnabled reports whether the Action input name is set to "true".
func inputEnabled(getenv func(string) string, name string) bool {
	return strings.TrimSpace(getenv(name)) == "true"
}

// protectDashText rewrites args so that values starting with "- ", like
// the "- Source: [title](URL)" line copied from an issue body, are not
// parsed as flags. A value that follows a flag taking one is joined to it
// with "="; any other such argument is moved behind "--" as a positional.
func protectDashText(model *kong.Application, args []string) []string {
	valueFlags := map[string]string{}
	var visit func(n *kong.Node)
	visit = func(n *kong.Node) {
		for _, f := range n.Flags {
			if f.IsBool() || f.IsCounter() {
				continue
			}
			valueFlags["--"+f.Name] = "--" + f.Name
			if f.Short != 0 {
				valueFlags["-"+string(f.Short)] = "--" + f.Name
			}
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(model.Node)

	var out, positional []string
	for i, arg := range args {
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if !isDashText(arg) {
			out = append(out, arg)
			continue
		}
		if n := len(out); n > 0 {
			if long, ok := valueFlags[out[n-1]]; ok {
				out[n-1] = long + "=" + arg
				continue
			}
		}
		positional = append(positional, arg)
	}
	if len(positional) == 0 {
		return out
	}
	return append(append(out, "--"), positional...)
}

// isDashText reports whether arg starts with a dash but is text rather
// than a flag: whitespace appears before any "=".
func isDashText(arg string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}
	space := strings.IndexAny(arg, " \t\r\n")
	if space < 0 {
		return false
	}
	eq := strings.IndexByte(arg, '=')
	return eq < 0 || space < eq
}
