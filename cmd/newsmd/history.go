package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/newsmd"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := newsmd.ArticleFilter{Limit: c.Limit}
	if c.Author != "" {
		filter.Author = &c.Author
	}

	articles, err := deps.Archive.FindArticles(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", newsmd.ErrorMessage(err))
		return err
	}

	if len(articles) == 0 {
		fmt.Fprintln(deps.Stdout, "No articles found. Use 'newsmd convert' to add one.")
		return nil
	}

	for _, a := range articles {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", a.ConvertedAt.Format(time.DateOnly), a.FilePath, a.Title, a.SourceURL)
	}

	return nil
}
