package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/newsmd"
	"github.com/fwojciec/newsmd/fs"
	"github.com/fwojciec/newsmd/github"
	"github.com/fwojciec/newsmd/goldmark"
)

// Run executes the convert command. Failures are reported on stderr and,
// when a commenter is configured, on the triggering issue.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	if err := c.run(deps); err != nil {
		msg := errorText(err)
		fmt.Fprintf(deps.Stderr, "error: %s\n", msg)
		if deps.Commenter != nil {
			if cerr := deps.Commenter.Comment(deps.Ctx, msg); cerr != nil {
				fmt.Fprintf(deps.Stderr, "error: failed to post comment: %v\n", cerr)
			}
		}
		return err
	}
	return nil
}

func (c *ConvertCmd) run(deps *Dependencies) error {
	text := c.Text
	if strings.TrimSpace(text) == "" {
		text = c.NewsLink
	}
	if strings.TrimSpace(text) == "" {
		return newsmd.Errorf(newsmd.EINVALID, "no news link given: pass TEXT or --news-link")
	}

	sourceURL, err := goldmark.ExtractAddress(text)
	if err != nil {
		return err
	}

	html, err := deps.Fetcher.Fetch(deps.Ctx, sourceURL)
	if err != nil {
		return newsmd.Errorf(newsmd.ELOAD, "failed to load %s: %v", sourceURL, err)
	}

	article, err := deps.Articles.ConvertArticle(html, sourceURL, newsmd.Selectors{
		Include: c.Include,
		Ignore:  c.Ignore,
	})
	if err != nil {
		return err
	}

	if c.Stdout {
		doc, err := fs.FormatArticle(article)
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, doc)
		return nil
	}

	path, err := deps.Writer.WriteArticle(deps.Ctx, article)
	if err != nil {
		return err
	}
	article.FilePath = path

	// Steps past this point leave the written file in place on failure.
	// The path is only printed once every step has succeeded.
	if deps.Archive != nil {
		if err := deps.Archive.CreateArticle(deps.Ctx, article); err != nil {
			return afterWrite(path, "archive it", err)
		}
	}

	if deps.Commenter != nil {
		report := github.SuccessMessage(article, path, deps.Repo, deps.Ref)
		if err := deps.Commenter.Comment(deps.Ctx, report); err != nil {
			return afterWrite(path, "post comment", err)
		}
	}

	if deps.OutputFile != "" {
		if err := github.SetOutput(deps.OutputFile, github.OutputPathName, path); err != nil {
			return afterWrite(path, "set step output", err)
		}
	}

	fmt.Fprintln(deps.Stdout, path)
	return nil
}

// afterWrite reports a failure that happened once the article file was
// written. The message names the file so it can be found or removed.
func afterWrite(path, step string, err error) error {
	return newsmd.Errorf(newsmd.ErrorCode(err), "wrote %s but failed to %s: %s", path, step, errorText(err))
}

// errorText returns the user-facing message for err. Internal errors keep
// their full text since ErrorMessage hides it.
func errorText(err error) string {
	if newsmd.ErrorCode(err) == newsmd.EINTERNAL {
		return err.Error()
	}
	return newsmd.ErrorMessage(err)
}
