package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/newsmd"
)

// Marker selectors for article metadata. They follow the Ghost "Casper"
// theme markup used by freeCodeCamp News and similar publications.
const (
	TitleSelector  = ".post-full-title"
	AuthorSelector = ".author-card-name a"
)

// ExtractMetadata reads the article title, author name and author URL
// from the marker elements inside root. Author fields are optional.
//
// Returns ENOTITLE if no title marker with text is present.
func ExtractMetadata(root *goquery.Selection) (newsmd.Metadata, error) {
	var meta newsmd.Metadata

	if title, ok := first(root, TitleSelector); ok {
		meta.Title = cleanText(title.Text())
	}
	if meta.Title == "" {
		return newsmd.Metadata{}, newsmd.Errorf(newsmd.ENOTITLE, "article title marker %q not found", TitleSelector)
	}

	if author, ok := first(root, AuthorSelector); ok {
		meta.Author = cleanText(author.Text())
		href, _ := author.Attr("href")
		meta.AuthorURL = strings.TrimSpace(href)
	}

	return meta, nil
}

// first returns the first element matching selector in document order,
// considering each root itself before its descendants.
func first(root *goquery.Selection, selector string) (*goquery.Selection, bool) {
	for i := range root.Nodes {
		s := root.Eq(i)
		if s.Is(selector) {
			return s, true
		}
		if m := s.Find(selector).First(); m.Length() > 0 {
			return m, true
		}
	}
	return nil, false
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
