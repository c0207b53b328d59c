package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/newsmd"
)

// Parse parses an HTML page into a goquery document.
func Parse(html string) (*goquery.Document, error) {
	if strings.TrimSpace(html) == "" {
		return nil, newsmd.Errorf(newsmd.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, newsmd.Errorf(newsmd.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// Filter narrows doc to the content selected by sel and returns the
// processing roots in document order.
//
// Without an include selector the root is <body>. With one, the roots are
// exactly the matched elements; matches nested inside another match are
// dropped because the outer match already carries their content. Elements
// matching the ignore selector are then removed from the document, so
// Filter mutates doc.
//
// Returns EINVALID for a malformed selector and ENOMATCH when the include
// selector matches nothing.
func Filter(doc *goquery.Document, sel newsmd.Selectors) (*goquery.Selection, error) {
	include, err := compileSelector("include", sel.Include)
	if err != nil {
		return nil, err
	}
	ignore, err := compileSelector("ignore", sel.Ignore)
	if err != nil {
		return nil, err
	}

	root := doc.Find("body")
	if include != nil {
		matches := doc.FindMatcher(include)
		if matches.Length() == 0 {
			return nil, newsmd.Errorf(newsmd.ENOMATCH, "include selector %q matched no elements", sel.Include)
		}
		root = matches.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsMatcher(include).Length() == 0
		})
	}

	if ignore != nil {
		root.FindMatcher(ignore).Remove()
		root = root.NotMatcher(ignore)
	}

	return root, nil
}

// compileSelector returns nil for an empty selector.
func compileSelector(name, selector string) (cascadia.Selector, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, nil
	}
	compiled, err := cascadia.Compile(selector)
	if err != nil {
		return nil, newsmd.Errorf(newsmd.EINVALID, "invalid %s selector %q: %v", name, selector, err)
	}
	return compiled, nil
}
