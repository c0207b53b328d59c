// Package goldmark reads Markdown input with the goldmark CommonMark parser.
package goldmark

import (
	"github.com/fwojciec/newsmd"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractAddress returns the destination of the first inline Markdown link
// ([text](URL)) found in src. Issue bodies and feed entries carry the
// article's source as a line like "- Source: [Title](https://example.com/news/title/)".
//
// Link text may contain balanced brackets and the URL balanced parentheses,
// as CommonMark allows. Returns ENOADDRESS if src contains no such link.
func ExtractAddress(src string) (string, error) {
	source := []byte(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var dest string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok && len(link.Destination) > 0 {
			dest = string(link.Destination)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", newsmd.Errorf(newsmd.EINTERNAL, "failed to walk markdown: %v", err)
	}
	if dest == "" {
		return "", newsmd.Errorf(newsmd.ENOADDRESS, "no [text](URL) source link found in input")
	}
	return dest, nil
}
