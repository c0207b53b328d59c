// Package htmltomarkdown provides a newsmd.Converter backed by
// github.com/JohannesKaufmann/html-to-markdown. It is the alternative to
// the markdown package's renderer for pages whose markup that renderer
// flattens too aggressively.
package htmltomarkdown

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/newsmd"
	"golang.org/x/net/html"
)

// Ensure Converter implements newsmd.Converter at compile time.
var _ newsmd.Converter = (*Converter)(nil)

// htmlNode is implemented by nodes backed by golang.org/x/net/html,
// such as goquery.Node.
type htmlNode interface {
	HTMLNode() *html.Node
}

// Converter wraps html-to-markdown to convert DOM nodes to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithEmDelimiter("_"),
			),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert serializes nodes back to HTML and converts the result.
// Every node must expose its parser node through HTMLNode.
func (c *Converter) Convert(nodes []newsmd.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		hn, ok := n.(htmlNode)
		if !ok {
			return "", newsmd.Errorf(newsmd.EINVALID, "node %T is not backed by an HTML parser node", n)
		}
		if err := html.Render(&buf, hn.HTMLNode()); err != nil {
			return "", err
		}
		buf.WriteString("\n")
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(buf.String())
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
