package goquery

import "github.com/fwojciec/newsmd"

// Ensure ArticleConverter implements newsmd.ArticleConverter at compile time.
var _ newsmd.ArticleConverter = (*ArticleConverter)(nil)

// ArticleConverter parses article pages with goquery, filters them with the
// configured selectors, and renders the result with a newsmd.Converter.
type ArticleConverter struct {
	converter newsmd.Converter
}

// NewArticleConverter creates an ArticleConverter that renders with conv.
func NewArticleConverter(conv newsmd.Converter) *ArticleConverter {
	return &ArticleConverter{converter: conv}
}

// ConvertArticle converts an article page into metadata and Markdown.
// Each call parses html afresh, so repeated calls with the same input
// produce the same article.
func (c *ArticleConverter) ConvertArticle(html string, sourceURL string, sel newsmd.Selectors) (*newsmd.Article, error) {
	doc, err := Parse(html)
	if err != nil {
		return nil, err
	}

	root, err := Filter(doc, sel)
	if err != nil {
		return nil, err
	}

	meta, err := ExtractMetadata(root)
	if err != nil {
		return nil, err
	}

	content, err := c.converter.Convert(Nodes(root))
	if err != nil {
		return nil, err
	}

	return &newsmd.Article{
		Metadata:  meta,
		SourceURL: sourceURL,
		Content:   content,
	}, nil
}
