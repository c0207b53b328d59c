package newsmd

// Converter renders filtered DOM nodes as Markdown.
type Converter interface {
	// Convert renders nodes, in order, into a single Markdown document.
	// Block segments are separated by exactly one blank line and the
	// result has no leading or trailing whitespace.
	Convert(nodes []Node) (string, error)
}
