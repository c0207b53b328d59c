package newsmd

// NodeType identifies the kind of a DOM node.
type NodeType int

// Node types relevant to conversion. Comments, doctypes and the like
// are reported as OtherNode and carry no content.
const (
	OtherNode NodeType = iota
	ElementNode
	TextNode
)

// Node is a read-only view of a parsed HTML tree.
// Implementations adapt a concrete parser's tree (see goquery.Node) so the
// Markdown converter does not depend on any particular HTML library.
type Node interface {
	// Type reports whether the node is an element, text, or something else.
	Type() NodeType

	// TagName returns the lowercase element name, or "" for non-elements.
	TagName() string

	// Attr returns the value of the named attribute, or "" if it is absent.
	Attr(name string) string

	// Attributes returns all attributes of an element.
	Attributes() map[string]string

	// Children returns the child nodes in document order.
	Children() []Node

	// TextContent returns the concatenated text of the node and its descendants.
	TextContent() string
}
