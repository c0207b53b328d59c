package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/newsmd"
	"golang.org/x/net/html"
)

// Ensure Node implements newsmd.Node at compile time.
var _ newsmd.Node = (*Node)(nil)

// Node adapts an *html.Node to the read-only newsmd.Node interface.
type Node struct {
	node *html.Node
}

// NewNode wraps n.
func NewNode(n *html.Node) *Node {
	return &Node{node: n}
}

// Nodes wraps every node of the selection, in selection order.
func Nodes(s *goquery.Selection) []newsmd.Node {
	nodes := make([]newsmd.Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, NewNode(n))
	}
	return nodes
}

// HTMLNode returns the underlying parser node.
func (n *Node) HTMLNode() *html.Node {
	return n.node
}

// Type reports the node's kind.
func (n *Node) Type() newsmd.NodeType {
	switch n.node.Type {
	case html.ElementNode:
		return newsmd.ElementNode
	case html.TextNode:
		return newsmd.TextNode
	default:
		return newsmd.OtherNode
	}
}

// TagName returns the lowercase element name, or "" for non-elements.
func (n *Node) TagName() string {
	if n.node.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.node.Data)
}

// Attr returns the named attribute's value, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Attributes returns a copy of the element's attributes.
func (n *Node) Attributes() map[string]string {
	attrs := make(map[string]string, len(n.node.Attr))
	for _, a := range n.node.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// Children returns the child nodes in document order.
func (n *Node) Children() []newsmd.Node {
	var children []newsmd.Node
	for c := n.node.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, NewNode(c))
	}
	return children
}

// TextContent returns the text of the node and all its descendants.
func (n *Node) TextContent() string {
	if n.node.Type == html.TextNode {
		return n.node.Data
	}
	var b strings.Builder
	writeText(&b, n.node)
	return b.String()
}

func writeText(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			writeText(b, c)
		}
	}
}
