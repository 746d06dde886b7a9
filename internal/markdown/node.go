package markdown

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Attribute is a single element attribute. Attributes keep their source
// order, which map-based storage would lose.
type Attribute struct {
	Key string
	Val string
}

// Node is the intermediate content tree consumed by the rewrite engine and
// the section segmenter. Element nodes carry TagName, attributes and
// children; text nodes carry Text and an empty TagName.
//
// Trees are built once by Parse and never mutated afterwards, so they are
// safe to render concurrently.
type Node struct {
	TagName  string
	Attrs    []Attribute
	Parent   *Node
	Children []*Node
	Text     string
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.TagName == "" && n.Text != ""
}

// Attr returns the value of the first attribute named key, or "".
func (n *Node) Attr(key string) string {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// TextContent returns the raw concatenated text of n and its descendants in
// document order, without any markdown escaping.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.appendText(&sb)
	return sb.String()
}

func (n *Node) appendText(sb *strings.Builder) {
	if n.IsText() {
		sb.WriteString(n.Text)
	}
	for _, c := range n.Children {
		c.appendText(sb)
	}
}

// Find returns the first descendant element with the given tag name, in
// document order, or nil.
func (n *Node) Find(tag string) *Node {
	if n.TagName == tag {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant element (including n itself) with a tag
// name accepted by match, in document order.
func (n *Node) FindAll(match func(tag string) bool) []*Node {
	var out []*Node
	n.findAll(match, &out)
	return out
}

func (n *Node) findAll(match func(tag string) bool, out *[]*Node) {
	if n.TagName != "" && match(n.TagName) {
		*out = append(*out, n)
	}
	for _, c := range n.Children {
		c.findAll(match, out)
	}
}

// Parse reads a full HTML document and returns the converted tree. The
// returned node is the document root; use Body to get the content subtree.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromHTMLNode(doc), nil
}

// Body returns the <body> element under root, or root itself when the tree
// has none (fragments).
func Body(root *Node) *Node {
	if b := root.Find("body"); b != nil {
		return b
	}
	return root
}

// FromHTMLNode converts a parsed x/net/html node into the engine's tree
// representation. Comments, doctypes and processing instructions are
// dropped; the document node becomes an element with an empty tag name.
func FromHTMLNode(src *html.Node) *Node {
	n := &Node{}
	switch src.Type {
	case html.ElementNode:
		n.TagName = src.Data
		for _, a := range src.Attr {
			n.Attrs = append(n.Attrs, Attribute{Key: a.Key, Val: a.Val})
		}
	case html.TextNode:
		n.Text = src.Data
	case html.DocumentNode:
		// root wrapper, empty tag
	default:
		return nil
	}

	for c := src.FirstChild; c != nil; c = c.NextSibling {
		child := FromHTMLNode(c)
		if child == nil {
			continue
		}
		child.Parent = n
		n.Children = append(n.Children, child)
	}
	return n
}

// headingLevel returns 1..6 for h1..h6 tags, 0 otherwise.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
