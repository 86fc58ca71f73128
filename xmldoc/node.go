package xmldoc

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// Node is the capability set shared by element and leaf nodes. The same operation
// means something different for each kind, which is why callers dispatch on IsLeaf
// once instead of inspecting the underlying tree.
type Node interface {
	// IsLeaf reports whether the node is a text or CDATA leaf.
	IsLeaf() bool
	// FirstChild returns the first child as a Node, or nil when there is none or
	// the child is neither an element nor a leaf.
	FirstChild() Node
	// HasChildren reports whether the node has any child at all.
	HasChildren() bool
	// Parent returns the owning element, or nil at the top of the tree.
	Parent() *Element
	// SetText replaces the node's content with a single text value.
	SetText(text string)
	// Text returns the node's own text content.
	Text() string
	// Raw exposes the underlying tree node.
	Raw() *xmlquery.Node
}

// Wrap adapts a tree node. It returns false for node kinds that are neither
// elements nor text leaves (document, comment, declaration, attribute).
func Wrap(n *xmlquery.Node) (Node, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Type {
	case xmlquery.ElementNode:
		return &Element{n: n}, true
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return &Leaf{n: n}, true
	default:
		return nil, false
	}
}

// Element is an XML element node.
type Element struct {
	n *xmlquery.Node
}

// IsLeaf always returns false for elements.
func (e *Element) IsLeaf() bool { return false }

// FirstChild returns the element's first child.
func (e *Element) FirstChild() Node {
	if e.n.FirstChild == nil {
		return nil
	}
	child, ok := Wrap(e.n.FirstChild)
	if !ok {
		return nil
	}
	return child
}

// HasChildren reports whether the element has any child node.
func (e *Element) HasChildren() bool {
	return e.n.FirstChild != nil
}

// Parent returns the enclosing element.
func (e *Element) Parent() *Element {
	return parentElement(e.n)
}

// SetText removes every child of the element and appends a single text node.
func (e *Element) SetText(text string) {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		xmlquery.RemoveFromTree(c)
		c = next
	}
	xmlquery.AddChild(e.n, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
}

// Text returns the concatenation of the element's direct text and CDATA children.
func (e *Element) Text() string {
	var b strings.Builder
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// Name returns the qualified element name.
func (e *Element) Name() string {
	if e.n.Prefix != "" {
		return e.n.Prefix + ":" + e.n.Data
	}
	return e.n.Data
}

// Raw exposes the underlying tree node.
func (e *Element) Raw() *xmlquery.Node { return e.n }

// Leaf is a text or CDATA node.
type Leaf struct {
	n *xmlquery.Node
}

// IsLeaf always returns true for leaves.
func (l *Leaf) IsLeaf() bool { return true }

// FirstChild returns nil; leaves have no children.
func (l *Leaf) FirstChild() Node { return nil }

// HasChildren returns false.
func (l *Leaf) HasChildren() bool { return false }

// Parent returns the element that owns the leaf.
func (l *Leaf) Parent() *Element {
	return parentElement(l.n)
}

// SetText replaces the leaf's character data.
func (l *Leaf) SetText(text string) {
	l.n.Data = text
}

// Text returns the leaf's character data.
func (l *Leaf) Text() string {
	return l.n.Data
}

// Raw exposes the underlying tree node.
func (l *Leaf) Raw() *xmlquery.Node { return l.n }

// AsBinary marks the leaf as binary content. The returned handle decodes the
// leaf's text run lazily. Adjacent text and CDATA siblings belong to the same run
// because the parser may split long character data.
func (l *Leaf) AsBinary() *Binary {
	var b strings.Builder
	for c := l.n; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.TextNode && c.Type != xmlquery.CharDataNode {
			break
		}
		b.WriteString(c.Data)
	}
	return &Binary{encoded: b.String()}
}

func parentElement(n *xmlquery.Node) *Element {
	if n.Parent == nil || n.Parent.Type != xmlquery.ElementNode {
		return nil
	}
	return &Element{n: n.Parent}
}
