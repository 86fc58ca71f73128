package xmldoc

import (
	"bytes"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/c360/binfile/errors"
)

// Document is a parsed XML document. It is mutated in place by the pipeline and
// must not be shared between goroutines.
type Document struct {
	root *xmlquery.Node
}

// Parse reads an XML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrParsingFailed, "%v", err),
			"Document", "Parse", "parse xml")
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseBytes is Parse for an in-memory document.
func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// FromNode wraps an already parsed document node.
func FromNode(root *xmlquery.Node) *Document {
	return &Document{root: root}
}

// Root returns the document node. XPath queries are evaluated against it.
func (d *Document) Root() *xmlquery.Node {
	return d.root
}

// Navigator returns a fresh XPath navigator positioned at the document node.
func (d *Document) Navigator() *xmlquery.NodeNavigator {
	return xmlquery.CreateXPathNavigator(d.root)
}

// DocumentElement returns the top level element, or nil for an empty document.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return &Element{n: c}
		}
	}
	return nil
}

// Namespaces collects the prefixed namespace declarations found anywhere in the
// document. The first declaration of a prefix in document order wins.
func (d *Document) Namespaces() map[string]string {
	ns := make(map[string]string)
	collectNamespaces(d.root, ns)
	return ns
}

func collectNamespaces(n *xmlquery.Node, ns map[string]string) {
	if n.Type == xmlquery.ElementNode {
		for prefix, uri := range DeclaredNamespaces(n) {
			if _, ok := ns[prefix]; !ok {
				ns[prefix] = uri
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNamespaces(c, ns)
	}
}

// DeclaredNamespaces returns the xmlns:prefix declarations made on n itself.
func DeclaredNamespaces(n *xmlquery.Node) map[string]string {
	ns := make(map[string]string)
	for _, attr := range n.Attr {
		if attr.Name.Space == "xmlns" && attr.Name.Local != "" {
			ns[attr.Name.Local] = attr.Value
		}
	}
	return ns
}

// InScopeNamespaces returns the prefixed declarations visible at n, nearest first.
func InScopeNamespaces(n *xmlquery.Node) map[string]string {
	ns := make(map[string]string)
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != xmlquery.ElementNode {
			continue
		}
		for prefix, uri := range DeclaredNamespaces(cur) {
			if _, ok := ns[prefix]; !ok {
				ns[prefix] = uri
			}
		}
	}
	return ns
}

// String serializes the document, including any XML declaration.
func (d *Document) String() string {
	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(c.OutputXML(true))
	}
	return b.String()
}

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	return []byte(d.String())
}
