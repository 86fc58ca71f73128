package writebinary

import (
	"fmt"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/pathquery"
	"github.com/c360/binfile/xmldoc"
)

// binaryNode narrows a query result to the element or leaf that carries the payload.
func binaryNode(r pathquery.Result, expr string) (xmldoc.Node, error) {
	if n, ok := r.(pathquery.NodeResult); ok {
		return n.Node, nil
	}
	return nil, errors.WrapInvalid(
		errors.Detail(errors.ErrContentShape, "%q selected %s, not an element or text node", expr, describeResult(r)),
		"Mediator", "locateBinaryNode", "check binary node")
}

// extractBinary returns the payload of node. A leaf is the payload itself; for an
// element only the first child is considered. A nil handle with a nil error means
// the element is empty.
func extractBinary(node xmldoc.Node, expr string) (*xmldoc.Binary, error) {
	if node.IsLeaf() {
		return asBinary(node, expr)
	}

	if !node.HasChildren() {
		return nil, nil
	}
	child := node.FirstChild()
	if child == nil || !child.IsLeaf() {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrContentShape, "first child of the node selected by %q is not text", expr),
			"Mediator", "extractBinary", "inspect binary node")
	}
	return asBinary(child, expr)
}

func asBinary(n xmldoc.Node, expr string) (*xmldoc.Binary, error) {
	leaf, ok := n.(*xmldoc.Leaf)
	if !ok {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrContentShape, "node selected by %q is not a text node", expr),
			"Mediator", "extractBinary", "mark binary content")
	}
	return leaf.AsBinary(), nil
}

func describeResult(r pathquery.Result) string {
	switch v := r.(type) {
	case pathquery.AttributeResult:
		return fmt.Sprintf("attribute %q", v.Name)
	case pathquery.StringResult:
		return "a string value"
	default:
		return fmt.Sprintf("%T", r)
	}
}
