package writebinary

import (
	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/xmldoc"
)

// replaceWithPath points the document at the written file. A matched element gets
// the path as its only content; for a matched leaf the owning element does.
func replaceWithPath(node xmldoc.Node, path string) error {
	if !node.IsLeaf() {
		node.SetText(path)
		return nil
	}

	parent := node.Parent()
	if parent == nil {
		return errors.WrapInvalid(
			errors.Detail(errors.ErrContentShape, "text node has no parent element to receive %q", path),
			"Mediator", "replaceWithPath", "update document")
	}
	parent.SetText(path)
	return nil
}
