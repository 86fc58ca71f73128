// Package xmldoc adapts github.com/antchfx/xmlquery to the small document model the
// write-binary-file pipeline needs.
//
// A Document is parsed once per message and mutated in place. Element and Leaf both
// implement Node, the capability interface {IsLeaf, FirstChild, Parent, SetText} the
// pipeline dispatches on. A Leaf marked with AsBinary yields a Binary handle that
// decodes base64 content only when it is written.
//
//	doc, err := xmldoc.ParseString(`<Entry><image>aGVsbG8=</image></Entry>`)
//	...
//	out := doc.String()
package xmldoc
