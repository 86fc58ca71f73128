package pathquery

import (
	"fmt"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/xmldoc"
)

// Result is what a query evaluates to. The set of implementations is closed:
// NodeResult, StringResult, AttributeResult and SequenceResult.
type Result interface {
	isResult()
}

// NodeResult is a single element or text leaf.
type NodeResult struct {
	Node xmldoc.Node
}

// StringResult is a plain string value.
type StringResult struct {
	Value string
}

// AttributeResult is an attribute selected by the query.
type AttributeResult struct {
	Name  string
	Value string
	Owner *xmldoc.Element
}

// SequenceResult is an ordered node-set.
type SequenceResult struct {
	Items []Result
}

// unsupportedResult stands for an item of a kind the resolver cannot interpret. It
// only turns into an error when something tries to use it.
type unsupportedResult struct {
	kind string
}

func (NodeResult) isResult()        {}
func (StringResult) isResult()      {}
func (AttributeResult) isResult()   {}
func (SequenceResult) isResult()    {}
func (unsupportedResult) isResult() {}

// Unwrap applies the sequence policy: an empty sequence is "not found" (nil, nil),
// a single-element sequence is unwrapped recursively, and more than one element is
// an ambiguous match. expr only feeds error messages.
func Unwrap(r Result, expr string) (Result, error) {
	switch v := r.(type) {
	case nil:
		return nil, nil
	case SequenceResult:
		switch len(v.Items) {
		case 0:
			return nil, nil
		case 1:
			return Unwrap(v.Items[0], expr)
		default:
			return nil, errors.WrapInvalid(
				errors.Detail(errors.ErrAmbiguousMatch, "%d results found with %q", len(v.Items), expr),
				"PathQuery", "Unwrap", "select single result")
		}
	case unsupportedResult:
		return nil, unsupported(expr, v.kind)
	default:
		return r, nil
	}
}

// TextValue unwraps r and extracts its string value. The boolean is false when
// nothing was found.
func TextValue(r Result, expr string) (string, bool, error) {
	single, err := Unwrap(r, expr)
	if err != nil || single == nil {
		return "", false, err
	}

	switch v := single.(type) {
	case StringResult:
		return v.Value, true, nil
	case AttributeResult:
		return v.Value, true, nil
	case NodeResult:
		return v.Node.Text(), true, nil
	default:
		return "", false, unsupported(expr, fmt.Sprintf("%T", single))
	}
}

func unsupported(expr, kind string) error {
	return errors.WrapInvalid(
		errors.Detail(errors.ErrUnsupportedResult, "%q evaluated to %s", expr, kind),
		"PathQuery", "Evaluate", "interpret result")
}
