// Package pathquery resolves namespace-aware XPath queries against a document or a
// message's execution context.
//
// # Results
//
// A query evaluates to one of a closed set of results: NodeResult (an element or a
// text leaf), StringResult, AttributeResult or SequenceResult. XPath numbers and
// booleans, and node kinds such as comments or the document node, are rejected with
// errors.ErrUnsupportedResult.
//
// # Sequence Policy
//
// Unwrap turns a result into a single value:
//
//   - empty sequence: not found (nil result, nil error)
//   - one element: unwrapped recursively
//   - more than one element: errors.ErrAmbiguousMatch, never a silent pick
//
// # Context References
//
// $ctx:name and get-property('name') read the message's property bag. A query made of
// a single reference is answered without touching the document; references embedded
// in a larger expression are substituted as string literals before evaluation:
//
//	q := pathquery.MustCompile("$ctx:targetDirectory", nil)
//	dir, found, err := q.Text(doc, mctx)
//
//	q = pathquery.MustCompile("concat($ctx:prefix, '-', //id)", nil)
//
// # Namespaces
//
// Prefixes bound at Compile time take precedence over the namespace declarations
// found in the document being queried.
package pathquery
