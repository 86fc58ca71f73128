package pathquery

import (
	"fmt"
	"maps"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/message"
	"github.com/c360/binfile/xmldoc"
)

// Context property references. $ctx:name is the short form, get-property('name')
// the function form.
var (
	ctxRefPattern  = regexp.MustCompile(`\$ctx:([A-Za-z_][A-Za-z0-9_.\-]*)`)
	propRefPattern = regexp.MustCompile(`get-property\(\s*(?:'([^']*)'|"([^"]*)")\s*\)`)

	// tokenPattern matches string literals ahead of references so that references
	// quoted inside a literal are left alone.
	tokenPattern = regexp.MustCompile(`'[^']*'|"[^"]*"|` + ctxRefPattern.String() + `|` + propRefPattern.String())
)

// Query is a compiled, namespace-aware path query. It is immutable and safe for
// concurrent use.
type Query struct {
	expr       string
	namespaces map[string]string

	// property is set when the whole expression is a single context reference.
	property string
	// templated is set when context references are embedded in a larger expression.
	templated bool
	// exprs holds compiled expressions when the configured bindings alone compile
	// the query. Compiled expressions are not shared between evaluations.
	exprs *sync.Pool
}

// Compile validates expr and binds the given namespace prefixes. Syntax errors are
// reported as query errors.
func Compile(expr string, namespaces map[string]string) (*Query, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrMissingConfig, "empty path query"),
			"PathQuery", "Compile", "validate expression")
	}

	q := &Query{
		expr:       trimmed,
		namespaces: maps.Clone(namespaces),
	}

	if name, ok := soleReference(trimmed); ok {
		q.property = name
		return q, nil
	}

	q.templated = ctxRefPattern.MatchString(trimmed) || propRefPattern.MatchString(trimmed)

	// Prefixes may be bound by the document at evaluation time, so only the syntax
	// is checked here.
	if _, err := xpath.Compile(substitute(trimmed, message.Context{})); err != nil {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrQueryFailed, "invalid path query %q: %v", trimmed, err),
			"PathQuery", "Compile", "compile expression")
	}

	if !q.templated {
		if compiled, err := bind(trimmed, q.namespaces); err == nil {
			ns := q.namespaces
			q.exprs = &sync.Pool{New: func() any {
				c, _ := bind(trimmed, ns)
				return c
			}}
			q.exprs.Put(compiled)
		}
	}

	return q, nil
}

// MustCompile is Compile for expressions known to be valid. It panics otherwise.
func MustCompile(expr string, namespaces map[string]string) *Query {
	q, err := Compile(expr, namespaces)
	if err != nil {
		panic(err)
	}
	return q
}

// String returns the expression text.
func (q *Query) String() string {
	return q.expr
}

// Namespaces returns a copy of the configured prefix bindings.
func (q *Query) Namespaces() map[string]string {
	return maps.Clone(q.namespaces)
}

// ContextProperty returns the property name when the query is a bare context reference.
func (q *Query) ContextProperty() (string, bool) {
	return q.property, q.property != ""
}

// Evaluate runs the query. A bare context reference is answered from mctx alone; every
// other query is evaluated against the document root. When the configured bindings
// leave a prefix unbound, the document's own declarations are added underneath them.
func (q *Query) Evaluate(doc *xmldoc.Document, mctx message.Context) (Result, error) {
	if q.property != "" {
		if v, ok := mctx.Property(q.property); ok {
			return StringResult{Value: v}, nil
		}
		return SequenceResult{}, nil
	}

	if doc == nil {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrQueryFailed, "no document to evaluate %q against", q.expr),
			"PathQuery", "Evaluate", "evaluate expression")
	}

	if q.exprs != nil {
		compiled := q.exprs.Get().(*xpath.Expr)
		defer q.exprs.Put(compiled)
		return interpret(compiled.Evaluate(doc.Navigator()), q.expr)
	}

	compiled, err := q.compileFor(doc, mctx)
	if err != nil {
		return nil, err
	}
	return interpret(compiled.Evaluate(doc.Navigator()), q.expr)
}

func interpret(v any, expr string) (Result, error) {
	switch v := v.(type) {
	case string:
		return StringResult{Value: v}, nil
	case *xpath.NodeIterator:
		return collect(v), nil
	default:
		return nil, unsupported(expr, fmt.Sprintf("%T", v))
	}
}

// compileFor compiles the query for one evaluation. The document is only searched
// for namespace declarations when the configured bindings leave a prefix unbound.
func (q *Query) compileFor(doc *xmldoc.Document, mctx message.Context) (*xpath.Expr, error) {
	expr := q.expr
	if q.templated {
		expr = substitute(expr, mctx)
	}

	if compiled, err := bind(expr, q.namespaces); err == nil {
		return compiled, nil
	}

	bindings := doc.Namespaces()
	maps.Copy(bindings, q.namespaces)

	var (
		compiled *xpath.Expr
		err      error
	)
	if len(bindings) == 0 {
		compiled, err = xpath.Compile(expr)
	} else {
		compiled, err = xpath.CompileWithNS(expr, bindings)
	}
	if err != nil {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrQueryFailed, "cannot evaluate %q with namespaces %s: %v", q.expr, describe(bindings), err),
			"PathQuery", "Evaluate", "compile expression")
	}
	return compiled, nil
}

// bind compiles expr with exactly the given prefix bindings.
func bind(expr string, ns map[string]string) (*xpath.Expr, error) {
	if ns == nil {
		ns = map[string]string{}
	}
	return xpath.CompileWithNS(expr, ns)
}

func collect(it *xpath.NodeIterator) SequenceResult {
	var items []Result
	for it.MoveNext() {
		nav, ok := it.Current().(*xmlquery.NodeNavigator)
		if !ok {
			items = append(items, unsupportedResult{kind: fmt.Sprintf("%T", it.Current())})
			continue
		}
		items = append(items, item(nav))
	}
	return SequenceResult{Items: items}
}

func item(nav *xmlquery.NodeNavigator) Result {
	switch nav.NodeType() {
	case xpath.AttributeNode:
		attr := AttributeResult{Name: nav.LocalName(), Value: nav.Value()}
		owner := nav.Current()
		if owner != nil && owner.Type == xmlquery.AttributeNode {
			owner = owner.Parent
		}
		if n, ok := xmldoc.Wrap(owner); ok {
			if el, ok := n.(*xmldoc.Element); ok {
				attr.Owner = el
			}
		}
		return attr
	case xpath.ElementNode, xpath.TextNode:
		if n, ok := xmldoc.Wrap(nav.Current()); ok {
			return NodeResult{Node: n}
		}
	}
	return unsupportedResult{kind: nodeTypeName(nav.NodeType())}
}

func nodeTypeName(t xpath.NodeType) string {
	switch t {
	case xpath.RootNode:
		return "document node"
	case xpath.CommentNode:
		return "comment node"
	default:
		return fmt.Sprintf("node type %d", t)
	}
}

func soleReference(expr string) (string, bool) {
	if m := ctxRefPattern.FindStringSubmatch(expr); m != nil && m[0] == expr {
		return m[1], true
	}
	if m := propRefPattern.FindStringSubmatch(expr); m != nil && m[0] == expr {
		return m[1] + m[2], true
	}
	return "", false
}

// substitute replaces embedded context references with XPath string literals.
// Missing properties become the empty string. References inside string literals
// are kept as text.
func substitute(expr string, mctx message.Context) string {
	return tokenPattern.ReplaceAllStringFunc(expr, func(m string) string {
		var name string
		switch sub := tokenPattern.FindStringSubmatch(m); {
		case sub[1] != "":
			name = sub[1]
		case strings.HasPrefix(m, "get-property"):
			name = sub[2] + sub[3]
		default:
			return m
		}
		v, _ := mctx.Property(name)
		return literal(v)
	})
}

// literal quotes s as an XPath 1.0 string literal. XPath has no escape syntax, so a
// value containing both quote kinds is built with concat().
func literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts)-1)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func describe(ns map[string]string) string {
	prefixes := make([]string, 0, len(ns))
	for p := range ns {
		prefixes = append(prefixes, p+"="+ns[p])
	}
	sort.Strings(prefixes)
	return "[" + strings.Join(prefixes, " ") + "]"
}
