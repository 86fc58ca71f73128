package writebinary

import (
	"bytes"
	"encoding/xml"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/pathquery"
	"github.com/c360/binfile/xmldoc"
)

// DefinitionNamespace is the namespace of the declarative writeBinaryFile block.
const DefinitionNamespace = "urn:c360:binfile"

const (
	elemRoot           = "writeBinaryFile"
	elemBinaryElement  = "binaryElementXPath"
	elemTargetDir      = "targetDirectory"
	elemTargetFileName = "targetFileName"
	elemForceUnique    = "forceUniqueFileName"
	elemAllowOverwrite = "allowOverwrite"

	attrValue      = "value"
	attrExpression = "expression"
)

// ParseDefinition builds Settings from the declarative XML form:
//
//	<writeBinaryFile xmlns="urn:c360:binfile">
//	  <binaryElementXPath value="/ns1:Entry/ns2:image" xmlns:ns1="..." xmlns:ns2="..."/>
//	  <targetDirectory value="/data/out"/>
//	  <targetFileName expression="//fileName"/>
//	  <forceUniqueFileName value="true"/>
//	  <allowOverwrite value="false"/>
//	</writeBinaryFile>
//
// Elements are matched by local name. The namespaces declared on a setting's element,
// or inherited from its ancestors, become the bindings of its query.
func ParseDefinition(r io.Reader) (Settings, error) {
	doc, err := xmldoc.Parse(r)
	if err != nil {
		return Settings{}, errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "%v", err),
			"Definition", "ParseDefinition", "parse definition")
	}

	root := doc.DocumentElement()
	if root == nil || root.Raw().Data != elemRoot {
		return Settings{}, errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "expected a %s element", elemRoot),
			"Definition", "ParseDefinition", "check root element")
	}

	var s Settings

	el, err := requiredChild(root.Raw(), elemBinaryElement)
	if err != nil {
		return Settings{}, err
	}
	expr, ok := firstAttr(el, attrValue, attrExpression)
	if !ok {
		return Settings{}, definitionError("%s needs a %s attribute", elemBinaryElement, attrValue)
	}
	if s.BinaryElementPath, err = pathquery.Compile(expr, xmldoc.InScopeNamespaces(el)); err != nil {
		return Settings{}, err
	}

	if s.TargetDirectory, err = parseTarget(root.Raw(), elemTargetDir); err != nil {
		return Settings{}, err
	}
	if s.TargetFileName, err = parseTarget(root.Raw(), elemTargetFileName); err != nil {
		return Settings{}, err
	}

	if s.ForceUniqueFileName, err = parseFlag(root.Raw(), elemForceUnique); err != nil {
		return Settings{}, err
	}
	if s.AllowOverwrite, err = parseFlag(root.Raw(), elemAllowOverwrite); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// ParseDefinitionString is ParseDefinition for an in-memory block.
func ParseDefinitionString(definition string) (Settings, error) {
	return ParseDefinition(strings.NewReader(definition))
}

func parseTarget(root *xmlquery.Node, name string) (Target, error) {
	el, err := requiredChild(root, name)
	if err != nil {
		return nil, err
	}

	value, hasValue := attr(el, attrValue)
	expr, hasExpr := attr(el, attrExpression)
	switch {
	case hasValue && hasExpr:
		return nil, definitionError("%s takes either a %s or an %s attribute, not both", name, attrValue, attrExpression)
	case hasValue:
		return Literal(value), nil
	case hasExpr:
		q, err := pathquery.Compile(expr, xmldoc.InScopeNamespaces(el))
		if err != nil {
			return nil, err
		}
		return Dynamic{Query: q}, nil
	default:
		return nil, definitionError("%s needs a %s or an %s attribute", name, attrValue, attrExpression)
	}
}

func parseFlag(root *xmlquery.Node, name string) (*bool, error) {
	el := child(root, name)
	if el == nil {
		return nil, nil
	}
	value, ok := attr(el, attrValue)
	if !ok {
		return nil, definitionError("%s needs a %s attribute", name, attrValue)
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return nil, definitionError("%s value %q is not a boolean", name, value)
	}
	return &b, nil
}

func requiredChild(root *xmlquery.Node, name string) (*xmlquery.Node, error) {
	if el := child(root, name); el != nil {
		return el, nil
	}
	return nil, errors.WrapInvalid(
		errors.Detail(errors.ErrMissingConfig, "%s element is mandatory", name),
		"Definition", "ParseDefinition", "read "+name)
}

func child(root *xmlquery.Node, name string) *xmlquery.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return c
		}
	}
	return nil
}

// attr looks up an unprefixed attribute. Empty values count as absent.
func attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == name && a.Value != "" {
			return a.Value, true
		}
	}
	return "", false
}

func firstAttr(n *xmlquery.Node, names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := attr(n, name); ok {
			return v, true
		}
	}
	return "", false
}

func definitionError(format string, args ...any) error {
	return errors.WrapInvalid(
		errors.Detail(errors.ErrInvalidConfig, format, args...),
		"Definition", "ParseDefinition", "read definition")
}

// MarshalDefinition renders settings in the declarative form read by
// ParseDefinition. Optional flags appear only when they were configured, and the
// namespaces bound to each query are declared on its element.
func MarshalDefinition(s Settings) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Space: DefinitionNamespace, Local: elemRoot}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, marshalError(err)
	}

	tokens := []xml.StartElement{
		queryElement(elemBinaryElement, attrValue, s.BinaryElementPath),
		targetElement(elemTargetDir, s.TargetDirectory),
		targetElement(elemTargetFileName, s.TargetFileName),
	}
	if s.ForceUniqueFileName != nil {
		tokens = append(tokens, flagElement(elemForceUnique, *s.ForceUniqueFileName))
	}
	if s.AllowOverwrite != nil {
		tokens = append(tokens, flagElement(elemAllowOverwrite, *s.AllowOverwrite))
	}

	for _, start := range tokens {
		if err := enc.EncodeToken(start); err != nil {
			return nil, marshalError(err)
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return nil, marshalError(err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, marshalError(err)
	}
	if err := enc.Flush(); err != nil {
		return nil, marshalError(err)
	}
	return buf.Bytes(), nil
}

func targetElement(name string, t Target) xml.StartElement {
	switch v := t.(type) {
	case Dynamic:
		return queryElement(name, attrExpression, v.Query)
	case Literal:
		return xml.StartElement{
			Name: xml.Name{Local: name},
			Attr: []xml.Attr{{Name: xml.Name{Local: attrValue}, Value: string(v)}},
		}
	default:
		return xml.StartElement{Name: xml.Name{Local: name}}
	}
}

func queryElement(name, attrName string, q *pathquery.Query) xml.StartElement {
	start := xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrName}, Value: q.String()}},
	}
	ns := q.Namespaces()
	for _, prefix := range slices.Sorted(maps.Keys(ns)) {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + prefix},
			Value: ns[prefix],
		})
	}
	return start
}

func flagElement(name string, value bool) xml.StartElement {
	return xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrValue}, Value: strconv.FormatBool(value)}},
	}
}

func marshalError(err error) error {
	return errors.WrapFatal(err, "Definition", "MarshalDefinition", "encode definition")
}
