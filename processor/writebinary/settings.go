package writebinary

import (
	"strings"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/message"
	"github.com/c360/binfile/pathquery"
	"github.com/c360/binfile/xmldoc"
)

// Target is where a directory or file name comes from: a Literal fixed at
// configuration time or a Dynamic query evaluated per document. The set of
// implementations is closed.
type Target interface {
	isTarget()
}

// Literal is a target known at configuration time.
type Literal string

// Dynamic is a target resolved per invocation by evaluating a query.
type Dynamic struct {
	Query *pathquery.Query
}

func (Literal) isTarget() {}
func (Dynamic) isTarget() {}

// Settings is the validated, compiled configuration of the mediator. It is
// immutable once built and shared by concurrent invocations.
type Settings struct {
	// BinaryElementPath selects the node that carries the base64 payload.
	BinaryElementPath *pathquery.Query
	TargetDirectory   Target
	TargetFileName    Target

	// Optional flags keep track of whether they were configured at all, so the
	// declarative form can be reproduced faithfully.
	ForceUniqueFileName *bool
	AllowOverwrite      *bool
}

// UniqueFileNames reports whether file names are prefixed with the message id.
// Defaults to false.
func (s Settings) UniqueFileNames() bool {
	return s.ForceUniqueFileName != nil && *s.ForceUniqueFileName
}

// OverwriteAllowed reports whether existing files may be replaced. Defaults to true.
func (s Settings) OverwriteAllowed() bool {
	return s.AllowOverwrite == nil || *s.AllowOverwrite
}

// Validate checks that every mandatory setting is present.
func (s Settings) Validate() error {
	if s.BinaryElementPath == nil {
		return missingSetting("binaryElementXPath")
	}
	if err := validateTarget(s.TargetDirectory, "targetDirectory"); err != nil {
		return err
	}
	return validateTarget(s.TargetFileName, "targetFileName")
}

func validateTarget(t Target, setting string) error {
	switch v := t.(type) {
	case Literal:
		if strings.TrimSpace(string(v)) == "" {
			return missingSetting(setting)
		}
	case Dynamic:
		if v.Query == nil {
			return missingSetting(setting)
		}
	default:
		return missingSetting(setting)
	}
	return nil
}

func missingSetting(setting string) error {
	return errors.WrapInvalid(
		errors.Detail(errors.ErrMissingConfig, "%s is mandatory", setting),
		"Settings", "Validate", "check mandatory settings")
}

// resolveTarget turns a target into a non-empty string. Query values are trimmed; a
// query that matches nothing, or yields only whitespace, is a not-found error
// naming the query.
func resolveTarget(t Target, doc *xmldoc.Document, mctx message.Context, setting string) (string, error) {
	switch v := t.(type) {
	case Literal:
		return string(v), nil
	case Dynamic:
		value, found, err := v.Query.Text(doc, mctx)
		if err != nil {
			return "", errors.Wrap(err, "Mediator", "resolveTarget", "evaluate "+setting)
		}
		if !found || strings.TrimSpace(value) == "" {
			return "", errors.WrapInvalid(
				errors.Detail(errors.ErrNotFound, "%s query %q yielded no value", setting, v.Query.String()),
				"Mediator", "resolveTarget", "resolve "+setting)
		}
		return strings.TrimSpace(value), nil
	default:
		return "", missingSetting(setting)
	}
}
