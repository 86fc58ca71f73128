package writebinary

import (
	"context"
	"log/slog"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/message"
	"github.com/c360/binfile/xmldoc"
)

// OutcomeKind says what happened to the payload of one document.
type OutcomeKind int

const (
	// SkippedEmpty means the binary node had no content; nothing was written.
	SkippedEmpty OutcomeKind = iota
	// SkippedExists means the target existed and overwriting was not allowed.
	SkippedExists
	// Written means the payload was written and the document now points at it.
	Written
)

// String returns the metric label of the outcome.
func (k OutcomeKind) String() string {
	switch k {
	case SkippedEmpty:
		return "skipped_empty"
	case SkippedExists:
		return "skipped_exists"
	case Written:
		return "written"
	default:
		return "unknown"
	}
}

// Outcome describes a completed invocation. Path is set for Written and
// SkippedExists; Bytes only for Written.
type Outcome struct {
	Kind  OutcomeKind
	Path  string
	Bytes int64
}

// Mediator extracts the binary payload of a document, writes it to a file and
// points the document at that file. It holds no mutable state.
type Mediator struct {
	settings Settings
	logger   *slog.Logger
}

// New validates the settings and builds a mediator. A nil logger uses slog.Default.
func New(settings Settings, logger *slog.Logger) (*Mediator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mediator{settings: settings, logger: logger}, nil
}

// Settings returns the mediator's configuration.
func (m *Mediator) Settings() Settings {
	return m.settings
}

// Mediate runs the pipeline once. It returns true on every non-fatal path,
// including the two skips, and stops at the first error.
func (m *Mediator) Mediate(ctx context.Context, doc *xmldoc.Document, mctx message.Context) (bool, error) {
	if _, err := m.Process(ctx, doc, mctx); err != nil {
		return false, err
	}
	return true, nil
}

// Process is Mediate reporting what was done.
func (m *Mediator) Process(_ context.Context, doc *xmldoc.Document, mctx message.Context) (Outcome, error) {
	if err := m.settings.Validate(); err != nil {
		return Outcome{}, err
	}

	node, err := m.locateBinaryNode(doc, mctx)
	if err != nil {
		return Outcome{}, err
	}
	m.logger.Debug("Located binary node",
		"query", m.settings.BinaryElementPath.String(),
		"message_id", mctx.MessageID())

	content, err := extractBinary(node, m.settings.BinaryElementPath.String())
	if err != nil {
		return Outcome{}, err
	}
	if content == nil {
		m.logger.Info("Binary node is empty, nothing to write",
			"query", m.settings.BinaryElementPath.String(),
			"message_id", mctx.MessageID())
		return Outcome{Kind: SkippedEmpty}, nil
	}

	path, err := m.resolvePath(doc, mctx)
	if err != nil {
		return Outcome{}, err
	}

	outcome, err := writeFile(path, content, m.settings.OverwriteAllowed())
	if err != nil {
		return Outcome{}, err
	}
	if outcome.Kind == SkippedExists {
		m.logger.Warn("File already exists and overwrite is not allowed, leaving document unchanged",
			"path", outcome.Path,
			"message_id", mctx.MessageID())
		return outcome, nil
	}

	if err := replaceWithPath(node, outcome.Path); err != nil {
		return Outcome{}, err
	}
	m.logger.Debug("Binary payload written",
		"path", outcome.Path,
		"bytes", outcome.Bytes,
		"message_id", mctx.MessageID())

	return outcome, nil
}

func (m *Mediator) locateBinaryNode(doc *xmldoc.Document, mctx message.Context) (xmldoc.Node, error) {
	q := m.settings.BinaryElementPath
	r, err := q.Select(doc, mctx)
	if err != nil {
		return nil, errors.Wrap(err, "Mediator", "locateBinaryNode", "evaluate binary element query")
	}
	if r == nil {
		return nil, errors.WrapInvalid(
			errors.Detail(errors.ErrNotFound, "binary element query %q matched nothing", q.String()),
			"Mediator", "locateBinaryNode", "locate binary node")
	}
	return binaryNode(r, q.String())
}
