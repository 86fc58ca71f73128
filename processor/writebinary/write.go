package writebinary

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/message"
	"github.com/c360/binfile/xmldoc"
)

const fileMode = 0o644

// resolvePath computes the absolute output path. The name comes first so a unique
// prefix is applied before the directory is known.
func (m *Mediator) resolvePath(doc *xmldoc.Document, mctx message.Context) (string, error) {
	name, err := resolveTarget(m.settings.TargetFileName, doc, mctx, "targetFileName")
	if err != nil {
		return "", err
	}
	if m.settings.UniqueFileNames() {
		id := mctx.MessageID()
		if !message.SafeID(id) {
			return "", errors.WrapFatal(
				errors.Detail(errors.ErrIO, "message id %q cannot prefix a file name", id),
				"Mediator", "resolvePath", "apply unique prefix")
		}
		name = id + "_" + name
	}

	dir, err := resolveTarget(m.settings.TargetDirectory, doc, mctx, "targetDirectory")
	if err != nil {
		return "", err
	}

	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", errors.WrapFatal(
			errors.Detail(errors.ErrIO, "cannot resolve %q: %v", filepath.Join(dir, name), err),
			"Mediator", "resolvePath", "resolve absolute path")
	}
	return path, nil
}

// writeFile decodes content and writes it to path. With overwrite disallowed an
// existing file is left alone and reported as SkippedExists. Directories are never
// created.
func writeFile(path string, content *xmldoc.Binary, allowOverwrite bool) (outcome Outcome, err error) {
	if !allowOverwrite {
		if _, statErr := os.Stat(path); statErr == nil {
			return Outcome{Kind: SkippedExists, Path: path}, nil
		} else if !stderrors.Is(statErr, fs.ErrNotExist) {
			return Outcome{}, ioError(path, "stat target file", statErr)
		}
	}

	data, err := content.Bytes()
	if err != nil {
		return Outcome{}, ioError(path, "read binary content", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !allowOverwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, fileMode)
	if err != nil {
		if !allowOverwrite && stderrors.Is(err, fs.ErrExist) {
			return Outcome{Kind: SkippedExists, Path: path}, nil
		}
		return Outcome{}, ioError(path, "open target file", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			outcome, err = Outcome{}, ioError(path, "close target file", closeErr)
		}
	}()

	n, err := f.Write(data)
	if err != nil {
		return Outcome{}, ioError(path, "write target file", err)
	}

	return Outcome{Kind: Written, Path: path, Bytes: int64(n)}, nil
}

func ioError(path, action string, err error) error {
	return errors.WrapFatal(
		errors.Detail(errors.ErrIO, "%s: %v", path, err),
		"Mediator", "writeFile", action)
}
