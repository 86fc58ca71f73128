// Package componentregistry registers the component factories shipped with binfile.
package componentregistry

import (
	"errors"

	"github.com/c360/binfile/component"
	pkgerrors "github.com/c360/binfile/errors"
	"github.com/c360/binfile/processor/writebinary"
)

// Register registers every binfile component factory with the provided registry:
//   - write_binary_file processor (base64 payload to file)
func Register(registry *component.Registry) error {
	// Nil registry is a programming error (fatal), not invalid input
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ComponentRegistry", "Register", "registry validation")
	}

	if err := writebinary.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(
			err,
			"ComponentRegistry",
			"Register",
			"write binary file processor registration",
		)
	}

	return nil
}
