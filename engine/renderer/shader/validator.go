package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validator checks processed WGSL source, with every @oxy: annotation expanded, before any GPU
// work is done.
type Validator interface {
	// Validate reports whether source is well-formed WGSL.
	//
	// Parameters:
	//   - name: the entry name, used in error messages
	//   - source: the processed WGSL source
	//
	// Returns:
	//   - error: nil when the source is valid
	Validate(name, source string) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(name, source string) error

// Validate calls f(name, source).
func (f ValidatorFunc) Validate(name, source string) error {
	return f(name, source)
}

type nagaValidator struct{}

var _ Validator = nagaValidator{}

// NewNagaValidator returns a Validator backed by the naga WGSL front end. Compilation runs
// on the CPU, so shader errors surface with line information before a device exists.
//
// Returns:
//   - Validator: the naga-backed validator
func NewNagaValidator() Validator {
	return nagaValidator{}
}

func (nagaValidator) Validate(name, source string) error {
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("shader %q: %w", name, err)
	}
	return nil
}
