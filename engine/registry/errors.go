package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingVertexStage is returned by Load when no entry is named shader.VertexStageName.
	ErrMissingVertexStage = errors.New("registry: missing vertex stage entry")

	// ErrInvalidEntry is returned by Load for an empty or duplicate entry name.
	ErrInvalidEntry = errors.New("registry: invalid shader entry")
)

// ShaderCompileError reports a shader that failed validation, reflection, the uniform contract
// or GPU pipeline creation. Load never returns a partial registry alongside it.
type ShaderCompileError struct {
	// Name is the entry name of the failing shader.
	Name string
	// Message is the compiler or validator diagnostic.
	Message string
	// Err is the underlying error, if any.
	Err error
}

func newShaderCompileError(name string, err error) *ShaderCompileError {
	return &ShaderCompileError{Name: name, Message: err.Error(), Err: err}
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("registry: shader %q failed to compile: %s", e.Name, e.Message)
}

func (e *ShaderCompileError) Unwrap() error {
	return e.Err
}
