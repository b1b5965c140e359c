package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/uniform"
)

// ErrUniformContract is wrapped by every CheckUniformContract failure.
var ErrUniformContract = errors.New("shader: uniform contract violated")

// FrameUniformGroup and FrameUniformBinding locate the shared uniform block.
const (
	FrameUniformGroup   = 0
	FrameUniformBinding = 0
)

// CheckUniformContract verifies that a shader only uses the shared per-frame uniform.
//
// A fragment shader must bind exactly one resource: a uniform buffer at group 0 binding 0
// whose type is exactly uniform.GPUFrameUniformSize bytes. A vertex shader must bind nothing
// outside that slot and must not read vertex buffers.
//
// Parameters:
//   - s: the processed shader
//
// Returns:
//   - error: nil when the shader conforms, otherwise an error wrapping ErrUniformContract
func CheckUniformContract(s Shader) error {
	bindings := s.Bindings()

	if s.ShaderType() == ShaderTypeVertex {
		if n := s.VertexInputs(); n > 0 {
			return fmt.Errorf("%w: vertex stage %q reads %d vertex attributes, expected none", ErrUniformContract, s.Key(), n)
		}
		for _, b := range bindings {
			if err := checkFrameBinding(s.Key(), b); err != nil {
				return err
			}
		}
		return nil
	}

	if len(bindings) != 1 {
		return fmt.Errorf("%w: %q declares %d bindings, expected exactly one", ErrUniformContract, s.Key(), len(bindings))
	}
	return checkFrameBinding(s.Key(), bindings[0])
}

func checkFrameBinding(key string, b Binding) error {
	if b.Group != FrameUniformGroup || b.Binding != FrameUniformBinding {
		return fmt.Errorf("%w: %q binds %s at @group(%d) @binding(%d), expected @group(%d) @binding(%d)",
			ErrUniformContract, key, b.VarName, b.Group, b.Binding, FrameUniformGroup, FrameUniformBinding)
	}
	if b.Kind != ResourceKindUniformBuffer {
		return fmt.Errorf("%w: %q binds %s as a %s, expected a uniform buffer", ErrUniformContract, key, b.VarName, b.Kind)
	}
	if b.Size != uniform.GPUFrameUniformSize {
		return fmt.Errorf("%w: %q uniform %s is %d bytes, expected %d", ErrUniformContract, key, b.VarName, b.Size, uniform.GPUFrameUniformSize)
	}
	return nil
}
