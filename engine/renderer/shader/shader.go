package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which render stage a shader provides.
type ShaderType int

const (
	// ShaderTypeVertex is the shared full-screen vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is a selectable fragment stage paired with the shared vertex stage.
	ShaderTypeFragment
)

// String returns the stage name used in WGSL attributes.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// ErrMissingEntryPoint is returned by NewShader when the source has no entry point for its stage.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

type shader struct {
	key          string
	source       string
	shaderType   ShaderType
	entryPoint   string
	bindings     []Binding
	layouts      map[int]wgpu.BindGroupLayoutDescriptor
	vertexInputs int
	module       *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a pre-processed and reflected WGSL shader stage. It exposes the processed source,
// the stage entry point and the reflected bindings the renderer needs to build a pipeline.
type Shader interface {
	// Key retrieves the unique identifier of the shader, its ShaderEntry name.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL source with all annotations expanded.
	//
	// Returns:
	//   - string: the WGSL source code
	Source() string

	// ShaderType returns the render stage this shader provides.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage entry point function.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Bindings returns every reflected @group/@binding declaration, sorted by group then binding.
	//
	// Returns:
	//   - []Binding: the reflected bindings
	Bindings() []Binding

	// BindGroupLayoutDescriptor retrieves the reflected layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor when the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the WGSL variable name bound at group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or "" when nothing is bound there
	BindGroupVarName(group, binding int) string

	// VertexInputs returns the number of vertex-buffer attributes the vertex entry point reads.
	// Always 0 for fragment shaders.
	//
	// Returns:
	//   - int: the number of @location vertex inputs
	VertexInputs() int

	// Module returns the shader module descriptor built from the processed source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor labelled with the key
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the @oxy:group annotations expanded while processing the source.
	//
	// Returns:
	//   - []Annotation: the binding declarations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and reflects WGSL source for the given stage.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the render stage the source provides
//   - source: raw WGSL source, possibly containing @oxy: annotations
//
// Returns:
//   - Shader: the processed shader
//   - error: a pre-processing error, or ErrMissingEntryPoint when the stage entry point is absent
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:        key,
		shaderType: shaderType,
		pp:         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.layouts[group]
}

func (s *shader) BindGroupVarName(group, binding int) string {
	for _, b := range s.bindings {
		if b.Group == group && b.Binding == binding {
			return b.VarName
		}
	}
	return ""
}

func (s *shader) VertexInputs() int {
	return s.vertexInputs
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// parseSource expands annotations, then reflects the entry point, bindings and
// (for the vertex stage) vertex inputs from the processed source.
func (s *shader) parseSource(raw string) error {
	processed, err := s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("shader %q: pre-process: %w", s.key, err)
	}
	s.source = processed

	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("shader %q: no @%s function: %w", s.key, s.shaderType, ErrMissingEntryPoint)
	}

	visibility := wgpu.ShaderStageFragment
	if s.shaderType == ShaderTypeVertex {
		visibility = wgpu.ShaderStageVertex
		s.vertexInputs = countVertexInputs(s.source)
	}
	s.bindings = parseBindings(s.source, visibility)
	s.layouts = layoutDescriptors(s.bindings)

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return nil
}
