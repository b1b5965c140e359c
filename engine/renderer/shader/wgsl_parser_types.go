package shader

import "github.com/cogentcore/webgpu/wgpu"

// wgslTypeLayout holds the byte size and alignment of a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one field of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// ResourceKind is the category of a bound WGSL resource.
type ResourceKind int

const (
	ResourceKindUnknown ResourceKind = iota
	ResourceKindUniformBuffer
	ResourceKindStorageBuffer
	ResourceKindTexture
	ResourceKindSampler
)

// String returns the lowercase name of the resource kind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceKindUniformBuffer:
		return "uniform buffer"
	case ResourceKindStorageBuffer:
		return "storage buffer"
	case ResourceKindTexture:
		return "texture"
	case ResourceKindSampler:
		return "sampler"
	default:
		return "unknown"
	}
}

// Binding describes one @group/@binding declaration reflected from WGSL source.
type Binding struct {
	Group    int
	Binding  int
	VarName  string
	TypeName string
	Kind     ResourceKind

	// Size is the resolved byte size of the bound type, 0 when it could not be resolved.
	Size uint64

	// Entry is the layout entry derived for this binding.
	Entry wgpu.BindGroupLayoutEntry
}
