package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslPrimitiveLayoutMap maps WGSL scalar, vector and matrix types to their size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
}

// roundUpAlign rounds value up to the next multiple of a power-of-two alignment.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type to its size and alignment from primitives,
// known structs and fixed-size arrays. Runtime-sized arrays and unknown types report false.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "f32", "FrameUniform", "array<vec4<f32>, 4>"
//   - knownTypes: previously resolved struct layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: whether the type could be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	parts := splitAtTopLevelCommas(strings.TrimSuffix(inner, ">"))
	if len(parts) != 2 {
		return wgslTypeLayout{}, false
	}
	elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elem.align, elem.size)
	return wgslTypeLayout{count * stride, elem.align}, true
}

// computeStructLayout places each field at its next aligned offset and rounds the total
// up to the largest field alignment. @builtin fields are skipped.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset) + fl.size
		maxAlign = max(maxAlign, fl.align)
	}
	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves every struct layout, iterating until nested struct
// dependencies stop making progress.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)
	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}

// classifyResource builds a layout entry for a reflected declaration and reports its resource kind.
//
// Parameters:
//   - binding: the @binding index
//   - visibility: the shader stage visibility
//   - addressSpace: the var<> qualifier, empty for handle types
//   - typeName: the WGSL type of the variable
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: the layout entry
//   - ResourceKind: the resource category
func classifyResource(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) (wgpu.BindGroupLayoutEntry, ResourceKind) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	switch {
	case addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry, ResourceKindUniformBuffer
	case strings.HasPrefix(addressSpace, "storage"):
		if strings.Contains(addressSpace, "read_write") {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
		return entry, ResourceKindStorageBuffer
	case strings.HasPrefix(typeName, "sampler"):
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		return entry, ResourceKindSampler
	case strings.HasPrefix(typeName, "texture_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		return entry, ResourceKindTexture
	}
	return entry, ResourceKindUnknown
}

// stripComments removes line comments and (nested) block comments from WGSL source.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// splitAtTopLevelCommas splits s at commas outside angle brackets and parentheses,
// so array<T, N> and @builtin(...) stay intact.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
