package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field: optional attributes, name, colon, type
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex captures the name of the @vertex entry point
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex captures the name of the @fragment entry point
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name and type
	// from declarations like: @group(0) @binding(0) var<uniform> frame: FrameUniform;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseBindings reflects every @group/@binding declaration in source, sorted by group then binding.
// Buffer bindings carry the resolved size of their type as MinBindingSize.
//
// Parameters:
//   - source: the processed WGSL source
//   - visibility: the shader stage applied to every layout entry
//
// Returns:
//   - []Binding: the reflected bindings
func parseBindings(source string, visibility wgpu.ShaderStage) []Binding {
	cleaned := stripComments(source)
	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	var bindings []Binding
	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		typeName := strings.TrimSpace(match[5])

		entry, kind := classifyResource(uint32(binding), visibility, strings.TrimSpace(match[3]), typeName)
		b := Binding{
			Group:    group,
			Binding:  binding,
			VarName:  strings.TrimSpace(match[4]),
			TypeName: typeName,
			Kind:     kind,
		}
		if layout, ok := resolveTypeLayout(typeName, structSizes); ok {
			b.Size = layout.size
			if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
				entry.Buffer.MinBindingSize = layout.size
			}
		}
		b.Entry = entry
		bindings = append(bindings, b)
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Binding < bindings[j].Binding
	})
	return bindings
}

// layoutDescriptors groups reflected bindings into one layout descriptor per group index.
func layoutDescriptors(bindings []Binding) map[int]wgpu.BindGroupLayoutDescriptor {
	result := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, b := range bindings {
		desc := result[b.Group]
		desc.Entries = append(desc.Entries, b.Entry)
		result[b.Group] = desc
	}
	return result
}

// parseEntryPoint returns the entry point name for the given stage, or "" when absent.
//
// Parameters:
//   - source: the WGSL source
//   - shaderType: ShaderTypeVertex or ShaderTypeFragment
//
// Returns:
//   - string: the entry point function name
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// countVertexInputs counts the @location inputs consumed by the @vertex entry point,
// including @location fields of struct-typed parameters. A full-screen vertex stage has none.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - int: the number of vertex attributes read from vertex buffers
func countVertexInputs(source string) int {
	cleaned := stripComments(source)
	loc := vertexEntryRegex.FindStringIndex(cleaned)
	if loc == nil {
		return 0
	}
	params, ok := parenthesized(cleaned[loc[1]:])
	if !ok {
		return 0
	}

	structs := make(map[string]parsedStruct)
	for _, ps := range parseStructBlocks(cleaned) {
		structs[ps.name] = ps
	}

	count := 0
	for _, param := range splitAtTopLevelCommas(params) {
		param = strings.TrimSpace(param)
		if param == "" || builtinRegex.MatchString(param) {
			continue
		}
		if locationRegex.MatchString(param) {
			count++
			continue
		}
		fm := fieldRegex.FindStringSubmatch(param)
		if fm == nil {
			continue
		}
		if ps, ok := structs[strings.TrimSpace(fm[2])]; ok {
			for _, f := range ps.fields {
				if f.location >= 0 && !f.isBuiltin {
					count++
				}
			}
		}
	}
	return count
}

// parenthesized returns the text inside the first balanced pair of parentheses in s.
func parenthesized(s string) (string, bool) {
	start := strings.IndexByte(s, '(')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}

// parseStructBlocks finds every struct block in comment-free WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields parses the body of a struct block into fields with their @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(part),
		}
		if locMatch := locationRegex.FindStringSubmatch(part); locMatch != nil {
			if loc, err := strconv.Atoi(locMatch[1]); err == nil {
				field.location = loc
			}
		}
		fields = append(fields, field)
	}
	return fields
}
