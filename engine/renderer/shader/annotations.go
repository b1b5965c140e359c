// annotations.go defines the annotation types and parser for the backdrop WGSL
// pre-processor. Annotations are single-line WGSL comments prefixed with @oxy: that
// inject the shared FrameUniform struct and generate its @group/@binding declaration,
// so every fragment shader agrees with the Go side on one uniform layout.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation site.
	// It is consumed entirely during pre-processing.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include frame_uniform
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration and is
	// recorded in the pre-processor's declarations list.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 0 storage_uniform frame frame_uniform
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation represents a single parsed @oxy: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include: [0] = struct type key
	//   - group:   [0] = address space, [1] = var name, [2] = struct type key
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group is the @group index for group annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string used as an annotation argument.
type AnnotationArg string

const (
	// AnnotationArgFrameUniform identifies the FrameUniform struct.
	// Source: engine/uniform/assets/frame_uniform.wgsl
	AnnotationArgFrameUniform AnnotationArg = "frame_uniform"
)

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgFrameUniform,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
}

// parseAnnotation parses one WGSL source line. Lines without the annotation prefix yield
// (nil, nil); malformed annotations yield an error naming the line.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires five arguments (group, binding, address space, var name, struct type)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @oxy group annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @oxy group annotation", lineNum, args[2])
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}
