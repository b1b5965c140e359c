// pre_processor.go implements the WGSL pre-processor. It replaces @oxy: annotations
// with injected struct source or generated binding declarations and records the
// binding declarations it produced.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/uniform"
)

// registryEntry pairs an embedded WGSL struct source with its WGSL type name.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string
	declarations         []Annotation
}

// PreProcessor rewrites raw WGSL source containing @oxy: annotations into plain WGSL.
type PreProcessor interface {
	// Process replaces every annotation in source with its WGSL output.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if an annotation is malformed or an include is repeated
	Process(source string) (string, error)

	// Declarations returns the binding annotations collected by the most recent Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the binding declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the FrameUniform struct registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgFrameUniform: {Source: uniform.GPUFrameUniformSource, Type: "FrameUniform"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform: "var<uniform>",
			annotationArgStorageTypeRead:    "var<storage, read>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				return "", fmt.Errorf("line %d: struct %q already included", a.Line, a.Args[0])
			}
			included[a.Args[0]] = true
			out = append(out, strings.TrimRight(p.structRegistry[a.Args[0]].Source, "\n"))
		case AnnotationTypeBindingGroup:
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			wgslType := p.structRegistry[a.Args[2]].Type
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
