package pipeline

import (
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage of the pipeline.
//
// Parameters:
//   - s: the vertex shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment stage of the pipeline.
//
// Parameters:
//   - s: the fragment shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode (e.g. wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology (e.g. wgpu.PrimitiveTopologyTriangleList)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order.
//
// Parameters:
//   - frontFace: the winding order (e.g. wgpu.FrontFaceCCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color target write mask.
//
// Parameters:
//   - writeMask: the write mask (e.g. wgpu.ColorWriteMaskAll)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithBlendState sets the color target blend state. Leave unset for an opaque background.
//
// Parameters:
//   - blendState: the blend state
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}
