package pipeline

import (
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	cullMode   wgpu.CullMode
	topology   wgpu.PrimitiveTopology
	frontFace  wgpu.FrontFace
	writeMask  wgpu.ColorWriteMask
	blendState *wgpu.BlendState
}

// Pipeline is one compiled full-screen render pipeline: the shared vertex stage, a fragment
// stage and the raster state used to build the GPU object. The GPU handle is attached by the
// renderer once the pipeline has been registered and is immutable afterwards.
type Pipeline interface {
	// Key returns the unique identifier of the pipeline, the name of its fragment entry.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Shader returns the shader bound to the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage's shader, or nil if unset
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the GPU pipeline object, nil until the renderer registers the pipeline.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	//
	// Returns:
	//   - wgpu.FrontFace: the winding order
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color target write mask.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the write mask
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the color target blend state, nil for opaque output.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// SetRenderPipeline attaches the GPU pipeline object built by the renderer.
	//
	// Parameters:
	//   - rp: the GPU pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a full-screen render pipeline description. The defaults draw an opaque
// triangle list without culling, which is what a single full-screen triangle needs.
//
// Parameters:
//   - key: the unique pipeline identifier
//   - opts: functional options configuring shaders and raster state
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:       key,
		cullMode:  wgpu.CullModeNone,
		topology:  wgpu.PrimitiveTopologyTriangleList,
		frontFace: wgpu.FrontFaceCCW,
		writeMask: wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
