package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("fire")

	assert.Equal(t, "fire", p.Key())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.RenderPipeline())
	assert.Nil(t, p.Shader(shader.ShaderTypeVertex))
}

func TestNewPipelineOptions(t *testing.T) {
	vs, err := shader.NewShader("vs", shader.ShaderTypeVertex,
		"@vertex fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	require.NoError(t, err)
	fs, err := shader.NewShader("flat", shader.ShaderTypeFragment,
		"@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }")
	require.NoError(t, err)

	blend := &wgpu.BlendState{}
	p := NewPipeline("flat",
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithBlendState(blend),
	)

	assert.Same(t, vs, p.Shader(shader.ShaderTypeVertex))
	assert.Same(t, fs, p.Shader(shader.ShaderTypeFragment))
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, p.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Same(t, blend, p.BlendState())
}
