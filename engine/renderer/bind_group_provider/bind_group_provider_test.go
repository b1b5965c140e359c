package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	entry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: wgpu.ShaderStageFragment}
	entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	entry.Buffer.MinBindingSize = 48
	desc := wgpu.BindGroupLayoutDescriptor{Entries: []wgpu.BindGroupLayoutEntry{entry}}
	p := NewBindGroupProvider("frame", WithLayoutDescriptor(desc))

	assert.Equal(t, "frame", p.Label())
	assert.Equal(t, "frame", p.LayoutDescriptor().Label)
	assert.Len(t, p.LayoutDescriptor().Entries, 1)
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Buffer(0))
	assert.Empty(t, p.Buffers())
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	assert.NotPanics(t, p.Release)
	assert.Empty(t, p.Buffers())
}
