package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite is one queue write of Data into the buffer at Binding of Provider.
// Offset is in bytes from the start of that buffer.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

type bindGroupProvider struct {
	label string

	// layoutDescriptor is the CPU-side description the renderer turns into bindGroupLayout.
	layoutDescriptor wgpu.BindGroupLayoutDescriptor

	// GPU resources below are populated by the renderer and released with the provider.
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
}

// BindGroupProvider owns the GPU resources behind one bind group: the layout, the group
// itself and the buffers bound into it. The renderer creates the resources from the
// provider's layout descriptor and writes buffer data through BufferWrite values.
//
// Usage pattern:
//  1. Create a provider with the layout entries it must satisfy
//  2. Renderer.InitBindGroup(provider) creates the layout, buffers and bind group
//  3. Renderer.WriteBuffers(BufferWrite{...}) uploads data each frame
//  4. The draw path binds BindGroup() at its group index
type BindGroupProvider interface {
	// Release releases every GPU resource held by the provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// LayoutDescriptor returns the layout the provider's bind group satisfies.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	LayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// BindGroup returns the created bind group, or nil before initialization.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout, or nil before initialization.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every buffer keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: the buffers
	Buffers() map[int]*wgpu.Buffer

	// SetBindGroup stores the bind group created by the renderer.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the bind group layout created by the renderer.
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores the buffer created for binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label used for every GPU object created for the provider
//   - options: functional options configuring the provider
//
// Returns:
//   - BindGroupProvider: the configured provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return p.layoutDescriptor
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
