package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLayoutDescriptor sets the layout the provider's bind group must satisfy.
// The descriptor label defaults to the provider label.
//
// Parameters:
//   - desc: the layout descriptor
//
// Returns:
//   - BindGroupProviderOption: a function that sets the layout descriptor
func WithLayoutDescriptor(desc wgpu.BindGroupLayoutDescriptor) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if desc.Label == "" {
			desc.Label = p.label
		}
		p.layoutDescriptor = desc
	}
}

// WithBindGroupLayout sets an already-created bind group layout.
//
// Parameters:
//   - bgl: the bind group layout
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer sets an already-created buffer for a binding index.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}
