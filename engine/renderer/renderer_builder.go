package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend replaces the GPU backend negotiated by NewRenderer. The target surface is then unused.
//
// Parameters:
//   - b: the RendererBackend to drive
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithPresentMode sets the preferred surface present mode. The default is PresentModeAuto.
//
// Parameters:
//   - mode: the PresentMode to prefer (Auto, VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithClearColor sets the color each frame is cleared to before the full-screen draw.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = &c
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
