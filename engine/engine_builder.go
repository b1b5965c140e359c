package engine

import (
	"github.com/Carmen-Shannon/oxy-backdrop/engine/profiler"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/registry"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow renders into w and sizes the surface from it.
//
// Parameters:
//   - w: the host window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithSize sets the surface size when there is no window.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.width = width
		e.height = height
	}
}

// WithShaders replaces the embedded shader library. One entry must be the "vs" vertex stage.
//
// Parameters:
//   - entries: the shader sources
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaders(entries []shader.Entry) EngineBuilderOption {
	return func(e *engine) {
		e.entries = entries
	}
}

// WithRendererOptions passes options through to renderer.NewRenderer.
//
// Parameters:
//   - options: the renderer options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithRegistryOptions passes options through to registry.Load.
//
// Parameters:
//   - options: the registry options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRegistryOptions(options ...registry.RegistryBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.registryOptions = append(e.registryOptions, options...)
	}
}

// WithProfiler uses p for frame statistics instead of a disabled default.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithCommandOutput receives the results of commands queued with Submit.
//
// Parameters:
//   - out: the output handler, called on the tick thread
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCommandOutput(out CommandOutput) EngineBuilderOption {
	return func(e *engine) {
		e.commandOutput = out
	}
}

// WithCommandBuffer sets how many submitted commands may wait for the next tick. Defaults to 64.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCommandBuffer(n int) EngineBuilderOption {
	return func(e *engine) {
		e.commandBuffer = n
	}
}
