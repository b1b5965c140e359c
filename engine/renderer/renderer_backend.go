package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeAuto prefers low-latency mailbox presentation and falls back to FIFO,
	// which every surface supports.
	PresentModeAuto PresentMode = iota

	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency. Falls back to FIFO when unsupported.
	PresentModeUncapped
)

// String returns the configuration name of the present mode.
func (m PresentMode) String() string {
	switch m {
	case PresentModeAuto:
		return "auto"
	case PresentModeVSync:
		return "vsync"
	case PresentModeUncapped:
		return "uncapped"
	default:
		return fmt.Sprintf("PresentMode(%d)", int(m))
	}
}

// ParsePresentMode parses a configuration name ("auto", "vsync", "uncapped"). The empty string is auto.
//
// Parameters:
//   - s: the mode name, case-insensitive
//
// Returns:
//   - PresentMode: the parsed mode
//   - error: an error naming the unknown mode
func ParsePresentMode(s string) (PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return PresentModeAuto, nil
	case "vsync", "fifo":
		return PresentModeVSync, nil
	case "uncapped", "immediate":
		return PresentModeUncapped, nil
	default:
		return PresentModeAuto, fmt.Errorf("renderer: unknown present mode %q", s)
	}
}

// FullscreenVertexCount is the number of vertices in the full-screen triangle.
const FullscreenVertexCount = 3

// Session construction errors.
var (
	// ErrNoCompatibleAdapter is returned when no adapter can present to the surface.
	ErrNoCompatibleAdapter = errors.New("renderer: no compatible adapter")

	// ErrDeviceRequestFailed is returned when the adapter refuses to create a device.
	ErrDeviceRequestFailed = errors.New("renderer: device request failed")
)

// Frame errors returned by BeginFrame.
var (
	// ErrSurfaceLost means the surface is lost or outdated. Reconfiguring it at the last size recovers.
	ErrSurfaceLost = errors.New("renderer: surface lost")

	// ErrSurfaceTimeout means no surface texture became available in time.
	ErrSurfaceTimeout = errors.New("renderer: surface texture timeout")

	// ErrOutOfMemory means the device ran out of memory acquiring the surface texture.
	ErrOutOfMemory = errors.New("renderer: out of memory")

	// ErrFrameInProgress means BeginFrame was called before the previous frame was presented.
	ErrFrameInProgress = errors.New("renderer: previous frame not yet presented")
)

// RendererBackend is the GPU API behind a Renderer. The Renderer owns sizing, the uniform
// provider and the pipeline cache; the backend owns the device, surface and per-frame encoders.
type RendererBackend interface {
	// ConfigureSurface (re)configures the presentation surface at the given size.
	// Required at startup, after every resize and to recover a lost surface.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface offers no usable format
	ConfigureSurface(width, height int) error

	// SurfaceFormat returns the negotiated surface texture format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the format chosen by the last ConfigureSurface
	SurfaceFormat() wgpu.TextureFormat

	// PresentMode returns the negotiated present mode.
	//
	// Returns:
	//   - wgpu.PresentMode: the present mode chosen by the last ConfigureSurface
	PresentMode() wgpu.PresentMode

	// SetPresentMode records the preferred present mode, applied by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the preferred PresentMode
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the render pass clears to before drawing.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c wgpu.Color)

	// InitBindGroup creates the layout, buffers and bind group described by the provider's
	// layout descriptor and stores them on the provider.
	//
	// Parameters:
	//   - provider: the provider to initialize
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider) error

	// RegisterRenderPipeline builds the GPU render pipeline for p. The pipeline layout uses the
	// bind group layouts of bindGroups, in group order.
	//
	// Parameters:
	//   - p: the pipeline with its vertex and fragment shaders
	//   - bindGroups: the initialized providers bound at groups 0..n-1
	//
	// Returns:
	//   - error: an error if a shader module or the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error

	// WriteBuffers queues every write, each as a single queue write.
	//
	// Parameters:
	//   - writes: the buffer writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and begins a render pass that clears it.
	//
	// Returns:
	//   - error: ErrSurfaceLost, ErrSurfaceTimeout, ErrOutOfMemory or ErrFrameInProgress (wrapped)
	BeginFrame() error

	// DrawFullscreen binds p and bindGroups and encodes one non-indexed draw.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - bindGroups: the providers bound at groups 0..n-1
	//   - vertexCount: the number of vertices
	//   - instanceCount: the number of instances
	//
	// Returns:
	//   - bool: false when the draw was skipped (no frame in progress or p has no GPU pipeline)
	DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) bool

	// EndFrame ends the render pass and submits the command buffer. It does not present.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired surface texture and releases it.
	Present()

	// Surface returns the presentation surface.
	//
	// Returns:
	//   - *wgpu.Surface: the surface, nil for headless backends
	Surface() *wgpu.Surface

	// Release frees every GPU object owned by the backend.
	Release()
}

// classifySurfaceError maps a surface acquisition failure to a frame error.
// Anything that is not a timeout or out-of-memory condition is treated as a lost surface,
// which reconfiguration repairs.
func classifySurfaceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", ErrSurfaceTimeout, err)
	case strings.Contains(msg, "outofmemory"), strings.Contains(msg, "out of memory"):
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	default:
		return fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
}

// surfaceTextureView is the part of an acquired surface texture needed to start a frame.
type surfaceTextureView interface {
	CreateView(descriptor *wgpu.TextureViewDescriptor) (*wgpu.TextureView, error)
	Release()
}

var _ surfaceTextureView = (*wgpu.Texture)(nil)

// acquireView turns the result of acquiring the current surface texture into a view for the frame.
// wgpu-native hands back an empty texture with no error when the surface is lost or outdated,
// so that failure only shows when the view is created; both paths are classified the same way.
func acquireView(texture surfaceTextureView, acquireErr error) (*wgpu.TextureView, error) {
	if acquireErr != nil {
		return nil, classifySurfaceError(acquireErr)
	}
	if texture == nil {
		return nil, fmt.Errorf("%w: no surface texture", ErrSurfaceLost)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, classifySurfaceError(err)
	}
	if view == nil {
		texture.Release()
		return nil, fmt.Errorf("%w: no surface texture view", ErrSurfaceLost)
	}
	return view, nil
}

// chooseSurfaceFormat returns the first sRGB format offered, else the first format.
//
// Parameters:
//   - formats: the formats offered by the surface, in preference order
//
// Returns:
//   - wgpu.TextureFormat: the chosen format
//   - bool: false when no format is offered
func chooseSurfaceFormat(formats []wgpu.TextureFormat) (wgpu.TextureFormat, bool) {
	if len(formats) == 0 {
		return wgpu.TextureFormatUndefined, false
	}
	for _, f := range formats {
		if isSRGB(f) {
			return f, true
		}
	}
	return formats[0], true
}

func isSRGB(f wgpu.TextureFormat) bool {
	switch f {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}

// choosePresentMode resolves a preference against the modes the surface offers.
// FIFO is always supported by conforming surfaces, so it is the universal fallback.
//
// Parameters:
//   - pref: the preferred PresentMode
//   - available: the present modes offered by the surface
//
// Returns:
//   - wgpu.PresentMode: the mode to configure
func choosePresentMode(pref PresentMode, available []wgpu.PresentMode) wgpu.PresentMode {
	has := func(m wgpu.PresentMode) bool {
		for _, a := range available {
			if a == m {
				return true
			}
		}
		return false
	}

	switch pref {
	case PresentModeVSync:
		return wgpu.PresentModeFifo
	case PresentModeUncapped:
		if has(wgpu.PresentModeImmediate) {
			return wgpu.PresentModeImmediate
		}
	default:
		if has(wgpu.PresentModeMailbox) {
			return wgpu.PresentModeMailbox
		}
	}
	return wgpu.PresentModeFifo
}
