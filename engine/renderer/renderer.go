package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

// FrameUniformLabel is the label of the bind group provider holding the per-frame uniform buffer.
const FrameUniformLabel = "Frame Uniform"

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	frameProvider bind_group_provider.BindGroupProvider
	width         int
	height        int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           *wgpu.Color
}

// SurfaceTarget is anything that can describe a platform surface for WebGPU, typically a window.
type SurfaceTarget interface {
	// SurfaceDescriptor returns the platform-specific surface descriptor.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor used to create the presentation surface
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// Renderer is the surface/device session behind the backdrop.
//
// It owns the GPU device and presentation surface through its backend, the single 48-byte frame
// uniform buffer every pipeline binds at group 0, and a cache of registered pipelines.
// Frame primitives (BeginFrame, DrawFullscreen, EndFrame, Present) are driven once per tick.
type Renderer interface {
	// Pipeline retrieves the registered Pipeline associated with the given key.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: pipeline keys mapped to their Pipelines
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU render pipeline for each Pipeline and caches it by key.
	// Every pipeline shares the frame uniform layout at group 0. Keys already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: the first creation failure, wrapped with the pipeline key
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new size. Either dimension ≤ 0 is ignored and the
	// previous size is kept.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Reconfigure reconfigures the surface at the last known size, recovering a lost or outdated surface.
	//
	// Returns:
	//   - error: an error if the surface could not be configured
	Reconfigure() error

	// Size returns the current surface size in pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	Size() (int, int)

	// Resolution returns the current surface size as the vec2 written into the frame uniform.
	//
	// Returns:
	//   - [2]float32: width and height in pixels
	Resolution() [2]float32

	// WriteUniforms uploads the frame uniform with a single queue write of all 48 bytes.
	//
	// Parameters:
	//   - u: the payload to upload
	WriteUniforms(u uniform.GPUFrameUniform)

	// BeginFrame acquires the surface texture and begins a render pass that clears it.
	//
	// Returns:
	//   - error: a wrapped ErrSurfaceLost, ErrSurfaceTimeout or ErrOutOfMemory on acquisition failure
	BeginFrame() error

	// DrawFullscreen binds p and the frame uniform group and draws the full-screen triangle.
	//
	// Parameters:
	//   - p: a registered Pipeline
	//
	// Returns:
	//   - bool: false when nothing was drawn (no frame in progress or p has no GPU pipeline)
	DrawFullscreen(p pipeline.Pipeline) bool

	// EndFrame ends the render pass and submits the frame's command buffer.
	//
	// Returns:
	//   - error: an error if submission failed
	EndFrame() error

	// Present presents the submitted frame.
	Present()

	// SurfaceFormat returns the negotiated surface texture format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// PresentMode returns the negotiated present mode.
	//
	// Returns:
	//   - wgpu.PresentMode: the present mode in effect
	PresentMode() wgpu.PresentMode

	// SetPresentMode changes the preferred present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the preferred PresentMode
	SetPresentMode(mode PresentMode)

	// Surface returns the presentation surface, nil for headless backends.
	//
	// Returns:
	//   - *wgpu.Surface: the surface
	Surface() *wgpu.Surface

	// FrameProvider returns the provider holding the frame uniform buffer and bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the group 0 provider
	FrameProvider() bind_group_provider.BindGroupProvider

	// Release frees every GPU object owned by the session.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer negotiates a GPU device for the target surface and configures it at the given size.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - target: the surface target, usually the host window
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured session
//   - error: ErrNoCompatibleAdapter or ErrDeviceRequestFailed (wrapped), or a surface/bind group failure
func NewRenderer(backendType RendererBackendType, target SurfaceTarget, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		width:         width,
		height:        height,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		var desc *wgpu.SurfaceDescriptor
		if target != nil {
			desc = target.SurfaceDescriptor()
		}
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			backend, err := newWGPURendererBackend(desc, r.forceFallbackAdapter)
			if err != nil {
				return nil, err
			}
			r.backend = backend
		}
	}

	r.backend.SetPresentMode(r.presentMode)
	if r.clearColor != nil {
		r.backend.SetClearColor(*r.clearColor)
	}

	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		r.backend.Release()
		return nil, err
	}

	r.frameProvider = bind_group_provider.NewBindGroupProvider(FrameUniformLabel,
		bind_group_provider.WithLayoutDescriptor(frameUniformLayoutDescriptor()),
	)
	if err := r.backend.InitBindGroup(r.frameProvider); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("frame uniform: %w", err)
	}

	common.Logger().Info("renderer ready",
		"width", r.width, "height", r.height,
		"format", r.backend.SurfaceFormat(),
		"presentMode", r.backend.PresentMode())
	return r, nil
}

// frameUniformLayoutDescriptor describes the single uniform binding at group 0, binding 0.
// Both stages see it: the shared vertex stage may read the frame uniform too.
func frameUniformLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	var entry wgpu.BindGroupLayoutEntry
	entry.Binding = 0
	entry.Visibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	entry.Buffer.MinBindingSize = uniform.GPUFrameUniformSize
	return wgpu.BindGroupLayoutDescriptor{
		Label:   FrameUniformLabel,
		Entries: []wgpu.BindGroupLayoutEntry{entry},
	}
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		common.Logger().Warn("resize failed", "width", width, "height", height, "error", err)
		return
	}
	r.width, r.height = width, height
}

func (r *renderer) Reconfigure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.ConfigureSurface(r.width, r.height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resolution() [2]float32 {
	w, h := r.Size()
	return [2]float32{float32(w), float32(h)}
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		common.Logger().Warn("present mode change failed", "mode", mode.String(), "error", err)
	}
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) PresentMode() wgpu.PresentMode {
	return r.backend.PresentMode()
}

func (r *renderer) Surface() *wgpu.Surface {
	return r.backend.Surface()
}

func (r *renderer) FrameProvider() bind_group_provider.BindGroupProvider {
	return r.frameProvider
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := []bind_group_provider.BindGroupProvider{r.frameProvider}
	for _, p := range pipelines {
		key := p.Key()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p, groups); err != nil {
			return fmt.Errorf("pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) WriteUniforms(u uniform.GPUFrameUniform) {
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: r.frameProvider,
		Binding:  0,
		Offset:   0,
		Data:     u.Marshal(),
	}})
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawFullscreen(p pipeline.Pipeline) bool {
	return r.backend.DrawFullscreen(p, []bind_group_provider.BindGroupProvider{r.frameProvider}, FullscreenVertexCount, 1)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameProvider != nil {
		r.frameProvider.Release()
	}
	// The backend owns the GPU pipelines; drop the handles so nothing draws with them afterwards.
	for _, p := range r.pipelineCache {
		p.SetRenderPipeline(nil)
	}
	r.pipelineCache = make(map[string]pipeline.Pipeline)
	r.backend.Release()
}
