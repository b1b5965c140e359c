// Package renderertest provides a GPU-free RendererBackend for exercising a Renderer in tests.
package renderertest

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Draw records one DrawFullscreen call.
type Draw struct {
	Pipeline      string
	BindGroups    int
	VertexCount   uint32
	InstanceCount uint32
}

// Backend is a recording renderer.RendererBackend. Every call is captured and nothing touches a GPU.
// Set the Fail* fields to inject errors.
type Backend struct {
	mu sync.Mutex

	Configures   [][2]int
	Writes       []bind_group_provider.BufferWrite
	Draws        []Draw
	Registered   []string
	BindGroups   []string
	Presents     int
	Submits      int
	Released     bool
	ClearColor   wgpu.Color
	Preferred    renderer.PresentMode
	Format       wgpu.TextureFormat
	Mode         wgpu.PresentMode
	inFrame      bool
	acquireCalls int

	// FailBeginFrame is returned (once) by the next BeginFrame when non-nil.
	FailBeginFrame error
	// FailRegister is returned by RegisterRenderPipeline for the named pipeline keys.
	FailRegister map[string]error
	// FailConfigure is returned by every ConfigureSurface while non-nil.
	FailConfigure error
	// Unbuilt names pipeline keys whose draws are skipped as if no GPU pipeline existed.
	Unbuilt map[string]bool
	// FailEndFrame is returned (once) by the next EndFrame when non-nil.
	FailEndFrame error
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend returns a Backend reporting an sRGB surface with FIFO presentation.
//
// Returns:
//   - *Backend: the recording backend
func NewBackend() *Backend {
	return &Backend{
		Format: wgpu.TextureFormatBGRA8UnormSrgb,
		Mode:   wgpu.PresentModeFifo,
	}
}

func (b *Backend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailConfigure != nil {
		return b.FailConfigure
	}
	b.Configures = append(b.Configures, [2]int{width, height})
	return nil
}

func (b *Backend) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Format
}

func (b *Backend) PresentMode() wgpu.PresentMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Mode
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Preferred = mode
}

func (b *Backend) SetClearColor(c wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ClearColor = c
}

func (b *Backend) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.BindGroups = append(b.BindGroups, provider.Label())
	return nil
}

func (b *Backend) RegisterRenderPipeline(p pipeline.Pipeline, _ []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.FailRegister[p.Key()]; err != nil {
		return err
	}
	b.Registered = append(b.Registered, p.Key())
	return nil
}

func (b *Backend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range writes {
		w.Data = append([]byte(nil), w.Data...)
		b.Writes = append(b.Writes, w)
	}
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acquireCalls++
	if b.FailBeginFrame != nil {
		err := b.FailBeginFrame
		b.FailBeginFrame = nil
		return err
	}
	if b.inFrame {
		return renderer.ErrFrameInProgress
	}
	b.inFrame = true
	return nil
}

func (b *Backend) DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame || b.Unbuilt[p.Key()] {
		return false
	}
	b.Draws = append(b.Draws, Draw{
		Pipeline:      p.Key(),
		BindGroups:    len(bindGroups),
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
	})
	return true
}

func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailEndFrame != nil {
		err := b.FailEndFrame
		b.FailEndFrame = nil
		b.inFrame = false
		return err
	}
	b.Submits++
	return nil
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return
	}
	b.inFrame = false
	b.Presents++
}

func (b *Backend) Surface() *wgpu.Surface {
	return nil
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Released = true
}

// DrawCount returns the number of recorded draws.
//
// Returns:
//   - int: the draw count
func (b *Backend) DrawCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Draws)
}

// LastWrite returns the most recent buffer write and whether one was recorded.
//
// Returns:
//   - bind_group_provider.BufferWrite: the last write
//   - bool: false when nothing was written
func (b *Backend) LastWrite() (bind_group_provider.BufferWrite, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Writes) == 0 {
		return bind_group_provider.BufferWrite{}, false
	}
	return b.Writes[len(b.Writes)-1], true
}

// ConfigureCount returns the number of successful ConfigureSurface calls.
//
// Returns:
//   - int: the configure count
func (b *Backend) ConfigureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Configures)
}

// Acquisitions returns the number of BeginFrame calls, failed or not.
//
// Returns:
//   - int: the BeginFrame call count
func (b *Backend) Acquisitions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquireCalls
}
