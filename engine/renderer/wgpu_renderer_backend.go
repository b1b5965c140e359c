package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	preferredPresentMode PresentMode
	clearColor           wgpu.Color
	renderPassDescriptor *wgpu.RenderPassDescriptor

	// shaderModules caches compiled modules by shader key so the shared vertex stage compiles once.
	shaderModules   map[string]*wgpu.ShaderModule
	pipelineLayouts []*wgpu.PipelineLayout
	renderPipelines []*wgpu.RenderPipeline

	// Frame state between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend negotiates instance, surface, adapter and device for the given surface descriptor.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (RendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, fmt.Errorf("%w: no surface target", ErrNoCompatibleAdapter)
	}
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeFifo,
		clearColor:    wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		shaderModules: make(map[string]*wgpu.ShaderModule),
	}

	w.surface = w.instance.CreateSurface(surfaceDescriptor)
	if w.surface == nil {
		w.Release()
		return nil, fmt.Errorf("%w: surface creation failed", ErrNoCompatibleAdapter)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil || a == nil {
		w.Release()
		return nil, fmt.Errorf("%w: %v", ErrNoCompatibleAdapter, err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Backdrop Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil || d == nil {
		w.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceRequestFailed, err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	format, ok := chooseSurfaceFormat(capabilities.Formats)
	if !ok {
		return fmt.Errorf("%w: surface offers no texture formats", ErrNoCompatibleAdapter)
	}
	b.surfaceFormat = format
	b.presentMode = choosePresentMode(b.preferredPresentMode, capabilities.PresentModes)

	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})

	// View is set per frame to the acquired surface texture.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clearColor,
			},
		},
	}

	common.Logger().Debug("surface configured",
		"width", width, "height", height,
		"format", b.surfaceFormat, "presentMode", b.presentMode)
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) PresentMode() wgpu.PresentMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presentMode
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.preferredPresentMode = mode
}

func (b *wgpuRendererBackendImpl) SetClearColor(c wgpu.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = c
	}
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	descriptor := provider.LayoutDescriptor()
	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("create bind group layout %q: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		var usage wgpu.BufferUsage
		switch entry.Buffer.Type {
		case wgpu.BufferBindingTypeUniform:
			usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
		case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
			usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
		default:
			return fmt.Errorf("bind group %q: binding %d is not a buffer", provider.Label(), entry.Binding)
		}

		binding := int(entry.Binding)
		buf := provider.Buffer(binding)
		if buf == nil {
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Buffer",
				Size:  entry.Buffer.MinBindingSize,
				Usage: usage,
			})
			if err != nil {
				return fmt.Errorf("create buffer %q binding %d: %w", provider.Label(), binding, err)
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group %q: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// shaderModule returns the cached module for s, compiling it on first use.
// The caller must hold b.mu.
func (b *wgpuRendererBackendImpl) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	if m, ok := b.shaderModules[s.Key()]; ok {
		return m, nil
	}
	m, err := b.device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, fmt.Errorf("compile shader %q: %w", s.Key(), err)
	}
	b.shaderModules[s.Key()] = m
	return m, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}
	if p.RenderPipeline() != nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.shaderModule(vertexShader)
	if err != nil {
		return err
	}
	fs, err := b.shaderModule(fragmentShader)
	if err != nil {
		return err
	}

	layouts := make([]*wgpu.BindGroupLayout, 0, len(bindGroups))
	for i, bg := range bindGroups {
		if bg.BindGroupLayout() == nil {
			return fmt.Errorf("bind group %d (%s) is not initialized", i, bg.Label())
		}
		layouts = append(layouts, bg.BindGroupLayout())
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout %q: %w", p.Key(), err)
	}
	b.pipelineLayouts = append(b.pipelineLayouts, pipelineLayout)

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: p.WriteMask(),
					Blend:     p.BlendState(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline %q: %w", p.Key(), err)
	}
	b.renderPipelines = append(b.renderPipelines, created)
	p.SetRenderPipeline(created)

	common.Logger().Debug("render pipeline created", "key", p.Key(), "vertexEntry", vertexShader.EntryPoint(), "fragmentEntry", fragmentShader.EntryPoint())
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Acquiring a second texture before presenting the first is a validation error in wgpu-native.
	if b.frameSurface != nil {
		return ErrFrameInProgress
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	var acquired surfaceTextureView
	if surfaceTexture != nil {
		acquired = surfaceTexture
	}
	view, err := acquireView(acquired, err)
	if err != nil {
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil || p.RenderPipeline() == nil {
		return false
	}
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
	return true
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("EndFrame called without BeginFrame")
	}

	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.releaseFrameTexture()
		return fmt.Errorf("finish command buffer: %w", err)
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameTexture()
}

// releaseFrameTexture drops the acquired surface texture and its view. The caller must hold b.mu.
func (b *wgpuRendererBackendImpl) releaseFrameTexture() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameTexture()
	for _, rp := range b.renderPipelines {
		rp.Release()
	}
	b.renderPipelines = nil
	for _, pl := range b.pipelineLayouts {
		pl.Release()
	}
	b.pipelineLayouts = nil
	for key, m := range b.shaderModules {
		m.Release()
		delete(b.shaderModules, key)
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
