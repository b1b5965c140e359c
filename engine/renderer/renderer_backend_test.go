package renderer

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []wgpu.TextureFormat
		want    wgpu.TextureFormat
		ok      bool
	}{
		{"prefers srgb", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb}, wgpu.TextureFormatBGRA8UnormSrgb, true},
		{"first srgb wins", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb}, wgpu.TextureFormatRGBA8UnormSrgb, true},
		{"falls back to first", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatRGBA8Unorm, true},
		{"none offered", nil, wgpu.TextureFormatUndefined, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chooseSurfaceFormat(tt.formats)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	all := []wgpu.PresentMode{wgpu.PresentModeFifo, wgpu.PresentModeMailbox, wgpu.PresentModeImmediate}
	fifoOnly := []wgpu.PresentMode{wgpu.PresentModeFifo}

	assert.Equal(t, wgpu.PresentModeMailbox, choosePresentMode(PresentModeAuto, all))
	assert.Equal(t, wgpu.PresentModeFifo, choosePresentMode(PresentModeAuto, fifoOnly))
	assert.Equal(t, wgpu.PresentModeFifo, choosePresentMode(PresentModeVSync, all))
	assert.Equal(t, wgpu.PresentModeImmediate, choosePresentMode(PresentModeUncapped, all))
	assert.Equal(t, wgpu.PresentModeFifo, choosePresentMode(PresentModeUncapped, fifoOnly))
	assert.Equal(t, wgpu.PresentModeFifo, choosePresentMode(PresentModeAuto, nil))
}

func TestClassifySurfaceError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"surface status: Timeout", ErrSurfaceTimeout},
		{"surface status: OutOfMemory", ErrOutOfMemory},
		{"device is out of memory", ErrOutOfMemory},
		{"surface status: Outdated", ErrSurfaceLost},
		{"surface status: Lost", ErrSurfaceLost},
		{"something else", ErrSurfaceLost},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classifySurfaceError(errors.New(tt.msg))
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

type fakeSurfaceTexture struct {
	view     *wgpu.TextureView
	err      error
	released bool
}

func (f *fakeSurfaceTexture) CreateView(*wgpu.TextureViewDescriptor) (*wgpu.TextureView, error) {
	return f.view, f.err
}

func (f *fakeSurfaceTexture) Release() { f.released = true }

func TestAcquireView(t *testing.T) {
	t.Run("acquire timeout", func(t *testing.T) {
		_, err := acquireView(nil, errors.New("Timeout"))
		assert.ErrorIs(t, err, ErrSurfaceTimeout)
	})

	t.Run("no texture", func(t *testing.T) {
		_, err := acquireView(nil, nil)
		assert.ErrorIs(t, err, ErrSurfaceLost)
	})

	t.Run("empty texture from a lost surface", func(t *testing.T) {
		tex := &fakeSurfaceTexture{err: errors.New("invalid texture")}
		_, err := acquireView(tex, nil)
		assert.ErrorIs(t, err, ErrSurfaceLost)
		assert.True(t, tex.released)
	})

	t.Run("nil view", func(t *testing.T) {
		tex := &fakeSurfaceTexture{}
		_, err := acquireView(tex, nil)
		assert.ErrorIs(t, err, ErrSurfaceLost)
		assert.True(t, tex.released)
	})

	t.Run("ok", func(t *testing.T) {
		tex := &fakeSurfaceTexture{view: &wgpu.TextureView{}}
		view, err := acquireView(tex, nil)
		require.NoError(t, err)
		assert.Same(t, tex.view, view)
		assert.False(t, tex.released)
	})
}

func TestParsePresentMode(t *testing.T) {
	for in, want := range map[string]PresentMode{
		"":          PresentModeAuto,
		"auto":      PresentModeAuto,
		"VSync":     PresentModeVSync,
		"fifo":      PresentModeVSync,
		" uncapped": PresentModeUncapped,
		"immediate": PresentModeUncapped,
	} {
		got, err := ParsePresentMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePresentMode("triple")
	assert.Error(t, err)
}

func TestPresentModeString(t *testing.T) {
	assert.Equal(t, "auto", PresentModeAuto.String())
	assert.Equal(t, "vsync", PresentModeVSync.String())
	assert.Equal(t, "uncapped", PresentModeUncapped.String())
	assert.Equal(t, "PresentMode(9)", PresentMode(9).String())
}

func TestFrameUniformLayoutDescriptor(t *testing.T) {
	desc := frameUniformLayoutDescriptor()
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, FrameUniformLabel, desc.Label)
	assert.Equal(t, uint32(0), desc.Entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, desc.Entries[0].Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(48), desc.Entries[0].Buffer.MinBindingSize)
}
