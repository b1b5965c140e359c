package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides the host surface and input events for the backdrop.
// Wraps platform-specific window implementations (GLFW on desktop, a DOM canvas in the browser)
// with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called once per display refresh.
	//
	// Parameters:
	//   - callback: function receiving a monotonic timestamp in milliseconds (or nil to disable)
	SetUpdateCallback(callback func(timeMs float64))

	// SetResizeCallback sets the function called when the drawable size changes.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetPointerMoveCallback sets the callback for pointer movement.
	//
	// Parameters:
	//   - callback: function receiving the pointer position in drawable pixels
	SetPointerMoveCallback(callback func(x, y float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetTitle changes the window title. Browser windows set the document title.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// AttachSurface binds the created surface to the window. In the browser this places the
	// surface's canvas behind the page; on the desktop the surface already belongs to the window.
	//
	// Parameters:
	//   - surface: the surface created from SurfaceDescriptor
	AttachSurface(surface *wgpu.Surface)

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback once per refresh.
	ProcessMessages()

	// Width returns the current drawable width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current drawable height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth and maxHeight bound resizing. Zero means unbounded.
	maxWidth  int
	maxHeight int

	// minWidth and minHeight bound resizing. Zero means unbounded.
	minWidth  int
	minHeight int

	// width is the current drawable width in pixels.
	width int

	// height is the current drawable height in pixels.
	height int

	// fullscreen opens the window on the primary monitor at its video mode.
	fullscreen bool

	// internalWindow holds the platform-specific window data.
	internalWindow any

	onUpdate      func(timeMs float64)
	onResize      func(width, height int)
	onPointerMove func(x, y float32)
	onKeyDown     func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the platform window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "oxy-backdrop",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func(timeMs float64)) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetPointerMoveCallback(callback func(x, y float32)) {
	w.onPointerMove = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) AttachSurface(surface *wgpu.Surface) {
	platformAttachSurface(w, surface)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	platformRunLoop(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records a new drawable size and notifies the resize callback.
func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// pointerMoved scales a position from window units to drawable pixels and notifies the callback.
func (w *engineWindow) pointerMoved(x, y, scale float64) {
	if w.onPointerMove == nil {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	w.onPointerMove(float32(x*scale), float32(y*scale))
}

// tick forwards one refresh to the update callback.
func (w *engineWindow) tick(timeMs float64) {
	if w.onUpdate != nil {
		w.onUpdate(timeMs)
	}
	runtime.Gosched()
}
