//go:build !js

package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	var monitor *glfw.Monitor
	if w.fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			if mode := monitor.GetVideoMode(); mode != nil {
				w.width, w.height = mode.Width, mode.Height
			}
		}
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		if w.onKeyDown != nil && key >= 0 {
			w.onKeyDown(uint32(key))
		}
	})

	// Cursor positions arrive in screen coordinates; scale them to framebuffer pixels so they
	// match the resolution uniform on high-DPI displays.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		winWidth, _ := win.GetSize()
		scale := 1.0
		if winWidth > 0 {
			scale = float64(w.width) / float64(winWidth)
		}
		w.pointerMoved(xpos, ypos, scale)
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// A minimized window reports 0x0, which the renderer ignores.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	w.width, w.height = win.GetFramebufferSize()

	common.Logger().Debug("window created", "title", w.title, "width", w.width, "height", w.height, "fullscreen", w.fullscreen)
	return nil
}

func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformAttachSurface is a no-op: the surface was created from this window's native handle.
func platformAttachSurface(*engineWindow, *wgpu.Surface) {}

func platformSetTitle(w *engineWindow, title string) {
	if w.internalWindow == nil {
		return
	}
	w.internalWindow.(*glfwWindow).window.SetTitle(title)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal window is nil, the running flag is cleared, or GLFW reports ShouldClose.
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	gw.window = nil
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformRunLoop polls GLFW without blocking and ticks once per iteration until the window closes.
// Presentation with FIFO or mailbox paces the loop to the display refresh.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformRunLoop(w *engineWindow) {
	for platformIsRunningCheck(w) {
		glfw.PollEvents()
		if !platformIsRunningCheck(w) {
			break
		}
		w.tick(glfw.GetTime() * 1000)
	}
}
