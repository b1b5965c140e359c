//go:build js && wasm

package window

import (
	"fmt"
	"math"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// jsWindow holds the browser-specific window state.
type jsWindow struct {
	parent    *engineWindow
	global    js.Value
	document  js.Value
	canvas    js.Value
	running   bool
	listeners map[string]js.Func
	frame     js.Func
	done      chan struct{}
}

// newPlatformWindow creates the background canvas, sizes it to the viewport in device pixels and
// installs DOM listeners for resize, pointer and key events.
func newPlatformWindow(w *engineWindow) error {
	global := js.Global()
	document := global.Get("document")
	if document.IsUndefined() || document.IsNull() {
		return fmt.Errorf("window: no document to draw into")
	}
	jw := &jsWindow{
		parent:    w,
		global:    global,
		document:  document,
		canvas:    newBackgroundCanvas(document),
		running:   true,
		listeners: make(map[string]js.Func),
	}
	w.internalWindow = jw
	w.width, w.height = jw.viewportSize()
	jw.sizeCanvas(w.width, w.height)
	jw.document.Set("title", w.title)

	jw.listen("resize", func(js.Value) {
		width, height := jw.viewportSize()
		jw.sizeCanvas(width, height)
		w.resized(width, height)
	})
	jw.listen("pointermove", func(event js.Value) {
		w.pointerMoved(event.Get("clientX").Float(), event.Get("clientY").Float(), jw.pixelRatio())
	})
	jw.listen("keydown", func(event js.Value) {
		if w.onKeyDown == nil || isEditable(event.Get("target")) {
			return
		}
		if code, ok := keyCode(event.Get("key").String()); ok {
			w.onKeyDown(code)
		}
	})

	common.Logger().Debug("browser window ready", "width", w.width, "height", w.height)
	return nil
}

// newBackgroundCanvas appends a canvas fixed behind the page content, covering the viewport.
func newBackgroundCanvas(document js.Value) js.Value {
	canvas := document.Call("createElement", "canvas")
	style := canvas.Get("style")
	style.Set("position", "fixed")
	style.Set("inset", "0")
	style.Set("width", "100vw")
	style.Set("height", "100vh")
	style.Set("zIndex", "-1")
	style.Set("pointerEvents", "none")
	document.Get("body").Call("appendChild", canvas)
	return canvas
}

func (jw *jsWindow) listen(event string, handler func(js.Value)) {
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			handler(args[0])
		}
		return nil
	})
	jw.listeners[event] = fn
	jw.global.Call("addEventListener", event, fn)
}

func (jw *jsWindow) pixelRatio() float64 {
	ratio := jw.global.Get("devicePixelRatio")
	if ratio.Type() != js.TypeNumber || ratio.Float() <= 0 {
		return 1
	}
	return ratio.Float()
}

// viewportSize returns the viewport size in device pixels.
func (jw *jsWindow) viewportSize() (int, int) {
	ratio := jw.pixelRatio()
	width := int(math.Round(jw.global.Get("innerWidth").Float() * ratio))
	height := int(math.Round(jw.global.Get("innerHeight").Float() * ratio))
	return width, height
}

func (jw *jsWindow) sizeCanvas(width, height int) {
	if jw.canvas.IsNull() || jw.canvas.IsUndefined() {
		return
	}
	jw.canvas.Set("width", width)
	jw.canvas.Set("height", height)
}

// isEditable reports whether keys typed into target belong to the page rather than the backdrop.
func isEditable(target js.Value) bool {
	if target.IsUndefined() || target.IsNull() {
		return false
	}
	switch target.Get("tagName").String() {
	case "INPUT", "TEXTAREA", "SELECT":
		return true
	}
	return target.Get("isContentEditable").Truthy()
}

// keyCode maps KeyboardEvent.key to the desktop key codes in common.
func keyCode(key string) (uint32, bool) {
	switch key {
	case "ArrowRight":
		return common.KeyRight, true
	case "ArrowLeft":
		return common.KeyLeft, true
	case " ":
		return common.KeySpace, true
	}
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return uint32(c), true
	}
	return 0, false
}

// platformGetSurfaceDescriptor targets the background canvas created with the window.
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	jw, ok := w.internalWindow.(*jsWindow)
	if !ok {
		return nil
	}
	return &wgpu.SurfaceDescriptor{Canvas: jw.canvas}
}

// platformAttachSurface sizes the canvas the surface was created on to the current viewport.
func platformAttachSurface(w *engineWindow, _ *wgpu.Surface) {
	if jw, ok := w.internalWindow.(*jsWindow); ok {
		jw.sizeCanvas(w.width, w.height)
	}
}

func platformSetTitle(w *engineWindow, title string) {
	if jw, ok := w.internalWindow.(*jsWindow); ok {
		jw.document.Set("title", title)
	}
}

func platformIsRunningCheck(w *engineWindow) bool {
	jw, ok := w.internalWindow.(*jsWindow)
	return ok && jw.running
}

// platformCloseWindow stops the animation loop and removes the DOM listeners.
func platformCloseWindow(w *engineWindow) error {
	jw, ok := w.internalWindow.(*jsWindow)
	if !ok {
		return nil
	}
	jw.running = false
	if parent := jw.canvas.Get("parentNode"); !parent.IsNull() && !parent.IsUndefined() {
		parent.Call("removeChild", jw.canvas)
	}
	for event, fn := range jw.listeners {
		jw.global.Call("removeEventListener", event, fn)
		fn.Release()
		delete(jw.listeners, event)
	}
	return nil
}

// platformRunLoop ticks from requestAnimationFrame, re-registering after each frame, and blocks
// until the window is closed.
func platformRunLoop(w *engineWindow) {
	jw, ok := w.internalWindow.(*jsWindow)
	if !ok {
		return
	}
	jw.done = make(chan struct{})
	jw.frame = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if !jw.running {
			close(jw.done)
			return nil
		}
		timeMs := 0.0
		if len(args) > 0 {
			timeMs = args[0].Float()
		}
		w.tick(timeMs)
		jw.global.Call("requestAnimationFrame", jw.frame)
		return nil
	})
	jw.global.Call("requestAnimationFrame", jw.frame)
	<-jw.done
	jw.frame.Release()
}
