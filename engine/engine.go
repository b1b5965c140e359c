package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/console"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/driver"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/profiler"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/registry"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine: no window to run")

// CommandOutput receives the result of a command queued with Submit, on the tick that ran it.
type CommandOutput func(line string, result console.Result, err error)

// engine implements the Engine interface.
// Owns the session, registry and driver; every callback runs on the tick thread.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	registry registry.Registry
	driver   driver.Driver
	console  console.Console
	profiler *profiler.Profiler

	// Construction config collected from builder options.
	entries         []shader.Entry
	width           int
	height          int
	rendererOptions []renderer.RendererBuilderOption
	registryOptions []registry.RegistryBuilderOption
	commandOutput   CommandOutput
	commandBuffer   int

	commands chan string

	started     bool
	originMs    float64
	lastMs      float64
	paused      bool
	pausedAtMs  float64
	pointer     [2]float32
	lastSkipped uint64

	quitRequested atomic.Bool
	stopOnce      sync.Once
}

// Engine is the host application for the backdrop.
// It owns the renderer session, the pipeline registry and the frame driver, binds them to a
// window and exposes shader selection to the host UI and the command console.
//
// All methods except Submit and Quit must be called from the tick thread (the thread running Run,
// or the browser's main thread).
type Engine interface {
	// OnTick advances one frame: queued commands run, then the uniforms are updated and the
	// active shader drawn. The shader time is seconds since the first tick.
	//
	// Parameters:
	//   - timeMs: a monotonic timestamp in milliseconds
	OnTick(timeMs float64)

	// OnResize resizes the surface. Either dimension ≤ 0 is ignored.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	OnResize(width, height int)

	// OnPointerMove records the pointer position used by the next tick.
	//
	// Parameters:
	//   - x: horizontal position in surface pixels
	//   - y: vertical position in surface pixels
	OnPointerMove(x, y float32)

	// ListShaders returns the selectable shader names in ascending order.
	//
	// Returns:
	//   - []string: the names
	ListShaders() []string

	// SelectShader activates the named shader. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the shader name
	//
	// Returns:
	//   - bool: true when the active shader changed
	SelectShader(name string) bool

	// ActiveShader returns the active shader name, "" when there are none.
	//
	// Returns:
	//   - string: the active name
	ActiveShader() string

	// NextShader activates the next shader in name order, wrapping around.
	//
	// Returns:
	//   - string: the new active name
	NextShader() string

	// PreviousShader activates the previous shader in name order, wrapping around.
	//
	// Returns:
	//   - string: the new active name
	PreviousShader() string

	// Execute runs one console command line immediately.
	//
	// Parameters:
	//   - line: the command line
	//
	// Returns:
	//   - console.Result: the command output
	//   - error: a parse error for malformed quoting
	Execute(line string) (console.Result, error)

	// Submit queues a command line from any goroutine. It runs at the start of the next tick and
	// its result goes to the configured CommandOutput.
	//
	// Parameters:
	//   - line: the command line
	//
	// Returns:
	//   - bool: false when the queue is full and the line was dropped
	Submit(line string) bool

	// SetProfiling turns the frame profiler on or off.
	//
	// Parameters:
	//   - enabled: true to log frame statistics
	SetProfiling(enabled bool)

	// Stats returns the frame driver counters.
	//
	// Returns:
	//   - driver.FrameStats: the counters
	Stats() driver.FrameStats

	// Renderer returns the session.
	//
	// Returns:
	//   - renderer.Renderer: the session
	Renderer() renderer.Renderer

	// Window returns the host window, nil when headless.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Run binds the window's refresh, resize, pointer and key events to the engine and blocks
	// until the window closes or Quit is called. Resources are released on return.
	//
	// Returns:
	//   - error: ErrNoWindow when built without a window
	Run() error

	// Quit asks the engine to stop at the next tick. Safe from any goroutine and idempotent.
	Quit()
}

var _ Engine = &engine{}

// NewEngine negotiates the GPU session, compiles the shader library and prepares the frame driver.
// Without WithShaders the embedded library is used.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the ready engine
//   - error: a renderer negotiation error or a registry load error; nothing is left allocated
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		width:         1280,
		height:        720,
		commandBuffer: 64,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	e.commands = make(chan string, max(e.commandBuffer, 1))

	if e.entries == nil {
		entries, err := shader.Embedded()
		if err != nil {
			return nil, fmt.Errorf("engine: embedded shaders: %w", err)
		}
		e.entries = entries
	}

	var target renderer.SurfaceTarget
	if e.window != nil {
		target = e.window
		e.width, e.height = e.window.Width(), e.window.Height()
	}

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, target, e.width, e.height, e.rendererOptions...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.renderer = r

	reg, err := registry.Load(e.entries, r, e.registryOptions...)
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.registry = reg

	e.driver = driver.NewDriver(r, reg)
	e.console = console.NewConsole(e, console.WithProfileToggle(e.SetProfiling))

	if e.window != nil {
		e.window.AttachSurface(r.Surface())
	}
	return e, nil
}

func (e *engine) OnTick(timeMs float64) {
	defer func() {
		if rec := recover(); rec != nil {
			common.Logger().Error("tick recovered from panic", "panic", rec)
		}
	}()

	if e.quitRequested.Load() {
		e.stop()
		return
	}

	e.drainCommands()

	if !e.started {
		e.started = true
		e.originMs = timeMs
	}
	e.lastMs = timeMs

	e.driver.Update(e.elapsedSeconds(timeMs), e.pointer)
	if err := e.driver.Render(); err != nil {
		common.Logger().Warn("frame failed", "shader", e.registry.Active(), "error", err)
		e.profiler.RecordFailure()
	}
	for skipped := e.driver.Stats().Skipped; e.lastSkipped < skipped; e.lastSkipped++ {
		e.profiler.RecordSkip()
	}
	e.profiler.Tick()
}

// elapsedSeconds converts a host timestamp to shader time, holding still while paused.
func (e *engine) elapsedSeconds(timeMs float64) float32 {
	if e.paused {
		timeMs = e.pausedAtMs
	}
	return float32((timeMs - e.originMs) / 1000)
}

func (e *engine) drainCommands() {
	for {
		select {
		case line := <-e.commands:
			res, err := e.Execute(line)
			if e.commandOutput != nil {
				e.commandOutput(line, res, err)
			}
		default:
			return
		}
	}
}

func (e *engine) OnResize(width, height int) {
	e.renderer.Resize(width, height)
}

func (e *engine) OnPointerMove(x, y float32) {
	e.pointer = [2]float32{x, y}
}

// onKeyDown maps keys to selection: N/→ next, P/← previous, 1-9 by position, R restarts time,
// Space pauses.
func (e *engine) onKeyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyN, common.KeyRight:
		e.NextShader()
	case common.KeyP, common.KeyLeft:
		e.PreviousShader()
	case common.KeyR:
		e.started = false
		e.paused = false
	case common.KeySpace:
		e.togglePause()
	default:
		if keyCode >= common.Key1 && keyCode <= common.Key9 {
			names := e.registry.Names()
			if i := int(keyCode - common.Key1); i < len(names) {
				e.SelectShader(names[i])
			}
		}
	}
}

func (e *engine) togglePause() {
	if !e.started {
		return
	}
	if e.paused {
		// Shift the origin so time resumes where it stopped.
		e.originMs += e.lastMs - e.pausedAtMs
		e.paused = false
		return
	}
	e.paused = true
	e.pausedAtMs = e.lastMs
}

func (e *engine) ListShaders() []string {
	return e.registry.Names()
}

func (e *engine) SelectShader(name string) bool {
	if !e.registry.Select(name) {
		common.Logger().Debug("shader not changed", "name", name, "active", e.registry.Active())
		return false
	}
	common.Logger().Info("shader selected", "name", name)
	return true
}

func (e *engine) ActiveShader() string {
	return e.registry.Active()
}

func (e *engine) NextShader() string {
	name := e.registry.Next()
	common.Logger().Info("shader selected", "name", name)
	return name
}

func (e *engine) PreviousShader() string {
	name := e.registry.Previous()
	common.Logger().Info("shader selected", "name", name)
	return name
}

func (e *engine) Execute(line string) (console.Result, error) {
	return e.console.Execute(line)
}

func (e *engine) Submit(line string) bool {
	select {
	case e.commands <- line:
		return true
	default:
		common.Logger().Warn("command queue full, dropping", "line", line)
		return false
	}
}

func (e *engine) SetProfiling(enabled bool) {
	e.profiler.SetEnabled(enabled)
}

func (e *engine) Stats() driver.FrameStats {
	return e.driver.Stats()
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}

	e.window.SetUpdateCallback(e.OnTick)
	e.window.SetResizeCallback(e.OnResize)
	e.window.SetPointerMoveCallback(e.OnPointerMove)
	e.window.SetKeyDownCallback(e.onKeyDown)

	// The browser canvas may have been resized while attaching.
	e.OnResize(e.window.Width(), e.window.Height())

	common.Logger().Info("engine running", "shaders", e.registry.Len(), "active", e.registry.Active())
	e.window.ProcessMessages()
	e.stop()
	return nil
}

// Quit signals the tick thread to stop. Safe to call multiple times.
func (e *engine) Quit() {
	e.quitRequested.Store(true)
}

// stop releases the session and closes the window exactly once, on the tick thread.
func (e *engine) stop() {
	e.stopOnce.Do(func() {
		e.renderer.Release()
		if e.window != nil && e.window.IsRunning() {
			if err := e.window.Close(); err != nil {
				common.Logger().Warn("window close failed", "error", err)
			}
		}
		common.Logger().Info("engine stopped", "stats", fmt.Sprintf("%+v", e.driver.Stats()))
	})
}
