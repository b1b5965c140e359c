package driver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/uniform"
)

// FrameState is the position of the driver within one frame.
type FrameState int

const (
	// FrameStateIdle is the state between frames.
	FrameStateIdle FrameState = iota
	// FrameStateUpdated means the uniforms for the next frame were written.
	FrameStateUpdated
	// FrameStateSubmitted means the frame's command buffer was submitted.
	FrameStateSubmitted
	// FrameStatePresented means the frame was presented.
	FrameStatePresented
)

func (s FrameState) String() string {
	switch s {
	case FrameStateIdle:
		return "idle"
	case FrameStateUpdated:
		return "updated"
	case FrameStateSubmitted:
		return "submitted"
	case FrameStatePresented:
		return "presented"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// Surface is the part of the renderer session the driver draws through.
type Surface interface {
	Resolution() [2]float32
	WriteUniforms(u uniform.GPUFrameUniform)
	BeginFrame() error
	DrawFullscreen(p pipeline.Pipeline) bool
	EndFrame() error
	Present()
	Reconfigure() error
}

// PipelineSource supplies the pipeline to draw, usually the registry.
type PipelineSource interface {
	ActivePipeline() pipeline.Pipeline
}

var _ Surface = renderer.Renderer(nil)

// FrameStats counts driver outcomes since construction.
type FrameStats struct {
	Updates   uint64
	Presented uint64
	Draws     uint64
	Skipped   uint64
	Failed    uint64
}

// driver is the implementation of the Driver interface.
type driver struct {
	mu *sync.Mutex

	surface Surface
	source  PipelineSource
	state   FrameState
	stats   FrameStats

	stateHook func(from, to FrameState)
}

// Driver advances one frame per tick: Update writes the uniforms, Render draws and presents.
//
// A lost or outdated surface is recovered inside Render by reconfiguring and skipping the frame.
// Every Render ends in FrameStateIdle regardless of outcome.
type Driver interface {
	// Update writes the frame uniform for the coming frame. The resolution always comes from the surface.
	//
	// Parameters:
	//   - timeSeconds: elapsed seconds since the first tick
	//   - pointer: pointer position in surface pixels
	Update(timeSeconds float32, pointer [2]float32)

	// Render clears the surface, draws the active pipeline once and presents.
	// No active pipeline clears and presents without drawing.
	//
	// Returns:
	//   - error: nil on success or after a lost-surface recovery, otherwise the frame error
	Render() error

	// State returns the current frame state.
	//
	// Returns:
	//   - FrameState: the state
	State() FrameState

	// Stats returns a snapshot of the frame counters.
	//
	// Returns:
	//   - FrameStats: the counters
	Stats() FrameStats
}

var _ Driver = &driver{}

// NewDriver creates a Driver drawing source's active pipeline onto surface.
//
// Parameters:
//   - surface: the renderer session
//   - source: the pipeline source, usually the registry
//   - options: variadic list of DriverBuilderOption functions
//
// Returns:
//   - Driver: the driver in FrameStateIdle
func NewDriver(surface Surface, source PipelineSource, options ...DriverBuilderOption) Driver {
	d := &driver{
		mu:      &sync.Mutex{},
		surface: surface,
		source:  source,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *driver) transition(to FrameState) {
	from := d.state
	d.state = to
	if d.stateHook != nil && from != to {
		d.stateHook(from, to)
	}
}

func (d *driver) Update(timeSeconds float32, pointer [2]float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.surface.WriteUniforms(uniform.NewGPUFrameUniform(timeSeconds, pointer, d.surface.Resolution()))
	d.stats.Updates++
	d.transition(FrameStateUpdated)
}

func (d *driver) Render() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.transition(FrameStateIdle)

	if err := d.surface.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrSurfaceLost) {
			d.stats.Skipped++
			common.Logger().Debug("surface lost, reconfiguring", "error", err)
			if rerr := d.surface.Reconfigure(); rerr != nil {
				d.stats.Failed++
				return fmt.Errorf("reconfigure lost surface: %w", rerr)
			}
			return nil
		}
		d.stats.Failed++
		return fmt.Errorf("begin frame: %w", err)
	}

	if p := d.source.ActivePipeline(); p != nil {
		if d.surface.DrawFullscreen(p) {
			d.stats.Draws++
		}
	}

	if err := d.surface.EndFrame(); err != nil {
		d.stats.Failed++
		return fmt.Errorf("end frame: %w", err)
	}
	d.transition(FrameStateSubmitted)

	d.surface.Present()
	d.stats.Presented++
	d.transition(FrameStatePresented)
	return nil
}

func (d *driver) State() FrameState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *driver) Stats() FrameStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}
