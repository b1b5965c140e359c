package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
)

// Sample is one reporting window of frame and memory statistics.
type Sample struct {
	FPS         float64
	Frames      int
	Skipped     int
	Failed      int
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, skipped and failed frames and memory statistics.
// Outputs stats through the shared logger at a configurable interval while enabled.
type Profiler struct {
	mu *sync.Mutex

	enabled        bool
	frameCount     int
	skipped        int
	failed         int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Sample

	now func() time.Time
}

// NewProfiler creates a new, disabled Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// SetEnabled turns reporting on or off. Enabling starts a fresh window.
//
// Parameters:
//   - enabled: true to report
func (p *Profiler) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if enabled && !p.enabled {
		p.resetWindow(p.now())
	}
	p.enabled = enabled
}

// Enabled reports whether the profiler is reporting.
//
// Returns:
//   - bool: true when enabled
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// RecordSkip counts a frame skipped to recover the surface.
func (p *Profiler) RecordSkip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

// RecordFailure counts a frame that failed with an error.
func (p *Profiler) RecordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
}

// Last returns the most recently reported sample.
//
// Returns:
//   - Sample: the last sample, zero before the first report
func (p *Profiler) Last() Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when enabled and the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return false
	}

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	s := Sample{
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Frames:  p.frameCount,
		Skipped: p.skipped,
		Failed:  p.failed,
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc only grows (churn), Sys is the process footprint.
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	s.GCCount = p.memStats.NumGC
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	common.Logger().Info("profiler",
		"fps", s.FPS,
		"skipped", s.Skipped,
		"failed", s.Failed,
		"heapMB", s.HeapMB,
		"allocRateMBps", s.AllocRateMB,
		"gc", s.GCCount,
		"lastPauseUs", s.LastPauseUs,
		"maxPauseUs", s.MaxPauseUs,
		"sysMB", s.SysMB)

	p.last = s
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.resetWindow(currentTime)
	return true
}

// resetWindow starts a new reporting window. The caller must hold p.mu.
func (p *Profiler) resetWindow(t time.Time) {
	p.frameCount = 0
	p.skipped = 0
	p.failed = 0
	p.lastTime = t
}
