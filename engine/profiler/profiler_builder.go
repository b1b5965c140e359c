package profiler

import "time"

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are reported. Non-positive values keep the 1 second default.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a Profiler
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithEnabled sets whether the profiler starts reporting immediately.
//
// Parameters:
//   - enabled: true to report from the first tick
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the enabled option to a Profiler
func WithEnabled(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.enabled = enabled
	}
}

// WithClock replaces time.Now, for deterministic reporting windows.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the clock option to a Profiler
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
