package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestDisabledProfilerNeverReports(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))

	clock.advance(5 * time.Second)
	assert.False(t, p.Enabled())
	assert.False(t, p.Tick())
	assert.Zero(t, p.Last())
}

func TestTickReportsAfterInterval(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(500*time.Millisecond), WithEnabled(true))

	for i := 0; i < 9; i++ {
		clock.advance(50 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	p.RecordSkip()
	p.RecordFailure()
	clock.advance(50 * time.Millisecond)
	assert.True(t, p.Tick())

	s := p.Last()
	assert.Equal(t, 10, s.Frames)
	assert.InDelta(t, 20.0, s.FPS, 0.001)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Contains(t, buf.String(), "msg=profiler")
	assert.Contains(t, buf.String(), "skipped=1")

	clock.advance(50 * time.Millisecond)
	assert.False(t, p.Tick())
}

func TestSetEnabledStartsFreshWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now))

	clock.advance(10 * time.Second)
	p.SetEnabled(true)
	assert.True(t, p.Enabled())
	clock.advance(100 * time.Millisecond)
	assert.False(t, p.Tick())

	clock.advance(time.Second)
	assert.True(t, p.Tick())
	assert.Equal(t, 2, p.Last().Frames)

	p.SetEnabled(false)
	assert.False(t, p.Tick())
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithInterval(-time.Second))
	assert.Equal(t, time.Second, p.updateInterval)
}
