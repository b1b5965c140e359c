package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWindowOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("backdrop"),
		WithWidth(640),
		WithHeight(360),
		WithSizeLimits(100, 50, 0, 0),
		WithFullscreen(true),
	)

	assert.Equal(t, "backdrop", w.title)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 360, w.Height())
	assert.Equal(t, 100, w.minWidth)
	assert.Equal(t, 50, w.minHeight)
	assert.Zero(t, w.maxWidth)
	assert.True(t, w.fullscreen)
	assert.False(t, w.IsRunning())
}

func TestResizedNotifiesOnChange(t *testing.T) {
	w := newEngineWindow(WithWidth(10), WithHeight(10))
	var got [][2]int
	w.SetResizeCallback(func(width, height int) { got = append(got, [2]int{width, height}) })

	w.resized(10, 10)
	w.resized(20, 15)
	w.resized(0, 0)

	assert.Equal(t, [][2]int{{20, 15}, {0, 0}}, got)
	assert.Equal(t, 0, w.Width())
}

func TestPointerMovedScales(t *testing.T) {
	w := newEngineWindow()
	w.pointerMoved(1, 1, 2)

	var x, y float32
	w.SetPointerMoveCallback(func(px, py float32) { x, y = px, py })
	w.pointerMoved(10, 20, 2)
	assert.Equal(t, float32(20), x)
	assert.Equal(t, float32(40), y)

	w.pointerMoved(10, 20, 0)
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(20), y)
}

func TestTickForwardsTimestamp(t *testing.T) {
	w := newEngineWindow()
	w.tick(1)

	var stamps []float64
	w.SetUpdateCallback(func(ms float64) { stamps = append(stamps, ms) })
	w.tick(16.6)
	w.tick(33.3)
	assert.Equal(t, []float64{16.6, 33.3}, stamps)
}
