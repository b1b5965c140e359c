package engine

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/console"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/profiler"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/uniform"
)

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *renderertest.Backend) {
	t.Helper()
	backend := renderertest.NewBackend()
	options = append([]EngineBuilderOption{
		WithSize(640, 480),
		WithRendererOptions(renderer.WithBackend(backend)),
	}, options...)
	e, err := NewEngine(options...)
	require.NoError(t, err)
	return e.(*engine), backend
}

func timeOf(t *testing.T, backend *renderertest.Backend) float32 {
	t.Helper()
	w, ok := backend.LastWrite()
	require.True(t, ok)
	return math.Float32frombits(binary.LittleEndian.Uint32(w.Data[uniform.TimeOffset:]))
}

func TestNewEngineLoadsEmbeddedLibrary(t *testing.T) {
	e, backend := newTestEngine(t)

	assert.Equal(t, []string{"default", "fire", "ice", "plasma"}, e.ListShaders())
	assert.Equal(t, "default", e.ActiveShader())
	assert.Len(t, backend.Registered, 4)
	assert.Equal(t, [][2]int{{640, 480}}, backend.Configures)
}

func TestNewEngineRejectsLibraryWithoutVertexStage(t *testing.T) {
	backend := renderertest.NewBackend()
	_, err := NewEngine(
		WithRendererOptions(renderer.WithBackend(backend)),
		WithShaders([]shader.Entry{{Name: "fire", Source: "@fragment fn fs_main() {}"}}),
	)
	require.Error(t, err)
	assert.True(t, backend.Released)
}

func TestOnTickDrawsActiveShaderOncePerFrame(t *testing.T) {
	e, backend := newTestEngine(t)

	e.OnTick(1000)
	e.OnTick(1016)

	require.Len(t, backend.Draws, 2)
	assert.Equal(t, "default", backend.Draws[1].Pipeline)
	assert.Equal(t, 2, backend.Presents)
	assert.Equal(t, uint64(2), e.Stats().Presented)
}

func TestOnTickMeasuresTimeFromFirstTick(t *testing.T) {
	e, backend := newTestEngine(t)

	e.OnTick(5000)
	assert.Equal(t, float32(0), timeOf(t, backend))

	e.OnTick(7500)
	assert.InDelta(t, 2.5, timeOf(t, backend), 1e-6)
}

func TestSwitchingShaderChangesNextDraw(t *testing.T) {
	e, backend := newTestEngine(t)

	require.True(t, e.SelectShader("fire"))
	e.OnTick(0)
	assert.Equal(t, "fire", backend.Draws[0].Pipeline)

	assert.False(t, e.SelectShader("missing"))
	assert.Equal(t, "fire", e.ActiveShader())
	assert.False(t, e.SelectShader("fire"))

	assert.Equal(t, "ice", e.NextShader())
	assert.Equal(t, "fire", e.PreviousShader())
}

func TestOnResizeUpdatesResolution(t *testing.T) {
	e, backend := newTestEngine(t)

	e.OnResize(1024, 768)
	e.OnResize(0, 768)
	assert.Equal(t, [2]float32{1024, 768}, e.Renderer().Resolution())
	assert.Equal(t, 2, backend.ConfigureCount())
}

func TestOnPointerMoveFeedsNextUpdate(t *testing.T) {
	e, backend := newTestEngine(t)

	e.OnPointerMove(12, 34)
	e.OnTick(0)

	w, _ := backend.LastWrite()
	assert.Equal(t, float32(12), math.Float32frombits(binary.LittleEndian.Uint32(w.Data[uniform.PointerOffset:])))
	assert.Equal(t, float32(34), math.Float32frombits(binary.LittleEndian.Uint32(w.Data[uniform.PointerOffset+4:])))
}

func TestKeysSelectShaders(t *testing.T) {
	e, _ := newTestEngine(t)

	e.onKeyDown(common.KeyN)
	assert.Equal(t, "fire", e.ActiveShader())
	e.onKeyDown(common.KeyRight)
	assert.Equal(t, "ice", e.ActiveShader())
	e.onKeyDown(common.KeyLeft)
	assert.Equal(t, "fire", e.ActiveShader())
	e.onKeyDown(common.KeyP)
	assert.Equal(t, "default", e.ActiveShader())
	e.onKeyDown(common.KeyP)
	assert.Equal(t, "plasma", e.ActiveShader())

	e.onKeyDown(common.Key3)
	assert.Equal(t, "ice", e.ActiveShader())
	e.onKeyDown(common.Key9)
	assert.Equal(t, "ice", e.ActiveShader())
}

func TestPauseHoldsTime(t *testing.T) {
	e, backend := newTestEngine(t)

	e.OnTick(0)
	e.OnTick(1000)
	e.onKeyDown(common.KeySpace)
	e.OnTick(3000)
	assert.InDelta(t, 1.0, timeOf(t, backend), 1e-6)

	e.onKeyDown(common.KeySpace)
	e.OnTick(4000)
	assert.InDelta(t, 1.0, timeOf(t, backend), 1e-6)
	e.OnTick(4500)
	assert.InDelta(t, 1.5, timeOf(t, backend), 1e-6)
}

func TestResetKeyRestartsTime(t *testing.T) {
	e, backend := newTestEngine(t)

	e.OnTick(0)
	e.OnTick(2000)
	e.onKeyDown(common.KeyR)
	e.OnTick(2500)
	assert.Equal(t, float32(0), timeOf(t, backend))
}

func TestSubmittedCommandsRunOnNextTick(t *testing.T) {
	type output struct {
		line string
		res  console.Result
	}
	var got []output
	e, backend := newTestEngine(t, WithCommandOutput(func(line string, res console.Result, err error) {
		require.NoError(t, err)
		got = append(got, output{line, res})
	}))

	require.True(t, e.Submit("shader plasma"))
	assert.Equal(t, "default", e.ActiveShader())

	e.OnTick(0)
	require.Len(t, got, 1)
	assert.Equal(t, "Shader set to: plasma", got[0].res.Output)
	assert.Equal(t, "plasma", backend.Draws[0].Pipeline)
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	e, _ := newTestEngine(t, WithCommandBuffer(1))

	assert.True(t, e.Submit("next"))
	assert.False(t, e.Submit("next"))
}

func TestExecuteTogglesProfiler(t *testing.T) {
	p := profiler.NewProfiler()
	e, _ := newTestEngine(t, WithProfiler(p))

	res, err := e.Execute("profile on")
	require.NoError(t, err)
	assert.Equal(t, "Profiling enabled", res.Output)
	assert.True(t, p.Enabled())
}

func TestFailedFrameIsCountedAndNextFrameRenders(t *testing.T) {
	e, backend := newTestEngine(t)

	backend.FailBeginFrame = errors.New("device lost")
	e.OnTick(0)
	e.OnTick(16)

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Equal(t, uint64(1), stats.Presented)
}

func TestLostSurfaceSkipsAndReconfigures(t *testing.T) {
	e, backend := newTestEngine(t)

	backend.FailBeginFrame = renderer.ErrSurfaceLost
	e.OnTick(0)

	assert.Equal(t, uint64(1), e.Stats().Skipped)
	assert.Equal(t, 2, backend.ConfigureCount())
	assert.Equal(t, uint64(1), e.lastSkipped)
}

func TestQuitReleasesOnNextTick(t *testing.T) {
	e, backend := newTestEngine(t)

	e.Quit()
	e.Quit()
	e.OnTick(0)
	e.OnTick(16)

	assert.True(t, backend.Released)
	assert.Equal(t, 0, backend.DrawCount())
}

func TestRunWithoutWindow(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.ErrorIs(t, e.Run(), ErrNoWindow)
}
