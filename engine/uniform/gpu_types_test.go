package uniform

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestGPUFrameUniformSize(t *testing.T) {
	var u GPUFrameUniform
	assert.Equal(t, GPUFrameUniformSize, u.Size())
}

func TestGPUFrameUniformMarshal(t *testing.T) {
	u := NewGPUFrameUniform(1.5, [2]float32{10, 20}, [2]float32{800, 600})
	buf := u.Marshal()
	require.Len(t, buf, GPUFrameUniformSize)

	assert.Equal(t, float32(1.5), readF32(buf, TimeOffset))
	assert.Equal(t, float32(10), readF32(buf, PointerOffset))
	assert.Equal(t, float32(20), readF32(buf, PointerOffset+4))
	assert.Equal(t, float32(800), readF32(buf, ResolutionOffset))
	assert.Equal(t, float32(600), readF32(buf, ResolutionOffset+4))

	for _, pad := range [][2]int{{4, 16}, {24, 32}, {40, 48}} {
		for i := pad[0]; i < pad[1]; i++ {
			assert.Zerof(t, buf[i], "padding byte %d", i)
		}
	}
}

func TestGPUFrameUniformSourceDeclaresStruct(t *testing.T) {
	assert.Contains(t, GPUFrameUniformSource, "struct FrameUniform")
	assert.Contains(t, GPUFrameUniformSource, "resolution: vec2<f32>")
}
