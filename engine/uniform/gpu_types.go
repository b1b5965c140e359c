package uniform

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFrameUniformSize is the size in bytes of the per-frame uniform block shared by every fragment shader.
const GPUFrameUniformSize = 48

// Field offsets inside the marshalled GPUFrameUniform. Every field starts on a 16-byte boundary.
const (
	TimeOffset       = 0
	PointerOffset    = 16
	ResolutionOffset = 32
)

// GPUFrameUniformSource is the canonical WGSL definition of the FrameUniform struct.
// Matches GPUFrameUniform layout exactly (48 bytes, every field 16-byte aligned).
//
//go:embed assets/frame_uniform.wgsl
var GPUFrameUniformSource string

// GPUFrameUniform is the GPU-aligned representation of the per-frame uniform buffer.
// Matches the WGSL FrameUniform struct layout exactly (see GPUFrameUniformSource).
// Size: 48 bytes.
type GPUFrameUniform struct {
	Time       float32    // offset  0: seconds since the first frame (f32)
	_pad0      [3]float32 // offset  4: padding to 16
	Pointer    [2]float32 // offset 16: pointer position in surface pixels (vec2<f32>)
	_pad1      [2]float32 // offset 24: padding to 32
	Resolution [2]float32 // offset 32: surface width and height in pixels (vec2<f32>)
	_pad2      [2]float32 // offset 40: padding to 48
}

// NewGPUFrameUniform builds a GPUFrameUniform from its three meaningful fields.
//
// Parameters:
//   - time: elapsed time in seconds
//   - pointer: pointer position in pixels
//   - resolution: surface size in pixels
//
// Returns:
//   - GPUFrameUniform: the populated payload with zeroed padding
func NewGPUFrameUniform(time float32, pointer, resolution [2]float32) GPUFrameUniform {
	return GPUFrameUniform{
		Time:       time,
		Pointer:    pointer,
		Resolution: resolution,
	}
}

// Size returns the size of the GPUFrameUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUFrameUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniform struct into a byte buffer suitable for GPU upload.
// Padding bytes are always zero.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, GPUFrameUniformSize)
	binary.LittleEndian.PutUint32(buf[TimeOffset:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[PointerOffset:], math.Float32bits(g.Pointer[0]))
	binary.LittleEndian.PutUint32(buf[PointerOffset+4:], math.Float32bits(g.Pointer[1]))
	binary.LittleEndian.PutUint32(buf[ResolutionOffset:], math.Float32bits(g.Resolution[0]))
	binary.LittleEndian.PutUint32(buf[ResolutionOffset+4:], math.Float32bits(g.Resolution[1]))
	return buf
}
