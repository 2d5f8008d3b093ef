package sky

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUSkyStateSource is the WGSL definition of the SkyState struct.
// Matches GPUSkyState layout exactly (144 bytes).
//
//go:embed assets/sky_state.wgsl
var GPUSkyStateSource string

// GPUSkyState is the GPU representation of a cooked sky.
// Size: 144 bytes.
type GPUSkyState struct {
	Params       [27]float32 // offset   0: 9 distribution parameters per channel
	Radiances    [3]float32  // offset 108: radiance scale per channel
	_pad         [2]uint32   // offset 120: padding to the vec4 boundary
	SunDirection [4]float32  // offset 128: unit sun direction, w = 0
}

// Size returns the size of the GPUSkyState struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUSkyState) Size() int {
	return 144
}

// Marshal serializes the GPUSkyState struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSkyState) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 27 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Params[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[108+i*4:], math.Float32bits(g.Radiances[i]))
	}
	binary.LittleEndian.PutUint32(buf[120:], 0) // _pad
	binary.LittleEndian.PutUint32(buf[124:], 0) // _pad
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.SunDirection[i]))
	}
	return buf
}
