package camera

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraSource is the canonical WGSL definition of the Camera struct.
// Matches GPUCamera layout exactly (96 bytes, WGSL aligned).
//
//go:embed assets/camera.wgsl
var GPUCameraSource string

// GPUCamera is the GPU representation of the primary ray generator.
// Size: 96 bytes (WGSL aligned).
type GPUCamera struct {
	Eye             [3]float32 // offset  0
	_pad0           float32    // offset 12
	Horizontal      [3]float32 // offset 16: full image plane width vector
	_pad1           float32    // offset 28
	Vertical        [3]float32 // offset 32: full image plane height vector
	_pad2           float32    // offset 44
	U               [3]float32 // offset 48: camera right
	_pad3           float32    // offset 60
	V               [3]float32 // offset 64: camera up
	LensRadius      float32    // offset 76: shares the vec3 slot tail
	LowerLeftCorner [3]float32 // offset 80
	_pad4           float32    // offset 92
}

// NewGPUCamera derives the primary ray generator for a lens, a pose and a viewport aspect ratio.
//
// Parameters:
//   - lens: the projection settings
//   - transform: the camera pose
//   - aspect: viewport width divided by height
//
// Returns:
//   - GPUCamera: the camera record
func NewGPUCamera(lens Lens, transform Transform, aspect float32) GPUCamera {
	forward, u, v := transform.Orientation()
	w := forward.Mul(-1)

	h := math32.Tan(mgl32.DegToRad(lens.VfovDegrees) / 2)
	height := 2 * h
	width := aspect * height

	focus := lens.FocusDistance()
	horizontal := u.Mul(focus * width)
	vertical := v.Mul(focus * height)
	eye := transform.Position
	lowerLeft := eye.Sub(horizontal.Mul(0.5)).Sub(vertical.Mul(0.5)).Sub(w.Mul(focus))

	return GPUCamera{
		Eye:             eye,
		Horizontal:      horizontal,
		Vertical:        vertical,
		U:               u,
		V:               v,
		LensRadius:      lens.LensRadius(),
		LowerLeftCorner: lowerLeft,
	}
}

// Size returns the size of the GPUCamera struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUCamera) Size() int {
	return 96
}

// Marshal serializes the GPUCamera struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCamera) Marshal() []byte {
	buf := make([]byte, g.Size())
	putVec3 := func(off int, v [3]float32) {
		for i := range 3 {
			binary.LittleEndian.PutUint32(buf[off+i*4:], math.Float32bits(v[i]))
		}
	}
	putVec3(0, g.Eye)
	putVec3(16, g.Horizontal)
	putVec3(32, g.Vertical)
	putVec3(48, g.U)
	putVec3(64, g.V)
	binary.LittleEndian.PutUint32(buf[76:], math.Float32bits(g.LensRadius))
	putVec3(80, g.LowerLeftCorner)
	return buf
}
