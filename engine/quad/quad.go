// Package quad holds the full-screen quad the raytracing kernel is rasterized onto: its six
// vertices and the uniforms that stretch it over clip space.
package quad

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-rt/common"
)

// GPUVertexSource is the WGSL definition of the QuadVertex struct.
// Matches Vertex layout exactly (16 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUUniformsSource is the WGSL definition of the QuadUniforms struct.
// Matches Uniforms layout exactly (128 bytes).
//
//go:embed assets/uniforms.wgsl
var GPUUniformsSource string

// Vertex is one corner of the quad.
// Size: 16 bytes.
type Vertex struct {
	Position  [2]float32 // offset 0: xy in model space
	TexCoords [2]float32 // offset 8: uv, v grows downwards
}

// Vertices are the two counter-clockwise triangles of the unit quad centred at the origin.
var Vertices = [6]Vertex{
	{Position: [2]float32{-0.5, 0.5}, TexCoords: [2]float32{0, 0}},
	{Position: [2]float32{-0.5, -0.5}, TexCoords: [2]float32{0, 1}},
	{Position: [2]float32{0.5, -0.5}, TexCoords: [2]float32{1, 1}},
	{Position: [2]float32{-0.5, 0.5}, TexCoords: [2]float32{0, 0}},
	{Position: [2]float32{0.5, -0.5}, TexCoords: [2]float32{1, 1}},
	{Position: [2]float32{0.5, 0.5}, TexCoords: [2]float32{1, 0}},
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (v *Vertex) Size() int {
	return 16
}

// Marshal serializes the Vertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, v.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.TexCoords[0]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.TexCoords[1]))
	return buf
}

// VertexData serializes all quad vertices back to back.
//
// Returns:
//   - []byte: the vertex buffer contents
//   - int: the vertex count
func VertexData() ([]byte, int) {
	buf := make([]byte, 0, len(Vertices)*16)
	for i := range Vertices {
		buf = append(buf, Vertices[i].Marshal()...)
	}
	return buf, len(Vertices)
}

// Uniforms are the transforms applied to the quad in the vertex stage.
// Size: 128 bytes.
type Uniforms struct {
	ViewProjection [16]float32 // offset  0: column-major
	Model          [16]float32 // offset 64: column-major
}

// NewUniforms returns the uniforms that map the unit quad onto the full viewport.
//
// Returns:
//   - Uniforms: the unit quad projection with an identity model matrix
func NewUniforms() Uniforms {
	u := Uniforms{ViewProjection: common.UnitQuadProjection()}
	common.Identity(u.Model[:])
	return u
}

// Size returns the size of the Uniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (u *Uniforms) Size() int {
	return 128
}

// Marshal serializes the Uniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (u *Uniforms) Marshal() []byte {
	buf := make([]byte, u.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(u.ViewProjection[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(u.Model[i]))
	}
	return buf
}
