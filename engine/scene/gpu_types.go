package scene

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUSphereSource is the WGSL definition of the Sphere struct.
// Matches GPUSphere layout exactly (32 bytes).
//
//go:embed assets/sphere.wgsl
var GPUSphereSource string

// GPUTextureDescriptorSource is the WGSL definition of the TextureDescriptor struct.
// Matches TextureDescriptor layout exactly (12 bytes).
//
//go:embed assets/texture_descriptor.wgsl
var GPUTextureDescriptorSource string

// GPUMaterialSource is the WGSL definition of the Material struct.
// Depends on TextureDescriptor. Matches GPUMaterial layout exactly (32 bytes).
//
//go:embed assets/material.wgsl
var GPUMaterialSource string

// GPUTexelSource is the WGSL definition of the Texel struct, one element of the texture arena.
// Matches a [3]float32 texel exactly (12 bytes).
//
//go:embed assets/texel.wgsl
var GPUTexelSource string

// TexelSize is the size in bytes of one texel in the arena buffer.
const TexelSize = 12

// LightSize is the size in bytes of one light index in the lights buffer.
const LightSize = 4

// emptyTextureOffset marks a descriptor that references no texels.
const emptyTextureOffset = 0xffffffff

// TextureDescriptor locates one texture inside the texel arena.
// Size: 12 bytes.
type TextureDescriptor struct {
	Width  uint32 // offset 0
	Height uint32 // offset 4
	Offset uint32 // offset 8: index of the first texel in the arena
}

// EmptyTextureDescriptor is the descriptor of a material slot that has no texture.
var EmptyTextureDescriptor = TextureDescriptor{Width: 0, Height: 0, Offset: emptyTextureOffset}

// IsEmpty reports whether the descriptor references no texels.
//
// Returns:
//   - bool: true for EmptyTextureDescriptor
func (d TextureDescriptor) IsEmpty() bool {
	return d == EmptyTextureDescriptor
}

// Size returns the size of the TextureDescriptor struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (12)
func (d *TextureDescriptor) Size() int {
	return 12
}

// Marshal serializes the TextureDescriptor struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (d *TextureDescriptor) Marshal() []byte {
	buf := make([]byte, d.Size())
	d.put(buf)
	return buf
}

func (d *TextureDescriptor) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], d.Width)
	binary.LittleEndian.PutUint32(buf[4:], d.Height)
	binary.LittleEndian.PutUint32(buf[8:], d.Offset)
}

// GPUSphere is the GPU representation of a sphere.
// Size: 32 bytes.
type GPUSphere struct {
	Center      [4]float32 // offset  0: xyz center, w = 1
	Radius      float32    // offset 16
	MaterialIdx uint32     // offset 20
	_pad        [2]uint32  // offset 24: padding to 32-byte struct alignment
}

// Size returns the size of the GPUSphere struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUSphere) Size() int {
	return 32
}

// Marshal serializes the GPUSphere struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSphere) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Center[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.Radius))
	binary.LittleEndian.PutUint32(buf[20:], g.MaterialIdx)
	binary.LittleEndian.PutUint32(buf[24:], 0) // _pad
	binary.LittleEndian.PutUint32(buf[28:], 0) // _pad
	return buf
}

// GPUMaterial is the GPU representation of a material.
// Size: 32 bytes.
type GPUMaterial struct {
	ID    MaterialType      // offset  0: kernel discriminant
	Desc1 TextureDescriptor // offset  4: albedo, even or emit texture
	Desc2 TextureDescriptor // offset 16: odd texture of a checkerboard
	X     float32           // offset 28: fuzz or refraction index
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUMaterial) Size() int {
	return 32
}

// Marshal serializes the GPUMaterial struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUMaterial) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], uint32(g.ID))
	g.Desc1.put(buf[4:])
	g.Desc2.put(buf[16:])
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.X))
	return buf
}
