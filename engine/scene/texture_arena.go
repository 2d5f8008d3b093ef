package scene

import (
	"encoding/binary"
	"math"
)

// TextureArena is the append-only texel array shared by every texture of a scene.
// Each appended texture occupies a contiguous range that is never moved or overwritten.
type TextureArena struct {
	texels      []byte
	count       int
	descriptors []TextureDescriptor
}

// NewTextureArena creates an arena with room for the given number of texels.
//
// Parameters:
//   - capacity: the expected total texel count
//
// Returns:
//   - *TextureArena: the empty arena
func NewTextureArena(capacity int) *TextureArena {
	return &TextureArena{texels: make([]byte, 0, capacity*TexelSize)}
}

// Append copies the texels of t to the end of the arena.
//
// Parameters:
//   - t: the texture to append
//
// Returns:
//   - TextureDescriptor: the texture's dimensions and its offset, the arena length before the append
func (a *TextureArena) Append(t *Texture) TextureDescriptor {
	d := TextureDescriptor{Width: t.Width, Height: t.Height, Offset: uint32(a.count)}
	var texel [TexelSize]byte
	for _, p := range t.Pixels {
		binary.LittleEndian.PutUint32(texel[0:], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(texel[4:], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(texel[8:], math.Float32bits(p[2]))
		a.texels = append(a.texels, texel[:]...)
	}
	a.count += len(t.Pixels)
	a.descriptors = append(a.descriptors, d)
	return d
}

// Len returns the number of texels in the arena.
//
// Returns:
//   - int: the texel count
func (a *TextureArena) Len() int {
	return a.count
}

// Bytes returns the serialized texels.
//
// Returns:
//   - []byte: the arena contents, TexelSize bytes per texel
func (a *TextureArena) Bytes() []byte {
	return a.texels
}

// Descriptors returns the descriptors handed out so far, in append order.
//
// Returns:
//   - []TextureDescriptor: the descriptors
func (a *TextureArena) Descriptors() []TextureDescriptor {
	return a.descriptors
}
