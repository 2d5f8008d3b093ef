package scene

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32At(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(u32At(buf, off))
}

func solid(w, h uint32, v float32) *Texture {
	t := &Texture{Width: w, Height: h}
	for range w * h {
		t.Pixels = append(t.Pixels, [3]float32{v, v, v})
	}
	return t
}

func TestNewScene_Validation(t *testing.T) {
	mats := WithMaterials(&Dielectric{RefractionIndex: 1.5})

	_, err := NewScene(mats, WithSpheres(Sphere{Radius: 1, MaterialIdx: 1}))
	assert.ErrorIs(t, err, ErrMaterialIndexOutOfRange)

	_, err = NewScene(mats, WithSpheres(Sphere{Radius: 0}))
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = NewScene(WithMaterials(nil))
	assert.ErrorIs(t, err, ErrNilMaterial)

	for _, m := range []Material{(*Lambertian)(nil), (*Metal)(nil), (*Dielectric)(nil), (*Checkerboard)(nil), (*Emissive)(nil)} {
		_, err = NewScene(WithMaterials(m), WithSpheres(Sphere{Radius: 1}))
		assert.ErrorIs(t, err, ErrNilMaterial, "%T", m)
	}

	s, err := NewScene(WithName("ok"), mats, WithSpheres(Sphere{Radius: 1}))
	require.NoError(t, err)
	assert.Equal(t, "ok", s.Name())
	assert.Len(t, s.Spheres(), 1)
	assert.Len(t, s.Materials(), 1)
}

func TestEncode_TextureOffsetsAndLights(t *testing.T) {
	s, err := NewScene(
		WithMaterials(
			&Lambertian{Albedo: NewTextureFromColor(mgl32.Vec3{0.1, 0.2, 0.3})},
			&Checkerboard{Even: NewTextureFromColor(mgl32.Vec3{1, 1, 1}), Odd: solid(2, 3, 0.5)},
			&Emissive{Emit: NewTextureFromColor(mgl32.Vec3{4, 4, 4})},
		),
		WithSpheres(
			Sphere{Center: mgl32.Vec3{0, -100, 0}, Radius: 100, MaterialIdx: 1},
			Sphere{Center: mgl32.Vec3{0, 1, 0}, Radius: 1, MaterialIdx: 2},
			Sphere{Center: mgl32.Vec3{2, 1, 0}, Radius: 1, MaterialIdx: 0},
			Sphere{Center: mgl32.Vec3{4, 1, 0}, Radius: 1, MaterialIdx: 2},
		),
	)
	require.NoError(t, err)

	enc, err := s.Encode()
	require.NoError(t, err)

	assert.Equal(t, 4, enc.SphereCount)
	assert.Equal(t, 3, enc.MaterialCount)
	assert.Equal(t, 1+1+6+1, enc.TexelCount)
	assert.Len(t, enc.Textures, enc.TexelCount*TexelSize)
	assert.Len(t, enc.Spheres, 4*32)
	assert.Len(t, enc.Materials, 3*32)

	require.Len(t, enc.Descriptors, 4)
	assert.Equal(t, TextureDescriptor{Width: 1, Height: 1, Offset: 0}, enc.Descriptors[0])
	assert.Equal(t, TextureDescriptor{Width: 1, Height: 1, Offset: 1}, enc.Descriptors[1])
	assert.Equal(t, TextureDescriptor{Width: 2, Height: 3, Offset: 2}, enc.Descriptors[2])
	assert.Equal(t, TextureDescriptor{Width: 1, Height: 1, Offset: 8}, enc.Descriptors[3])

	// checkerboard record: even in desc1, odd in desc2
	m := enc.Materials[32:64]
	assert.Equal(t, uint32(MaterialTypeCheckerboard), u32At(m, 0))
	assert.Equal(t, uint32(1), u32At(m, 12))
	assert.Equal(t, uint32(2), u32At(m, 16))
	assert.Equal(t, uint32(3), u32At(m, 20))
	assert.Equal(t, uint32(2), u32At(m, 24))

	assert.Equal(t, []uint32{1, 3}, enc.Lights)
	require.Len(t, enc.LightIndices, 8)
	assert.Equal(t, uint32(1), u32At(enc.LightIndices, 0))
	assert.Equal(t, uint32(3), u32At(enc.LightIndices, 4))

	// first texel of the lambertian albedo
	assert.Equal(t, float32(0.1), f32At(enc.Textures, 0))
	assert.Equal(t, float32(0.3), f32At(enc.Textures, 8))
	// first texel of the emissive texture
	assert.Equal(t, float32(4), f32At(enc.Textures, 8*TexelSize))
}

func TestEncode_DielectricHasNoTextures(t *testing.T) {
	s, err := NewScene(
		WithMaterials(&Dielectric{RefractionIndex: 1.5}, &Metal{Albedo: NewTextureFromColor(mgl32.Vec3{1, 0.85, 0.57}), Fuzz: 0.4}),
		WithSpheres(Sphere{Radius: 1, MaterialIdx: 0}, Sphere{Radius: 2, MaterialIdx: 1}),
	)
	require.NoError(t, err)

	enc, err := s.Encode()
	require.NoError(t, err)

	d := enc.Materials[:32]
	assert.Equal(t, uint32(MaterialTypeDielectric), u32At(d, 0))
	for _, off := range []int{4, 16} {
		assert.Equal(t, uint32(0), u32At(d, off))
		assert.Equal(t, uint32(0), u32At(d, off+4))
		assert.Equal(t, uint32(0xffffffff), u32At(d, off+8))
	}
	assert.Equal(t, float32(1.5), f32At(d, 28))

	metal := enc.Materials[32:]
	assert.Equal(t, uint32(MaterialTypeMetal), u32At(metal, 0))
	assert.Equal(t, uint32(0), u32At(metal, 12))
	assert.Equal(t, float32(0.4), f32At(metal, 28))

	assert.Equal(t, 1, enc.TexelCount)
	assert.Empty(t, enc.Lights)
	assert.Empty(t, enc.LightIndices)
}

func TestEncode_SphereRecord(t *testing.T) {
	s, err := NewScene(
		WithMaterials(&Dielectric{RefractionIndex: 1.5}),
		WithSpheres(Sphere{Center: mgl32.Vec3{1, 2, 3}, Radius: 0.5}),
	)
	require.NoError(t, err)

	enc, err := s.Encode()
	require.NoError(t, err)

	assert.Equal(t, float32(1), f32At(enc.Spheres, 0))
	assert.Equal(t, float32(3), f32At(enc.Spheres, 8))
	assert.Equal(t, float32(1), f32At(enc.Spheres, 12))
	assert.Equal(t, float32(0.5), f32At(enc.Spheres, 16))
	assert.Equal(t, uint32(0), u32At(enc.Spheres, 20))
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(enc.Spheres[24:]))
}

func TestEncode_MalformedTexture(t *testing.T) {
	s, err := NewScene(
		WithMaterials(&Lambertian{Albedo: &Texture{Width: 2, Height: 2, Pixels: make([][3]float32, 3)}}),
	)
	require.NoError(t, err)

	_, err = s.Encode()
	assert.ErrorIs(t, err, ErrTextureSize)

	s, err = NewScene(WithMaterials(&Emissive{}))
	require.NoError(t, err)
	_, err = s.Encode()
	assert.ErrorIs(t, err, ErrTextureSize)
}

type rogueMaterial struct{ Material }

func TestEncode_UnknownVariantPanics(t *testing.T) {
	s, err := NewScene(WithMaterials(rogueMaterial{}))
	require.NoError(t, err)
	assert.Panics(t, func() { _, _ = s.Encode() })
}

func TestTextureArena_RangesDoNotMove(t *testing.T) {
	a := NewTextureArena(0)
	first := a.Append(solid(2, 2, 1))
	before := append([]byte(nil), a.Bytes()...)
	second := a.Append(solid(1, 3, 2))

	assert.Equal(t, uint32(0), first.Offset)
	assert.Equal(t, uint32(4), second.Offset)
	assert.Equal(t, 7, a.Len())
	assert.Equal(t, before, a.Bytes()[:len(before)])
}

func TestNewTextureFromDecodedImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 51, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 255, B: 0, A: 255})

	tex := NewTextureFromDecodedImage(img, 2)
	require.Equal(t, uint32(2), tex.Width)
	require.Equal(t, uint32(1), tex.Height)
	require.Len(t, tex.Pixels, 2)
	assert.InDelta(t, 2, tex.Pixels[0][0], 1e-6)
	assert.InDelta(t, 0.4, tex.Pixels[0][2], 1e-6)
	assert.InDelta(t, 2, tex.Pixels[1][1], 1e-6)
}

func TestFitImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))

	fitted := FitImage(img, 16)
	assert.Equal(t, 16, fitted.Bounds().Dx())
	assert.Equal(t, 8, fitted.Bounds().Dy())

	assert.Same(t, img, FitImage(img, 128))
	assert.Same(t, img, FitImage(img, 0))
}

func TestMaterialType_String(t *testing.T) {
	assert.Equal(t, "checkerboard", (&Checkerboard{}).Type().String())
	assert.Equal(t, "unknown", MaterialType(99).String())
}
