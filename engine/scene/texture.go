package scene

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture is a row-major grid of linear RGB texels, top row first.
// A texture is owned by the material that references it.
type Texture struct {
	// Width is the number of texels per row.
	Width uint32

	// Height is the number of rows.
	Height uint32

	// Pixels holds Width*Height texels.
	Pixels [][3]float32
}

// NewTextureFromColor creates a 1x1 texture holding a single color.
//
// Parameters:
//   - color: the RGB value of the only texel
//
// Returns:
//   - *Texture: the new texture
func NewTextureFromColor(color mgl32.Vec3) *Texture {
	return &Texture{
		Width:  1,
		Height: 1,
		Pixels: [][3]float32{{color.X(), color.Y(), color.Z()}},
	}
}

// NewTextureFromImage decodes an image file into a texture with channels mapped to [0, 1].
// PNG, JPEG, GIF, BMP, TIFF and WebP files are supported.
//
// Parameters:
//   - path: the image file to load
//
// Returns:
//   - *Texture: the new texture
//   - error: an error if the file cannot be opened or decoded
func NewTextureFromImage(path string) (*Texture, error) {
	return NewTextureFromScaledImage(path, 1)
}

// NewTextureFromScaledImage decodes an image file into a texture and multiplies every channel by scale.
// Emissive materials use the scale to push texel values above 1.
//
// Parameters:
//   - path: the image file to load
//   - scale: the multiplier applied to every channel after normalization
//
// Returns:
//   - *Texture: the new texture
//   - error: an error if the file cannot be opened or decoded
func NewTextureFromScaledImage(path string, scale float32) (*Texture, error) {
	img, err := DecodeImage(path)
	if err != nil {
		return nil, err
	}
	return NewTextureFromDecodedImage(img, scale), nil
}

// DecodeImage opens and decodes an image file.
//
// Parameters:
//   - path: the image file to load
//
// Returns:
//   - image.Image: the decoded image
//   - error: an error if the file cannot be opened or decoded
func DecodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return img, nil
}

// FitImage downscales an image so that its longest edge is at most maxEdge, keeping the aspect ratio.
// Images already within bounds, or a non-positive maxEdge, return the input unchanged.
//
// Parameters:
//   - img: the source image
//   - maxEdge: the maximum width or height in pixels
//
// Returns:
//   - image.Image: the fitted image
func FitImage(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}
	if w >= h {
		h = max(1, h*maxEdge/w)
		w = maxEdge
	} else {
		w = max(1, w*maxEdge/h)
		h = maxEdge
	}
	return transform.Resize(img, w, h, transform.Linear)
}

// NewTextureFromDecodedImage converts a decoded image into a texture.
// Each channel becomes scale*value/255 using the 8-bit value of the pixel.
//
// Parameters:
//   - img: the decoded image
//   - scale: the multiplier applied to every channel after normalization
//
// Returns:
//   - *Texture: the new texture
func NewTextureFromDecodedImage(img image.Image, scale float32) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	t := &Texture{
		Width:  uint32(w),
		Height: uint32(h),
		Pixels: make([][3]float32, 0, w*h),
	}
	k := scale / 255
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			t.Pixels = append(t.Pixels, [3]float32{
				float32(r>>8) * k,
				float32(g>>8) * k,
				float32(bl>>8) * k,
			})
		}
	}
	return t
}

// TexelCount returns the number of texels the texture contributes to the arena.
//
// Returns:
//   - int: the pixel count
func (t *Texture) TexelCount() int {
	return len(t.Pixels)
}

// validate checks that the pixel grid matches the declared dimensions.
func (t *Texture) validate() error {
	if t == nil {
		return fmt.Errorf("%w: texture is nil", ErrTextureSize)
	}
	if uint64(len(t.Pixels)) != uint64(t.Width)*uint64(t.Height) {
		return fmt.Errorf("%w: %dx%d texture has %d pixels", ErrTextureSize, t.Width, t.Height, len(t.Pixels))
	}
	return nil
}
