// Package sampling tracks how many samples per pixel have been folded into the
// accumulation buffer and produces the per-frame sampling descriptor for the kernel.
package sampling

// Params describes the sampling budget of a progressive render.
type Params struct {
	// MaxSamplesPerPixel is the total number of samples a pixel receives before the render is complete.
	MaxSamplesPerPixel uint32 `toml:"max_samples_per_pixel"`

	// NumSamplesPerPixel is the number of samples taken per pixel on each frame.
	NumSamplesPerPixel uint32 `toml:"num_samples_per_pixel"`

	// NumBounces is the maximum path depth of a single sample.
	NumBounces uint32 `toml:"num_bounces"`
}

// DefaultParams returns the default sampling budget: 256 samples total, one per frame, 8 bounces.
//
// Returns:
//   - Params: the default sampling parameters
func DefaultParams() Params {
	return Params{
		MaxSamplesPerPixel: 256,
		NumSamplesPerPixel: 1,
		NumBounces:         8,
	}
}
