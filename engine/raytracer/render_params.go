package raytracer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/sampling"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
)

var (
	ErrMaxSampleCountNotMultiple = errors.New("max samples per pixel is not a multiple of samples per pixel")
	ErrSamplingCount             = errors.New("max samples per pixel and bounces must be positive")
	ErrViewportSize              = errors.New("viewport size must be non-zero")
	ErrVfovOutOfRange            = errors.New("vertical field of view out of range [0, 90]")
	ErrApertureOutOfRange        = errors.New("aperture out of range [0, 1]")
	ErrFocusDistanceOutOfRange   = errors.New("focus distance must be non-negative")
	ErrSkyModel                  = errors.New("sky model rejected the sky parameters")
)

// RenderParams is everything a frame depends on besides the scene and the camera pose.
// Any change restarts the accumulation.
type RenderParams struct {
	Camera       camera.Lens     `toml:"camera"`
	Sky          sky.Params      `toml:"sky"`
	Sampling     sampling.Params `toml:"sampling"`
	ViewportSize [2]uint32       `toml:"-"`
}

// DefaultRenderParams returns a 70 degree pinhole camera under the default sky with the default sampling budget.
//
// Parameters:
//   - width: the viewport width in pixels
//   - height: the viewport height in pixels
//
// Returns:
//   - RenderParams: the default parameters for the given viewport
func DefaultRenderParams(width, height uint32) RenderParams {
	return RenderParams{
		Camera:       camera.Lens{VfovDegrees: 70},
		Sky:          sky.DefaultParams(),
		Sampling:     sampling.DefaultParams(),
		ViewportSize: [2]uint32{width, height},
	}
}

// Equal reports whether two parameter sets would produce the same image.
//
// Parameters:
//   - other: the parameters to compare with
//
// Returns:
//   - bool: true if every field matches by value
func (p RenderParams) Equal(other RenderParams) bool {
	return p.Camera.Equal(other.Camera) &&
		p.Sky == other.Sky &&
		p.Sampling == other.Sampling &&
		p.ViewportSize == other.ViewportSize
}

// Aspect returns the viewport width divided by its height, 1 for a degenerate viewport.
//
// Returns:
//   - float32: the aspect ratio
func (p RenderParams) Aspect() float32 {
	if p.ViewportSize[1] == 0 {
		return 1
	}
	return float32(p.ViewportSize[0]) / float32(p.ViewportSize[1])
}

// Validate checks the parameters in a fixed order and returns the first failure.
// A lens without depth of field is a pinhole camera, its aperture and focus checks are skipped.
//
// Parameters:
//   - model: the sky model used to cook the sky parameters
//
// Returns:
//   - error: nil, or one of the package sentinels wrapped with the offending values
func (p RenderParams) Validate(model sky.Model) error {
	_, err := p.validate(model)
	return err
}

// validate runs the checks of Validate and returns the sky state it cooked along the way.
func (p RenderParams) validate(model sky.Model) (sky.GPUSkyState, error) {
	s := p.Sampling
	if s.NumSamplesPerPixel == 0 || s.MaxSamplesPerPixel%s.NumSamplesPerPixel != 0 {
		return sky.GPUSkyState{}, fmt.Errorf("%w: max %d, per frame %d", ErrMaxSampleCountNotMultiple, s.MaxSamplesPerPixel, s.NumSamplesPerPixel)
	}
	if s.MaxSamplesPerPixel == 0 || s.NumBounces == 0 {
		return sky.GPUSkyState{}, fmt.Errorf("%w: max %d, bounces %d", ErrSamplingCount, s.MaxSamplesPerPixel, s.NumBounces)
	}

	if p.ViewportSize[0] == 0 || p.ViewportSize[1] == 0 {
		return sky.GPUSkyState{}, fmt.Errorf("%w: %dx%d", ErrViewportSize, p.ViewportSize[0], p.ViewportSize[1])
	}

	if p.Camera.VfovDegrees < 0 || p.Camera.VfovDegrees > 90 {
		return sky.GPUSkyState{}, fmt.Errorf("%w: %v", ErrVfovOutOfRange, p.Camera.VfovDegrees)
	}

	if dof := p.Camera.DepthOfField; dof != nil {
		if dof.Aperture < 0 || dof.Aperture > 1 {
			return sky.GPUSkyState{}, fmt.Errorf("%w: %v", ErrApertureOutOfRange, dof.Aperture)
		}
		if dof.FocusDistance < 0 {
			return sky.GPUSkyState{}, fmt.Errorf("%w: %v", ErrFocusDistanceOutOfRange, dof.FocusDistance)
		}
	}

	state, err := sky.ToSkyState(p.Sky, model)
	if err != nil {
		return sky.GPUSkyState{}, fmt.Errorf("%w: %w", ErrSkyModel, err)
	}
	return state, nil
}
