// Package sky converts human facing sky settings into the GPU sky-state record consumed by the
// raytracing kernel. The physical model is delegated to a Model, normally a *hosek.Model.
package sky

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-rt/engine/sky/hosek"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Model produces cooked sky states from physical parameters.
type Model interface {
	// NewState cooks a sky for the given sun elevation, turbidity and ground albedo.
	//
	// Parameters:
	//   - p: the physical inputs
	//
	// Returns:
	//   - hosek.State: the cooked state
	//   - error: a model validation error if any input is out of range
	NewState(p hosek.Params) (hosek.State, error)
}

var _ Model = &hosek.Model{}

// Params are the user facing sky settings.
type Params struct {
	// AzimuthDegrees is the sun azimuth, in [0, 360).
	AzimuthDegrees float32 `toml:"azimuth_degrees"`

	// ZenithDegrees is the angle between the sun and the zenith, in [0, 90].
	ZenithDegrees float32 `toml:"zenith_degrees"`

	// Turbidity is the atmospheric turbidity, in [1, 10].
	Turbidity float32 `toml:"turbidity"`

	// Albedo is the ground albedo per channel, each in [0, 1].
	Albedo [3]float32 `toml:"albedo"`
}

// DefaultParams returns a low sun in a moderately clear sky over a white ground.
//
// Returns:
//   - Params: azimuth 0, zenith 85, turbidity 4, albedo 1
func DefaultParams() Params {
	return Params{
		AzimuthDegrees: 0,
		ZenithDegrees:  85,
		Turbidity:      4,
		Albedo:         [3]float32{1, 1, 1},
	}
}

// SunDirection returns the unit vector pointing towards the sun, with +Y up.
//
// Returns:
//   - mgl32.Vec3: the sun direction
func (p Params) SunDirection() mgl32.Vec3 {
	azimuth := mgl32.DegToRad(p.AzimuthDegrees)
	zenith := mgl32.DegToRad(p.ZenithDegrees)
	return mgl32.Vec3{
		math32.Sin(zenith) * math32.Cos(azimuth),
		math32.Cos(zenith),
		math32.Sin(zenith) * math32.Sin(azimuth),
	}
}

// Elevation returns the solar elevation above the horizon in radians.
// It is computed in degrees first so that a zenith of exactly 0 or 90 maps onto the model's
// closed range without rounding outside it.
//
// Returns:
//   - float32: the elevation in radians
func (p Params) Elevation() float32 {
	return float32(float64(90-p.ZenithDegrees) * math.Pi / 180)
}

// ToSkyState cooks the sky and packs it into the GPU record.
//
// Parameters:
//   - p: the sky settings
//   - model: the analytic sky model
//
// Returns:
//   - GPUSkyState: the packed record
//   - error: the model's validation error, wrapped
func ToSkyState(p Params, model Model) (GPUSkyState, error) {
	if model == nil {
		return GPUSkyState{}, fmt.Errorf("sky model is nil")
	}
	state, err := model.NewState(hosek.Params{
		Elevation: p.Elevation(),
		Turbidity: p.Turbidity,
		Albedo:    p.Albedo,
	})
	if err != nil {
		return GPUSkyState{}, fmt.Errorf("failed to build sky state: %w", err)
	}

	sun := p.SunDirection()
	return GPUSkyState{
		Params:       state.Params,
		Radiances:    state.Radiances,
		SunDirection: [4]float32{sun.X(), sun.Y(), sun.Z(), 0},
	}, nil
}
