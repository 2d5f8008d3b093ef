// Package hosek implements the Hosek-Wilkie analytic sky model in its RGB form.
//
// The model is driven by a published coefficient dataset. For each colour channel the dataset holds
// 2 albedo extremes x 10 turbidity levels x 6 Bezier control points of 9 distribution parameters,
// and the same grid of single radiance scales. NewState blends these over elevation, turbidity and
// albedo into the 27 parameters and 3 radiances the raytracing kernel evaluates per ray.
//
// Reference: L. Hosek, A. Wilkie, "An Analytic Model for Full Spectral Sky-Dome Radiance", SIGGRAPH 2012.
package hosek

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/chewxy/math32"
)

const (
	// Channels is the number of colour channels of the RGB dataset.
	Channels = 3

	// ParamCount is the number of distribution parameters per channel.
	ParamCount = 9

	// TurbidityLevels is the number of integer turbidity levels tabulated in the dataset.
	TurbidityLevels = 10

	// ControlPoints is the number of quintic Bezier control points over elevation.
	ControlPoints = 6

	// ChannelParamsLen is the number of parameter coefficients per channel (2 * 10 * 6 * 9).
	ChannelParamsLen = 2 * TurbidityLevels * ControlPoints * ParamCount

	// ChannelRadiancesLen is the number of radiance coefficients per channel (2 * 10 * 6).
	ChannelRadiancesLen = 2 * TurbidityLevels * ControlPoints
)

var (
	// ErrElevationOutOfRange is returned when the solar elevation is outside [0, pi/2].
	ErrElevationOutOfRange = errors.New("solar elevation must be between 0 and pi/2 radians")

	// ErrTurbidityOutOfRange is returned when the turbidity is outside [1, 10].
	ErrTurbidityOutOfRange = errors.New("turbidity must be between 1 and 10")

	// ErrAlbedoOutOfRange is returned when a ground albedo channel is outside [0, 1].
	ErrAlbedoOutOfRange = errors.New("albedo must be between 0 and 1")

	// ErrDatasetSize is returned when a dataset does not have the expected number of coefficients.
	ErrDatasetSize = errors.New("hosek dataset has an unexpected size")
)

// Dataset holds the coefficient tables of the RGB model.
type Dataset struct {
	// Params holds ChannelParamsLen coefficients per channel.
	Params [Channels][]float32

	// Radiances holds ChannelRadiancesLen coefficients per channel.
	Radiances [Channels][]float32
}

// Validate checks that every channel table has the expected length.
//
// Returns:
//   - error: ErrDatasetSize wrapped with the offending table, or nil
func (d *Dataset) Validate() error {
	for ch := range Channels {
		if len(d.Params[ch]) != ChannelParamsLen {
			return fmt.Errorf("%w: channel %d params has %d values, want %d", ErrDatasetSize, ch, len(d.Params[ch]), ChannelParamsLen)
		}
		if len(d.Radiances[ch]) != ChannelRadiancesLen {
			return fmt.Errorf("%w: channel %d radiances has %d values, want %d", ErrDatasetSize, ch, len(d.Radiances[ch]), ChannelRadiancesLen)
		}
	}
	return nil
}

// LoadDataset reads a dataset encoded as little-endian float32 values in the order
// params R, params G, params B, radiances R, radiances G, radiances B.
//
// Parameters:
//   - r: the reader to consume
//
// Returns:
//   - *Dataset: the decoded dataset
//   - error: an error if the stream is short or unreadable
func LoadDataset(r io.Reader) (*Dataset, error) {
	d := &Dataset{}
	for ch := range Channels {
		d.Params[ch] = make([]float32, ChannelParamsLen)
		if err := binary.Read(r, binary.LittleEndian, d.Params[ch]); err != nil {
			return nil, fmt.Errorf("failed to read params for channel %d: %w", ch, err)
		}
	}
	for ch := range Channels {
		d.Radiances[ch] = make([]float32, ChannelRadiancesLen)
		if err := binary.Read(r, binary.LittleEndian, d.Radiances[ch]); err != nil {
			return nil, fmt.Errorf("failed to read radiances for channel %d: %w", ch, err)
		}
	}
	return d, nil
}

// Params are the physical inputs of the model.
type Params struct {
	// Elevation is the solar elevation above the horizon in radians, in [0, pi/2].
	Elevation float32

	// Turbidity is the atmospheric turbidity, in [1, 10].
	Turbidity float32

	// Albedo is the per-channel ground albedo, each in [0, 1].
	Albedo [Channels]float32
}

// Validate checks the ranges of the parameters.
//
// Returns:
//   - error: one of the range sentinels wrapped with the offending value, or nil
func (p Params) Validate() error {
	if !(p.Elevation >= 0 && p.Elevation <= math32.Pi/2) {
		return fmt.Errorf("%w: got %v", ErrElevationOutOfRange, p.Elevation)
	}
	if !(p.Turbidity >= 1 && p.Turbidity <= TurbidityLevels) {
		return fmt.Errorf("%w: got %v", ErrTurbidityOutOfRange, p.Turbidity)
	}
	for ch, a := range p.Albedo {
		if !(a >= 0 && a <= 1) {
			return fmt.Errorf("%w: channel %d got %v", ErrAlbedoOutOfRange, ch, a)
		}
	}
	return nil
}

// State is a cooked sky: the distribution parameters and radiance scale of every channel.
type State struct {
	// Params holds 9 parameters per channel, channel-major (params[ch*9+i]).
	Params [Channels * ParamCount]float32

	// Radiances holds the radiance scale per channel.
	Radiances [Channels]float32
}

// Model evaluates sky states from a dataset.
type Model struct {
	dataset *Dataset
}

// NewModel wraps a validated dataset.
//
// Parameters:
//   - dataset: the coefficient tables
//
// Returns:
//   - *Model: the model
//   - error: ErrDatasetSize if the dataset is malformed
func NewModel(dataset *Dataset) (*Model, error) {
	if dataset == nil {
		return nil, fmt.Errorf("%w: dataset is nil", ErrDatasetSize)
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	return &Model{dataset: dataset}, nil
}

// NewState cooks the per-channel parameters for the given sun and atmosphere.
//
// Parameters:
//   - p: the physical inputs
//
// Returns:
//   - State: the cooked state
//   - error: a range error if any input is out of bounds
func (m *Model) NewState(p Params) (State, error) {
	if err := p.Validate(); err != nil {
		return State{}, err
	}

	var s State
	for ch := range Channels {
		cookConfig(s.Params[ch*ParamCount:(ch+1)*ParamCount], m.dataset.Params[ch], p.Turbidity, p.Albedo[ch], p.Elevation)
		s.Radiances[ch] = cookRadiance(m.dataset.Radiances[ch], p.Turbidity, p.Albedo[ch], p.Elevation)
	}
	return s, nil
}

// Radiance evaluates the model for one channel.
//
// Parameters:
//   - theta: angle between the view direction and the zenith, in radians
//   - gamma: angle between the view direction and the sun, in radians
//   - channel: the colour channel (0, 1 or 2)
//
// Returns:
//   - float32: the radiance of the channel in that direction
func (s State) Radiance(theta, gamma float32, channel int) float32 {
	p := s.Params[channel*ParamCount : (channel+1)*ParamCount]

	cosTheta := math32.Cos(theta)
	cosGamma := math32.Cos(gamma)
	expM := math32.Exp(p[4] * gamma)
	rayM := cosGamma * cosGamma
	mieM := (1 + rayM) / math32.Pow(1+p[8]*p[8]-2*p[8]*cosGamma, 1.5)
	zenith := math32.Sqrt(math32.Max(cosTheta, 0))

	radiance := (1 + p[0]*math32.Exp(p[1]/(cosTheta+0.01))) * (p[2] + p[3]*expM + p[5]*rayM + p[6]*mieM + p[7]*zenith)
	return radiance * s.Radiances[channel]
}

// cookConfig blends the 9 distribution parameters of one channel into out.
func cookConfig(out []float32, dataset []float32, turbidity, albedo, elevation float32) {
	intTurbidity := int(turbidity)
	turbidityRem := turbidity - float32(intTurbidity)
	x := math32.Pow(elevation/(math32.Pi/2), 1.0/3.0)

	const albedoStride = ParamCount * ControlPoints * TurbidityLevels
	const turbidityStride = ParamCount * ControlPoints

	for i := range ParamCount {
		out[i] = 0
	}

	accumulate := func(base int, weight float32) {
		for i := range ParamCount {
			out[i] += weight * bezier(dataset[base+i:], ParamCount, x)
		}
	}

	accumulate(turbidityStride*(intTurbidity-1), (1-albedo)*(1-turbidityRem))
	accumulate(albedoStride+turbidityStride*(intTurbidity-1), albedo*(1-turbidityRem))
	if intTurbidity == TurbidityLevels {
		return
	}
	accumulate(turbidityStride*intTurbidity, (1-albedo)*turbidityRem)
	accumulate(albedoStride+turbidityStride*intTurbidity, albedo*turbidityRem)
}

// cookRadiance blends the radiance scale of one channel.
func cookRadiance(dataset []float32, turbidity, albedo, elevation float32) float32 {
	intTurbidity := int(turbidity)
	turbidityRem := turbidity - float32(intTurbidity)
	x := math32.Pow(elevation/(math32.Pi/2), 1.0/3.0)

	const albedoStride = ControlPoints * TurbidityLevels
	const turbidityStride = ControlPoints

	res := (1 - albedo) * (1 - turbidityRem) * bezier(dataset[turbidityStride*(intTurbidity-1):], 1, x)
	res += albedo * (1 - turbidityRem) * bezier(dataset[albedoStride+turbidityStride*(intTurbidity-1):], 1, x)
	if intTurbidity == TurbidityLevels {
		return res
	}
	res += (1 - albedo) * turbidityRem * bezier(dataset[turbidityStride*intTurbidity:], 1, x)
	res += albedo * turbidityRem * bezier(dataset[albedoStride+turbidityStride*intTurbidity:], 1, x)
	return res
}

// bezier evaluates a quintic Bezier curve whose control points sit stride values apart.
func bezier(data []float32, stride int, x float32) float32 {
	ix := 1 - x
	return ix*ix*ix*ix*ix*data[0] +
		5*ix*ix*ix*ix*x*data[stride] +
		10*ix*ix*ix*x*x*data[2*stride] +
		10*ix*ix*x*x*x*data[3*stride] +
		5*ix*x*x*x*x*data[4*stride] +
		x*x*x*x*x*data[5*stride]
}
