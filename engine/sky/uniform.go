package sky

import "github.com/Carmen-Shannon/oxy-rt/engine/sky/hosek"

// DefaultSkyRadiance is the colour of the sky cooked by a UniformModel built with NewUniformModel(nil).
var DefaultSkyRadiance = [hosek.Channels]float32{0.5, 0.7, 1.0}

// UniformModel cooks a sky of constant radiance in every direction. It needs no coefficient
// dataset and is the fallback when no Hosek-Wilkie dataset is configured.
type UniformModel struct {
	radiance [hosek.Channels]float32
}

var _ Model = &UniformModel{}

// NewUniformModel creates a sky of a single colour.
//
// Parameters:
//   - radiance: the per-channel radiance, or nil for DefaultSkyRadiance
//
// Returns:
//   - *UniformModel: the model
func NewUniformModel(radiance *[hosek.Channels]float32) *UniformModel {
	m := &UniformModel{radiance: DefaultSkyRadiance}
	if radiance != nil {
		m.radiance = *radiance
	}
	return m
}

// NewState validates the inputs like the analytic model does, then returns a state whose only
// non-zero distribution term is the constant one, so the kernel evaluates to the radiance scale.
func (m *UniformModel) NewState(p hosek.Params) (hosek.State, error) {
	if err := p.Validate(); err != nil {
		return hosek.State{}, err
	}

	var s hosek.State
	for ch := range hosek.Channels {
		s.Params[ch*hosek.ParamCount+2] = 1
		s.Radiances[ch] = m.radiance[ch]
	}
	return s, nil
}
