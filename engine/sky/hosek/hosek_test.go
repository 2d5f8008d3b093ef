package hosek

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantDataset(params, radiance float32) *Dataset {
	d := &Dataset{}
	for ch := range Channels {
		d.Params[ch] = make([]float32, ChannelParamsLen)
		for i := range d.Params[ch] {
			d.Params[ch][i] = params
		}
		d.Radiances[ch] = make([]float32, ChannelRadiancesLen)
		for i := range d.Radiances[ch] {
			d.Radiances[ch][i] = radiance
		}
	}
	return d
}

func TestModel_ConstantDatasetCooksToConstant(t *testing.T) {
	m, err := NewModel(constantDataset(0.25, 3))
	require.NoError(t, err)

	cases := []Params{
		{Elevation: 0, Turbidity: 1, Albedo: [3]float32{0, 0, 0}},
		{Elevation: 0.4, Turbidity: 4.5, Albedo: [3]float32{0.3, 0.5, 1}},
		{Elevation: math32.Pi / 2, Turbidity: 10, Albedo: [3]float32{1, 1, 1}},
	}
	for _, p := range cases {
		s, err := m.NewState(p)
		require.NoError(t, err)
		for _, v := range s.Params {
			assert.InDelta(t, 0.25, v, 1e-5)
		}
		for _, v := range s.Radiances {
			assert.InDelta(t, 3, v, 1e-4)
		}
	}
}

func TestModel_TurbidityInterpolation(t *testing.T) {
	d := constantDataset(0, 0)
	// Radiance control points depend only on the turbidity level: level k holds k+1.
	for ch := range Channels {
		for a := range 2 {
			for level := range TurbidityLevels {
				for cp := range ControlPoints {
					d.Radiances[ch][a*ControlPoints*TurbidityLevels+level*ControlPoints+cp] = float32(level + 1)
				}
			}
		}
	}
	m, err := NewModel(d)
	require.NoError(t, err)

	s, err := m.NewState(Params{Elevation: 0.3, Turbidity: 2.5, Albedo: [3]float32{0.5, 0.5, 0.5}})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, s.Radiances[0], 1e-4)

	s, err = m.NewState(Params{Elevation: 0.3, Turbidity: 10, Albedo: [3]float32{0.5, 0.5, 0.5}})
	require.NoError(t, err)
	assert.InDelta(t, 10, s.Radiances[2], 1e-4)
}

func TestModel_RangeErrors(t *testing.T) {
	m, err := NewModel(constantDataset(1, 1))
	require.NoError(t, err)

	_, err = m.NewState(Params{Elevation: -0.1, Turbidity: 4})
	assert.ErrorIs(t, err, ErrElevationOutOfRange)

	_, err = m.NewState(Params{Elevation: 2, Turbidity: 4})
	assert.ErrorIs(t, err, ErrElevationOutOfRange)

	_, err = m.NewState(Params{Elevation: 0.5, Turbidity: 0.5})
	assert.ErrorIs(t, err, ErrTurbidityOutOfRange)

	_, err = m.NewState(Params{Elevation: 0.5, Turbidity: 11})
	assert.ErrorIs(t, err, ErrTurbidityOutOfRange)

	_, err = m.NewState(Params{Elevation: 0.5, Turbidity: 4, Albedo: [3]float32{0, 1.5, 0}})
	assert.ErrorIs(t, err, ErrAlbedoOutOfRange)
}

func TestNewModel_RejectsMalformedDataset(t *testing.T) {
	d := constantDataset(1, 1)
	d.Params[1] = d.Params[1][:10]

	_, err := NewModel(d)
	assert.ErrorIs(t, err, ErrDatasetSize)

	_, err = NewModel(nil)
	assert.ErrorIs(t, err, ErrDatasetSize)
}

func TestLoadDataset(t *testing.T) {
	var buf bytes.Buffer
	for ch := range Channels {
		for i := range ChannelParamsLen {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, float32(ch*10000+i)))
		}
	}
	for ch := range Channels {
		for i := range ChannelRadiancesLen {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, float32(-(ch*1000 + i))))
		}
	}

	d, err := LoadDataset(&buf)
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	assert.Equal(t, float32(10005), d.Params[1][5])
	assert.Equal(t, float32(-2007), d.Radiances[2][7])
}

func TestLoadDataset_Short(t *testing.T) {
	_, err := LoadDataset(bytes.NewReader(make([]byte, 64)))
	assert.Error(t, err)
}

func TestState_RadianceZenithNoSun(t *testing.T) {
	var s State
	// Only the constant term C and the radiance scale are set.
	s.Params[2] = 2
	s.Radiances[0] = 0.5

	assert.InDelta(t, 1.0, s.Radiance(0, math32.Pi/2, 0), 1e-5)
}
