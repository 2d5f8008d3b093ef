package quad

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestVertexData(t *testing.T) {
	buf, count := VertexData()
	require.Equal(t, 6, count)
	require.Len(t, buf, 6*16)

	// third vertex is the bottom right corner
	assert.Equal(t, float32(0.5), readF32(buf, 32))
	assert.Equal(t, float32(-0.5), readF32(buf, 36))
	assert.Equal(t, float32(1), readF32(buf, 40))
	assert.Equal(t, float32(1), readF32(buf, 44))
}

func TestVertices_CoverUnitSquare(t *testing.T) {
	for _, v := range Vertices {
		assert.Equal(t, float32(0.5), float32(math.Abs(float64(v.Position[0]))))
		assert.Equal(t, float32(0.5), float32(math.Abs(float64(v.Position[1]))))
		assert.Equal(t, v.Position[0]+0.5, v.TexCoords[0])
		assert.Equal(t, 0.5-v.Position[1], v.TexCoords[1])
	}
}

func TestUniforms_Marshal(t *testing.T) {
	u := NewUniforms()
	buf := u.Marshal()
	require.Len(t, buf, u.Size())

	proj := common.UnitQuadProjection()
	assert.Equal(t, proj[0], readF32(buf, 0))
	assert.Equal(t, proj[14], readF32(buf, 56))
	assert.Equal(t, float32(1), readF32(buf, 64))
	assert.Equal(t, float32(0), readF32(buf, 68))
	assert.Equal(t, float32(1), readF32(buf, 124))
}
