package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func transform(m [16]float32, x, y, z float32) [3]float32 {
	return [3]float32{
		m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14],
	}
}

func TestUnitQuadProjection_CoversClipSpace(t *testing.T) {
	p := UnitQuadProjection()

	assert.Equal(t, [3]float32{-1, 1, 0.5}, transform(p, -0.5, 0.5, 0))
	assert.Equal(t, [3]float32{1, -1, 0.5}, transform(p, 0.5, -0.5, 0))
	assert.Equal(t, [3]float32{0, 0, 0}, transform(p, 0, 0, -1))
	assert.Equal(t, [3]float32{0, 0, 1}, transform(p, 0, 0, 1))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, float32(2), Coalesce(float32(0), 2))
}
