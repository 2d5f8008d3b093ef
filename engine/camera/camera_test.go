package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec(t *testing.T, want [3]float32, got [3]float32) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestNewGPUCamera_Pinhole(t *testing.T) {
	c := NewGPUCamera(Lens{VfovDegrees: 90}, NewTransform(mgl32.Vec3{}), 1)

	assertVec(t, [3]float32{0, 0, 0}, c.Eye)
	assertVec(t, [3]float32{-1, -1, -1}, c.LowerLeftCorner)
	assertVec(t, [3]float32{2, 0, 0}, c.Horizontal)
	assertVec(t, [3]float32{0, 2, 0}, c.Vertical)
	assertVec(t, [3]float32{1, 0, 0}, c.U)
	assertVec(t, [3]float32{0, 1, 0}, c.V)
	assert.Equal(t, float32(0), c.LensRadius)
}

func TestNewGPUCamera_DepthOfField(t *testing.T) {
	lens := Lens{VfovDegrees: 90, DepthOfField: &DepthOfField{Aperture: 0.5, FocusDistance: 3}}
	c := NewGPUCamera(lens, NewTransform(mgl32.Vec3{1, 2, 3}), 2)

	assert.Equal(t, float32(0.25), c.LensRadius)
	assertVec(t, [3]float32{12, 0, 0}, c.Horizontal)
	assertVec(t, [3]float32{0, 6, 0}, c.Vertical)
	assertVec(t, [3]float32{1 - 6, 2 - 3, 3 - 3}, c.LowerLeftCorner)
}

func TestGPUCamera_Marshal(t *testing.T) {
	c := NewGPUCamera(Lens{VfovDegrees: 90, DepthOfField: &DepthOfField{Aperture: 1, FocusDistance: 1}}, NewTransform(mgl32.Vec3{}), 1)
	buf := c.Marshal()
	require.Len(t, buf, 96)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	assert.InDelta(t, 2, f(16), 1e-5)
	assert.InDelta(t, 2, f(36), 1e-5)
	assert.InDelta(t, 1, f(48), 1e-5)
	assert.InDelta(t, 1, f(68), 1e-5)
	assert.Equal(t, float32(0.5), f(76))
	assert.InDelta(t, -1, f(80), 1e-5)
	assert.InDelta(t, -1, f(88), 1e-5)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[92:]))
}

func TestLens_Equal(t *testing.T) {
	a := Lens{VfovDegrees: 45, DepthOfField: &DepthOfField{Aperture: 1, FocusDistance: 10}}
	b := Lens{VfovDegrees: 45, DepthOfField: &DepthOfField{Aperture: 1, FocusDistance: 10}}
	assert.True(t, a.Equal(b))

	b.DepthOfField.FocusDistance = 11
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(Lens{VfovDegrees: 45}))
	assert.True(t, Lens{VfovDegrees: 45}.Equal(Lens{VfovDegrees: 45}))
}

func TestNewTransformLookAt(t *testing.T) {
	tr := NewTransformLookAt(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{5, 0, 0})
	assertVec(t, [3]float32{1, 0, 0}, tr.Forward())

	tr = NewTransformLookAt(mgl32.Vec3{-10, 2, -4}, mgl32.Vec3{0, 1, 0})
	want := mgl32.Vec3{10, -1, 4}.Normalize()
	assertVec(t, want, tr.Forward())

	_, right, up := tr.Orientation()
	assert.InDelta(t, 0, right.Y(), 1e-6)
	assert.InDelta(t, 0, up.Dot(tr.Forward()), 1e-5)
}

func TestCameraController_KeysMoveAlongAxes(t *testing.T) {
	cc := NewCameraController()
	assert.Equal(t, float32(2), cc.Speed())

	assert.False(t, cc.Update(0.5))

	cc.KeyDown(common.KeyW)
	assert.True(t, cc.Update(0.5))
	assertVec(t, [3]float32{0, 0, -1}, cc.Position())

	cc.KeyUp(common.KeyW)
	cc.KeyDown(common.KeyD)
	cc.KeyDown(common.KeySpace)
	cc.Update(1)
	assertVec(t, [3]float32{2, 2, -1}, cc.Position())

	cc.KeyDown(common.KeyA)
	cc.KeyDown(common.KeyLeftShift)
	assert.False(t, cc.Update(1))
}

func TestCameraController_MouseLook(t *testing.T) {
	cc := NewCameraController(WithMouseSensitivity(0.01))

	cc.MouseMove(10, 10)
	assert.False(t, cc.Update(0), "moving without a drag does not turn")

	cc.LookStart(10, 10)
	cc.MouseMove(20, 10)
	assert.True(t, cc.Update(0))
	assert.InDelta(t, -0.1, cc.Yaw(), 1e-6)

	cc.LookEnd()
	cc.MouseMove(100, 100)
	assert.False(t, cc.Update(0))
}

func TestCameraController_PitchClamped(t *testing.T) {
	cc := NewCameraController(WithPitchLimit(0.5))
	cc.Rotate(0, -1000)
	assert.Equal(t, float32(0.5), cc.Pitch())
	cc.Rotate(0, 2000)
	assert.Equal(t, float32(-0.5), cc.Pitch())
}

func TestCameraController_TransformRoundTrip(t *testing.T) {
	cc := NewCameraController(WithPosition(mgl32.Vec3{1, 1, 1}), WithTarget(mgl32.Vec3{1, 1, -5}))
	assertVec(t, [3]float32{0, 0, -1}, cc.Transform().Forward())

	cc.LookAt(mgl32.Vec3{1, 1, 10})
	assertVec(t, [3]float32{0, 0, 1}, cc.Transform().Forward())

	tr := NewTransformLookAt(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{0, 0, 0})
	cc.SetTransform(tr)
	assertVec(t, tr.Position, cc.Position())
	assertVec(t, tr.Forward(), cc.Transform().Forward())
}
