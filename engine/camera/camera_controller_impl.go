package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
// The pose is stored as position, yaw and pitch so that mouse look never rolls the camera.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	yaw      float32
	pitch    float32

	speed            float32
	mouseSensitivity float32
	pitchLimit       float32

	held        map[uint32]bool
	looking     bool
	cursor      [2]int32
	lastCursor  [2]int32
	pendingLook bool
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a fly controller at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:               &sync.Mutex{},
		speed:            2.0,
		mouseSensitivity: 0.004,
		pitchLimit:       mgl32.DegToRad(89),
		held:             make(map[uint32]bool),
	}

	for _, option := range options {
		option(cc)
	}

	cc.clampPitch()
	return cc
}

// clampPitch keeps the view direction away from the poles. Caller must hold the mutex.
func (cc *cameraControllerImpl) clampPitch() {
	cc.pitch = mgl32.Clamp(cc.pitch, -cc.pitchLimit, cc.pitchLimit)
}

// transform builds the pose. Caller must hold the mutex.
func (cc *cameraControllerImpl) transform() Transform {
	return Transform{Position: cc.position, Rotation: rotationFromYawPitch(cc.yaw, cc.pitch)}
}

// translate moves along the camera axes. Caller must hold the mutex.
func (cc *cameraControllerImpl) translate(right, up, forward float32) {
	f, r, u := cc.transform().Orientation()
	cc.position = cc.position.Add(r.Mul(right)).Add(u.Mul(up)).Add(f.Mul(forward))
}

// rotate turns by a pixel delta. Caller must hold the mutex.
func (cc *cameraControllerImpl) rotate(dx, dy float32) {
	cc.yaw -= dx * cc.mouseSensitivity
	cc.pitch -= dy * cc.mouseSensitivity
	cc.clampPitch()
}

func (cc *cameraControllerImpl) Transform() Transform {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.transform()
}

func (cc *cameraControllerImpl) SetTransform(t Transform) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = t.Position
	cc.yaw, cc.pitch = yawPitchOf(t.Forward())
	cc.clampPitch()
}

func (cc *cameraControllerImpl) LookAt(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw, cc.pitch = yawPitchOf(target.Sub(cc.position))
	cc.clampPitch()
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) Translate(right, up, forward float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.translate(right, up, forward)
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotate(dx, dy)
}

func (cc *cameraControllerImpl) KeyDown(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.held[keyCode] = true
}

func (cc *cameraControllerImpl) KeyUp(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.held, keyCode)
}

func (cc *cameraControllerImpl) LookStart(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.looking = true
	cc.cursor = [2]int32{x, y}
	cc.lastCursor = cc.cursor
}

func (cc *cameraControllerImpl) LookEnd() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.looking = false
}

func (cc *cameraControllerImpl) MouseMove(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cursor = [2]int32{x, y}
	if cc.looking {
		cc.pendingLook = true
	}
}

func (cc *cameraControllerImpl) Update(deltaTime float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	before := cc.transform()

	if cc.pendingLook {
		dx := float32(cc.cursor[0] - cc.lastCursor[0])
		dy := float32(cc.cursor[1] - cc.lastCursor[1])
		cc.rotate(dx, dy)
		cc.pendingLook = false
	}
	cc.lastCursor = cc.cursor

	axis := func(pos, neg int) float32 {
		var v float32
		if cc.held[uint32(pos)] {
			v++
		}
		if cc.held[uint32(neg)] {
			v--
		}
		return v
	}
	step := cc.speed * deltaTime
	right := axis(common.KeyD, common.KeyA)
	up := axis(common.KeySpace, common.KeyLeftShift)
	forward := axis(common.KeyW, common.KeyS)
	if right != 0 || up != 0 || forward != 0 {
		cc.translate(right*step, up*step, forward*step)
	}

	return !cc.transform().Equal(before)
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}
