package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithTransform sets the initial pose.
//
// Parameters:
//   - t: the starting pose
//
// Returns:
//   - CameraControllerOption: functional option to set the pose
func WithTransform(t Transform) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = t.Position
		cc.yaw, cc.pitch = yawPitchOf(t.Forward())
	}
}

// WithPosition sets the initial position.
//
// Parameters:
//   - position: the starting eye position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(position mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = position
	}
}

// WithTarget turns the camera towards a point. Apply it after WithPosition.
//
// Parameters:
//   - target: the world-space point to face
//
// Returns:
//   - CameraControllerOption: functional option to set the orientation
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.yaw, cc.pitch = yawPitchOf(target.Sub(cc.position))
	}
}

// WithSpeed sets the translation speed.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.speed = speed
	}
}

// WithMouseSensitivity sets the mouse look sensitivity.
//
// Parameters:
//   - sensitivity: radians per pixel of drag
//
// Returns:
//   - CameraControllerOption: functional option to set mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithPitchLimit sets the largest absolute pitch.
//
// Parameters:
//   - limit: the pitch bound in radians, below pi/2
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch bound
func WithPitchLimit(limit float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.pitchLimit = limit
	}
}
