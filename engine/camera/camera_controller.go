package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController is a first-person fly controller. It owns the camera pose and moves it from
// held keys and right mouse drags. Input callbacks may run on a different goroutine from Update.
type CameraController interface {
	// Transform returns the current camera pose.
	//
	// Returns:
	//   - Transform: the pose
	Transform() Transform

	// SetTransform replaces the pose. Yaw and pitch are re-derived from the rotation.
	//
	// Parameters:
	//   - t: the new pose
	SetTransform(t Transform)

	// LookAt keeps the position and turns the camera towards target.
	//
	// Parameters:
	//   - target: the world-space point to face
	LookAt(target mgl32.Vec3)

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Yaw returns the rotation around +Y in radians.
	//
	// Returns:
	//   - float32: the yaw
	Yaw() float32

	// Pitch returns the rotation around the local X axis in radians.
	//
	// Returns:
	//   - float32: the pitch
	Pitch() float32

	// Translate moves the camera along its own axes.
	//
	// Parameters:
	//   - right, up, forward: distances along each axis in world units
	Translate(right, up, forward float32)

	// Rotate turns the camera by a mouse delta scaled by the mouse sensitivity. Pitch is clamped.
	//
	// Parameters:
	//   - dx, dy: cursor movement in pixels, y grows downwards
	Rotate(dx, dy float32)

	// KeyDown records a held key.
	//
	// Parameters:
	//   - keyCode: the GLFW key code
	KeyDown(keyCode uint32)

	// KeyUp releases a held key.
	//
	// Parameters:
	//   - keyCode: the GLFW key code
	KeyUp(keyCode uint32)

	// LookStart begins a mouse look drag at the given cursor position.
	//
	// Parameters:
	//   - x, y: the cursor position in pixels
	LookStart(x, y int32)

	// LookEnd ends the mouse look drag.
	LookEnd()

	// MouseMove records the latest cursor position.
	//
	// Parameters:
	//   - x, y: the cursor position in pixels
	MouseMove(x, y int32)

	// Update applies the input gathered since the last call.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	//
	// Returns:
	//   - bool: true if the pose changed
	Update(deltaTime float32) bool

	// Speed returns the translation speed in world units per second.
	//
	// Returns:
	//   - float32: the speed
	Speed() float32

	// MouseSensitivity returns the radians turned per pixel of mouse drag.
	//
	// Returns:
	//   - float32: the sensitivity
	MouseSensitivity() float32
}
