// Package camera describes the raytracing camera: its lens, its pose in the world, the GPU record
// derived from both, and a fly controller that moves the pose from keyboard and mouse input.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DepthOfField configures a thin lens. Without it the camera is a pinhole.
type DepthOfField struct {
	// Aperture is the lens diameter, in [0, 1].
	Aperture float32 `toml:"aperture"`

	// FocusDistance is the distance from the eye to the plane in perfect focus.
	FocusDistance float32 `toml:"focus_distance"`
}

// Lens holds the projection settings of the camera.
type Lens struct {
	// VfovDegrees is the vertical field of view, in [0, 90].
	VfovDegrees float32 `toml:"vfov_degrees"`

	// DepthOfField enables thin lens defocus blur when non-nil.
	DepthOfField *DepthOfField `toml:"depth_of_field"`
}

// Equal reports whether two lenses describe the same projection. Depth of field settings are
// compared by value.
//
// Parameters:
//   - other: the lens to compare with
//
// Returns:
//   - bool: true if both lenses are equivalent
func (l Lens) Equal(other Lens) bool {
	if l.VfovDegrees != other.VfovDegrees {
		return false
	}
	if l.DepthOfField == nil || other.DepthOfField == nil {
		return l.DepthOfField == nil && other.DepthOfField == nil
	}
	return *l.DepthOfField == *other.DepthOfField
}

// FocusDistance returns the distance of the image plane, 1 for a pinhole lens.
//
// Returns:
//   - float32: the focus distance
func (l Lens) FocusDistance() float32 {
	if l.DepthOfField == nil {
		return 1
	}
	return l.DepthOfField.FocusDistance
}

// LensRadius returns half the aperture, 0 for a pinhole lens.
//
// Returns:
//   - float32: the lens radius
func (l Lens) LensRadius() float32 {
	if l.DepthOfField == nil {
		return 0
	}
	return l.DepthOfField.Aperture / 2
}

// Transform is the camera pose. The unrotated camera looks down -Z with +Y up.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// NewTransform creates a transform at the given position with no rotation.
//
// Parameters:
//   - position: the eye position
//
// Returns:
//   - Transform: the transform
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl32.QuatIdent()}
}

// NewTransformLookAt creates a transform at eye oriented towards target with +Y up.
//
// Parameters:
//   - eye: the eye position
//   - target: the point to look at
//
// Returns:
//   - Transform: the transform
func NewTransformLookAt(eye, target mgl32.Vec3) Transform {
	yaw, pitch := yawPitchOf(target.Sub(eye))
	return Transform{Position: eye, Rotation: rotationFromYawPitch(yaw, pitch)}
}

// Equal reports whether two transforms are identical.
//
// Parameters:
//   - other: the transform to compare with
//
// Returns:
//   - bool: true if position and rotation match exactly
func (t Transform) Equal(other Transform) bool {
	return t.Position == other.Position && t.Rotation == other.Rotation
}

// Forward returns the unit view direction.
//
// Returns:
//   - mgl32.Vec3: rotation applied to -Z
func (t Transform) Forward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Orientation returns the camera basis: forward, right and up. Right is horizontal and up is
// orthogonal to both.
//
// Returns:
//   - forward: the view direction
//   - right: normalize(forward x Y)
//   - up: right x forward
func (t Transform) Orientation() (forward, right, up mgl32.Vec3) {
	forward = t.Forward()
	right = forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// rotationFromYawPitch builds the rotation that yaws around +Y and then pitches around the local X axis.
func rotationFromYawPitch(yaw, pitch float32) mgl32.Quat {
	return mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(pitch, mgl32.Vec3{1, 0, 0})).Normalize()
}

// yawPitchOf returns the yaw and pitch that turn -Z towards dir.
func yawPitchOf(dir mgl32.Vec3) (yaw, pitch float32) {
	if dir.Len() == 0 {
		return 0, 0
	}
	d := dir.Normalize()
	yaw = math32.Atan2(-d.X(), -d.Z())
	pitch = math32.Asin(mgl32.Clamp(d.Y(), -1, 1))
	return yaw, pitch
}
