package common

// Key codes delivered by the window. They match GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	// Fly camera movement.
	KeyW         = 87
	KeyA         = 65
	KeyS         = 83
	KeyD         = 68
	KeySpace     = 32
	KeyLeftShift = 340

	// KeyR reloads the scene file.
	KeyR = 82
	// KeyP toggles profiler output.
	KeyP = 80

	// KeyEsc closes the window; the window handles it before any callback.
	KeyEsc = 256
)
