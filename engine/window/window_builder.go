package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the initial title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size. It is clamped to the minimum and maximum sizes.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithMaxSize sets the largest size the window can be resized to, in screen coordinates.
// Every pixel of the largest framebuffer needs room in the raytracer's accumulation buffer, so
// this bounds its GPU memory. On high-DPI monitors the framebuffer is larger than the limit.
//
// Parameters:
//   - width: maximum width in screen coordinates, 0 for unbounded
//   - height: maximum height in screen coordinates, 0 for unbounded
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = width
		w.maxHeight = height
	}
}

// WithMinSize sets the smallest size the window can be resized to.
//
// Parameters:
//   - width: minimum width in pixels
//   - height: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithResizable sets whether the user can resize the window.
//
// Parameters:
//   - resizable: false to fix the window at its initial size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithLookButton selects the mouse button that starts and ends camera look.
//
// Parameters:
//   - button: the look button (default LookButtonRight)
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithLookButton(button LookButton) WindowBuilderOption {
	return func(w *engineWindow) {
		w.lookButton = button
	}
}
