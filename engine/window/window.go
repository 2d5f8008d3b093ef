package window

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// LookButton selects the mouse button that drives camera look.
type LookButton int

const (
	// LookButtonRight drags the view with the right mouse button.
	LookButtonRight LookButton = iota
	// LookButtonMiddle drags the view with the middle mouse button.
	LookButtonMiddle
	// LookButtonLeft drags the view with the left mouse button.
	LookButtonLeft
)

// Window provides platform windowing and input event handling for the raytracer viewer.
// Callbacks run on the thread that calls ProcessMessages.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up, negative = down)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetLookStartCallback sets the callback for pressing the look button.
	//
	// Parameters:
	//   - callback: function receiving the cursor x, y position
	SetLookStartCallback(callback func(x, y int32))

	// SetLookEndCallback sets the callback for releasing the look button.
	//
	// Parameters:
	//   - callback: function receiving the cursor x, y position
	SetLookEndCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the callback for mouse movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor x, y position
	SetMouseMoveCallback(callback func(x, y int32))

	// SetTitle changes the title bar text. Safe to call from any goroutine; the title is applied
	// on the next message loop iteration.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// MaxSize returns the size limit the window was created with, in screen coordinates.
	// Zero means unbounded on that axis.
	//
	// Returns:
	//   - int: maximum width in screen coordinates
	//   - int: maximum height in screen coordinates
	MaxSize() (int, int)

	// MaxFramebufferSize returns the largest framebuffer the window can reach on any connected
	// monitor, in pixels. The raytracer sizes its accumulation buffer from it.
	//
	// Returns:
	//   - int: maximum framebuffer width in pixels
	//   - int: maximum framebuffer height in pixels
	MaxFramebufferSize() (int, int)
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height track the framebuffer, which differs from the window size on high-DPI displays.
	width  int
	height int

	// pixelScale is the largest content scale of any monitor. monitorWidth and monitorHeight are
	// the largest monitor's resolution in pixels, used for unbounded axes.
	pixelScale    float32
	monitorWidth  int
	monitorHeight int

	resizable  bool
	lookButton LookButton

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	titleMu      sync.Mutex
	pendingTitle *string

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onLookStart func(x, y int32)
	onLookEnd   func(x, y int32)
	onMouseMove func(x, y int32)
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order. Panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:      "oxy-rt",
		maxWidth:   1920,
		maxHeight:  1080,
		minWidth:   320,
		minHeight:  200,
		width:      1280,
		height:     720,
		resizable:  true,
		lookButton: LookButtonRight,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = clamp(w.width, w.minWidth, w.maxWidth)
	w.height = clamp(w.height, w.minHeight, w.maxHeight)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetLookStartCallback(callback func(x, y int32)) {
	w.onLookStart = callback
}

func (w *engineWindow) SetLookEndCallback(callback func(x, y int32)) {
	w.onLookEnd = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.titleMu.Lock()
	w.pendingTitle = &title
	w.titleMu.Unlock()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if title, ok := w.takeTitle(); ok {
			platformSetTitle(w, title)
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) MaxSize() (int, int) {
	return w.maxWidth, w.maxHeight
}

func (w *engineWindow) MaxFramebufferSize() (int, int) {
	return framebufferLimit(w.maxWidth, w.monitorWidth, w.pixelScale), framebufferLimit(w.maxHeight, w.monitorHeight, w.pixelScale)
}

// framebufferLimit converts a size limit in screen coordinates to pixels. A zero limit falls back
// to the monitor size, which is already in pixels.
func framebufferLimit(limit, monitor int, scale float32) int {
	if limit <= 0 {
		return monitor
	}
	return int(math32.Ceil(float32(limit) * max(scale, 1)))
}

func (w *engineWindow) takeTitle() (string, bool) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	if w.pendingTitle == nil {
		return "", false
	}
	title := *w.pendingTitle
	w.pendingTitle = nil
	w.title = title
	return title, true
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
