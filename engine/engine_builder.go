package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/loader"
	"github.com/Carmen-Shannon/oxy-rt/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance and convergence logging.
//
// Parameters:
//   - enabled: if true, enables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets a pre-configured window rather than letting the engine create one.
// The window's maximum size bounds the raytracer's accumulation buffer.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets a pre-configured renderer rather than letting the engine create one.
//
// Parameters:
//   - r: a Renderer drawing into the engine's window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions adds options for the renderer the engine creates.
//
// Parameters:
//   - options: renderer options such as renderer.WithPresentMode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithRaytracerOptions adds options for every raytracer the engine creates.
//
// Parameters:
//   - options: raytracer options such as raytracer.WithKernelPath
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRaytracerOptions(options ...raytracer.RaytracerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.raytracerOptions = append(e.raytracerOptions, options...)
	}
}

// WithCameraControllerOptions adds options for the fly camera. They apply after the scene's pose.
//
// Parameters:
//   - options: controller options such as camera.WithSpeed
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraControllerOptions(options ...camera.CameraControllerOption) EngineBuilderOption {
	return func(e *engine) {
		e.controllerOptions = append(e.controllerOptions, options...)
	}
}

// WithScene renders a scene built in code. The viewport size of params is replaced by the window size.
//
// Parameters:
//   - sc: the scene to render
//   - params: the initial render parameters
//   - transform: the initial camera pose
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(sc scene.Scene, params raytracer.RenderParams, transform camera.Transform) EngineBuilderOption {
	return func(e *engine) {
		e.scene = sc
		e.params = params
		e.transform = transform
	}
}

// WithSceneFile renders the scene, render parameters and camera pose stored in a scene file.
// It takes precedence over WithScene.
//
// Parameters:
//   - path: the scene file to load
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSceneFile(path string) EngineBuilderOption {
	return func(e *engine) {
		e.scenePath = path
	}
}

// WithHotReload watches the scene file and swaps in the new scene every time it is saved.
// Only applies together with WithSceneFile.
//
// Parameters:
//   - enabled: if true, watches the scene file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHotReload(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.hotReload = enabled
	}
}

// WithLoader sets the loader used for scene files, for example one with a custom texture size limit.
//
// Parameters:
//   - l: the scene loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithSkyModel sets the analytic sky model used to cook the sky.
//
// Parameters:
//   - model: the sky model
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSkyModel(model sky.Model) EngineBuilderOption {
	return func(e *engine) {
		e.skyModel = model
	}
}

// WithSkyDataset loads the Hosek-Wilkie RGB dataset from a file. Ignored when WithSkyModel is given.
//
// Parameters:
//   - path: the dataset file, see hosek.LoadDataset for its layout
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSkyDataset(path string) EngineBuilderOption {
	return func(e *engine) {
		e.skyDatasetPath = path
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
