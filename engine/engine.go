package engine

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/loader"
	"github.com/Carmen-Shannon/oxy-rt/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rt/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky/hosek"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
)

var (
	// ErrNoScene is returned when neither WithScene nor WithSceneFile was given.
	ErrNoScene = errors.New("engine has no scene")

	// ErrSkyDataset is returned when the sky dataset file cannot be loaded.
	ErrSkyDataset = errors.New("failed to load sky dataset")
)

const (
	minVfovDegrees = 10
	maxVfovDegrees = 90

	// zoomDegreesPerStep is the vertical field of view change of one scroll wheel step.
	zoomDegreesPerStep = 2
)

// engine implements the Engine interface.
// Coordinates the tick, render and scene reload goroutines with the window's message loop.
type engine struct {
	// mu guards the raytracer and serializes GPU work between the goroutines.
	mu *sync.Mutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window   window.Window
	renderer renderer.Renderer

	rendererOptions   []renderer.RendererBuilderOption
	raytracerOptions  []raytracer.RaytracerBuilderOption
	controllerOptions []camera.CameraControllerOption

	raytracer  raytracer.Raytracer
	controller camera.CameraController

	loader    loader.Loader
	watcher   loader.Watcher
	scenePath string
	hotReload bool

	scene     scene.Scene
	params    raytracer.RenderParams
	transform camera.Transform

	skyModel       sky.Model
	skyDatasetPath string

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool
	title            string

	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration
}

// Engine is the main entry point of the viewer.
// It owns the window, the renderer and the raytracer, moves the camera from input and keeps
// accumulating samples until the image converges.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing into the window.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Raytracer returns the raytracer currently rendering. It changes when the scene is reloaded.
	//
	// Returns:
	//   - raytracer.Raytracer: the active raytracer
	Raytracer() raytracer.Raytracer

	// CameraController returns the fly camera driven by keyboard and mouse input.
	//
	// Returns:
	//   - camera.CameraController: the controller
	CameraController() camera.CameraController

	// EnableProfiler enables performance and convergence output to the log.
	EnableProfiler()

	// DisableProfiler disables profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// Camera input is applied at this rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, after camera input is applied.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RenderParams returns the render parameters in effect.
	//
	// Returns:
	//   - raytracer.RenderParams: the current parameters
	RenderParams() raytracer.RenderParams

	// SetRenderParams replaces the render parameters, keeping the window's viewport size.
	// The accumulation restarts when anything changed.
	//
	// Parameters:
	//   - params: the new parameters
	//
	// Returns:
	//   - error: a validation error; the previous parameters stay in effect
	SetRenderParams(params raytracer.RenderParams) error

	// LoadScene loads a scene file and replaces the rendered scene and its render parameters.
	// The camera keeps its current pose.
	//
	// Parameters:
	//   - path: the scene file to load
	//
	// Returns:
	//   - error: error if the file or the new raytracer fails; the previous scene stays in place
	LoadScene(path string) error

	// Run starts the engine goroutines and the window message loop. Blocks until the window closes.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates the window, renderer and raytracer described by the options.
// A scene is required, given either directly with WithScene or as a file with WithSceneFile,
// The sky comes from WithSkyModel or WithSkyDataset; without either a uniform sky is used.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrNoScene, ErrSkyDataset, a scene loading error or a raytracer error
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		wg:              sync.WaitGroup{},
		engineTickRate:  time.Second / 60,
		title:           "oxy-rt",
	}

	for _, opt := range options {
		opt(e)
	}

	model, err := resolveSkyModel(e.skyModel, e.skyDatasetPath)
	if err != nil {
		return nil, err
	}
	e.skyModel = model

	if e.scenePath != "" {
		if e.loader == nil {
			e.loader = loader.NewLoader(loader.BackendTypeTOML)
		}
		sf, err := e.loader.Load(e.scenePath)
		if err != nil {
			return nil, err
		}
		e.scene, e.params, e.transform = sf.Scene, sf.Params, sf.Transform
		e.title = fmt.Sprintf("oxy-rt | %s", common.Coalesce(sf.Name, e.scenePath))
	}
	if e.scene == nil {
		return nil, ErrNoScene
	}

	if e.window == nil {
		e.window = window.NewWindow(window.WithTitle(e.title))
	}
	if e.renderer == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.rendererOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		e.renderer = r
	}

	e.params.ViewportSize = [2]uint32{uint32(e.window.Width()), uint32(e.window.Height())}
	rt, err := e.newRaytracer(e.scene, e.params, e.transform)
	if err != nil {
		return nil, err
	}
	e.raytracer = rt

	e.controller = camera.NewCameraController(append([]camera.CameraControllerOption{camera.WithTransform(e.transform)}, e.controllerOptions...)...)
	e.profiler = profiler.NewProfiler(e.progress)

	if e.scenePath != "" && e.hotReload {
		w, err := e.loader.Watch(e.scenePath)
		if err != nil {
			log.Printf("[Engine] hot reload disabled: %v", err)
		} else {
			e.watcher = w
		}
	}

	e.bindWindow()
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Raytracer() raytracer.Raytracer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.raytracer
}

func (e *engine) CameraController() camera.CameraController {
	return e.controller
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
	e.shutdown()
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) RenderParams() raytracer.RenderParams {
	return e.Raytracer().RenderParams()
}

func (e *engine) SetRenderParams(params raytracer.RenderParams) error {
	return e.updateView(func(p *raytracer.RenderParams, _ *camera.Transform) {
		viewport := p.ViewportSize
		*p = params
		p.ViewportSize = viewport
	})
}

func (e *engine) LoadScene(path string) error {
	if e.loader == nil {
		e.loader = loader.NewLoader(loader.BackendTypeTOML)
	}
	sf, err := e.loader.Reload(path)
	if err != nil {
		return err
	}
	return e.swapScene(sf)
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render and reload goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
	if e.watcher != nil {
		e.wg.Add(1)
		go e.handleReload()
	}
}

// shutdown releases what the engine created once every goroutine has stopped.
func (e *engine) shutdown() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			log.Printf("[Engine] failed to close scene watcher: %v", err)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.raytracer != nil {
		e.raytracer.Release()
		e.renderer.ReleasePipeline(e.raytracer.PipelineKey())
	}
}

// handleEngine runs the fixed-rate tick loop. Camera movement from the controller is turned into
// new render parameters here, so the render loop never blocks on input.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.controller.Update(dt) {
				t := e.controller.Transform()
				if err := e.updateView(func(_ *raytracer.RenderParams, tr *camera.Transform) { *tr = t }); err != nil {
					log.Printf("[Engine] camera update rejected: %v", err)
				}
			}

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop.
// Each iteration adds one frame of samples to the accumulation and presents the tone-mapped result.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame()

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled.Load() && e.profiler.Tick() {
				snap := e.profiler.Last()
				e.window.SetTitle(fmt.Sprintf("%s | %d/%d spp | %.0f fps", e.title, snap.Accumulated, snap.Target, snap.FPS))
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

func (e *engine) renderFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.renderer.BeginFrame(); err != nil {
		return
	}
	e.raytracer.RenderFrame(e.renderer)
	e.renderer.EndFrame()
	e.renderer.Present()
}

// handleReload swaps in every scene the watcher reloads until quit.
func (e *engine) handleReload() {
	defer e.wg.Done()

	for {
		select {
		case <-e.quitChannel:
			return
		case sf, ok := <-e.watcher.Updates():
			if !ok {
				return
			}
			if err := e.swapScene(sf); err != nil {
				log.Printf("[Engine] keeping previous scene: %v", err)
			}
		case err, ok := <-e.watcher.Errors():
			if !ok {
				return
			}
			log.Printf("[Engine] scene reload failed: %v", err)
		}
	}
}

// swapScene replaces the raytracer with one rendering sf. The viewport and camera pose carry over.
func (e *engine) swapScene(sf *loader.SceneFile) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	params := sf.Params
	params.ViewportSize = e.raytracer.RenderParams().ViewportSize
	rt, err := e.newRaytracer(sf.Scene, params, e.raytracer.Transform())
	if err != nil {
		return err
	}

	e.raytracer.Release()
	e.raytracer = rt
	e.scene = sf.Scene
	log.Printf("[Engine] switched to scene %q", sf.Name)
	return nil
}

func (e *engine) newRaytracer(sc scene.Scene, params raytracer.RenderParams, transform camera.Transform) (raytracer.Raytracer, error) {
	maxW, maxH := e.window.MaxFramebufferSize()
	opts := append([]raytracer.RaytracerBuilderOption{raytracer.WithSkyModel(e.skyModel)}, e.raytracerOptions...)
	return raytracer.New(e.renderer, sc, params, maxViewportResolution(maxW, maxH, params.ViewportSize), transform, opts...)
}

// updateView applies mutate to copies of the current parameters and pose and hands them to the raytracer.
func (e *engine) updateView(mutate func(p *raytracer.RenderParams, t *camera.Transform)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	params, transform := e.raytracer.RenderParams(), e.raytracer.Transform()
	mutate(&params, &transform)
	return e.raytracer.SetRenderParams(e.renderer, params, transform)
}

// progress feeds the profiler.
func (e *engine) progress() (uint32, uint32) {
	rt := e.Raytracer()
	return rt.AccumulatedSamples(), rt.RenderParams().Sampling.MaxSamplesPerPixel
}

// bindWindow routes window input to the camera controller and the raytracer.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		e.renderer.Resize(width, height)
		e.mu.Unlock()
		if width <= 0 || height <= 0 {
			return
		}
		err := e.updateView(func(p *raytracer.RenderParams, _ *camera.Transform) {
			p.ViewportSize = [2]uint32{uint32(width), uint32(height)}
		})
		if err != nil {
			log.Printf("[Engine] resize to %dx%d rejected: %v", width, height, err)
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		err := e.updateView(func(p *raytracer.RenderParams, _ *camera.Transform) {
			p.Camera.VfovDegrees = zoom(p.Camera.VfovDegrees, delta)
		})
		if err != nil {
			log.Printf("[Engine] zoom rejected: %v", err)
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyR:
			if e.scenePath != "" {
				go func() {
					if err := e.LoadScene(e.scenePath); err != nil {
						log.Printf("[Engine] reload of %s failed: %v", e.scenePath, err)
					}
				}()
			}
		case common.KeyP:
			e.toggleProfiler()
		default:
			e.controller.KeyDown(keyCode)
		}
	})
	e.window.SetKeyUpCallback(e.controller.KeyUp)
	e.window.SetLookStartCallback(func(x, y int32) { e.controller.LookStart(x, y) })
	e.window.SetLookEndCallback(func(_, _ int32) { e.controller.LookEnd() })
	e.window.SetMouseMoveCallback(e.controller.MouseMove)
}

// toggleProfiler flips profiling from the window thread while the render loop reads it.
func (e *engine) toggleProfiler() {
	for {
		old := e.profilingEnabled.Load()
		if e.profilingEnabled.CompareAndSwap(old, !old) {
			return
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending update so the loop always sees the latest rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

// resolveSkyModel prefers an explicit model, then a dataset file, then a uniform sky.
func resolveSkyModel(model sky.Model, datasetPath string) (sky.Model, error) {
	if model != nil {
		return model, nil
	}
	if datasetPath != "" {
		return loadSkyModel(datasetPath)
	}
	log.Printf("[Engine] No sky dataset configured, using a uniform sky")
	return sky.NewUniformModel(nil), nil
}

// loadSkyModel reads a Hosek-Wilkie RGB dataset file.
func loadSkyModel(path string) (sky.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSkyDataset, err)
	}
	defer f.Close()

	dataset, err := hosek.LoadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSkyDataset, path, err)
	}
	model, err := hosek.NewModel(dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSkyDataset, path, err)
	}
	return model, nil
}

// maxViewportResolution sizes the accumulation buffer for the largest framebuffer the window can
// reach, in pixels. The current viewport always fits, even when the window reports no limit.
func maxViewportResolution(maxWidth, maxHeight int, viewport [2]uint32) uint32 {
	current := viewport[0] * viewport[1]
	if maxWidth > 0 && maxHeight > 0 {
		return max(uint32(maxWidth)*uint32(maxHeight), current)
	}
	return current
}

// zoom narrows the field of view for positive scroll deltas.
func zoom(vfov, delta float32) float32 {
	return min(maxVfovDegrees, max(minVfovDegrees, vfov-delta*zoomDegreesPerStep))
}

// frameDuration converts a frame rate into the minimum frame time, 0 meaning uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
