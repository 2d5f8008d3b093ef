package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	backend       rendererBackend

	forceFallbackAdapter bool
	presentMode          *PresentMode
	clearColor           wgpu.Color
}

// Renderer owns the GPU device and the window surface. It registers pipelines by key, creates
// buffers and bind groups for BindGroupProviders and records one render pass per frame.
//
// A frame is BeginFrame, any number of DrawCall, EndFrame and Present, all on the thread
// that created the window.
type Renderer interface {
	// Pipeline returns the registered Pipeline with the given key, or nil.
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline of each Pipeline and registers it under its key.
	// A key that is already registered keeps its pipeline.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if a shader fails to compile or the pipeline cannot be created
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReleasePipeline frees the GPU pipeline registered under key and forgets it, so the key
	// can be registered again with a different kernel. Unknown keys are ignored.
	//
	// Parameters:
	//   - key: the pipeline key
	ReleasePipeline(key string)

	// Resize reconfigures the surface. Zero or negative sizes, as reported while minimised, are ignored.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// InitMeshBuffers uploads vertex data into a new vertex buffer on the provider.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - vertexData: the raw vertex bytes
	//   - vertexCount: the number of vertices a draw covers
	//
	// Returns:
	//   - error: an error if vertexData is empty or the buffer cannot be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitBindGroup creates a buffer for every entry of a bind group layout that the provider
	// does not hold yet, then the bind group over them.
	//
	// Parameters:
	//   - provider: the provider receiving the resources
	//   - descriptor: the layout of the group
	//   - bufferUsageOverrides: usage flags added per binding, may be nil
	//   - bufferSizeOverrides: buffer sizes per binding replacing MinBindingSize, may be nil
	//
	// Returns:
	//   - error: an error if an entry is not a buffer or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues uploads in order. Writes to bindings without a buffer are dropped.
	//
	// Parameters:
	//   - writes: the uploads
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and starts the render pass.
	//
	// Returns:
	//   - error: ErrFrameInFlight, or an error if the surface texture cannot be acquired
	BeginFrame() error

	// DrawCall records one draw into the current render pass.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - meshProvider: the provider holding the vertex buffer
	//   - instanceCount: the number of instances
	//   - bindGroups: the bind groups, the slice index is the group index
	//
	// Returns:
	//   - error: ErrNoFrame, or an error if the pipeline is unknown
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame ends the render pass and submits it.
	EndFrame()

	// Present shows the submitted frame and releases its surface texture.
	Present()

	// SetPresentMode changes how frames reach the display. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: PresentModeVSync or PresentModeUncapped
	SetPresentMode(mode PresentMode)
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the surface of a window, sized to the window.
//
// Parameters:
//   - backendType: the GPU API to use, BackendTypeWGPU
//   - window: the window providing the surface
//   - options: renderer options
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device is available
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		clearColor:    wgpu.Color{A: 1},
	}
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		b, err := newWGPUBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, r.clearColor)
		if err != nil {
			return nil, err
		}
		r.backend = b
	default:
		return nil, fmt.Errorf("unknown renderer backend %d", backendType)
	}

	if r.presentMode != nil {
		r.backend.setPresentMode(*r.presentMode)
	}
	r.backend.configureSurface(window.Width(), window.Height())
	return r, nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if existing, ok := r.pipelineCache[key]; ok && existing.RenderPipeline() != nil {
			continue
		}
		if err := r.backend.registerRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) ReleasePipeline(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pipelineCache[key]; ok {
		p.Release()
		delete(r.pipelineCache, key)
	}
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.configureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.setPresentMode(mode)
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	return r.backend.initMeshBuffers(provider, vertexData, vertexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.initBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.writeBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.beginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q is not registered", pipelineKey)
	}
	return r.backend.drawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() {
	r.backend.endFrame()
}

func (r *renderer) Present() {
	r.backend.present()
}
