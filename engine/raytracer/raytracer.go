// Package raytracer drives the progressive path tracer. It owns the accumulation bookkeeping and the
// GPU buffers of the raytracing kernel, and records one full-screen draw per frame through a GPU.
package raytracer

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/quad"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/sampling"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
)

//go:embed shaders/quad.wgsl
var quadShaderSource string

//go:embed shaders/raytracer.wgsl
var kernelShaderSource string

// DefaultPipelineKey is the key the raytracing pipeline is registered under unless WithPipelineKey is used.
const DefaultPipelineKey = "raytracer"

var (
	ErrNoSkyModel        = errors.New("raytracer requires a sky model")
	ErrViewportTooLarge  = errors.New("viewport exceeds the image buffer resolution")
	ErrKernelSource      = errors.New("invalid kernel source")
	ErrGPUInitialization = errors.New("failed to initialize GPU resources")
)

// Raytracer renders a scene progressively: every frame adds samples to a per pixel accumulation buffer
// on the GPU until the sampling budget is spent. Any change of parameters or camera pose restarts
// the accumulation.
//
// A Raytracer is safe for concurrent use. RenderFrame and SetRenderParams are serialized internally.
type Raytracer interface {
	// RenderFrame uploads this frame's sampling descriptor and frame data, then records the full-screen draw.
	// It must be called between the GPU's BeginFrame and EndFrame. Draw failures are logged, the frame is still counted.
	//
	// Parameters:
	//   - gpu: the GPU to record into
	RenderFrame(gpu GPU)

	// SetRenderParams replaces the render parameters and the camera pose. Nothing happens if both are unchanged.
	// Otherwise the new values are validated, the camera and sky records are uploaded and the accumulation restarts.
	// On error no state changes.
	//
	// Parameters:
	//   - gpu: the GPU to upload to
	//   - params: the new render parameters
	//   - transform: the new camera pose
	//
	// Returns:
	//   - error: a validation error, see RenderParams.Validate and ErrViewportTooLarge
	SetRenderParams(gpu GPU, params RenderParams, transform camera.Transform) error

	// Progress returns the fraction of the sampling budget already accumulated.
	//
	// Returns:
	//   - float32: a value in [0, 1]
	Progress() float32

	// State returns the phase of the accumulation.
	//
	// Returns:
	//   - sampling.ProgressState: reset, accumulating or completed
	State() sampling.ProgressState

	// AccumulatedSamples returns the number of samples per pixel in the image buffer.
	//
	// Returns:
	//   - uint32: accumulated samples per pixel
	AccumulatedSamples() uint32

	// FrameNumber returns the number of the next frame to render, starting at 1.
	//
	// Returns:
	//   - uint32: the frame number
	FrameNumber() uint32

	// RenderParams returns the parameters in effect.
	//
	// Returns:
	//   - RenderParams: the current parameters
	RenderParams() RenderParams

	// Transform returns the camera pose in effect.
	//
	// Returns:
	//   - camera.Transform: the current pose
	Transform() camera.Transform

	// PipelineKey returns the key of the registered raytracing pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Release frees the GPU buffers and bind groups held by the raytracer.
	Release()
}

type raytracer struct {
	mu *sync.Mutex

	pipelineKey  string
	skyModel     sky.Model
	kernelSource string
	kernelPath   string

	params      RenderParams
	transform   camera.Transform
	progress    *sampling.Progress
	frameNumber uint32
	maxPixels   uint32

	mesh   bind_group_provider.BindGroupProvider
	groups []bind_group_provider.BindGroupProvider
}

var _ Raytracer = &raytracer{}

// New validates the initial parameters, encodes the scene, registers the raytracing pipeline and
// uploads every buffer the kernel reads. The image buffer holds maxViewportResolution pixels so the
// viewport can grow up to that size without reallocation.
//
// Parameters:
//   - gpu: the GPU creating the resources
//   - sc: the scene to render
//   - params: the initial render parameters
//   - maxViewportResolution: the number of pixels of the largest viewport, typically the largest monitor
//   - transform: the initial camera pose
//   - options: variadic list of RaytracerBuilderOption functions, WithSkyModel is required
//
// Returns:
//   - Raytracer: the ready raytracer
//   - error: a validation, scene, kernel or GPU error
func New(gpu GPU, sc scene.Scene, params RenderParams, maxViewportResolution uint32, transform camera.Transform, options ...RaytracerBuilderOption) (Raytracer, error) {
	r := &raytracer{
		mu:           &sync.Mutex{},
		pipelineKey:  DefaultPipelineKey,
		kernelSource: kernelShaderSource,
		progress:     sampling.NewProgress(),
		frameNumber:  1,
		maxPixels:    maxViewportResolution,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.skyModel == nil {
		return nil, ErrNoSkyModel
	}
	skyState, err := params.validate(r.skyModel)
	if err != nil {
		return nil, err
	}
	if err := r.checkViewport(params); err != nil {
		return nil, err
	}

	encoded, err := sc.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode scene %q: %w", sc.Name(), err)
	}

	if r.kernelPath != "" {
		data, err := os.ReadFile(r.kernelPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKernelSource, err)
		}
		r.kernelSource = string(data)
	}
	p, err := buildPipeline(r.pipelineKey, r.kernelSource)
	if err != nil {
		return nil, err
	}
	if err := VerifyKernelLayout(p); err != nil {
		return nil, err
	}
	if err := gpu.RegisterPipelines(p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGPUInitialization, err)
	}

	if err := r.initBuffers(gpu, p, encoded); err != nil {
		r.Release()
		gpu.ReleasePipeline(r.pipelineKey)
		return nil, fmt.Errorf("%w: %w", ErrGPUInitialization, err)
	}

	r.params = params
	r.transform = transform

	cam := camera.NewGPUCamera(params.Camera, transform, params.Aspect())
	uniforms := quad.NewUniforms()
	frameData := sampling.NewGPUFrameData(params.ViewportSize[0], params.ViewportSize[1], r.frameNumber)
	gpu.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.groups[groupQuad], Binding: bindingQuadUniforms, Data: uniforms.Marshal()},
		{Provider: r.groups[groupFrame], Binding: bindingFrameData, Data: frameData.Marshal()},
		{Provider: r.groups[groupView], Binding: bindingCamera, Data: cam.Marshal()},
		{Provider: r.groups[groupView], Binding: bindingSky, Data: skyState.Marshal()},
		{Provider: r.groups[groupScene], Binding: bindingSpheres, Data: padded(encoded.Spheres, (&scene.GPUSphere{}).Size())},
		{Provider: r.groups[groupScene], Binding: bindingMaterials, Data: padded(encoded.Materials, (&scene.GPUMaterial{}).Size())},
		{Provider: r.groups[groupScene], Binding: bindingTextures, Data: padded(encoded.Textures, scene.TexelSize)},
		{Provider: r.groups[groupScene], Binding: bindingLights, Data: padded(encoded.LightIndices, scene.LightSize)},
	})

	log.Printf("[Raytracer] scene %q ready: %d spheres, %d materials, %d texels, %d lights, image buffer %d pixels",
		sc.Name(), encoded.SphereCount, encoded.MaterialCount, encoded.TexelCount, len(encoded.Lights), maxViewportResolution)
	return r, nil
}

// buildPipeline pre-processes both shaders and assembles the pipeline. The kernel can be user supplied,
// so any parse failure is reported as ErrKernelSource.
func buildPipeline(key, kernelSource string) (pipeline.Pipeline, error) {
	vertex := shader.NewShaderFromSource(key+" Quad", shader.ShaderTypeVertex, quadShaderSource)
	fragment, err := shader.ParseShader(key+" Kernel", shader.ShaderTypeFragment, kernelSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKernelSource, err)
	}
	if fragment.EntryPoint() == "" {
		return nil, fmt.Errorf("%w: no @fragment entry point", ErrKernelSource)
	}

	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vertex),
		pipeline.WithFragmentShader(fragment),
	), nil
}

func (r *raytracer) initBuffers(gpu GPU, p pipeline.Pipeline, encoded *scene.EncodedScene) error {
	descriptors := p.BindGroupLayoutDescriptors()
	sizes := map[int]map[int]uint64{
		groupFrame: {
			bindingImageBuffer: uint64(r.maxPixels) * scene.TexelSize,
		},
		groupScene: {
			bindingSpheres:   uint64(len(padded(encoded.Spheres, (&scene.GPUSphere{}).Size()))),
			bindingMaterials: uint64(len(padded(encoded.Materials, (&scene.GPUMaterial{}).Size()))),
			bindingTextures:  uint64(len(padded(encoded.Textures, scene.TexelSize))),
			bindingLights:    uint64(len(padded(encoded.LightIndices, scene.LightSize))),
		},
	}
	labels := [groupCount]string{"Quad Uniforms", "Frame", "View", "Scene"}

	r.groups = make([]bind_group_provider.BindGroupProvider, groupCount)
	for g := range groupCount {
		r.groups[g] = bind_group_provider.NewBindGroupProvider(labels[g])
		if err := gpu.InitBindGroup(r.groups[g], descriptors[g], nil, sizes[g]); err != nil {
			return fmt.Errorf("bind group %d: %w", g, err)
		}
	}

	r.mesh = bind_group_provider.NewBindGroupProvider("Quad Mesh")
	vertexData, vertexCount := quad.VertexData()
	if err := gpu.InitMeshBuffers(r.mesh, vertexData, vertexCount); err != nil {
		return fmt.Errorf("quad mesh: %w", err)
	}
	return nil
}

// padded returns data, or one zeroed element when data is empty so the buffer stays bindable.
func padded(data []byte, elementSize int) []byte {
	if len(data) == 0 {
		return make([]byte, elementSize)
	}
	return data
}

func (r *raytracer) checkViewport(params RenderParams) error {
	pixels := uint64(params.ViewportSize[0]) * uint64(params.ViewportSize[1])
	if pixels > uint64(r.maxPixels) {
		return fmt.Errorf("%w: %dx%d is more than %d pixels", ErrViewportTooLarge, params.ViewportSize[0], params.ViewportSize[1], r.maxPixels)
	}
	return nil
}

func (r *raytracer) RenderFrame(gpu GPU) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samplingParams := r.progress.NextFrame(r.params.Sampling)
	frameData := sampling.NewGPUFrameData(r.params.ViewportSize[0], r.params.ViewportSize[1], r.frameNumber)
	gpu.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.groups[groupView], Binding: bindingSampling, Data: samplingParams.Marshal()},
		{Provider: r.groups[groupFrame], Binding: bindingFrameData, Data: frameData.Marshal()},
	})

	if err := gpu.DrawCall(r.pipelineKey, r.mesh, 1, r.groups); err != nil {
		log.Printf("[Raytracer] frame %d draw failed: %v", r.frameNumber, err)
	}
	r.frameNumber++
}

func (r *raytracer) SetRenderParams(gpu GPU, params RenderParams, transform camera.Transform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if params.Equal(r.params) && transform.Equal(r.transform) {
		return nil
	}
	skyState, err := params.validate(r.skyModel)
	if err != nil {
		return err
	}
	if err := r.checkViewport(params); err != nil {
		return err
	}

	cam := camera.NewGPUCamera(params.Camera, transform, params.Aspect())
	gpu.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.groups[groupView], Binding: bindingCamera, Data: cam.Marshal()},
		{Provider: r.groups[groupView], Binding: bindingSky, Data: skyState.Marshal()},
	})

	r.params = params
	r.transform = transform
	r.progress.Reset()
	return nil
}

func (r *raytracer) Progress() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.Fraction(r.params.Sampling)
}

func (r *raytracer) State() sampling.ProgressState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.State(r.params.Sampling)
}

func (r *raytracer) AccumulatedSamples() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.AccumulatedSamples()
}

func (r *raytracer) FrameNumber() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameNumber
}

func (r *raytracer) RenderParams() RenderParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.params
}

func (r *raytracer) Transform() camera.Transform {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transform
}

func (r *raytracer) PipelineKey() string {
	return r.pipelineKey
}

func (r *raytracer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g != nil {
			g.Release()
		}
	}
	if r.mesh != nil {
		r.mesh.Release()
	}
}
