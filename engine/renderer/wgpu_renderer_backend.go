package renderer

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoFrame is returned by DrawCall outside of BeginFrame and EndFrame.
	ErrNoFrame = errors.New("no frame in progress")

	// ErrFrameInFlight is returned by BeginFrame while the previous frame has not been presented.
	ErrFrameInFlight = errors.New("previous frame not yet presented")
)

// wgpuBackend draws into a window surface with a single color attachment. There is no depth
// buffer and no multisampling: the raytracer writes every pixel exactly once per frame.
type wgpuBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	clearColor    wgpu.Color

	// current frame, set between beginFrame and present
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

var _ rendererBackend = &wgpuBackend{}

// newWGPUBackend requests an adapter compatible with the surface and a device from it.
// The calling goroutine is locked to its OS thread, which must be the one that created the window.
func newWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, clearColor wgpu.Color) (*wgpuBackend, error) {
	runtime.LockOSThread()

	b := &wgpuBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		clearColor:  clearColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Raytracer Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	log.Printf("[Renderer] device ready, fallback=%t", forceFallbackAdapter)
	return b, nil
}

func (b *wgpuBackend) configureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuBackend) setPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if mode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
		return
	}
	b.presentMode = wgpu.PresentModeImmediate
}

func (b *wgpuBackend) registerRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("a render pipeline needs both a vertex and a fragment shader")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.shaderModule(vertexShader)
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.shaderModule(fragmentShader)
	if err != nil {
		return err
	}
	defer fs.Release()

	layout, err := b.pipelineLayout(p)
	if err != nil {
		return err
	}
	defer layout.Release()

	var vertexLayouts []wgpu.VertexBufferLayout
	for slot := 0; slot < len(vertexShader.VertexLayouts()); slot++ {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(slot)...)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline: %w", err)
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuBackend) shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: s.Source()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", s.Key(), err)
	}
	return module, nil
}

// pipelineLayout creates one bind group layout per group index up to the highest group used.
func (b *wgpuBackend) pipelineLayout(p pipeline.Pipeline) (*wgpu.PipelineLayout, error) {
	descriptors := p.BindGroupLayoutDescriptors()
	groups := 0
	for g := range descriptors {
		groups = max(groups, g+1)
	}

	layouts := make([]*wgpu.BindGroupLayout, groups)
	defer func() {
		for _, l := range layouts {
			if l != nil {
				l.Release()
			}
		}
	}()
	for g := range layouts {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s Group %d", p.PipelineKey(), g)
		l, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("failed to create layout of group %d: %w", g, err)
		}
		layouts[g] = l
	}

	return b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
}

func (b *wgpuBackend) initMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error {
	if len(vertexData) == 0 {
		return fmt.Errorf("mesh %s has no vertex data", provider.Label())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertices",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(buf, 0, vertexData)
	provider.SetVertexBuffer(buf)
	provider.SetVertexCount(vertexCount)
	return nil
}

func (b *wgpuBackend) initBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		if layout, err = b.device.CreateBindGroupLayout(&descriptor); err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		binding := int(entry.Binding)
		buf := provider.Buffer(binding)
		if buf == nil {
			usage, err := bufferUsage(entry.Buffer.Type)
			if err != nil {
				return fmt.Errorf("binding %d of %s: %w", binding, provider.Label(), err)
			}
			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s Binding %d", provider.Label(), binding),
				Size:  size,
				Usage: usage | bufferUsageOverrides[binding],
			})
			if err != nil {
				return err
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Size:    wgpu.WholeSize,
		})
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label(),
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// bufferUsage is the usage a buffer needs to back a binding of the given type and receive uploads.
func bufferUsage(bindingType wgpu.BufferBindingType) (wgpu.BufferUsage, error) {
	switch bindingType {
	case wgpu.BufferBindingTypeUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst, nil
	case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst, nil
	}
	return 0, errors.New("not a buffer binding")
}

func (b *wgpuBackend) writeBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if buf := w.Provider.Buffer(w.Binding); buf != nil && len(w.Data) > 0 {
			b.queue.WriteBuffer(buf, w.Offset, w.Data)
		}
	}
}

func (b *wgpuBackend) beginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.texture != nil {
		return ErrFrameInFlight
	}

	texture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		texture.Release()
		return err
	}

	b.texture, b.view, b.encoder = texture, view, encoder
	b.pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: b.clearColor,
		}},
	})
	return nil
}

func (b *wgpuBackend) drawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return ErrNoFrame
	}
	rp := p.RenderPipeline()
	if rp == nil {
		return fmt.Errorf("pipeline %q has not been registered", p.PipelineKey())
	}

	b.pass.SetPipeline(rp)
	for group, bg := range bindGroups {
		b.pass.SetBindGroup(uint32(group), bg.BindGroup(), nil)
	}
	b.pass.SetVertexBuffer(0, mesh.VertexBuffer(), 0, wgpu.WholeSize)
	b.pass.Draw(uint32(mesh.VertexCount()), instanceCount, 0, 0)
	return nil
}

func (b *wgpuBackend) endFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass.Release()
	b.pass = nil

	commands, err := b.encoder.Finish(nil)
	b.encoder.Release()
	b.encoder = nil
	if err != nil {
		log.Printf("[Renderer] failed to finish frame: %v", err)
		b.releaseFrame()
		return
	}
	b.queue.Submit(commands)
	commands.Release()
}

func (b *wgpuBackend) present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.texture == nil {
		return
	}
	b.surface.Present()
	b.releaseFrame()
}

// releaseFrame drops the surface texture of the current frame. Callers hold mu.
func (b *wgpuBackend) releaseFrame() {
	if b.view != nil {
		b.view.Release()
		b.view = nil
	}
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
}
