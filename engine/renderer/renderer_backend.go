package renderer

import (
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU API the Renderer drives.
type RendererBackendType int

const (
	// BackendTypeWGPU drives the GPU through wgpu-native.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how finished frames reach the display.
type PresentMode int

const (
	// PresentModeVSync waits for the vertical blank, capping the frame rate at the refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents immediately. Progressive rendering converges fastest this way.
	PresentModeUncapped
)

// rendererBackend is what a GPU API has to provide for the Renderer.
// The Renderer serialises pipeline cache access, the backend guards its own device state.
type rendererBackend interface {
	// configureSurface (re)creates the swapchain at the given size.
	configureSurface(width, height int)
	setPresentMode(mode PresentMode)

	registerRenderPipeline(p pipeline.Pipeline) error
	initMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error
	initBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	writeBuffers(writes []bind_group_provider.BufferWrite)

	beginFrame() error
	drawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
	endFrame()
	present()
}
