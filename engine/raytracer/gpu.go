package raytracer

import (
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// GPU is the slice of the renderer the raytracer needs. It is passed explicitly to every call that
// touches the device so the raytracer never holds on to it.
type GPU interface {
	// RegisterPipelines creates the GPU render pipeline for each Pipeline.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReleasePipeline frees the pipeline registered under key. Unknown keys are ignored.
	//
	// Parameters:
	//   - key: the pipeline key
	ReleasePipeline(key string)

	// InitMeshBuffers uploads vertex data onto a mesh provider.
	//
	// Parameters:
	//   - provider: the mesh provider
	//   - vertexData: the raw vertex bytes
	//   - vertexCount: the number of vertices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData []byte, vertexCount int) error

	// InitBindGroup creates the buffers and the bind group described by a layout descriptor.
	//
	// Parameters:
	//   - provider: the provider receiving the resources
	//   - descriptor: the bind group layout descriptor
	//   - bufferUsageOverrides: extra usage flags per binding, may be nil
	//   - bufferSizeOverrides: buffer sizes per binding replacing MinBindingSize, may be nil
	//
	// Returns:
	//   - error: an error if creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues buffer uploads.
	//
	// Parameters:
	//   - writes: the uploads, applied in order
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// DrawCall encodes one draw in the current render pass.
	//
	// Parameters:
	//   - pipelineKey: the registered pipeline to draw with
	//   - meshProvider: the provider holding the vertex buffer
	//   - instanceCount: the number of instances
	//   - bindGroups: the bind groups, the slice index is the group index
	//
	// Returns:
	//   - error: an error if no frame is in progress or the pipeline is unknown
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

var _ GPU = renderer.Renderer(nil)
