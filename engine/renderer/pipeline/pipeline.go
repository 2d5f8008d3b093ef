package pipeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	// nil until registered with a Renderer
	renderPipeline *wgpu.RenderPipeline

	cullMode  wgpu.CullMode
	topology  wgpu.PrimitiveTopology
	frontFace wgpu.FrontFace
}

// Pipeline pairs the quad vertex shader with a fragment shader and the primitive state they are
// drawn with. Pipelines draw straight into the surface: there is no depth attachment, no blending
// and one sample per pixel, so every fragment the kernel shades lands on exactly one pixel.
type Pipeline interface {
	// PipelineKey returns the key the pipeline is registered and drawn under.
	PipelineKey() string

	// Shader returns the shader of a stage, or nil if the stage has none.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - shader.Shader: the shader or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// BindGroupLayoutDescriptors merges the bind group layouts of both stages.
	// A binding used by both stages is visible to both.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// RenderPipeline returns the GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace

	// SetRenderPipeline stores the GPU pipeline created by the renderer.
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release frees the GPU pipeline. The pipeline can be registered again afterwards.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates an unregistered Pipeline drawing triangle lists with no culling.
//
// Parameters:
//   - key: the key the pipeline is registered and drawn under
//   - opts: options such as WithVertexShader and WithFragmentShader
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:       key,
		cullMode:  wgpu.CullModeNone,
		topology:  wgpu.PrimitiveTopologyTriangleList,
		frontFace: wgpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	}
	return nil
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	var stages []map[int]wgpu.BindGroupLayoutDescriptor
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s != nil {
			stages = append(stages, s.BindGroupLayoutDescriptors())
		}
	}
	return mergeBindGroupLayouts(stages...)
}

// mergeBindGroupLayouts unions per-stage layouts group by group. Entries at the same binding
// have their visibility flags combined. Entries come back sorted by binding.
func mergeBindGroupLayouts(stages ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, layouts := range stages {
		for group, desc := range layouts {
			if byGroup[group] == nil {
				byGroup[group] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[group][e.Binding]; ok {
					e.Visibility |= existing.Visibility
				}
				byGroup[group][e.Binding] = e
			}
		}
	}

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for group, entries := range byGroup {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		merged[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return merged
}
