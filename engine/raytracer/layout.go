package raytracer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/quad"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/sampling"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
	"github.com/cogentcore/webgpu/wgpu"
)

var ErrKernelLayout = errors.New("kernel layout does not match the GPU records")

const (
	groupQuad = iota
	groupFrame
	groupView
	groupScene
	groupCount
)

const (
	bindingQuadUniforms = 0

	bindingFrameData   = 0
	bindingImageBuffer = 1

	bindingCamera   = 0
	bindingSampling = 1
	bindingSky      = 2

	bindingSpheres   = 0
	bindingMaterials = 1
	bindingTextures  = 2
	bindingLights    = 3
)

// kernelSlot is one buffer binding the raytracer writes to, and what the shaders must declare there.
type kernelSlot struct {
	group      int
	binding    int
	typeKey    shader.AnnotationArg
	array      bool
	bufferType wgpu.BufferBindingType
	size       uint64
}

// kernelSlots lists every binding of the four groups. Array slots carry the element stride.
func kernelSlots() []kernelSlot {
	var (
		uniforms  quad.Uniforms
		frameData sampling.GPUFrameData
		cam       camera.GPUCamera
		params    sampling.GPUSamplingParams
		skyState  sky.GPUSkyState
		sphere    scene.GPUSphere
		material  scene.GPUMaterial
	)
	return []kernelSlot{
		{groupQuad, bindingQuadUniforms, shader.AnnotationArgQuadUniforms, false, wgpu.BufferBindingTypeUniform, uint64(uniforms.Size())},
		{groupFrame, bindingFrameData, shader.AnnotationArgFrameData, false, wgpu.BufferBindingTypeUniform, uint64(frameData.Size())},
		{groupFrame, bindingImageBuffer, shader.AnnotationArgTexel, true, wgpu.BufferBindingTypeStorage, scene.TexelSize},
		{groupView, bindingCamera, shader.AnnotationArgCamera, false, wgpu.BufferBindingTypeUniform, uint64(cam.Size())},
		{groupView, bindingSampling, shader.AnnotationArgSamplingParams, false, wgpu.BufferBindingTypeUniform, uint64(params.Size())},
		{groupView, bindingSky, shader.AnnotationArgSkyState, false, wgpu.BufferBindingTypeReadOnlyStorage, uint64(skyState.Size())},
		{groupScene, bindingSpheres, shader.AnnotationArgSphere, true, wgpu.BufferBindingTypeReadOnlyStorage, uint64(sphere.Size())},
		{groupScene, bindingMaterials, shader.AnnotationArgMaterial, true, wgpu.BufferBindingTypeReadOnlyStorage, uint64(material.Size())},
		{groupScene, bindingTextures, shader.AnnotationArgTexel, true, wgpu.BufferBindingTypeReadOnlyStorage, scene.TexelSize},
		{groupScene, bindingLights, shader.AnnotationArgU32, true, wgpu.BufferBindingTypeReadOnlyStorage, scene.LightSize},
	}
}

// VerifyKernelLayout checks that the shaders of a pipeline declare exactly the bindings the raytracer
// writes, with the bound types and byte sizes of the Go GPU records.
//
// Parameters:
//   - p: a pipeline holding the quad vertex shader and a raytracing fragment kernel
//
// Returns:
//   - error: nil, or ErrKernelLayout wrapped with the first mismatching group and binding
func VerifyKernelLayout(p pipeline.Pipeline) error {
	declared := make(map[[2]int]shader.Annotation)
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		s := p.Shader(st)
		if s == nil {
			return fmt.Errorf("%w: pipeline %q has no shader for stage %d", ErrKernelLayout, p.PipelineKey(), st)
		}
		for _, d := range s.Declarations() {
			declared[[2]int{*d.Group, *d.Binding}] = d
		}
	}

	descriptors := p.BindGroupLayoutDescriptors()
	slots := kernelSlots()
	if len(declared) != len(slots) {
		return fmt.Errorf("%w: %d bindings declared, %d expected", ErrKernelLayout, len(declared), len(slots))
	}
	if len(descriptors) != groupCount {
		return fmt.Errorf("%w: %d bind groups, %d expected", ErrKernelLayout, len(descriptors), groupCount)
	}

	for _, slot := range slots {
		d, ok := declared[[2]int{slot.group, slot.binding}]
		if !ok {
			return fmt.Errorf("%w: group %d binding %d is not declared", ErrKernelLayout, slot.group, slot.binding)
		}
		if d.TypeKey() != slot.typeKey || d.IsArray() != slot.array {
			return fmt.Errorf("%w: group %d binding %d binds %s, expected %s", ErrKernelLayout, slot.group, slot.binding, d.Args[2], slot.typeKey)
		}

		entry, ok := findEntry(descriptors[slot.group], slot.binding)
		if !ok {
			return fmt.Errorf("%w: group %d binding %d has no layout entry", ErrKernelLayout, slot.group, slot.binding)
		}
		if entry.Buffer.Type != slot.bufferType {
			return fmt.Errorf("%w: group %d binding %d has buffer type %v, expected %v", ErrKernelLayout, slot.group, slot.binding, entry.Buffer.Type, slot.bufferType)
		}
		if entry.Buffer.MinBindingSize != slot.size {
			return fmt.Errorf("%w: group %d binding %d is %d bytes in the shader, %d bytes in Go", ErrKernelLayout, slot.group, slot.binding, entry.Buffer.MinBindingSize, slot.size)
		}
	}
	return nil
}

func findEntry(descriptor wgpu.BindGroupLayoutDescriptor, binding int) (wgpu.BindGroupLayoutEntry, bool) {
	for _, e := range descriptor.Entries {
		if int(e.Binding) == binding {
			return e, true
		}
	}
	return wgpu.BindGroupLayoutEntry{}, false
}
