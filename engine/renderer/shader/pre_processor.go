package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/quad"
	"github.com/Carmen-Shannon/oxy-rt/engine/sampling"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
)

// gpuStruct is a record type the kernel can include or bind. source is empty for WGSL built-ins.
type gpuStruct struct {
	source   string
	wgslType string
}

// gpuStructs pairs each type key with the WGSL mirror of its Go record. The sources live next
// to the Go types so the two are edited together.
var gpuStructs = map[AnnotationArg]gpuStruct{
	AnnotationArgCamera:            {camera.GPUCameraSource, "Camera"},
	AnnotationArgQuadVertex:        {quad.GPUVertexSource, "QuadVertex"},
	AnnotationArgQuadUniforms:      {quad.GPUUniformsSource, "QuadUniforms"},
	AnnotationArgFrameData:         {sampling.GPUFrameDataSource, "FrameData"},
	AnnotationArgSamplingParams:    {sampling.GPUSamplingParamsSource, "SamplingParams"},
	AnnotationArgSkyState:          {sky.GPUSkyStateSource, "SkyState"},
	AnnotationArgSphere:            {scene.GPUSphereSource, "Sphere"},
	AnnotationArgMaterial:          {scene.GPUMaterialSource, "Material"},
	AnnotationArgTextureDescriptor: {scene.GPUTextureDescriptorSource, "TextureDescriptor"},
	AnnotationArgTexel:             {scene.GPUTexelSource, "Texel"},
	AnnotationArgU32:               {"", "u32"},
}

// addressSpaces maps the address space keys of @oxy:group to their WGSL var<> qualifier.
var addressSpaces = map[AnnotationArg]string{
	annotationArgStorageTypeUniform:   "var<uniform>",
	annotationArgStorageTypeRead:      "var<storage, read>",
	annotationArgStorageTypeReadWrite: "var<storage, read_write>",
}

type preProcessor struct {
	declarations []Annotation
}

// PreProcessor expands @oxy: annotations in WGSL source. An include is replaced by the WGSL
// struct of a Go GPU record. A group annotation is replaced by the @group/@binding variable
// it describes and recorded as a declaration.
type PreProcessor interface {
	// Process expands every annotation in source. Declarations from an earlier call are discarded.
	//
	// Parameters:
	//   - source: WGSL source containing @oxy: annotations
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: error naming the line of the first malformed annotation
	Process(source string) (string, error)

	// Declarations returns the group annotations of the last Process call in source order.
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that knows every GPU record of the raytracer.
//
// Returns:
//   - PreProcessor: a pre-processor with no declarations
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			continue
		}
		expanded, err := p.expand(*a)
		if err != nil {
			return "", err
		}
		lines[i] = expanded
	}
	return strings.Join(lines, "\n"), nil
}

func (p *preProcessor) expand(a Annotation) (string, error) {
	switch a.Type {
	case annotationTypeInclude:
		st := gpuStructs[a.Args[0]]
		if st.source == "" {
			return "", fmt.Errorf("line %d: %q is not a struct and cannot be included", a.Line, a.Args[0])
		}
		return st.source, nil
	case AnnotationTypeBindingGroup:
		wgslType := gpuStructs[a.TypeKey()].wgslType
		if a.IsArray() {
			wgslType = "array<" + wgslType + ">"
		}
		p.declarations = append(p.declarations, a)
		return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addressSpaces[a.Args[0]], a.Args[1], wgslType), nil
	}
	return "", fmt.Errorf("line %d: unknown annotation type %q", a.Line, a.Type)
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
