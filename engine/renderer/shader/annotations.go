package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a WGSL line comment, as in //@oxy:include camera.
const annotationPrefix = "@oxy:"

// AnnotationType is the directive of an annotation.
type AnnotationType string

const (
	// annotationTypeInclude pastes the WGSL struct of a GPU record in place of the line.
	//
	// Syntax: //@oxy:include <type>
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup declares a buffer binding and records it as a declaration.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type | array<type>>
	//
	// Example: //@oxy:group 3 0 storage_read spheres array<sphere>
	AnnotationTypeBindingGroup AnnotationType = "group"
)

// Annotation is one parsed @oxy: line.
type Annotation struct {
	Type AnnotationType

	// Args is [type] for an include and [address space, variable name, bound type] for a group.
	Args []AnnotationArg

	// Line is the 1-based source line.
	Line int

	// Group and Binding are set for group annotations only.
	Group   *int
	Binding *int
}

// TypeKey returns the bound type of a group annotation with any array<> wrapper removed.
//
// Returns:
//   - AnnotationArg: the element or record type key, or "" for include annotations
func (a Annotation) TypeKey() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return ""
	}
	inner, _ := strings.CutPrefix(string(a.Args[2]), "array<")
	return AnnotationArg(strings.TrimSuffix(inner, ">"))
}

// IsArray reports whether a group annotation binds a runtime-sized array.
func (a Annotation) IsArray() bool {
	return a.Type == AnnotationTypeBindingGroup && len(a.Args) >= 3 && strings.HasPrefix(string(a.Args[2]), "array<")
}

// AnnotationArg is a type key or address space key used in an annotation.
type AnnotationArg string

// ── Record types ──────────────────────────────────────────────────────────────
// Each key names a Go GPU record whose WGSL mirror is embedded from the record's package.

const (
	// AnnotationArgCamera is the pinhole or thin lens camera, see camera.GPUCamera.
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgQuadVertex is the fullscreen quad vertex input.
	AnnotationArgQuadVertex AnnotationArg = "quad_vertex"

	// AnnotationArgQuadUniforms holds the quad's view projection and model matrices.
	AnnotationArgQuadUniforms AnnotationArg = "quad_uniforms"

	// AnnotationArgFrameData holds the viewport size and frame number.
	AnnotationArgFrameData AnnotationArg = "frame_data"

	// AnnotationArgSamplingParams holds the per-frame sample count, bounce count and accumulation state.
	AnnotationArgSamplingParams AnnotationArg = "sampling_params"

	// AnnotationArgSkyState holds the cooked sky coefficients and sun direction.
	AnnotationArgSkyState AnnotationArg = "sky_state"

	// AnnotationArgSphere is one scene sphere.
	AnnotationArgSphere AnnotationArg = "sphere"

	// AnnotationArgMaterial is one scene material. Including it requires texture_descriptor first.
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgTextureDescriptor locates one texture in the texel arena.
	AnnotationArgTextureDescriptor AnnotationArg = "texture_descriptor"

	// AnnotationArgTexel is one RGB element of the texel arena and of the image buffer.
	AnnotationArgTexel AnnotationArg = "texel"

	// AnnotationArgU32 is the WGSL u32, used for the light index list. It can be bound but not included.
	AnnotationArgU32 AnnotationArg = "u32"
)

// ── Address spaces ────────────────────────────────────────────────────────────

const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// parseAnnotation parses one source line. Lines without the annotation prefix return nil and no error.
//
// Parameters:
//   - line: a line of WGSL source
//   - lineNum: the 1-based line number used in errors
//
// Returns:
//   - *Annotation: the annotation, or nil
//   - error: error if the line is a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, body, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(fields[0]) {
	case annotationTypeInclude:
		return parseInclude(fields[1:], lineNum)
	case AnnotationTypeBindingGroup:
		return parseGroup(fields[1:], lineNum)
	}
	return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, fields[0])
}

func parseInclude(args []string, lineNum int) (*Annotation, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("line %d: @oxy:include takes exactly one type", lineNum)
	}
	if gpuStructs[AnnotationArg(args[0])].source == "" {
		return nil, fmt.Errorf("line %d: %q is not an includable type", lineNum, args[0])
	}
	return &Annotation{
		Type: annotationTypeInclude,
		Args: []AnnotationArg{AnnotationArg(args[0])},
		Line: lineNum,
	}, nil
}

func parseGroup(args []string, lineNum int) (*Annotation, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("line %d: @oxy:group takes a group, binding, address space, variable name and type", lineNum)
	}
	group, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid group %q: %w", lineNum, args[0], err)
	}
	binding, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid binding %q: %w", lineNum, args[1], err)
	}
	if _, ok := addressSpaces[AnnotationArg(args[2])]; !ok {
		return nil, fmt.Errorf("line %d: unknown address space %q", lineNum, args[2])
	}

	a := &Annotation{
		Type:    AnnotationTypeBindingGroup,
		Args:    []AnnotationArg{AnnotationArg(args[2]), AnnotationArg(args[3]), AnnotationArg(args[4])},
		Line:    lineNum,
		Group:   &group,
		Binding: &binding,
	}
	if _, ok := gpuStructs[a.TypeKey()]; !ok {
		return nil, fmt.Errorf("line %d: unknown bound type %q", lineNum, args[4])
	}
	return a, nil
}
