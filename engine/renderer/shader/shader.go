package shader

import (
	"errors"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader provides an entry point for.
type ShaderType int

const (
	// ShaderTypeVertex is the stage that places the fullscreen quad.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the stage that runs once per pixel, where the raytracing kernel lives.
	ShaderTypeFragment
)

// ErrEmptySource is returned when a shader is created from empty WGSL source.
var ErrEmptySource = errors.New("shader source is empty")

// visibility is the shader stage flag each bind group entry of a stage is visible to.
var visibility = map[ShaderType]wgpu.ShaderStage{
	ShaderTypeVertex:   wgpu.ShaderStageVertex,
	ShaderTypeFragment: wgpu.ShaderStageFragment,
}

type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string

	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor
	varNames         map[int]map[int]string
	vertexLayouts    map[int][]wgpu.VertexBufferLayout
	declarations     []Annotation
}

// Shader is a pre-processed WGSL shader for one pipeline stage, together with the layouts
// parsed out of it.
type Shader interface {
	// Key returns the label the shader module is created with.
	Key() string

	// Source returns the WGSL source after pre-processing.
	Source() string

	// ShaderType returns the stage the shader was parsed for.
	ShaderType() ShaderType

	// EntryPoint returns the name of the stage's entry point function, or "" if the source has none.
	EntryPoint() string

	// BindGroupLayoutDescriptor returns the layout of one bind group, or an empty descriptor
	// when the shader does not use the group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the entries of that group sorted by binding
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns the layouts of every bind group the shader uses.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at a group and binding, or "".
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName looks up the binding a variable is declared at within a group.
	//
	// Parameters:
	//   - group: the @group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the @binding index, or -1
	//   - bool: true if the variable is declared in the group
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayout returns the vertex buffer layout for one buffer slot.
	VertexLayout(slot int) []wgpu.VertexBufferLayout

	// VertexLayouts returns the vertex buffer layouts keyed by slot. Only vertex shaders have any.
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// Declarations returns the @oxy:group annotations of the source in order.
	// The raytracer checks them against the records it uploads.
	Declarations() []Annotation
}

var _ Shader = &shader{}

// ParseShader pre-processes WGSL source and parses its entry point, vertex layouts and bind group layouts.
//
// Parameters:
//   - key: the label of the shader module
//   - shaderType: the stage the source is written for
//   - source: WGSL source, which may contain @oxy: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: ErrEmptySource, or an error for a malformed annotation or a non-buffer binding
func ParseShader(key string, shaderType ShaderType, source string) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("%s: %w", key, ErrEmptySource)
	}
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("failed to pre-process %s: %w", key, err)
	}

	s := &shader{
		key:           key,
		source:        processed,
		shaderType:    shaderType,
		entryPoint:    parseEntryPoint(processed, shaderType),
		vertexLayouts: make(map[int][]wgpu.VertexBufferLayout),
		declarations:  append([]Annotation(nil), pp.Declarations()...),
	}
	if shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(processed)
	}
	s.bindGroupLayouts, s.varNames, err = parseBindGroupLayouts(processed, visibility[shaderType])
	if err != nil {
		return nil, fmt.Errorf("failed to parse bind groups of %s: %w", key, err)
	}
	return s, nil
}

// NewShaderFromSource is ParseShader for sources known to be valid, typically embedded with go:embed.
// Panics if the source cannot be parsed.
//
// Parameters:
//   - key: the label of the shader module
//   - shaderType: the stage the source is written for
//   - source: WGSL source, which may contain @oxy: annotations
//
// Returns:
//   - Shader: the parsed shader
func NewShaderFromSource(key string, shaderType ShaderType, source string) Shader {
	s, err := ParseShader(key, shaderType, source)
	if err != nil {
		panic(fmt.Sprintf("shader: %v", err))
	}
	return s
}

// NewShader reads a WGSL file and parses it like NewShaderFromSource. Panics if the file cannot be read.
//
// Parameters:
//   - key: the label of the shader module
//   - shaderType: the stage the source is written for
//   - sourcePath: the WGSL file to read
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read %s: %v", sourcePath, err))
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayouts[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayouts
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.varNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.varNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayout(slot int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[slot]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}
