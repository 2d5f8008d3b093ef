package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFragment = `//@oxy:include texel
//@oxy:include sphere
//@oxy:include sky_state

//@oxy:group 1 1 storage_read_write image array<texel>
//@oxy:group 2 2 storage_read sky sky_state
//@oxy:group 3 0 storage_read spheres array<sphere>
//@oxy:group 3 3 storage_read lights array<u32>

@fragment
fn fsMain(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

const testVertex = `//@oxy:include quad_vertex
//@oxy:include quad_uniforms
//@oxy:group 0 0 storage_uniform uniforms quad_uniforms

struct VertexOutput {
    @builtin(position) clipPosition: vec4<f32>,
    @location(0) texCoords: vec2<f32>,
}

@vertex
fn vsMain(in: QuadVertex) -> VertexOutput {
    var out: VertexOutput;
    return out;
}
`

func findEntry(t *testing.T, s Shader, group, binding int) wgpu.BindGroupLayoutEntry {
	t.Helper()
	for _, e := range s.BindGroupLayoutDescriptor(group).Entries {
		if int(e.Binding) == binding {
			return e
		}
	}
	require.Failf(t, "missing entry", "group %d binding %d", group, binding)
	return wgpu.BindGroupLayoutEntry{}
}

func TestPreProcessor_IncludeAndGroup(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(testFragment)
	require.NoError(t, err)

	assert.NotContains(t, out, "@oxy:")
	assert.Contains(t, out, "struct Texel {")
	assert.Contains(t, out, "struct SkyState {")
	assert.Contains(t, out, "@group(1) @binding(1) var<storage, read_write> image: array<Texel>;")
	assert.Contains(t, out, "@group(2) @binding(2) var<storage, read> sky: SkyState;")
	assert.Contains(t, out, "@group(3) @binding(3) var<storage, read> lights: array<u32>;")

	decls := pp.Declarations()
	require.Len(t, decls, 4)
	assert.Equal(t, 1, *decls[0].Group)
	assert.Equal(t, 1, *decls[0].Binding)
	assert.Equal(t, AnnotationArgTexel, decls[0].TypeKey())
	assert.True(t, decls[0].IsArray())
	assert.Equal(t, AnnotationArgSkyState, decls[1].TypeKey())
	assert.False(t, decls[1].IsArray())
	assert.Equal(t, AnnotationArgU32, decls[3].TypeKey())
}

func TestPreProcessor_ResetsDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process(testFragment)
	require.NoError(t, err)

	_, err = pp.Process("//@oxy:include camera\n")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestPreProcessor_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown include":      "//@oxy:include teapot",
		"include without type": "//@oxy:include",
		"unknown annotation":   "//@oxy:texture 0 0",
		"empty annotation":     "//@oxy:",
		"scalar include":       "//@oxy:include u32",
		"bad group number":     "//@oxy:group x 0 storage_read spheres array<sphere>",
		"bad address space":    "//@oxy:group 3 0 storage_write spheres array<sphere>",
		"unknown element type": "//@oxy:group 3 0 storage_read spheres array<teapot>",
		"missing group args":   "//@oxy:group 3 0 storage_read spheres",
		"unknown bound type":   "//@oxy:group 3 0 storage_read spheres teapot",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(src)
			assert.Error(t, err)
		})
	}
}

func TestAnnotation_TypeKeyOnInclude(t *testing.T) {
	a, err := parseAnnotation("//@oxy:include camera", 1)
	require.NoError(t, err)
	assert.Equal(t, AnnotationArg(""), a.TypeKey())
	assert.False(t, a.IsArray())
	assert.Nil(t, a.Group)

	none, err := parseAnnotation("let x = 1.0;", 2)
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestNewShaderFromSource_FragmentLayout(t *testing.T) {
	s := NewShaderFromSource("kernel", ShaderTypeFragment, testFragment)

	assert.Equal(t, "fsMain", s.EntryPoint())
	assert.Equal(t, ShaderTypeFragment, s.ShaderType())
	assert.Empty(t, s.VertexLayouts())
	assert.Len(t, s.Declarations(), 4)

	image := findEntry(t, s, 1, 1)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, image.Buffer.Type)
	assert.Equal(t, uint64(12), image.Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, image.Visibility)

	sky := findEntry(t, s, 2, 2)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, sky.Buffer.Type)
	assert.Equal(t, uint64(144), sky.Buffer.MinBindingSize)

	spheres := findEntry(t, s, 3, 0)
	assert.Equal(t, uint64(32), spheres.Buffer.MinBindingSize)

	lights := findEntry(t, s, 3, 3)
	assert.Equal(t, uint64(4), lights.Buffer.MinBindingSize)

	assert.Equal(t, "spheres", s.BindGroupVarName(3, 0))
	binding, ok := s.BindGroupFromVarName(3, "lights")
	assert.True(t, ok)
	assert.Equal(t, 3, binding)
	_, ok = s.BindGroupFromVarName(0, "lights")
	assert.False(t, ok)
}

func TestNewShaderFromSource_VertexLayout(t *testing.T) {
	s := NewShaderFromSource("quad", ShaderTypeVertex, testVertex)

	assert.Equal(t, "vsMain", s.EntryPoint())
	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	require.Len(t, layouts[0], 1)
	assert.Equal(t, uint64(16), layouts[0][0].ArrayStride)
	require.Len(t, layouts[0][0].Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layouts[0][0].Attributes[0].Format)
	assert.Equal(t, uint64(8), layouts[0][0].Attributes[1].Offset)

	uniforms := findEntry(t, s, 0, 0)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, uniforms.Buffer.Type)
	assert.Equal(t, uint64(128), uniforms.Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, uniforms.Visibility)
}

func TestNewShaderFromSource_Panics(t *testing.T) {
	assert.Panics(t, func() { NewShaderFromSource("empty", ShaderTypeFragment, "") })
	assert.Panics(t, func() { NewShaderFromSource("bad", ShaderTypeFragment, "//@oxy:include teapot") })
	assert.Panics(t, func() { NewShader("missing", ShaderTypeFragment, "does/not/exist.wgsl") })
}

func TestStripComments(t *testing.T) {
	src := "let a = 1; // trailing\n/* block /* nested */\n spanning */let b = 2;"
	out := stripComments(src)
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.False(t, strings.Contains(out, "trailing"))
	assert.False(t, strings.Contains(out, "spanning"))
	assert.Contains(t, out, "let b = 2;")
}

func TestParseShader_Errors(t *testing.T) {
	_, err := ParseShader("empty", ShaderTypeFragment, "")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = ParseShader("sampled", ShaderTypeFragment, "@group(0) @binding(0) var albedo: texture_2d<f32>;\n")
	assert.ErrorContains(t, err, "only buffer bindings")

	_, err = ParseShader("private", ShaderTypeFragment, "@group(0) @binding(0) var<private> x: f32;\n")
	assert.ErrorContains(t, err, "unsupported address space")

	dup := "@group(0) @binding(1) var<uniform> a: f32;\n@group(0) @binding(1) var<uniform> b: f32;\n"
	_, err = ParseShader("duplicate", ShaderTypeFragment, dup)
	assert.ErrorContains(t, err, "declared by both a and b")
}

func TestLayoutResolver(t *testing.T) {
	structs := parseStructs(`
struct Outer {
    id: u32,
    inner: Inner,
    tail: f32,
}
struct Inner {
    a: vec3<f32>,
    b: f32,
}
struct Packed {
    n: u32,
    items: array<vec4f>,
}
struct OnlyRuntime {
    items: array<u32>,
}
struct Loop {
    next: Loop,
}
`)
	r := newLayoutResolver(structs)

	cases := map[string]hostLayout{
		"f32":             {4, 4},
		"vec3<f32>":       {12, 16},
		"vec3f":           {12, 16},
		"vec2h":           {4, 4},
		"vec3<f16>":       {6, 8},
		"mat4x4<f32>":     {64, 16},
		"mat3x3f":         {48, 16},
		"mat2x3<f32>":     {32, 16},
		"atomic<u32>":     {4, 4},
		"array<f32, 27>":  {108, 4},
		"array<vec3f, 2>": {32, 16},
		"array<Inner>":    {16, 16},
		"Inner":           {16, 16},
		"Outer":           {48, 16},
		"Packed":          {16, 16},
		"OnlyRuntime":     {4, 4},
	}
	for typeName, want := range cases {
		got, ok := r.layout(typeName)
		if assert.True(t, ok, typeName) {
			assert.Equal(t, want, got, typeName)
		}
	}

	for _, typeName := range []string{"Loop", "Missing", "array<f32, 0>", "array<f32, n>", "vec5<f32>", "mat4x4<i32>", "atomic<f32>"} {
		_, ok := r.layout(typeName)
		assert.False(t, ok, typeName)
	}
}

func TestVertexFormat(t *testing.T) {
	format, size, ok := vertexFormat("vec3<u32>")
	require.True(t, ok)
	assert.Equal(t, wgpu.VertexFormatUint32x3, format)
	assert.Equal(t, uint64(12), size)

	format, size, ok = vertexFormat("f32")
	require.True(t, ok)
	assert.Equal(t, wgpu.VertexFormatFloat32, format)
	assert.Equal(t, uint64(4), size)

	_, _, ok = vertexFormat("vec3h")
	assert.False(t, ok)
	_, _, ok = vertexFormat("mat4x4<f32>")
	assert.False(t, ok)
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"a: array<f32, 4>", " b: u32"}, splitTopLevel("a: array<f32, 4>, b: u32"))
	assert.Equal(t, []string{"x"}, splitTopLevel("x"))
}
