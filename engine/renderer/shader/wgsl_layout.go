package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// hostLayout is the size and alignment of a host-shareable WGSL type.
type hostLayout struct {
	size  uint64
	align uint64
}

// stride is the distance between two consecutive elements of an array of this type.
func (l hostLayout) stride() uint64 {
	return alignTo(l.align, l.size)
}

func alignTo(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// scalarSizes holds the byte width of every scalar a buffer binding can carry.
var scalarSizes = map[string]uint64{
	"f32":  4,
	"i32":  4,
	"u32":  4,
	"bool": 4,
	"f16":  2,
}

// shorthandScalars maps the suffix of the vec2f style aliases to their scalar.
var shorthandScalars = map[byte]string{
	'f': "f32",
	'i': "i32",
	'u': "u32",
	'h': "f16",
}

// vectorType splits a vector type such as vec3<f32> or vec3f into its width and scalar.
func vectorType(typeName string) (int, string, bool) {
	rest, ok := strings.CutPrefix(typeName, "vec")
	if !ok || len(rest) < 2 {
		return 0, "", false
	}
	n := int(rest[0] - '0')
	if n < 2 || n > 4 {
		return 0, "", false
	}
	rest = rest[1:]
	if len(rest) == 1 {
		scalar, ok := shorthandScalars[rest[0]]
		return n, scalar, ok
	}
	if scalar, ok := typeParam(rest); ok {
		if _, known := scalarSizes[scalar]; known {
			return n, scalar, true
		}
	}
	return 0, "", false
}

// vectorLayout lays out an n wide vector; three wide vectors align like four wide ones.
func vectorLayout(n int, scalar string) hostLayout {
	s := scalarSizes[scalar]
	align := s * uint64(n)
	if n == 3 {
		align = s * 4
	}
	return hostLayout{size: s * uint64(n), align: align}
}

// matrixLayout lays out matCxR<T> and its matCxRf shorthand as C columns of vecR<T>.
func matrixLayout(typeName string) (hostLayout, bool) {
	rest, ok := strings.CutPrefix(typeName, "mat")
	if !ok || len(rest) < 4 || rest[1] != 'x' {
		return hostLayout{}, false
	}
	cols, rows := int(rest[0]-'0'), int(rest[2]-'0')
	if cols < 2 || cols > 4 || rows < 2 || rows > 4 {
		return hostLayout{}, false
	}
	column := "vec" + string(rest[2]) + rest[3:]
	n, scalar, ok := vectorType(column)
	if !ok || n != rows || (scalar != "f32" && scalar != "f16") {
		return hostLayout{}, false
	}
	col := vectorLayout(rows, scalar)
	return hostLayout{size: uint64(cols) * col.stride(), align: col.align}, true
}

// typeParam returns the text between the outer angle brackets of a parameterised type.
func typeParam(typeName string) (string, bool) {
	_, after, ok := strings.Cut(typeName, "<")
	if !ok || !strings.HasSuffix(after, ">") {
		return "", false
	}
	return strings.TrimSpace(after[:len(after)-1]), true
}

// layoutResolver sizes buffer types against the structs declared in one shader.
// Structs are resolved on demand so declaration order does not matter.
type layoutResolver struct {
	structs  map[string]structDecl
	resolved map[string]hostLayout
	visiting map[string]bool
}

func newLayoutResolver(structs []structDecl) *layoutResolver {
	r := &layoutResolver{
		structs:  make(map[string]structDecl, len(structs)),
		resolved: make(map[string]hostLayout, len(structs)),
		visiting: make(map[string]bool),
	}
	for _, s := range structs {
		r.structs[s.name] = s
	}
	return r
}

// layout returns the size and alignment of typeName. A runtime-sized array reports the
// stride of one element, which is the smallest buffer the binding accepts.
func (r *layoutResolver) layout(typeName string) (hostLayout, bool) {
	typeName = strings.TrimSpace(typeName)
	if s, ok := scalarSizes[typeName]; ok {
		return hostLayout{size: s, align: s}, true
	}
	if n, scalar, ok := vectorType(typeName); ok {
		return vectorLayout(n, scalar), true
	}
	if l, ok := matrixLayout(typeName); ok {
		return l, true
	}
	if strings.HasPrefix(typeName, "atomic<") {
		if inner, ok := typeParam(typeName); ok && (inner == "u32" || inner == "i32") {
			return hostLayout{size: 4, align: 4}, true
		}
		return hostLayout{}, false
	}
	if strings.HasPrefix(typeName, "array<") {
		elem, count, ok := r.array(typeName)
		if !ok {
			return hostLayout{}, false
		}
		if count == 0 {
			return hostLayout{size: elem.stride(), align: elem.align}, true
		}
		return hostLayout{size: count * elem.stride(), align: elem.align}, true
	}
	return r.structLayout(typeName)
}

// array resolves array<T, N> and array<T>. The count is zero for runtime-sized arrays.
func (r *layoutResolver) array(typeName string) (hostLayout, uint64, bool) {
	inner, ok := typeParam(typeName)
	if !ok {
		return hostLayout{}, 0, false
	}
	parts := splitTopLevel(inner)
	elem, ok := r.layout(parts[0])
	if !ok {
		return hostLayout{}, 0, false
	}
	switch len(parts) {
	case 1:
		return elem, 0, true
	case 2:
		count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil || count == 0 {
			return hostLayout{}, 0, false
		}
		return elem, count, true
	}
	return hostLayout{}, 0, false
}

// structLayout places each field at its next aligned offset and rounds the total up to the
// largest field alignment. A trailing runtime-sized array contributes no size of its own.
func (r *layoutResolver) structLayout(name string) (hostLayout, bool) {
	if l, ok := r.resolved[name]; ok {
		return l, true
	}
	decl, ok := r.structs[name]
	if !ok || r.visiting[name] {
		return hostLayout{}, false
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	var offset uint64
	align := uint64(1)
	for i, f := range decl.fields {
		if f.builtin {
			continue
		}
		if strings.HasPrefix(f.typeName, "array<") && i == len(decl.fields)-1 {
			elem, count, ok := r.array(f.typeName)
			if !ok {
				return hostLayout{}, false
			}
			if count == 0 {
				align = max(align, elem.align)
				if offset == 0 {
					offset = elem.stride()
				}
				continue
			}
		}
		fl, ok := r.layout(f.typeName)
		if !ok {
			return hostLayout{}, false
		}
		offset = alignTo(fl.align, offset) + fl.size
		align = max(align, fl.align)
	}

	l := hostLayout{size: alignTo(align, offset), align: align}
	r.resolved[name] = l
	return l, true
}

// vertexFormats maps a vector width and scalar to the vertex attribute format that feeds it.
var vertexFormats = map[string]map[int]wgpu.VertexFormat{
	"f32": {1: wgpu.VertexFormatFloat32, 2: wgpu.VertexFormatFloat32x2, 3: wgpu.VertexFormatFloat32x3, 4: wgpu.VertexFormatFloat32x4},
	"i32": {1: wgpu.VertexFormatSint32, 2: wgpu.VertexFormatSint32x2, 3: wgpu.VertexFormatSint32x3, 4: wgpu.VertexFormatSint32x4},
	"u32": {1: wgpu.VertexFormatUint32, 2: wgpu.VertexFormatUint32x2, 3: wgpu.VertexFormatUint32x3, 4: wgpu.VertexFormatUint32x4},
	"f16": {2: wgpu.VertexFormatFloat16x2, 4: wgpu.VertexFormatFloat16x4},
}

// vertexFormat returns the attribute format and byte size of a vertex input field type.
func vertexFormat(typeName string) (wgpu.VertexFormat, uint64, bool) {
	n, scalar := 1, typeName
	if vn, vs, ok := vectorType(typeName); ok {
		n, scalar = vn, vs
	}
	format, ok := vertexFormats[scalar][n]
	if !ok {
		return format, 0, false
	}
	return format, scalarSizes[scalar] * uint64(n), true
}
