package shader

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// structField is one member of a WGSL struct. location is -1 when the field has no @location.
type structField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

// structDecl is a WGSL struct declaration.
type structDecl struct {
	name   string
	fields []structField
}

// vertexInput reports whether the struct feeds a vertex buffer: it has @location fields
// and no @builtin ones, which tells it apart from a vertex output struct.
func (s structDecl) vertexInput() bool {
	located := false
	for _, f := range s.fields {
		if f.builtin {
			return false
		}
		located = located || f.location >= 0
	}
	return located
}

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex  = regexp.MustCompile(`@builtin\(\w+\)`)
	memberRegex   = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	// bindingRegex matches @group(G) @binding(B) var<space> name: type;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	entryRegexes = map[ShaderType]*regexp.Regexp{
		ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
		ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
	}
)

// parseStructs returns every struct declared in source, which must already be free of comments.
func parseStructs(source string) []structDecl {
	var decls []structDecl
	for _, m := range structRegex.FindAllStringSubmatch(source, -1) {
		decl := structDecl{name: m[1]}
		for _, member := range splitTopLevel(m[2]) {
			if f, ok := parseMember(member); ok {
				decl.fields = append(decl.fields, f)
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

func parseMember(member string) (structField, bool) {
	member = strings.TrimSpace(member)
	m := memberRegex.FindStringSubmatch(member)
	if m == nil {
		return structField{}, false
	}
	f := structField{
		name:     m[1],
		typeName: strings.TrimSpace(m[2]),
		location: -1,
		builtin:  builtinRegex.MatchString(member),
	}
	if loc := locationRegex.FindStringSubmatch(member); loc != nil {
		f.location, _ = strconv.Atoi(loc[1])
	}
	return f, true
}

// parseVertexLayouts builds one vertex buffer layout per vertex input struct, keyed in
// declaration order. Structs with a field no vertex format can feed are skipped.
//
// Parameters:
//   - source: WGSL source after pre-processing
//
// Returns:
//   - map[int][]wgpu.VertexBufferLayout: the layouts keyed by buffer slot
func parseVertexLayouts(source string) map[int][]wgpu.VertexBufferLayout {
	layouts := make(map[int][]wgpu.VertexBufferLayout)
	for _, decl := range parseStructs(stripComments(source)) {
		if !decl.vertexInput() {
			continue
		}
		if layout, ok := vertexBufferLayout(decl); ok {
			layouts[len(layouts)] = []wgpu.VertexBufferLayout{layout}
		}
	}
	return layouts
}

func vertexBufferLayout(decl structDecl) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, f := range decl.fields {
		format, size, ok := vertexFormat(f.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += size
	}
	return layout, true
}

// parseBindGroupLayouts turns the buffer bindings declared in source into bind group layout
// descriptors with entries sorted by binding. MinBindingSize is set from the bound type so
// that buffers can be created straight from the layout. Only uniform and storage buffers
// are accepted.
//
// Parameters:
//   - source: WGSL source after pre-processing
//   - visibility: the stage every entry is visible to
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group
//   - map[int]map[int]string: variable names keyed by group and binding
//   - error: error if a binding is not a buffer or is declared twice
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	cleaned := stripComments(source)
	resolver := newLayoutResolver(parseStructs(cleaned))

	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)
	for _, m := range bindingRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		space, name, typeName := strings.TrimSpace(m[3]), m[4], m[5]

		bufferType, err := bufferBindingType(space)
		if err != nil {
			return nil, nil, fmt.Errorf("binding %s at group %d binding %d: %w", name, group, binding, err)
		}
		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		if prev, dup := names[group][binding]; dup {
			return nil, nil, fmt.Errorf("group %d binding %d is declared by both %s and %s", group, binding, prev, name)
		}
		names[group][binding] = name

		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: visibility,
		}
		entry.Buffer.Type = bufferType
		if l, ok := resolver.layout(typeName); ok {
			entry.Buffer.MinBindingSize = l.size
		}
		entries[group] = append(entries[group], entry)
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		descriptors[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return descriptors, names, nil
}

func bufferBindingType(space string) (wgpu.BufferBindingType, error) {
	parts := strings.Split(space, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case parts[0] == "uniform":
		return wgpu.BufferBindingTypeUniform, nil
	case parts[0] == "storage" && len(parts) == 2 && parts[1] == "read_write":
		return wgpu.BufferBindingTypeStorage, nil
	case parts[0] == "storage":
		return wgpu.BufferBindingTypeReadOnlyStorage, nil
	case parts[0] == "":
		return wgpu.BufferBindingTypeUndefined, errors.New("only buffer bindings are supported")
	}
	return wgpu.BufferBindingTypeUndefined, fmt.Errorf("unsupported address space %q", space)
}

// parseEntryPoint returns the name of the first function marked for the shader's stage,
// or "" when there is none.
func parseEntryPoint(source string, shaderType ShaderType) string {
	re, ok := entryRegexes[shaderType]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(stripComments(source)); m != nil {
		return m[1]
	}
	return ""
}

// stripComments removes line comments and nested block comments from WGSL source.
// Newlines are kept so that line structure survives.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case c == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte(c)
			}
		case c == '/' && next == '/':
			for i+1 < len(source) && source[i+1] != '\n' {
				i++
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// splitTopLevel splits s at commas outside angle brackets, so array<T, N> stays whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
