package scene

import "fmt"

// MaterialType is the discriminant the kernel switches on. The values are part of the GPU contract.
type MaterialType uint32

const (
	MaterialTypeLambertian MaterialType = iota
	MaterialTypeMetal
	MaterialTypeDielectric
	MaterialTypeCheckerboard
	MaterialTypeEmissive
)

// String returns the lowercase name of the material type.
func (m MaterialType) String() string {
	switch m {
	case MaterialTypeLambertian:
		return "lambertian"
	case MaterialTypeMetal:
		return "metal"
	case MaterialTypeDielectric:
		return "dielectric"
	case MaterialTypeCheckerboard:
		return "checkerboard"
	case MaterialTypeEmissive:
		return "emissive"
	default:
		return "unknown"
	}
}

// Material is the closed set of surface models a sphere can use.
// The only implementations are *Lambertian, *Metal, *Dielectric, *Checkerboard and *Emissive.
type Material interface {
	// Type returns the kernel discriminant of the material.
	//
	// Returns:
	//   - MaterialType: the discriminant
	Type() MaterialType

	material()
}

// Lambertian is an ideal diffuse surface.
type Lambertian struct {
	Albedo *Texture
}

// Metal is a specular reflector whose reflection is perturbed by Fuzz.
type Metal struct {
	Albedo *Texture
	Fuzz   float32
}

// Dielectric is a clear refracting surface such as glass.
type Dielectric struct {
	RefractionIndex float32
}

// Checkerboard is a diffuse surface that alternates between two textures in a 3D checker pattern.
type Checkerboard struct {
	Even *Texture
	Odd  *Texture
}

// Emissive is a light source. Spheres using it are listed as lights for direct sampling.
type Emissive struct {
	Emit *Texture
}

var (
	_ Material = &Lambertian{}
	_ Material = &Metal{}
	_ Material = &Dielectric{}
	_ Material = &Checkerboard{}
	_ Material = &Emissive{}
)

func (m *Lambertian) Type() MaterialType   { return MaterialTypeLambertian }
func (m *Metal) Type() MaterialType        { return MaterialTypeMetal }
func (m *Dielectric) Type() MaterialType   { return MaterialTypeDielectric }
func (m *Checkerboard) Type() MaterialType { return MaterialTypeCheckerboard }
func (m *Emissive) Type() MaterialType     { return MaterialTypeEmissive }

func (m *Lambertian) material()   {}
func (m *Metal) material()        {}
func (m *Dielectric) material()   {}
func (m *Checkerboard) material() {}
func (m *Emissive) material()     {}

// isNil reports whether m is nil or a nil pointer to one of the variants.
func isNil(m Material) bool {
	switch mat := m.(type) {
	case nil:
		return true
	case *Lambertian:
		return mat == nil
	case *Metal:
		return mat == nil
	case *Dielectric:
		return mat == nil
	case *Checkerboard:
		return mat == nil
	case *Emissive:
		return mat == nil
	default:
		return false
	}
}

// textures returns the textures of a material in the order they are appended to the arena.
func textures(m Material) []*Texture {
	switch mat := m.(type) {
	case *Lambertian:
		return []*Texture{mat.Albedo}
	case *Metal:
		return []*Texture{mat.Albedo}
	case *Dielectric:
		return nil
	case *Checkerboard:
		return []*Texture{mat.Even, mat.Odd}
	case *Emissive:
		return []*Texture{mat.Emit}
	default:
		panic(fmt.Sprintf("unknown material variant %T", m))
	}
}
