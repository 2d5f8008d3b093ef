// Package scene holds the immutable sphere scene the raytracer renders and packs it into GPU buffers.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrMaterialIndexOutOfRange is returned when a sphere references a material the scene does not have.
	ErrMaterialIndexOutOfRange = errors.New("sphere material index out of range")

	// ErrInvalidRadius is returned when a sphere radius is not positive.
	ErrInvalidRadius = errors.New("sphere radius must be greater than zero")

	// ErrTextureSize is returned when a texture's pixel count does not match its dimensions.
	ErrTextureSize = errors.New("texture pixel count does not match its dimensions")

	// ErrNilMaterial is returned when a material slot is nil.
	ErrNilMaterial = errors.New("material is nil")
)

// Sphere is an analytic sphere referencing a material by index.
type Sphere struct {
	Center      mgl32.Vec3
	Radius      float32
	MaterialIdx uint32
}

// Scene is the immutable set of spheres and materials handed to the raytracer.
// Every sphere's MaterialIdx is a valid index into Materials.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Spheres returns a copy of the scene's spheres.
	//
	// Returns:
	//   - []Sphere: the spheres in declaration order
	Spheres() []Sphere

	// Materials returns a copy of the scene's material list.
	//
	// Returns:
	//   - []Material: the materials in declaration order
	Materials() []Material

	// Encode packs the scene into the byte buffers bound by the raytracing kernel.
	// Panics if a material is not one of the known variants.
	//
	// Returns:
	//   - *EncodedScene: the packed buffers
	//   - error: ErrTextureSize if a texture is malformed
	Encode() (*EncodedScene, error)
}

type scene struct {
	name      string
	spheres   []Sphere
	materials []Material
}

var _ Scene = &scene{}

// NewScene creates a new Scene from the given options and checks that every sphere is renderable.
//
// Parameters:
//   - options: functional options (WithName, WithSpheres, WithMaterials)
//
// Returns:
//   - Scene: the new scene
//   - error: ErrInvalidRadius, ErrMaterialIndexOutOfRange or ErrNilMaterial wrapped with the offending index
func NewScene(options ...SceneBuilderOption) (Scene, error) {
	s := &scene{}
	for _, opt := range options {
		opt(s)
	}

	for i, m := range s.materials {
		if isNil(m) {
			return nil, fmt.Errorf("%w: material %d", ErrNilMaterial, i)
		}
	}
	for i, sp := range s.spheres {
		if !(sp.Radius > 0) {
			return nil, fmt.Errorf("%w: sphere %d has radius %v", ErrInvalidRadius, i, sp.Radius)
		}
		if int(sp.MaterialIdx) >= len(s.materials) {
			return nil, fmt.Errorf("%w: sphere %d references material %d of %d", ErrMaterialIndexOutOfRange, i, sp.MaterialIdx, len(s.materials))
		}
	}
	return s, nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Spheres() []Sphere {
	out := make([]Sphere, len(s.spheres))
	copy(out, s.spheres)
	return out
}

func (s *scene) Materials() []Material {
	out := make([]Material, len(s.materials))
	copy(out, s.materials)
	return out
}
