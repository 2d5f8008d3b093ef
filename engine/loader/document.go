package loader

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownMaterial is returned when a sphere names a material the file does not define.
	ErrUnknownMaterial = errors.New("unknown material")

	// ErrDuplicateMaterial is returned when two materials share a name.
	ErrDuplicateMaterial = errors.New("duplicate material name")

	// ErrMaterialType is returned for a material type other than lambertian, metal, dielectric, checkerboard or emissive.
	ErrMaterialType = errors.New("unknown material type")

	// ErrTextureSource is returned when a texture sets both or neither of color and image.
	ErrTextureSource = errors.New("texture needs exactly one of color or image")

	// ErrMissingTexture is returned when a material lacks a texture its type requires.
	ErrMissingTexture = errors.New("material is missing a texture")
)

// SceneDocument is the decoded form of a scene file.
type SceneDocument struct {
	Name      string             `toml:"name"`
	Render    RenderDocument     `toml:"render"`
	View      ViewDocument       `toml:"view"`
	Materials []MaterialDocument `toml:"materials"`
	Spheres   []SphereDocument   `toml:"spheres"`
}

// RenderDocument holds the render parameters of a scene file. The viewport comes from the window.
type RenderDocument = raytracer.RenderParams

// ViewDocument places the camera.
type ViewDocument struct {
	Position [3]float32 `toml:"position"`
	Target   [3]float32 `toml:"target"`
}

// TextureDocument is either a constant color or an image file, resolved relative to the scene file.
type TextureDocument struct {
	Color *[3]float32 `toml:"color"`
	Image string      `toml:"image"`
	Scale *float32    `toml:"scale"`
}

// MaterialDocument is one entry of the material list. Which textures and scalars apply depends on Type.
type MaterialDocument struct {
	Name            string           `toml:"name"`
	Type            string           `toml:"type"`
	Albedo          *TextureDocument `toml:"albedo"`
	Emit            *TextureDocument `toml:"emit"`
	Even            *TextureDocument `toml:"even"`
	Odd             *TextureDocument `toml:"odd"`
	Fuzz            float32          `toml:"fuzz"`
	RefractionIndex float32          `toml:"refraction_index"`
}

// SphereDocument is one sphere, referencing its material by name.
type SphereDocument struct {
	Center   [3]float32 `toml:"center"`
	Radius   float32    `toml:"radius"`
	Material string     `toml:"material"`
}

func (t *TextureDocument) scale() float32 {
	if t.Scale == nil {
		return 1
	}
	return *t.Scale
}

func (t *TextureDocument) validate() error {
	if (t.Color == nil) == (t.Image == "") {
		return ErrTextureSource
	}
	return nil
}

// imagePath resolves the texture image against the directory of the scene file.
func (t *TextureDocument) imagePath(baseDir string) string {
	if t.Image == "" || filepath.IsAbs(t.Image) {
		return t.Image
	}
	return filepath.Join(baseDir, t.Image)
}

// textures returns the texture slots of a material in arena order, named for error messages.
func (m *MaterialDocument) textures() ([]string, []*TextureDocument, error) {
	switch m.Type {
	case "lambertian", "metal":
		return []string{"albedo"}, []*TextureDocument{m.Albedo}, nil
	case "dielectric":
		return nil, nil, nil
	case "checkerboard":
		return []string{"even", "odd"}, []*TextureDocument{m.Even, m.Odd}, nil
	case "emissive":
		return []string{"emit"}, []*TextureDocument{m.Emit}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrMaterialType, m.Type)
	}
}

// imagePaths validates every texture of the document and returns the image files it references.
func (d *SceneDocument) imagePaths(baseDir string) ([]string, error) {
	var paths []string
	for i := range d.Materials {
		m := &d.Materials[i]
		names, slots, err := m.textures()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", m.Name, err)
		}
		for j, t := range slots {
			if t == nil {
				return nil, fmt.Errorf("%w: %q has no %s", ErrMissingTexture, m.Name, names[j])
			}
			if err := t.validate(); err != nil {
				return nil, fmt.Errorf("material %q %s: %w", m.Name, names[j], err)
			}
			if t.Image != "" {
				paths = append(paths, t.imagePath(baseDir))
			}
		}
	}
	return paths, nil
}

// build converts the document into a scene and a camera pose. images holds the decoded image of every path
// returned by imagePaths.
func (d *SceneDocument) build(baseDir string, images decodedImages) (scene.Scene, camera.Transform, error) {
	indices := make(map[string]uint32, len(d.Materials))
	materials := make([]scene.Material, 0, len(d.Materials))
	for i := range d.Materials {
		m := &d.Materials[i]
		if _, dup := indices[m.Name]; dup {
			return nil, camera.Transform{}, fmt.Errorf("%w: %q", ErrDuplicateMaterial, m.Name)
		}
		indices[m.Name] = uint32(i)

		tex := func(t *TextureDocument) *scene.Texture {
			if t.Color != nil {
				c := t.Color
				return scene.NewTextureFromColor(mgl32.Vec3{c[0], c[1], c[2]}.Mul(t.scale()))
			}
			return scene.NewTextureFromDecodedImage(images[t.imagePath(baseDir)], t.scale())
		}

		switch m.Type {
		case "lambertian":
			materials = append(materials, &scene.Lambertian{Albedo: tex(m.Albedo)})
		case "metal":
			materials = append(materials, &scene.Metal{Albedo: tex(m.Albedo), Fuzz: m.Fuzz})
		case "dielectric":
			materials = append(materials, &scene.Dielectric{RefractionIndex: m.RefractionIndex})
		case "checkerboard":
			materials = append(materials, &scene.Checkerboard{Even: tex(m.Even), Odd: tex(m.Odd)})
		case "emissive":
			materials = append(materials, &scene.Emissive{Emit: tex(m.Emit)})
		default:
			return nil, camera.Transform{}, fmt.Errorf("material %q: %w: %q", m.Name, ErrMaterialType, m.Type)
		}
	}

	spheres := make([]scene.Sphere, 0, len(d.Spheres))
	for i, s := range d.Spheres {
		idx, ok := indices[s.Material]
		if !ok {
			return nil, camera.Transform{}, fmt.Errorf("%w: sphere %d uses %q", ErrUnknownMaterial, i, s.Material)
		}
		spheres = append(spheres, scene.Sphere{
			Center:      mgl32.Vec3(s.Center),
			Radius:      s.Radius,
			MaterialIdx: idx,
		})
	}

	sc, err := scene.NewScene(
		scene.WithName(d.Name),
		scene.WithMaterials(materials...),
		scene.WithSpheres(spheres...),
	)
	if err != nil {
		return nil, camera.Transform{}, err
	}

	eye, target := mgl32.Vec3(d.View.Position), mgl32.Vec3(d.View.Target)
	transform := camera.NewTransform(eye)
	if !eye.ApproxEqual(target) {
		transform = camera.NewTransformLookAt(eye, target)
	}
	return sc, transform, nil
}
