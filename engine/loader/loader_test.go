package loader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSceneTOML = `
name = "test"

[render.camera]
vfov_degrees = 45

[render.camera.depth_of_field]
aperture = 0.1
focus_distance = 5

[render.sampling]
max_samples_per_pixel = 64
num_samples_per_pixel = 4

[view]
position = [0.0, 1.0, 5.0]
target = [0.0, 1.0, 0.0]

[[materials]]
name = "ground"
type = "checkerboard"
even = { color = [1.0, 1.0, 1.0] }
odd = { color = [0.1, 0.1, 0.1] }

[[materials]]
name = "planet"
type = "lambertian"
albedo = { image = "planet.png" }

[[materials]]
name = "mirror"
type = "metal"
albedo = { image = "planet.png", scale = 0.5 }
fuzz = 0.2

[[materials]]
name = "glass"
type = "dielectric"
refraction_index = 1.5

[[materials]]
name = "sun"
type = "emissive"
emit = { color = [1.0, 0.9, 0.8], scale = 10.0 }

[[spheres]]
center = [0.0, -1000.0, 0.0]
radius = 1000.0
material = "ground"

[[spheres]]
center = [0.0, 1.0, 0.0]
radius = 1.0
material = "planet"

[[spheres]]
center = [2.0, 1.0, 0.0]
radius = 0.5
material = "sun"
`

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeScene(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_BuildsScene(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "planet.png"), 4, 2)
	path := writeScene(t, dir, testSceneTOML)

	l := NewLoader(BackendTypeTOML, WithDecodeWorkers(2))
	sf, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", sf.Name)
	assert.Equal(t, path, sf.Path)
	assert.Equal(t, "test", sf.Scene.Name())

	spheres := sf.Scene.Spheres()
	require.Len(t, spheres, 3)
	assert.Equal(t, uint32(0), spheres[0].MaterialIdx)
	assert.Equal(t, uint32(1), spheres[1].MaterialIdx)
	assert.Equal(t, uint32(4), spheres[2].MaterialIdx)
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, spheres[2].Center)

	materials := sf.Scene.Materials()
	require.Len(t, materials, 5)
	assert.Equal(t, scene.MaterialTypeCheckerboard, materials[0].Type())
	assert.Equal(t, scene.MaterialTypeLambertian, materials[1].Type())
	assert.Equal(t, scene.MaterialTypeMetal, materials[2].Type())
	assert.Equal(t, scene.MaterialTypeDielectric, materials[3].Type())
	assert.Equal(t, scene.MaterialTypeEmissive, materials[4].Type())

	planet := materials[1].(*scene.Lambertian)
	assert.Equal(t, uint32(4), planet.Albedo.Width)
	assert.Equal(t, uint32(2), planet.Albedo.Height)
	assert.InDelta(t, 1, planet.Albedo.Pixels[0][0], 1e-6)

	mirror := materials[2].(*scene.Metal)
	assert.InDelta(t, 0.5, mirror.Albedo.Pixels[0][0], 1e-6)
	assert.InDelta(t, 0.2, mirror.Fuzz, 1e-6)

	sun := materials[4].(*scene.Emissive)
	assert.InDelta(t, 10, sun.Emit.Pixels[0][0], 1e-5)

	encoded, err := sf.Scene.Encode()
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, encoded.Lights)

	assert.InDelta(t, 45, sf.Params.Camera.VfovDegrees, 1e-6)
	require.NotNil(t, sf.Params.Camera.DepthOfField)
	assert.InDelta(t, 5, sf.Params.Camera.DepthOfField.FocusDistance, 1e-6)
	assert.Equal(t, uint32(64), sf.Params.Sampling.MaxSamplesPerPixel)
	assert.Equal(t, uint32(4), sf.Params.Sampling.NumSamplesPerPixel)
	assert.Equal(t, uint32(8), sf.Params.Sampling.NumBounces, "unset fields keep defaults")
	assert.InDelta(t, 4, sf.Params.Sky.Turbidity, 1e-6)
	assert.Equal(t, [2]uint32{}, sf.Params.ViewportSize)

	assert.Equal(t, mgl32.Vec3{0, 1, 5}, sf.Transform.Position)
	fwd := sf.Transform.Forward()
	assert.InDelta(t, -1, fwd.Z(), 1e-5)
}

func TestLoad_CachesAndReloads(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "planet.png"), 2, 2)
	path := writeScene(t, dir, testSceneTOML)

	l := NewLoader(BackendTypeTOML)
	first, err := l.Load(path)
	require.NoError(t, err)

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Same(t, first, l.Get(path))

	reloaded, err := l.Reload(path)
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Same(t, reloaded, l.Get(path))
	assert.Len(t, l.Scenes(), 1)

	require.NoError(t, os.WriteFile(path, []byte("name = ["), 0o644))
	_, err = l.Reload(path)
	assert.Error(t, err)
	assert.Same(t, reloaded, l.Get(path), "a failed reload keeps the cached scene")
}

func TestLoad_FitsLargeTextures(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "planet.png"), 8, 4)
	path := writeScene(t, dir, testSceneTOML)

	sf, err := NewLoader(BackendTypeTOML, WithMaxTextureEdge(2)).Load(path)
	require.NoError(t, err)

	planet := sf.Scene.Materials()[1].(*scene.Lambertian)
	assert.Equal(t, uint32(2), planet.Albedo.Width)
	assert.Equal(t, uint32(1), planet.Albedo.Height)
}

func TestLoadReader_NameFallbackAndCache(t *testing.T) {
	body := `
[[materials]]
name = "white"
type = "lambertian"
albedo = { color = [1.0, 1.0, 1.0] }

[[spheres]]
center = [0.0, 0.0, -1.0]
radius = 0.5
material = "white"
`
	cached := &SceneFile{Name: "cached"}
	l := NewLoader(BackendTypeTOML, WithScene("cached", cached))
	assert.Same(t, cached, l.Get("cached"))

	sf, err := l.LoadReader("inline", strings.NewReader(body), "")
	require.NoError(t, err)
	assert.Equal(t, "inline", sf.Name)
	assert.Equal(t, "", sf.Path)
	assert.Len(t, sf.Scene.Spheres(), 1)
	assert.Equal(t, mgl32.Vec3{}, sf.Transform.Position)
	assert.Same(t, sf, l.Get("inline"))
}

func TestLoadReader_Errors(t *testing.T) {
	white := "[[materials]]\nname = \"white\"\ntype = \"lambertian\"\nalbedo = { color = [1.0, 1.0, 1.0] }\n"
	cases := map[string]struct {
		body string
		err  error
	}{
		"unknown material": {
			body: white + "[[spheres]]\ncenter = [0.0, 0.0, 0.0]\nradius = 1.0\nmaterial = \"red\"\n",
			err:  ErrUnknownMaterial,
		},
		"duplicate material": {
			body: white + white,
			err:  ErrDuplicateMaterial,
		},
		"unknown type": {
			body: "[[materials]]\nname = \"x\"\ntype = \"plastic\"\n",
			err:  ErrMaterialType,
		},
		"color and image": {
			body: "[[materials]]\nname = \"x\"\ntype = \"lambertian\"\nalbedo = { color = [1.0, 1.0, 1.0], image = \"a.png\" }\n",
			err:  ErrTextureSource,
		},
		"empty texture": {
			body: "[[materials]]\nname = \"x\"\ntype = \"emissive\"\nemit = {}\n",
			err:  ErrTextureSource,
		},
		"missing texture": {
			body: "[[materials]]\nname = \"x\"\ntype = \"checkerboard\"\neven = { color = [1.0, 1.0, 1.0] }\n",
			err:  ErrMissingTexture,
		},
		"bad radius": {
			body: white + "[[spheres]]\ncenter = [0.0, 0.0, 0.0]\nradius = 0.0\nmaterial = \"white\"\n",
			err:  scene.ErrInvalidRadius,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader(BackendTypeTOML).LoadReader(name, strings.NewReader(tc.body), "")
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLoadReader_DecodeErrors(t *testing.T) {
	cases := map[string]string{
		"unknown field": "colour = 1\n",
		"malformed":     "name = [\n",
		"wrong type":    "[render.sampling]\nnum_bounces = \"many\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader(BackendTypeTOML).LoadReader(name, strings.NewReader(body), "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileErrors(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(BackendTypeTOML)

	_, err := l.Load(filepath.Join(dir, "scene.yaml"))
	assert.ErrorContains(t, err, "unsupported scene format")

	_, err = l.Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeScene(t, dir, testSceneTOML)
	_, err = l.Load(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "planet.png was never written")
	assert.Nil(t, l.Get(path))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "planet.png"), 2, 2)
	path := writeScene(t, dir, testSceneTOML)

	l := NewLoader(BackendTypeTOML)
	_, err := l.Load(path)
	require.NoError(t, err)

	w, err := l.Watch(path)
	require.NoError(t, err)
	defer w.Close()

	extra := testSceneTOML + "\n[[spheres]]\ncenter = [-2.0, 1.0, 0.0]\nradius = 0.5\nmaterial = \"glass\"\n"
	require.NoError(t, os.WriteFile(path, []byte(extra), 0o644))

	select {
	case sf := <-w.Updates():
		require.NotNil(t, sf)
		assert.Len(t, sf.Scene.Spheres(), 4)
		assert.Same(t, sf, l.Get(path))
	case err := <-w.Errors():
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the scene file")
	}
}

func TestWatch_ReportsBadReload(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "planet.png"), 2, 2)
	path := writeScene(t, dir, testSceneTOML)

	l := NewLoader(BackendTypeTOML)
	w, err := l.Watch(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("name = ["), 0o644))

	select {
	case err := <-w.Errors():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no error after writing a malformed scene file")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, open := <-w.Updates()
	assert.False(t, open)
}

func TestLoad_ShowcaseScene(t *testing.T) {
	sf, err := NewLoader(BackendTypeTOML).Load(filepath.Join("..", "..", "examples", "assets", "scene.toml"))
	require.NoError(t, err)

	assert.Equal(t, "showcase", sf.Name)
	assert.Len(t, sf.Scene.Spheres(), 10)
	assert.Len(t, sf.Scene.Materials(), 10)

	encoded, err := sf.Scene.Encode()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 9}, encoded.Lights)
	assert.InDelta(t, 10.82, sf.Params.Camera.FocusDistance(), 1e-4)
}
