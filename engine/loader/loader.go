package loader

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/raytracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
)

// LoaderBackendType identifies the scene file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeTOML selects the TOML scene file backend.
	BackendTypeTOML LoaderBackendType = iota
)

// DefaultMaxTextureEdge is the longest edge a texture image keeps after decoding.
const DefaultMaxTextureEdge = 1024

// SceneFile is a loaded scene together with the render parameters and camera pose stored beside it.
// Params.ViewportSize is left zero; the caller fills it from its window.
type SceneFile struct {
	Name      string
	Path      string
	Scene     scene.Scene
	Params    raytracer.RenderParams
	Transform camera.Transform
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	sceneCache map[string]*SceneFile

	backend loaderBackend

	maxTextureEdge int
	decodeWorkers  int
	decodePool     worker.DynamicWorkerPool
}

// Loader defines the public-facing interface for loading and caching scene files.
// It abstracts the file format behind a backend and manages a cache of previously loaded scenes.
type Loader interface {
	// Load reads a scene file and caches the result.
	// If the scene is already cached (by file path), the cached version is returned.
	// Texture images are resolved relative to the scene file and decoded in parallel.
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - *SceneFile: the loaded and cached scene
	//   - error: error if reading, decoding or building the scene fails
	Load(path string) (*SceneFile, error)

	// LoadReader reads a scene from a stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded scene
	//   - r: the reader providing the scene document
	//   - baseDir: the directory texture image paths are resolved against
	//
	// Returns:
	//   - *SceneFile: the loaded scene
	//   - error: error if decoding or building the scene fails
	LoadReader(name string, r io.Reader, baseDir string) (*SceneFile, error)

	// Reload reads a scene file again, bypassing and then replacing the cached entry.
	// A failed reload leaves the cached scene in place.
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - *SceneFile: the freshly loaded scene
	//   - error: error if loading fails
	Reload(path string) (*SceneFile, error)

	// Get retrieves a cached scene by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *SceneFile: the cached scene or nil
	Get(name string) *SceneFile

	// Scenes returns a copy of the scene cache.
	//
	// Returns:
	//   - map[string]*SceneFile: all cached scenes keyed by name
	Scenes() map[string]*SceneFile

	// Watch starts watching a scene file and reloads it whenever it is written.
	//
	// Parameters:
	//   - path: the scene file to watch
	//
	// Returns:
	//   - Watcher: the running watcher
	//   - error: error if the file system watch cannot be created
	Watch(path string) (Watcher, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeTOML)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:             sync.RWMutex{},
		sceneCache:     make(map[string]*SceneFile),
		maxTextureEdge: DefaultMaxTextureEdge,
		decodeWorkers:  runtime.NumCPU(),
	}

	switch backendType {
	case BackendTypeTOML:
		l.backend = newTOMLLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	if l.decodeWorkers < 1 {
		l.decodeWorkers = 1
	}
	l.decodePool = worker.NewDynamicWorkerPool(l.decodeWorkers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (*SceneFile, error) {
	l.mu.RLock()
	if cached, ok := l.sceneCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	return l.Reload(path)
}

func (l *loader) Reload(path string) (*SceneFile, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file %s: %w", path, err)
	}
	defer f.Close()

	sf, err := l.load(backend, path, f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	sf.Path = path

	l.mu.Lock()
	l.sceneCache[path] = sf
	l.mu.Unlock()

	log.Printf("[Loader] loaded %s: %d spheres, %d materials", path, len(sf.Scene.Spheres()), len(sf.Scene.Materials()))
	return sf, nil
}

func (l *loader) LoadReader(name string, r io.Reader, baseDir string) (*SceneFile, error) {
	l.mu.RLock()
	if cached, ok := l.sceneCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	sf, err := l.load(l.backend, name, r, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.sceneCache[name] = sf
	l.mu.Unlock()

	return sf, nil
}

func (l *loader) Get(name string) *SceneFile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sceneCache[name]
}

func (l *loader) Scenes() map[string]*SceneFile {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*SceneFile, len(l.sceneCache))
	for k, v := range l.sceneCache {
		result[k] = v
	}
	return result
}

func (l *loader) Watch(path string) (Watcher, error) {
	return newWatcher(l, path)
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only TOML is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported scene format: %s", ext)
	}
}

// load decodes a document, decodes the images it references and builds the scene.
// The scene name falls back to name when the document leaves it empty.
func (l *loader) load(backend loaderBackend, name string, r io.Reader, baseDir string) (*SceneFile, error) {
	doc, err := backend.Decode(r)
	if err != nil {
		return nil, err
	}
	doc.Name = common.Coalesce(doc.Name, name)

	paths, err := doc.imagePaths(baseDir)
	if err != nil {
		return nil, err
	}

	images, err := l.decodeImages(paths)
	if err != nil {
		return nil, err
	}

	sc, transform, err := doc.build(baseDir, images)
	if err != nil {
		return nil, err
	}

	params := doc.Render
	params.ViewportSize = [2]uint32{}
	return &SceneFile{
		Name:      doc.Name,
		Scene:     sc,
		Params:    params,
		Transform: transform,
	}, nil
}
