package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithMaxTextureEdge is an option builder that sets the longest edge a decoded texture image keeps.
// Larger images are downscaled. A non-positive edge keeps images at full size.
//
// Parameters:
//   - edge: the maximum width or height in pixels
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture edge option to a loader
func WithMaxTextureEdge(edge int) LoaderBuilderOption {
	return func(l *loader) {
		l.maxTextureEdge = edge
	}
}

// WithDecodeWorkers is an option builder that sets how many texture images are decoded at once.
//
// Parameters:
//   - n: the number of decode workers, at least 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.decodeWorkers = n
	}
}

// WithScene is an option builder that pre-populates the scene cache.
//
// Parameters:
//   - key: the cache key for the scene
//   - sf: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, sf *SceneFile) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneCache[key] = sf
	}
}
