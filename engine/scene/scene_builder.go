package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier, used in log output.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithSpheres appends spheres to the scene.
//
// Parameters:
//   - spheres: the spheres to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpheres(spheres ...Sphere) SceneBuilderOption {
	return func(s *scene) {
		s.spheres = append(s.spheres, spheres...)
	}
}

// WithMaterials appends materials to the scene. Spheres reference them by their position
// across all WithMaterials options, in order.
//
// Parameters:
//   - materials: the materials to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaterials(materials ...Material) SceneBuilderOption {
	return func(s *scene) {
		s.materials = append(s.materials, materials...)
	}
}
