package raytracer

import (
	"github.com/Carmen-Shannon/oxy-rt/engine/sky"
)

// RaytracerBuilderOption is a functional option for configuring a Raytracer at construction time.
type RaytracerBuilderOption func(*raytracer)

// WithPipelineKey sets the key the render pipeline is registered under. An empty key keeps the default.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - RaytracerBuilderOption: a function that applies the pipeline key
func WithPipelineKey(key string) RaytracerBuilderOption {
	return func(r *raytracer) {
		if key != "" {
			r.pipelineKey = key
		}
	}
}

// WithSkyModel sets the analytic sky model used to cook the sky state. It is required.
//
// Parameters:
//   - model: the sky model, normally a *hosek.Model
//
// Returns:
//   - RaytracerBuilderOption: a function that applies the sky model
func WithSkyModel(model sky.Model) RaytracerBuilderOption {
	return func(r *raytracer) {
		r.skyModel = model
	}
}

// WithKernelSource replaces the embedded raytracing kernel. The replacement must declare the same
// bindings as the embedded one, New fails with ErrKernelLayout otherwise.
//
// Parameters:
//   - source: the WGSL fragment kernel, with @oxy: annotations
//
// Returns:
//   - RaytracerBuilderOption: a function that applies the kernel source
func WithKernelSource(source string) RaytracerBuilderOption {
	return func(r *raytracer) {
		r.kernelSource = source
		r.kernelPath = ""
	}
}

// WithKernelPath loads the raytracing kernel from a file when the Raytracer is created, see WithKernelSource.
//
// Parameters:
//   - path: the path of the WGSL file
//
// Returns:
//   - RaytracerBuilderOption: a function that applies the kernel path
func WithKernelPath(path string) RaytracerBuilderOption {
	return func(r *raytracer) {
		r.kernelPath = path
	}
}
