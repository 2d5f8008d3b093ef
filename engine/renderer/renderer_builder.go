package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption configures a renderer in NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets how frames reach the display. Defaults to PresentModeUncapped.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = &mode
	}
}

// WithForceSoftwareRenderer requests the fallback adapter, a software Vulkan driver such as
// lavapipe or SwiftShader, instead of the GPU.
//
// Parameters:
//   - force: true to use the fallback adapter
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the color the surface is cleared to before the quad is drawn. Defaults to black.
func WithClearColor(red, green, blue float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = wgpu.Color{R: red, G: green, B: blue, A: 1}
	}
}
