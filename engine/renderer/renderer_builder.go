package renderer

import (
	"github.com/Carmen-Shannon/vike-go/engine/camera"
	"github.com/Carmen-Shannon/vike-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithOutputMode selects the frame destination. Defaults to OutputModeSurface.
//
// Parameters:
//   - mode: OutputModeSurface or OutputModeBuffer
//
// Returns:
//   - RendererBuilderOption: a function that applies the output mode option to a renderer
func WithOutputMode(mode OutputMode) RendererBuilderOption {
	return func(r *renderer) {
		r.mode = mode
	}
}

// WithSize sets the initial output size. A surface renderer without a size uses the
// window's framebuffer size.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.width = width
		r.height = height
	}
}

// WithWindow sets the window whose surface the renderer presents to.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - RendererBuilderOption: a function that applies the window option to a renderer
func WithWindow(w window.Window) RendererBuilderOption {
	return func(r *renderer) {
		r.win = w
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the background colour of the scene pass.
//
// Parameters:
//   - c: RGBA in linear HDR space
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(c [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
	}
}

// WithDebugAxis enables the world axis overlay from the first frame.
//
// Parameters:
//   - enabled: true to draw the overlay
//
// Returns:
//   - RendererBuilderOption: a function that applies the debug axis option to a renderer
func WithDebugAxis(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.debugAxis = enabled
	}
}

// WithLogger sets the logger. A nil logger is ignored.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCamera sets the camera whose uniform is uploaded each frame. Its aspect ratio is
// updated to the output size.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCamera(cam camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.cam = cam
	}
}
