package engine

import (
	"time"

	"github.com/Carmen-Shannon/vike-go/engine/camera"
	"github.com/Carmen-Shannon/vike-go/engine/renderer"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"github.com/Carmen-Shannon/vike-go/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. A supplied window is not closed by the engine.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions sets the options of the window RunWindowed creates.
//
// Parameters:
//   - options: window builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithRendererOptions appends renderer options applied after the engine's own mode, window and size options.
//
// Parameters:
//   - options: renderer builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithStoreOptions appends object store options applied after the engine's loader and logger options.
//
// Parameters:
//   - options: store builder options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStoreOptions(options ...scene.StoreBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.storeOptions = append(e.storeOptions, options...)
	}
}

// WithAssetDir sets the directory model file identifiers resolve against.
//
// Parameters:
//   - dir: the asset directory
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAssetDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.assetDir = dir
	}
}

// WithCameraController sets the controller fed with window input and applied to the camera each frame.
//
// Parameters:
//   - cc: the camera controller, or nil for a fixed camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = cc
	}
}

// WithCursorCapture sets whether the cursor is captured while the window has focus (default true).
//
// Parameters:
//   - capture: true to capture the cursor on focus
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCursorCapture(capture bool) EngineBuilderOption {
	return func(e *engine) {
		e.cursorCapture = capture
	}
}

// WithHeadlessSize sets the offscreen target size of RunHeadless. Zero dimensions are ignored.
//
// Parameters:
//   - width: target width in pixels
//   - height: target height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHeadlessSize(width, height uint32) EngineBuilderOption {
	return func(e *engine) {
		if width > 0 && height > 0 {
			e.headlessWidth, e.headlessHeight = width, height
		}
	}
}

// WithHeadlessFrameRate sets the fixed simulation rate RunHeadless passes to Update.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: simulated frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHeadlessFrameRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.headlessStep = time.Duration(float64(time.Second) / fps)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithLogger sets the engine logger. Named children are passed to the renderer, loader,
// store and profiler.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
