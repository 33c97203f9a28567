package engine

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/Carmen-Shannon/vike-go/engine/camera"
	"github.com/Carmen-Shannon/vike-go/engine/loader"
	"github.com/Carmen-Shannon/vike-go/engine/profiler"
	"github.com/Carmen-Shannon/vike-go/engine/renderer"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"github.com/Carmen-Shannon/vike-go/engine/window"
	"go.uber.org/zap"
)

// WindowedApp holds the application callbacks of an interactive run.
// Every callback is optional.
type WindowedApp struct {
	// Setup runs once after the renderer, loader and store exist and before the first frame.
	Setup func(e Engine) error

	// Update runs once per frame before rendering with the wall-clock time since the previous frame.
	Update func(e Engine, dt time.Duration) error

	// WindowEvent receives every window event except resizes, which the engine consumes.
	WindowEvent func(e Engine, ev window.Event)
}

// HeadlessApp holds the application callbacks of an offscreen run.
// Every callback is optional.
type HeadlessApp struct {
	// Frames is the number of frames to render.
	Frames int

	// Setup runs once after the renderer, loader and store exist and before the first frame.
	Setup func(e Engine) error

	// Update runs once per frame before rendering with the fixed frame step.
	Update func(e Engine, dt time.Duration) error

	// Frame receives each rendered image. img is owned by the callee.
	Frame func(frame int, img *image.RGBA) error
}

// rendererFactory creates the renderer for a run.
type rendererFactory func(options ...renderer.RendererBuilderOption) (renderer.Renderer, error)

// engine implements the Engine interface.
// Drives a single-threaded frame loop: poll events, update, compile and render.
type engine struct {
	mu *sync.Mutex

	logger *zap.Logger

	window        window.Window
	ownsWindow    bool
	windowOptions []window.WindowBuilderOption

	renderer        renderer.Renderer
	rendererOptions []renderer.RendererBuilderOption
	newRenderer     rendererFactory

	loader        loader.Loader
	assetDir      string
	store         scene.GameObjectStore
	storeOptions  []scene.StoreBuilderOption
	controller    camera.CameraController
	cursorCapture bool
	focused       bool

	profiler         *profiler.Profiler
	profilingEnabled bool

	headlessWidth  uint32
	headlessHeight uint32
	headlessStep   time.Duration

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	quitChannel chan struct{}
	quitOnce    sync.Once
}

// Engine is the main entry point for the engine.
// It owns the window, renderer, model loader and object store of a run and drives the frame loop.
type Engine interface {
	// RunWindowed opens the window (unless one was supplied), creates a surface renderer and
	// renders until the window closes or Quit is called. Must be called from the main goroutine.
	//
	// Parameters:
	//   - app: the application callbacks
	//
	// Returns:
	//   - error: setup, update or fatal render errors
	RunWindowed(app WindowedApp) error

	// RunHeadless creates an offscreen renderer and renders app.Frames frames, handing each
	// image to app.Frame.
	//
	// Parameters:
	//   - app: the application callbacks
	//
	// Returns:
	//   - error: setup or update errors, or a frame error wrapped as "engine: headless frame N"
	RunHeadless(app HeadlessApp) error

	// Store returns the object store of the current run, or nil outside a run.
	//
	// Returns:
	//   - scene.GameObjectStore: the store
	Store() scene.GameObjectStore

	// Loader returns the model loader of the current run, or nil outside a run.
	//
	// Returns:
	//   - loader.Loader: the loader
	Loader() loader.Loader

	// Renderer returns the renderer of the current run, or nil outside a run.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Camera returns the renderer's camera, or nil outside a run.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Window returns the window of a windowed run, or nil.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Logger returns the engine logger.
	//
	// Returns:
	//   - *zap.Logger: the logger
	Logger() *zap.Logger

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional windowed frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Quit stops the running loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// GPU and window resources are created by RunWindowed and RunHeadless, not here.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:             &sync.Mutex{},
		logger:         zap.NewNop(),
		newRenderer:    renderer.NewRenderer,
		headlessWidth:  800,
		headlessHeight: 600,
		headlessStep:   time.Second / 60,
		cursorCapture:  true,
		quitChannel:    make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(e.logger.Named("profiler"), time.Second)
	return e
}

func (e *engine) RunWindowed(app WindowedApp) error {
	if e.window == nil {
		e.window = window.NewWindow(e.windowOptions...)
		e.ownsWindow = true
	}

	opts := append([]renderer.RendererBuilderOption{
		renderer.WithOutputMode(renderer.OutputModeSurface),
		renderer.WithWindow(e.window),
		renderer.WithLogger(e.logger.Named("renderer")),
	}, e.rendererOptions...)
	if err := e.start(opts); err != nil {
		return err
	}
	defer e.stop()

	if app.Setup != nil {
		if err := app.Setup(e); err != nil {
			return fmt.Errorf("engine: setup: %w", err)
		}
	}

	e.logger.Info("windowed loop started")
	last := time.Now()
	for e.window.IsRunning() && !e.quitting() {
		frameStart := time.Now()
		dt := frameStart.Sub(last)
		last = frameStart

		for _, ev := range e.window.PollEvents() {
			e.handleEvent(app, ev)
		}
		if !e.window.IsRunning() {
			break
		}

		if e.controller != nil {
			e.controller.UpdateCamera(e.renderer.Camera(), dt)
		}
		if app.Update != nil {
			if err := app.Update(e, dt); err != nil {
				return fmt.Errorf("engine: update: %w", err)
			}
		}
		if err := e.renderWindowed(); err != nil {
			return err
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	e.logger.Info("windowed loop stopped")
	return nil
}

func (e *engine) RunHeadless(app HeadlessApp) error {
	opts := append([]renderer.RendererBuilderOption{
		renderer.WithOutputMode(renderer.OutputModeBuffer),
		renderer.WithSize(e.headlessWidth, e.headlessHeight),
		renderer.WithLogger(e.logger.Named("renderer")),
	}, e.rendererOptions...)
	if err := e.start(opts); err != nil {
		return err
	}
	defer e.stop()

	if app.Setup != nil {
		if err := app.Setup(e); err != nil {
			return fmt.Errorf("engine: setup: %w", err)
		}
	}

	e.logger.Info("headless run started", zap.Int("frames", app.Frames))
	for frame := 0; frame < app.Frames && !e.quitting(); frame++ {
		if app.Update != nil {
			if err := app.Update(e, e.headlessStep); err != nil {
				return fmt.Errorf("engine: headless frame %d: %w", frame, err)
			}
		}
		if err := e.renderer.Render(e.store); err != nil {
			return fmt.Errorf("engine: headless frame %d: %w", frame, err)
		}
		img, err := e.renderer.ImageBuffer()
		if err != nil {
			return fmt.Errorf("engine: headless frame %d: %w", frame, err)
		}
		if app.Frame != nil {
			if err := app.Frame(frame, img); err != nil {
				return fmt.Errorf("engine: headless frame %d: %w", frame, err)
			}
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}
	}
	e.logger.Info("headless run finished")
	return nil
}

// start creates the renderer, loader and store of a run.
func (e *engine) start(opts []renderer.RendererBuilderOption) error {
	r, err := e.newRenderer(opts...)
	if err != nil {
		return fmt.Errorf("engine: create renderer: %w", err)
	}

	l := loader.NewLoader(
		loader.WithUploader(r),
		loader.WithAssetDir(e.assetDir),
		loader.WithLogger(e.logger.Named("loader")),
	)
	storeOpts := append([]scene.StoreBuilderOption{
		scene.WithModelLoader(l),
		scene.WithLogger(e.logger.Named("scene")),
	}, e.storeOptions...)

	e.mu.Lock()
	e.renderer = r
	e.loader = l
	e.store = scene.NewGameObjectStore(storeOpts...)
	e.mu.Unlock()
	return nil
}

// stop releases the run's resources in reverse creation order.
func (e *engine) stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store != nil {
		e.store.Close()
	}
	if e.loader != nil {
		e.loader.Release()
	}
	if e.renderer != nil {
		e.renderer.Close()
	}
	if e.ownsWindow && e.window != nil {
		if err := e.window.Close(); err != nil {
			e.logger.Debug("window close", zap.Error(err))
		}
	}
	e.store, e.loader, e.renderer = nil, nil, nil
}

// renderWindowed renders one frame, resizing and retrying once on a lost or outdated surface.
func (e *engine) renderWindowed() error {
	for attempt := 0; ; attempt++ {
		err := e.renderer.Render(e.store)
		switch {
		case err == nil:
			return nil
		case renderer.IsRecoverable(err):
			w, h := e.window.FramebufferSize()
			e.logger.Debug("surface needs reconfigure", zap.Error(err), zap.Int("width", w), zap.Int("height", h))
			if w > 0 && h > 0 {
				if rerr := e.renderer.Resize(uint32(w), uint32(h)); rerr != nil {
					return fmt.Errorf("engine: resize after %v: %w", err, rerr)
				}
			}
			if attempt > 0 {
				return nil
			}
		case errors.Is(err, renderer.ErrSurfaceTimeout):
			e.logger.Warn("surface timeout, frame skipped", zap.Error(err))
			return nil
		default:
			return fmt.Errorf("engine: render: %w", err)
		}
	}
}

// handleEvent feeds resizes to the renderer and input to the camera controller, then
// forwards everything but resizes to the application.
func (e *engine) handleEvent(app WindowedApp, ev window.Event) {
	switch ev.Type {
	case window.EventResize:
		if ev.Width > 0 && ev.Height > 0 {
			if err := e.renderer.Resize(uint32(ev.Width), uint32(ev.Height)); err != nil {
				e.logger.Error("resize failed", zap.Error(err))
			}
		}
		return
	case window.EventFocus:
		e.focused = ev.Focused
		if e.cursorCapture {
			e.window.SetCursorCaptured(ev.Focused)
		}
	case window.EventKeyDown, window.EventKeyUp:
		if e.controller != nil {
			e.controller.HandleKey(ev.Key, ev.Type == window.EventKeyDown)
		}
	case window.EventCursorMove:
		if e.controller != nil && e.focused {
			e.controller.HandleMouseMotion(ev.DX, ev.DY)
		}
	case window.EventScroll:
		if e.controller != nil {
			e.controller.HandleScroll(ev.DY)
		}
	case window.EventClose:
		e.logger.Debug("window close requested")
	}

	if app.WindowEvent != nil {
		app.WindowEvent(e, ev)
	}
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

func (e *engine) Store() scene.GameObjectStore {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store
}

func (e *engine) Loader() loader.Loader {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loader
}

func (e *engine) Renderer() renderer.Renderer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	if r := e.Renderer(); r != nil {
		return r.Camera()
	}
	return nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Logger() *zap.Logger {
	return e.logger
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}
