// Command vike renders the cube-grid, cube-spiral and orbiting-light demo scene,
// either in a window or headless to numbered image files.
package main

import (
	"flag"
	"fmt"
	"image"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/vike-go/common"
	"github.com/Carmen-Shannon/vike-go/engine"
	"github.com/Carmen-Shannon/vike-go/engine/camera"
	"github.com/Carmen-Shannon/vike-go/engine/loader"
	"github.com/Carmen-Shannon/vike-go/engine/renderer"
	"github.com/Carmen-Shannon/vike-go/engine/scene"
	"github.com/Carmen-Shannon/vike-go/engine/transform"
	"github.com/Carmen-Shannon/vike-go/engine/window"
	"github.com/Carmen-Shannon/vike-go/internal/capture"
	"github.com/Carmen-Shannon/vike-go/internal/config"
	"github.com/Carmen-Shannon/vike-go/internal/logging"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// GLFW and the surface must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", config.Path(config.DefaultPath), "path to a TOML or YAML config file")
		headless   = flag.Bool("headless", false, "render offscreen to image files")
		frames     = flag.Int("frames", 0, "headless frame count (overrides config)")
		outDir     = flag.String("out", "", "headless output directory (overrides config)")
	)
	flag.Parse()

	path := *configPath
	if _, err := os.Stat(path); os.IsNotExist(err) && path == config.DefaultPath {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if *headless {
		cfg.Render.Mode = "headless"
	}
	if *frames > 0 {
		cfg.Headless.Frames = *frames
	}
	if *outDir != "" {
		cfg.Headless.OutputDir = *outDir
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("vike starting",
		zap.String("config", path),
		zap.String("mode", cfg.Render.Mode),
	)

	if cfg.Render.Mode == "headless" {
		return runHeadless(cfg, logger)
	}
	return runWindowed(cfg, logger)
}

// engineOptions maps the config onto engine options shared by both modes.
func engineOptions(cfg *config.Config, logger *zap.Logger, width, height int) []engine.EngineBuilderOption {
	presentMode := renderer.PresentModeVSync
	if cfg.Window.PresentMode == "uncapped" {
		presentMode = renderer.PresentModeUncapped
	}

	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec3(cfg.Camera.Position)),
		camera.WithYawPitch(mgl32.DegToRad(cfg.Camera.Yaw), mgl32.DegToRad(cfg.Camera.Pitch)),
		camera.WithFovy(mgl32.DegToRad(cfg.Camera.Fovy)),
		camera.WithAspect(float32(width)/float32(height)),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
	)

	return []engine.EngineBuilderOption{
		engine.WithLogger(logger),
		engine.WithAssetDir(cfg.Scene.AssetDir),
		engine.WithRendererOptions(
			renderer.WithCamera(cam),
			renderer.WithPresentMode(presentMode),
			renderer.WithClearColor(cfg.Render.ClearColor),
			renderer.WithDebugAxis(cfg.Render.DebugAxis),
			renderer.WithForceSoftwareRenderer(cfg.Render.ForceSoftware),
		),
		engine.WithStoreOptions(
			scene.WithExpansionWorkers(cfg.Scene.ExpansionWorkers),
		),
	}
}

func runWindowed(cfg *config.Config, logger *zap.Logger) error {
	opts := append(engineOptions(cfg, logger, cfg.Window.Width, cfg.Window.Height),
		engine.WithWindowOptions(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
			window.WithResizable(cfg.Window.Resizable),
			window.WithCloseOnEscape(true),
		),
		engine.WithCameraController(camera.NewCameraController(
			camera.WithSpeed(cfg.Camera.Speed),
			camera.WithSensitivity(cfg.Camera.Sensitivity),
		)),
	)
	eng := engine.NewEngine(opts...)

	demo := &demoScene{}
	profiling := false
	return eng.RunWindowed(engine.WindowedApp{
		Setup:  demo.setup,
		Update: demo.update,
		WindowEvent: func(e engine.Engine, ev window.Event) {
			if ev.Type != window.EventKeyDown || ev.Key != common.KeyP {
				return
			}
			profiling = !profiling
			if profiling {
				e.EnableProfiler()
			} else {
				e.DisableProfiler()
			}
		},
	})
}

func runHeadless(cfg *config.Config, logger *zap.Logger) error {
	format, err := capture.ParseFormat(cfg.Headless.Format)
	if err != nil {
		return err
	}
	writer, err := capture.NewFrameWriter(cfg.Headless.OutputDir, format,
		capture.WithWorkers(cfg.Headless.Workers),
		capture.WithLogger(logger.Named("capture")),
	)
	if err != nil {
		return err
	}

	opts := append(engineOptions(cfg, logger, cfg.Headless.Width, cfg.Headless.Height),
		engine.WithHeadlessSize(uint32(cfg.Headless.Width), uint32(cfg.Headless.Height)),
	)
	eng := engine.NewEngine(opts...)

	demo := &demoScene{}
	runErr := eng.RunHeadless(engine.HeadlessApp{
		Frames: cfg.Headless.Frames,
		Setup:  demo.setup,
		Update: demo.update,
		Frame: func(frame int, img *image.RGBA) error {
			return writer.Frame(frame, img)
		},
	})
	if err := writer.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("frames written",
		zap.Int("count", writer.Written()),
		zap.String("dir", cfg.Headless.OutputDir),
	)
	return nil
}

// lightOrbitSpeed is the rotation rate of the demo lights around Y in radians per second.
const lightOrbitSpeed = 0.5

var demoLights = []struct {
	name  string
	color mgl32.Vec3
	pos   mgl32.Vec3
}{
	{name: "red", color: mgl32.Vec3{1, 0, 0}, pos: mgl32.Vec3{20, 2, 0}},
	{name: "green", color: mgl32.Vec3{0, 1, 0}, pos: mgl32.Vec3{-10, 2, 17.32}},
	{name: "blue", color: mgl32.Vec3{0, 0, 1}, pos: mgl32.Vec3{-10, 2, -17.32}},
}

type demoScene struct{}

func (d *demoScene) setup(e engine.Engine) error {
	store := e.Store()
	cube, err := store.LoadModel(loader.BuiltinCube)
	if err != nil {
		return err
	}

	store.NewGameObject("cube", transform.Identity(), cube)
	store.NewArray("cube", "cube array", 100, scene.GeneratorFunc(tiltedGrid))
	store.NewArray("cube", "cube spiral", 10000, scene.Spiral{
		Radius:    40,
		AngleStep: 0.05,
		Rise:      0.02,
	})

	marker := transform.Identity()
	marker.Scale = mgl32.Vec3{0.25, 0.25, 0.25}
	for _, l := range demoLights {
		t := marker
		t.Position = l.pos
		store.NewLight(l.name, t, cube, l.color, 1000)
		store.NewArray(l.name, "column", 42, scene.Column{Step: mgl32.Vec3{0, 1, 0}})
	}

	e.Logger().Info("demo scene ready",
		zap.Int("objects", len(store.Objects())),
		zap.Int("lights", len(store.Lights())),
	)
	return nil
}

func (d *demoScene) update(e engine.Engine, dt time.Duration) error {
	rot := mgl32.Rotate3DY(lightOrbitSpeed * float32(dt.Seconds()))
	for _, l := range e.Store().Lights() {
		t := l.Transform()
		t.Position = rot.Mul3x1(t.Position)
	}
	return nil
}

var gridLayout = scene.Grid{Columns: 10, Spacing: 3, Origin: mgl32.Vec3{-13.5, 0, -13.5}}

// tiltedGrid places element index on a 10x10 grid, each cube tilted 45 degrees about
// the axis from the origin to its cell.
func tiltedGrid(index int) transform.Transform {
	t := gridLayout.Transform(index)
	axis := t.Position
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 0, 1}
	}
	t.Rotation = transform.EulerFromQuat(mgl32.QuatRotate(math.Pi/4, axis.Normalize()))
	return t
}
