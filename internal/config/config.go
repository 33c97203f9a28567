package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides the config file path.
const EnvPath = "VIKE_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath names a config file.
const DefaultPath = "config/vike.toml"

type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Render   RenderConfig   `toml:"render" yaml:"render"`
	Headless HeadlessConfig `toml:"headless" yaml:"headless"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

type WindowConfig struct {
	Title       string `toml:"title" yaml:"title"`
	Width       int    `toml:"width" yaml:"width"`
	Height      int    `toml:"height" yaml:"height"`
	PresentMode string `toml:"present_mode" yaml:"present_mode"` // "vsync" or "uncapped"
	Resizable   bool   `toml:"resizable" yaml:"resizable"`
}

type RenderConfig struct {
	Mode          string     `toml:"mode" yaml:"mode"` // "window" or "headless"
	DebugAxis     bool       `toml:"debug_axis" yaml:"debug_axis"`
	ForceSoftware bool       `toml:"force_software" yaml:"force_software"`
	ClearColor    [4]float64 `toml:"clear_color" yaml:"clear_color"`
}

type HeadlessConfig struct {
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Frames    int    `toml:"frames" yaml:"frames"`
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	Format    string `toml:"format" yaml:"format"` // "png", "bmp" or "tiff"
	Workers   int    `toml:"workers" yaml:"workers"`
}

type CameraConfig struct {
	Position    [3]float32 `toml:"position" yaml:"position"`
	Yaw         float32    `toml:"yaw" yaml:"yaw"`     // degrees
	Pitch       float32    `toml:"pitch" yaml:"pitch"` // degrees
	Fovy        float32    `toml:"fovy" yaml:"fovy"`   // degrees
	Near        float32    `toml:"near" yaml:"near"`
	Far         float32    `toml:"far" yaml:"far"`
	Speed       float32    `toml:"speed" yaml:"speed"`
	Sensitivity float32    `toml:"sensitivity" yaml:"sensitivity"`
}

type SceneConfig struct {
	AssetDir         string `toml:"asset_dir" yaml:"asset_dir"`
	ExpansionWorkers int    `toml:"expansion_workers" yaml:"expansion_workers"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Path returns the config path from EnvPath, falling back to def.
func Path(def string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return def
}

// Load reads the TOML (.toml) or YAML (.yaml, .yml) file at path over Defaults and validates it.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:       "vike",
			Width:       1280,
			Height:      720,
			PresentMode: "vsync",
			Resizable:   true,
		},
		Render: RenderConfig{
			Mode:       "window",
			DebugAxis:  true,
			ClearColor: [4]float64{0.1, 0.2, 0.3, 1.0},
		},
		Headless: HeadlessConfig{
			Width:     800,
			Height:    600,
			Frames:    1,
			OutputDir: "frames",
			Format:    "png",
			Workers:   4,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 5, 10},
			Yaw:         -90,
			Pitch:       -20,
			Fovy:        45,
			Near:        0.1,
			Far:         1000,
			Speed:       4,
			Sensitivity: 0.6,
		},
		Scene: SceneConfig{
			AssetDir:         "assets",
			ExpansionWorkers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports every out-of-range size and unknown enum value.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	check(oneOf(c.Window.PresentMode, "vsync", "uncapped"), "window.present_mode %q must be vsync or uncapped", c.Window.PresentMode)
	check(oneOf(c.Render.Mode, "window", "headless"), "render.mode %q must be window or headless", c.Render.Mode)
	check(c.Headless.Width > 0 && c.Headless.Height > 0, "headless size %dx%d must be positive", c.Headless.Width, c.Headless.Height)
	check(c.Headless.Frames > 0, "headless.frames %d must be positive", c.Headless.Frames)
	check(c.Headless.Workers > 0, "headless.workers %d must be positive", c.Headless.Workers)
	check(oneOf(c.Headless.Format, "png", "bmp", "tiff"), "headless.format %q must be png, bmp or tiff", c.Headless.Format)
	check(c.Camera.Fovy > 0 && c.Camera.Fovy < 180, "camera.fovy %v must be in (0, 180)", c.Camera.Fovy)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera clip planes %v..%v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	check(c.Scene.ExpansionWorkers > 0, "scene.expansion_workers %d must be positive", c.Scene.ExpansionWorkers)
	check(oneOf(c.Logging.Format, "json", "console"), "logging.format %q must be json or console", c.Logging.Format)

	return errors.Join(errs...)
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
