package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "window", cfg.Render.Mode)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1.0}, cfg.Render.ClearColor)
	assert.Equal(t, "png", cfg.Headless.Format)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := write(t, "vike.toml", `
[render]
mode = "headless"
debug_axis = false

[headless]
width = 320
height = 240
frames = 10
format = "tiff"

[camera]
position = [1.0, 2.0, 3.0]

[logging]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "headless", cfg.Render.Mode)
	assert.False(t, cfg.Render.DebugAxis)
	assert.Equal(t, 320, cfg.Headless.Width)
	assert.Equal(t, 10, cfg.Headless.Frames)
	assert.Equal(t, "tiff", cfg.Headless.Format)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Position)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// untouched sections keep their defaults
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 4, cfg.Headless.Workers)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "vike.yaml", `
window:
  title: demo
  present_mode: uncapped
scene:
  asset_dir: /srv/models
  expansion_workers: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, "uncapped", cfg.Window.PresentMode)
	assert.Equal(t, "/srv/models", cfg.Scene.AssetDir)
	assert.Equal(t, 8, cfg.Scene.ExpansionWorkers)
	assert.Equal(t, 720, cfg.Window.Height)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("bad extension", func(t *testing.T) {
		_, err := Load(write(t, "vike.ini", "x=1"))
		assert.ErrorContains(t, err, "unsupported extension")
	})
	t.Run("bad toml", func(t *testing.T) {
		path := write(t, "vike.toml", "[render\nmode=")
		_, err := Load(path)
		assert.ErrorContains(t, err, "parse config "+path)
	})
	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(write(t, "vike.yml", "render:\n  mode: vr\nheadless:\n  format: gif\n"))
		require.Error(t, err)
		assert.ErrorContains(t, err, `render.mode "vr"`)
		assert.ErrorContains(t, err, `headless.format "gif"`)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "zero window", mutate: func(c *Config) { c.Window.Width = 0 }, want: "window size"},
		{name: "present mode", mutate: func(c *Config) { c.Window.PresentMode = "mailbox" }, want: "present_mode"},
		{name: "frames", mutate: func(c *Config) { c.Headless.Frames = 0 }, want: "headless.frames"},
		{name: "workers", mutate: func(c *Config) { c.Headless.Workers = -1 }, want: "headless.workers"},
		{name: "fovy", mutate: func(c *Config) { c.Camera.Fovy = 180 }, want: "camera.fovy"},
		{name: "clip planes", mutate: func(c *Config) { c.Camera.Far = 0.05 }, want: "clip planes"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, want: "logging.format"},
		{name: "expansion workers", mutate: func(c *Config) { c.Scene.ExpansionWorkers = 0 }, want: "expansion_workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestPathEnvOverride(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path(DefaultPath))

	t.Setenv(EnvPath, "/etc/vike.yaml")
	assert.Equal(t, "/etc/vike.yaml", Path(DefaultPath))
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Headless.Frames)
	assert.Equal(t, Defaults().Camera, cfg.Camera)
}
