package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/spaghettifunk/stratus/engine/math"
	"github.com/spaghettifunk/stratus/engine/renderer/vulkan"
)

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position x axis.
	StartPosX uint32 `toml:"x"`
	// Window starting position y axis.
	StartPosY uint32 `toml:"y"`
	// Window starting width.
	StartWidth uint32 `toml:"width"`
	// Window starting height.
	StartHeight uint32 `toml:"height"`
}

type RendererConfig struct {
	// Directory holding the compiled SPIR-V shaders.
	ShaderDir      string `toml:"shader_dir"`
	FramesInFlight int    `toml:"frames_in_flight"`
	Validation     bool   `toml:"validation"`
	VSync          bool   `toml:"vsync"`
	// RGBA in [0, 1].
	ClearColor [4]float32 `toml:"clear_color"`
	Cull       bool       `toml:"cull"`
	ShowBounds bool       `toml:"show_bounds"`
	Grid       bool       `toml:"grid"`
}

type CameraConfig struct {
	Radius float32 `toml:"radius"`
	// Degrees.
	Azimuth float32 `toml:"azimuth"`
	// Degrees.
	Elevation float32    `toml:"elevation"`
	Target    [3]float32 `toml:"target"`
}

type SceneConfig struct {
	// Path of the TOML scene manifest.
	Path string `toml:"path"`
	// Reload node transforms when the manifest changes on disk.
	Watch bool `toml:"watch"`
	// Milliseconds the manifest must stay untouched before a reload.
	WatchDebounceMS int `toml:"watch_debounce_ms"`
	// Workers decoding texture files at load.
	TextureWorkers int `toml:"texture_workers"`
}

type ApplicationConfig struct {
	LogLevel string `toml:"log_level"`
	// Seconds between frame metric log lines; 0 disables them.
	MetricsIntervalS float64        `toml:"metrics_interval_s"`
	Window           WindowConfig   `toml:"window"`
	Renderer         RendererConfig `toml:"renderer"`
	Camera           CameraConfig   `toml:"camera"`
	Scene            SceneConfig    `toml:"scene"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		LogLevel:         "info",
		MetricsIntervalS: 5,
		Window: WindowConfig{
			Name:        "Stratus",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
		},
		Renderer: RendererConfig{
			ShaderDir:      "assets/shaders",
			FramesInFlight: vulkan.DefaultFramesInFlight,
			VSync:          true,
			ClearColor:     [4]float32{0.0, 1.0, 0.7, 1.0},
			Grid:           true,
		},
		Camera: CameraConfig{
			Radius:    10,
			Azimuth:   0,
			Elevation: 45,
			Target:    [3]float32{0, 0, 0.5},
		},
		Scene: SceneConfig{
			Path:            "assets/scenes/sample.toml",
			Watch:           true,
			WatchDebounceMS: 200,
			TextureWorkers:  4,
		},
	}
}

// LoadConfig reads path over the defaults. Relative scene and shader paths
// resolve against the directory of the config file.
func LoadConfig(path string) (*ApplicationConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config, err := ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	config.Scene.Path = resolve(dir, config.Scene.Path)
	config.Renderer.ShaderDir = resolve(dir, config.Renderer.ShaderDir)
	return config, nil
}

func ParseConfig(r io.Reader) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(config); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: unknown log level %q", core.ErrInvalidConfig, c.LogLevel)
	}
	if c.Window.StartWidth == 0 || c.Window.StartHeight == 0 {
		return fmt.Errorf("%w: window size %dx%d", core.ErrInvalidConfig, c.Window.StartWidth, c.Window.StartHeight)
	}
	if c.Renderer.FramesInFlight < 1 || c.Renderer.FramesInFlight > 3 {
		return fmt.Errorf("%w: frames_in_flight must be between 1 and 3, got %d", core.ErrInvalidConfig, c.Renderer.FramesInFlight)
	}
	for _, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color components must be in [0, 1]", core.ErrInvalidConfig)
		}
	}
	if c.Camera.Radius < 0 {
		return fmt.Errorf("%w: negative camera radius", core.ErrInvalidConfig)
	}
	if c.Scene.Path == "" {
		return fmt.Errorf("%w: missing scene path", core.ErrInvalidConfig)
	}
	if c.Scene.TextureWorkers < 1 {
		return fmt.Errorf("%w: texture_workers must be positive", core.ErrInvalidConfig)
	}
	if c.Scene.WatchDebounceMS < 0 || c.MetricsIntervalS < 0 {
		return fmt.Errorf("%w: negative interval", core.ErrInvalidConfig)
	}
	return nil
}

func (c *CameraConfig) target() math.Vec3 {
	return math.NewVec3(c.Target[0], c.Target[1], c.Target[2])
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
