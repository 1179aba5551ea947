package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/stratus/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigKeepsDefaults(t *testing.T) {
	config, err := ParseConfig(strings.NewReader(`
log_level = "debug"

[window]
width = 800

[renderer]
cull = true
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, uint32(800), config.Window.StartWidth)
	assert.Equal(t, uint32(720), config.Window.StartHeight)
	assert.Equal(t, "Stratus", config.Window.Name)
	assert.True(t, config.Renderer.Cull)
	assert.True(t, config.Renderer.Grid)
	assert.Equal(t, 2, config.Renderer.FramesInFlight)
	assert.Equal(t, [4]float32{0.0, 1.0, 0.7, 1.0}, config.Renderer.ClearColor)
}

func TestParseConfigRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":    "colour = 1\n",
		"log level":        "log_level = \"loud\"\n",
		"zero height":      "[window]\nheight = 0\n",
		"frames in flight": "[renderer]\nframes_in_flight = 0\n",
		"clear color":      "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]\n",
		"camera radius":    "[camera]\nradius = -1.0\n",
		"scene path":       "[scene]\npath = \"\"\n",
		"workers":          "[scene]\ntexture_workers = 0\n",
		"malformed":        "[window\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig(strings.NewReader(text))
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestLoadConfigResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[scene]
path = "scenes/cube.toml"

[renderer]
shader_dir = "/opt/shaders"
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scenes", "cube.toml"), config.Scene.Path)
	assert.Equal(t, "/opt/shaders", config.Renderer.ShaderDir)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
