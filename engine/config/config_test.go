package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, renderer.PresentModeAuto, cfg.Renderer.ParsedPresentMode())
	assert.Equal(t, time.Second, cfg.Profiling.IntervalDuration())
}

func TestParseTOML(t *testing.T) {
	doc := `
[window]
width = 800

[renderer]
present_mode = "vsync"
clear_color = [0.1, 0.2, 0.3, 1.0]

[shaders]
initial = "fire"

[log]
level = "debug"
format = "json"

[profiling]
enabled = true
interval = "250ms"
`
	cfg, err := Parse([]byte(doc), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "oxy-backdrop", cfg.Window.Title)
	assert.Equal(t, renderer.PresentModeVSync, cfg.Renderer.ParsedPresentMode())
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1.0}, cfg.Renderer.ClearColor)
	assert.Equal(t, "fire", cfg.Shaders.Initial)
	assert.True(t, cfg.Shaders.Validate)
	assert.True(t, cfg.Profiling.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Profiling.IntervalDuration())

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseYAML(t *testing.T) {
	doc := `
window:
  title: desk
  height: 400
renderer:
  present_mode: uncapped
shaders:
  dir: ./shaders
  validate: false
`
	cfg, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "desk", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 400, cfg.Window.Height)
	assert.Equal(t, renderer.PresentModeUncapped, cfg.Renderer.ParsedPresentMode())
	assert.Equal(t, "./shaders", cfg.Shaders.Dir)
	assert.False(t, cfg.Shaders.Validate)
}

func TestParseEmptyDocumentKeepsDefaults(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatYAML} {
		cfg, err := Parse(nil, f)
		require.NoError(t, err, f)
		assert.Equal(t, Default(), cfg, f)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format Format
	}{
		{"unknown toml key", "[window]\ndepth = 3\n", FormatTOML},
		{"unknown yaml key", "window:\n  depth: 3\n", FormatYAML},
		{"bad toml", "[window\n", FormatTOML},
		{"negative size", "[window]\nwidth = -1\n", FormatTOML},
		{"present mode", "[renderer]\npresent_mode = \"triple\"\n", FormatTOML},
		{"clear color", "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]\n", FormatTOML},
		{"log level", "log:\n  level: loud\n", FormatYAML},
		{"log format", "log:\n  format: xml\n", FormatYAML},
		{"interval", "profiling:\n  interval: soon\n", FormatYAML},
		{"unknown format", "", Format("ini")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestValidateWrapsErrInvalid(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "log.format")
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml":    FormatTOML,
		"a.TOML":    FormatTOML,
		"dir/b.yml": FormatYAML,
		"b.yaml":    FormatYAML,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := FormatFromPath("c.json")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backdrop.toml")
	require.NoError(t, os.WriteFile(path, []byte("[shaders]\ninitial = \"ice\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ice", cfg.Shaders.Initial)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
