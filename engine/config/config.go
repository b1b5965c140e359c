package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format string

const (
	// FormatTOML is a TOML document.
	FormatTOML Format = "toml"
	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// WindowConfig describes the host window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// RendererConfig describes surface negotiation.
type RendererConfig struct {
	// PresentMode is "auto", "vsync" or "uncapped".
	PresentMode   string     `toml:"present_mode" yaml:"present_mode"`
	ForceSoftware bool       `toml:"force_software" yaml:"force_software"`
	ClearColor    [4]float64 `toml:"clear_color" yaml:"clear_color"`
}

// ShadersConfig describes the shader library.
type ShadersConfig struct {
	// Dir is a directory of *.wgsl files. Empty uses the embedded library.
	Dir      string `toml:"dir" yaml:"dir"`
	Initial  string `toml:"initial" yaml:"initial"`
	Validate bool   `toml:"validate" yaml:"validate"`
	Workers  int    `toml:"workers" yaml:"workers"`
}

// LogConfig describes the slog handler.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" yaml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format" yaml:"format"`
}

// ProfilingConfig describes the frame profiler.
type ProfilingConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Interval is a time.ParseDuration string.
	Interval string `toml:"interval" yaml:"interval"`
}

// Config is the backdrop configuration file.
type Config struct {
	Window    WindowConfig    `toml:"window" yaml:"window"`
	Renderer  RendererConfig  `toml:"renderer" yaml:"renderer"`
	Shaders   ShadersConfig   `toml:"shaders" yaml:"shaders"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	Profiling ProfilingConfig `toml:"profiling" yaml:"profiling"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-backdrop",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode: renderer.PresentModeAuto.String(),
			ClearColor:  [4]float64{0, 0, 0, 1},
		},
		Shaders: ShadersConfig{
			Validate: true,
			Workers:  4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Profiling: ProfilingConfig{
			Interval: "1s",
		},
	}
}

// FormatFromPath infers the encoding from a file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the encoding
//   - error: an error for unknown extensions
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
	}
}

// Load reads and validates a configuration file. The encoding follows the extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the parsed configuration with defaults for missing fields
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document. Unknown keys are rejected.
//
// Parameters:
//   - data: the document
//   - format: the encoding
//
// Returns:
//   - Config: the parsed configuration with defaults for missing fields
//   - error: a parse or validation error
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF; keep the defaults.
		if err := dec.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported format %q", format)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults restores defaults for fields explicitly set to their zero value.
func (c *Config) applyDefaults() {
	d := Default()
	c.Window.Title = common.Coalesce(c.Window.Title, d.Window.Title)
	c.Renderer.PresentMode = common.Coalesce(c.Renderer.PresentMode, d.Renderer.PresentMode)
	c.Log.Level = common.Coalesce(c.Log.Level, d.Log.Level)
	c.Log.Format = common.Coalesce(c.Log.Format, d.Log.Format)
	c.Profiling.Interval = common.Coalesce(c.Profiling.Interval, d.Profiling.Interval)
	c.Shaders.Workers = common.Coalesce(c.Shaders.Workers, d.Shaders.Workers)
}

// Validate checks every field. Errors wrap ErrInvalid and name the offending key.
//
// Returns:
//   - error: nil when the configuration is usable
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalid, c.Window.Width, c.Window.Height))
	}
	if _, err := renderer.ParsePresentMode(c.Renderer.PresentMode); err != nil {
		errs = append(errs, fmt.Errorf("%w: renderer.present_mode: %v", ErrInvalid, err))
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%w: renderer.clear_color[%d] = %v is outside [0, 1]", ErrInvalid, i, v))
		}
	}
	if c.Shaders.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: shaders.workers must not be negative", ErrInvalid))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("%w: log.level: %v", ErrInvalid, err))
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("%w: log.format %q is not text or json", ErrInvalid, c.Log.Format))
	}
	if d, err := time.ParseDuration(c.Profiling.Interval); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("%w: profiling.interval %q is not a positive duration", ErrInvalid, c.Profiling.Interval))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
//
// Returns:
//   - slog.Level: the level
//   - error: an error for unknown names
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// ParsedPresentMode returns the parsed present mode. Validate guarantees it parses.
//
// Returns:
//   - renderer.PresentMode: the mode, PresentModeAuto when unparsable
func (r RendererConfig) ParsedPresentMode() renderer.PresentMode {
	m, _ := renderer.ParsePresentMode(r.PresentMode)
	return m
}

// IntervalDuration returns the parsed profiling interval, one second when unparsable.
//
// Returns:
//   - time.Duration: the interval
func (p ProfilingConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(p.Interval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
