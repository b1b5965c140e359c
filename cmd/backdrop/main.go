//go:build !js

// Command backdrop renders the shader library full screen behind a desktop window and reads
// console commands from stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/config"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/profiler"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/registry"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

func init() {
	// GLFW and the WebGPU surface must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backdrop:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	shaderDir := flag.String("shaders", "", "directory of .wgsl files (overrides shaders.dir)")
	initial := flag.String("shader", "", "initial shader (overrides shaders.initial)")
	fullscreen := flag.Bool("fullscreen", false, "open full screen on the primary monitor")
	watch := flag.Bool("watch", false, "apply config file changes while running")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *shaderDir != "" {
		cfg.Shaders.Dir = *shaderDir
	}
	if *initial != "" {
		cfg.Shaders.Initial = *initial
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	common.SetLogger(logger)

	entries, err := loadShaders(cfg.Shaders)
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithFullscreen(*fullscreen),
	)
	if err != nil {
		return err
	}

	registryOptions := []registry.RegistryBuilderOption{
		registry.WithInitialShader(cfg.Shaders.Initial),
		registry.WithValidationWorkers(cfg.Shaders.Workers),
	}
	if cfg.Shaders.Validate {
		registryOptions = append(registryOptions, registry.WithValidator(shader.NewNagaValidator()))
	}

	c := cfg.Renderer.ClearColor
	repl := newREPL(os.Stdin, os.Stdout)
	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithShaders(entries),
		engine.WithRendererOptions(
			renderer.WithPresentMode(cfg.Renderer.ParsedPresentMode()),
			renderer.WithClearColor(wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]}),
			renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
		),
		engine.WithRegistryOptions(registryOptions...),
		engine.WithProfiler(profiler.NewProfiler(
			profiler.WithEnabled(cfg.Profiling.Enabled),
			profiler.WithInterval(cfg.Profiling.IntervalDuration()),
		)),
		engine.WithCommandOutput(repl.print),
	)
	if err != nil {
		_ = win.Close()
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		eng.Quit()
	}()

	go repl.run(eng)

	if *watch && *configPath != "" {
		go func() {
			previous := cfg
			err := config.Watch(ctx, *configPath, func(next config.Config) {
				for _, line := range reloadCommands(previous, next) {
					eng.Submit(line)
				}
				previous = next
			})
			if err != nil {
				common.Logger().Warn("config watch stopped", "error", err)
			}
		}()
	}

	return eng.Run()
}

// newLogger builds the slog handler named by the log section.
func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func loadShaders(cfg config.ShadersConfig) ([]shader.Entry, error) {
	if cfg.Dir == "" {
		return shader.Embedded()
	}
	return shader.LoadDir(cfg.Dir)
}

// reloadCommands turns a config change into console commands for the running engine.
func reloadCommands(previous, next config.Config) []string {
	var lines []string
	if next.Shaders.Initial != "" && next.Shaders.Initial != previous.Shaders.Initial {
		lines = append(lines, "shader "+next.Shaders.Initial)
	}
	if next.Profiling.Enabled != previous.Profiling.Enabled {
		if next.Profiling.Enabled {
			lines = append(lines, "profile on")
		} else {
			lines = append(lines, "profile off")
		}
	}
	return lines
}
