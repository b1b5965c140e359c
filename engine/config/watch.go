//go:build !js

package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written or replaced and passes each valid configuration to
// onChange. Invalid reloads are logged and skipped. The directory is watched rather than the file
// so editors that save by renaming are followed. Watching stops when ctx is done.
//
// onChange runs on the watcher goroutine.
//
// Parameters:
//   - ctx: stops the watcher when done
//   - path: the configuration file
//   - onChange: receives every successfully parsed configuration
//
// Returns:
//   - error: an error if the watcher could not be started
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					common.Logger().Warn("config reload rejected", "path", abs, "error", err)
					continue
				}
				common.Logger().Info("config reloaded", "path", abs)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				common.Logger().Warn("config watcher error", "path", abs, "error", err)
			}
		}
	}()
	return nil
}
