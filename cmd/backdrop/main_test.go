//go:build !js

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/config"
)

func TestReloadCommands(t *testing.T) {
	base := config.Default()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{name: "unchanged", mutate: func(*config.Config) {}},
		{name: "shader", mutate: func(c *config.Config) { c.Shaders.Initial = "fire" }, want: []string{"shader fire"}},
		{name: "profiling on", mutate: func(c *config.Config) { c.Profiling.Enabled = true }, want: []string{"profile on"}},
		{
			name: "both",
			mutate: func(c *config.Config) {
				c.Shaders.Initial = "ice"
				c.Profiling.Enabled = true
			},
			want: []string{"shader ice", "profile on"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base
			tt.mutate(&next)
			assert.Equal(t, tt.want, reloadCommands(base, next))
		})
	}
}

func TestReloadCommandsProfilingOff(t *testing.T) {
	prev := config.Default()
	prev.Profiling.Enabled = true
	assert.Equal(t, []string{"profile off"}, reloadCommands(prev, config.Default()))
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	assert.NoError(t, err)

	_, err = newLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
