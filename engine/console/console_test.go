package console

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelector struct {
	names  []string
	active string
}

func (f *fakeSelector) ListShaders() []string { return slices.Clone(f.names) }

func (f *fakeSelector) SelectShader(name string) bool {
	if !slices.Contains(f.names, name) || name == f.active {
		return false
	}
	f.active = name
	return true
}

func (f *fakeSelector) ActiveShader() string { return f.active }

func (f *fakeSelector) NextShader() string { return f.step(1) }

func (f *fakeSelector) PreviousShader() string { return f.step(-1) }

func (f *fakeSelector) step(d int) string {
	if len(f.names) == 0 {
		return ""
	}
	i := slices.Index(f.names, f.active)
	f.active = f.names[(i+d+len(f.names))%len(f.names)]
	return f.active
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Result
		active string
	}{
		{name: "empty", line: "   ", want: Result{}, active: "a"},
		{name: "unknown", line: "  dance now ", want: Result{Output: "dance now: command not found"}, active: "a"},
		{name: "shaders", line: "shaders", want: Result{Output: "Available shaders:\n  a (active)\n  b\n\nUse 'shader [name]' to switch"}, active: "a"},
		{name: "select", line: "shader b", want: Result{Output: "Shader set to: b"}, active: "b"},
		{name: "select active", line: "shader a", want: Result{Output: "Shader set to: a"}, active: "a"},
		{name: "select quoted", line: `shader "b"`, want: Result{Output: "Shader set to: b"}, active: "b"},
		{name: "select missing", line: "shader missing", want: Result{Output: "Shader 'missing' not found. Available shaders:\n  a\n  b"}, active: "a"},
		{name: "shader without name", line: "shader", want: Result{Output: "Usage: shader [name]"}, active: "a"},
		{name: "next", line: "next", want: Result{Output: "Shader set to: b"}, active: "b"},
		{name: "prev", line: "prev", want: Result{Output: "Shader set to: b"}, active: "b"},
		{name: "clear", line: "clear", want: Result{Clear: true}, active: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := &fakeSelector{names: []string{"a", "b"}, active: "a"}
			got, err := NewConsole(sel).Execute(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.active, sel.active)
		})
	}
}

func TestExecuteParseError(t *testing.T) {
	_, err := NewConsole(&fakeSelector{}).Execute(`shader "unterminated`)
	assert.Error(t, err)
}

func TestShadersEmpty(t *testing.T) {
	got, err := NewConsole(&fakeSelector{}).Execute("shaders")
	require.NoError(t, err)
	assert.Equal(t, "No shaders available", got.Output)

	got, err = NewConsole(&fakeSelector{}).Execute("next")
	require.NoError(t, err)
	assert.Equal(t, "No shaders available", got.Output)
}

func TestProfileCommand(t *testing.T) {
	c := NewConsole(&fakeSelector{})
	got, err := c.Execute("profile on")
	require.NoError(t, err)
	assert.Equal(t, "profile on: command not found", got.Output)
	assert.NotContains(t, c.Commands(), "profile")

	var states []bool
	c = NewConsole(&fakeSelector{}, WithProfileToggle(func(on bool) { states = append(states, on) }))
	for _, line := range []string{"profile on", "profile OFF", "profile maybe", "profile"} {
		_, err := c.Execute(line)
		require.NoError(t, err)
	}
	assert.Equal(t, []bool{true, false}, states)
}

func TestHelpListsCommands(t *testing.T) {
	c := NewConsole(&fakeSelector{}, WithProfileToggle(func(bool) {}))
	got, err := c.Execute("help")
	require.NoError(t, err)

	assert.Equal(t, []string{"help", "shaders", "shader", "next", "prev", "profile", "clear"}, c.Commands())
	assert.Contains(t, got.Output, "Available commands:")
	assert.Contains(t, got.Output, "shader [name] (switch shader)")
	assert.Contains(t, got.Output, "profile on|off")
}
