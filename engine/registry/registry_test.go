package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
)

const vertexSource = `@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32((i << 1u) & 2u);
    let y = f32(i & 2u);
    return vec4<f32>(x * 2.0 - 1.0, 1.0 - y * 2.0, 0.0, 1.0);
}
`

const fragmentSource = `//@oxy:include frame_uniform
//@oxy:group 0 0 storage_uniform frame frame_uniform

@fragment
fn fs_main(@builtin(position) coord: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(coord.xy / frame.resolution, sin(frame.time), 1.0);
}
`

type fakeCompiler struct {
	mu         sync.Mutex
	registered []string
	fail       map[string]error
}

func (c *fakeCompiler) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range pipelines {
		if err := c.fail[p.Key()]; err != nil {
			return err
		}
		c.registered = append(c.registered, p.Key())
	}
	return nil
}

func entries(names ...string) []shader.Entry {
	out := []shader.Entry{{Name: shader.VertexStageName, Source: vertexSource}}
	for _, n := range names {
		out = append(out, shader.Entry{Name: n, Source: fragmentSource})
	}
	return out
}

func TestLoadSortsNamesAndSelectsFirst(t *testing.T) {
	compiler := &fakeCompiler{}
	r, err := Load(entries("plasma", "fire", "ice"), compiler)
	require.NoError(t, err)

	assert.Equal(t, []string{"fire", "ice", "plasma"}, r.Names())
	assert.Equal(t, "fire", r.Active())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"fire", "ice", "plasma"}, compiler.registered)
	require.NotNil(t, r.ActivePipeline())
	assert.Equal(t, "fire", r.ActivePipeline().Key())
	assert.Same(t, r.VertexShader(), r.ActivePipeline().Shader(shader.ShaderTypeVertex))
}

func TestNamesReturnsCopy(t *testing.T) {
	r, err := Load(entries("a", "b"), nil)
	require.NoError(t, err)

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestSelect(t *testing.T) {
	r, err := Load(entries("a", "b"), nil)
	require.NoError(t, err)

	assert.True(t, r.Select("b"))
	assert.Equal(t, "b", r.Active())

	assert.False(t, r.Select("missing"))
	assert.Equal(t, "b", r.Active())

	assert.False(t, r.Select(shader.VertexStageName))
	assert.Equal(t, "b", r.Active())
}

func TestSelectActiveReportsNoChange(t *testing.T) {
	r, err := Load(entries("a"), nil)
	require.NoError(t, err)

	assert.False(t, r.Select(r.Active()))
	assert.Equal(t, "a", r.Active())
}

func TestNextPreviousWrap(t *testing.T) {
	r, err := Load(entries("a", "b", "c"), nil)
	require.NoError(t, err)

	assert.Equal(t, "b", r.Next())
	assert.Equal(t, "c", r.Next())
	assert.Equal(t, "a", r.Next())
	assert.Equal(t, "c", r.Previous())
	assert.Equal(t, "c", r.Active())
}

func TestLoadOnlyVertexStage(t *testing.T) {
	r, err := Load(entries(), nil)
	require.NoError(t, err)

	assert.Empty(t, r.Names())
	assert.Equal(t, "", r.Active())
	assert.Nil(t, r.ActivePipeline())
	assert.Equal(t, "", r.Next())
	assert.False(t, r.Select("a"))
}

func TestWithInitialShader(t *testing.T) {
	r, err := Load(entries("a", "b"), nil, WithInitialShader("b"))
	require.NoError(t, err)
	assert.Equal(t, "b", r.Active())

	r, err = Load(entries("a", "b"), nil, WithInitialShader("missing"))
	require.NoError(t, err)
	assert.Equal(t, "a", r.Active())
}

func TestLoadMissingVertexStage(t *testing.T) {
	r, err := Load([]shader.Entry{{Name: "a", Source: fragmentSource}}, &fakeCompiler{})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrMissingVertexStage)
}

func TestLoadInvalidEntries(t *testing.T) {
	_, err := Load(append(entries("a"), shader.Entry{Name: "a", Source: fragmentSource}), nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = Load(append(entries("a"), shader.Entry{Source: fragmentSource}), nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLoadShaderCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []shader.Entry
		failing string
	}{
		{
			name:    "fragment without entry point",
			entries: append(entries("a"), shader.Entry{Name: "broken", Source: "fn nothing() {}"}),
			failing: "broken",
		},
		{
			name: "fragment with extra binding",
			entries: append(entries("a"), shader.Entry{Name: "extra", Source: fragmentSource + `
@group(0) @binding(1) var<uniform> other: vec4<f32>;
`}),
			failing: "extra",
		},
		{
			name:    "vertex stage with vertex buffers",
			entries: []shader.Entry{{Name: shader.VertexStageName, Source: "@vertex fn vs_main(@location(0) p: vec2<f32>) -> @builtin(position) vec4<f32> { return vec4<f32>(p, 0.0, 1.0); }"}},
			failing: shader.VertexStageName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Load(tt.entries, &fakeCompiler{})
			assert.Nil(t, r)
			var compileErr *ShaderCompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.failing, compileErr.Name)
			assert.NotEmpty(t, compileErr.Message)
		})
	}
}

func TestLoadGPUFailureIsCompileError(t *testing.T) {
	boom := errors.New("invalid shader module")
	compiler := &fakeCompiler{fail: map[string]error{"b": boom}}

	r, err := Load(entries("a", "b", "c"), compiler)
	assert.Nil(t, r)
	var compileErr *ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "b", compileErr.Name)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, compiler.registered)
}

func TestLoadValidatorReportsFirstFailureInNameOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	v := shader.ValidatorFunc(func(name, _ string) error {
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
		if name == "c" || name == "b" {
			return errors.New("bad " + name)
		}
		return nil
	})

	r, err := Load(entries("c", "b", "a"), nil, WithValidator(v), WithValidationWorkers(3))
	assert.Nil(t, r)
	var compileErr *ShaderCompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "b", compileErr.Name)
	assert.Equal(t, "bad b", compileErr.Message)
	assert.ElementsMatch(t, []string{"a", "b", "c", shader.VertexStageName}, seen)
}

func TestLoadValidatorPasses(t *testing.T) {
	v := shader.ValidatorFunc(func(string, string) error { return nil })
	r, err := Load(entries("a"), nil, WithValidator(v), WithValidationWorkers(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, r.Names())
}

func TestLoadValidatorSeesProcessedSource(t *testing.T) {
	var mu sync.Mutex
	sources := map[string]string{}
	v := shader.ValidatorFunc(func(name, source string) error {
		mu.Lock()
		defer mu.Unlock()
		sources[name] = source
		return nil
	})

	_, err := Load(entries("a"), nil, WithValidator(v))
	require.NoError(t, err)
	assert.Contains(t, sources["a"], "struct FrameUniform")
	assert.NotContains(t, sources["a"], "//@oxy:include")
}

func TestLoadEmbeddedLibraryWithNagaValidator(t *testing.T) {
	lib, err := shader.Embedded()
	require.NoError(t, err)

	compiler := &fakeCompiler{}
	r, err := Load(lib, compiler, WithValidator(shader.NewNagaValidator()))
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "fire", "ice", "plasma"}, r.Names())
	assert.Equal(t, r.Names(), compiler.registered)
}

func TestShaderCompileErrorMessage(t *testing.T) {
	err := newShaderCompileError("fire", errors.New("line 3: unexpected token"))
	assert.Equal(t, `registry: shader "fire" failed to compile: line 3: unexpected token`, err.Error())
}
