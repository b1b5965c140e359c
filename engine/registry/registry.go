package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"
)

// PipelineCompiler creates the GPU side of compiled pipelines. The renderer session implements it.
type PipelineCompiler interface {
	// RegisterPipelines creates GPU render pipelines for each Pipeline.
	//
	// Parameters:
	//   - pipelines: the pipelines to create
	//
	// Returns:
	//   - error: the first creation failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
}

// registry is the implementation of the Registry interface.
type registry struct {
	mu *sync.Mutex

	pipelines map[string]pipeline.Pipeline
	names     []string
	active    string
	vertex    shader.Shader

	initial           string
	validator         shader.Validator
	validationWorkers int
}

// Registry holds one compiled pipeline per fragment shader, all sharing the vertex stage,
// and tracks which one is drawn.
//
// The active name is always a key of the pipeline set, or "" when the set is empty.
type Registry interface {
	// Names returns the selectable fragment shader names in ascending order.
	//
	// Returns:
	//   - []string: a copy of the sorted names
	Names() []string

	// Select makes the named pipeline active. Unknown names leave the selection unchanged.
	//
	// Parameters:
	//   - name: the fragment shader name
	//
	// Returns:
	//   - bool: true when the active shader changed
	Select(name string) bool

	// Active returns the active fragment shader name, or "" when there are no fragment shaders.
	//
	// Returns:
	//   - string: the active name
	Active() string

	// ActivePipeline returns the pipeline for Active, or nil when there is none.
	//
	// Returns:
	//   - pipeline.Pipeline: the active pipeline
	ActivePipeline() pipeline.Pipeline

	// Pipeline returns the pipeline for a name, or nil when unknown.
	//
	// Parameters:
	//   - name: the fragment shader name
	//
	// Returns:
	//   - pipeline.Pipeline: the named pipeline
	Pipeline(name string) pipeline.Pipeline

	// Next selects the name after Active in sorted order, wrapping around.
	//
	// Returns:
	//   - string: the new active name, "" when empty
	Next() string

	// Previous selects the name before Active in sorted order, wrapping around.
	//
	// Returns:
	//   - string: the new active name, "" when empty
	Previous() string

	// Len returns the number of fragment pipelines.
	//
	// Returns:
	//   - int: the pipeline count
	Len() int

	// VertexShader returns the shared vertex stage.
	//
	// Returns:
	//   - shader.Shader: the vertex shader
	VertexShader() shader.Shader
}

var _ Registry = &registry{}

// Load compiles entries into a Registry. Exactly one entry must be named shader.VertexStageName;
// every other entry becomes a fragment pipeline sharing that vertex stage. Construction is
// all-or-nothing: on error no registry is returned.
//
// Parameters:
//   - entries: the shader sources
//   - compiler: creates the GPU pipelines, usually the renderer session; nil skips GPU creation
//   - options: variadic list of RegistryBuilderOption functions
//
// Returns:
//   - Registry: the loaded registry
//   - error: ErrMissingVertexStage, ErrInvalidEntry (wrapped) or a *ShaderCompileError
func Load(entries []shader.Entry, compiler PipelineCompiler, options ...RegistryBuilderOption) (Registry, error) {
	r := &registry{
		mu:                &sync.Mutex{},
		pipelines:         make(map[string]pipeline.Pipeline),
		validationWorkers: 4,
	}
	for _, opt := range options {
		opt(r)
	}

	vertexSource, fragments, err := partitionEntries(entries)
	if err != nil {
		return nil, err
	}

	vs, err := shader.NewShader(shader.VertexStageName, shader.ShaderTypeVertex, vertexSource)
	if err == nil {
		err = shader.CheckUniformContract(vs)
	}
	if err != nil {
		return nil, newShaderCompileError(shader.VertexStageName, err)
	}
	r.vertex = vs

	built := []shader.Shader{vs}
	for _, e := range fragments {
		fs, err := shader.NewShader(e.Name, shader.ShaderTypeFragment, e.Source)
		if err == nil {
			err = shader.CheckUniformContract(fs)
		}
		if err != nil {
			return nil, newShaderCompileError(e.Name, err)
		}
		built = append(built, fs)
	}

	if r.validator != nil {
		if err := r.validate(built); err != nil {
			return nil, err
		}
	}

	for _, fs := range built[1:] {
		r.pipelines[fs.Key()] = pipeline.NewPipeline(fs.Key(),
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
		)
		r.names = append(r.names, fs.Key())
	}

	if compiler != nil {
		for _, name := range r.names {
			if err := compiler.RegisterPipelines(r.pipelines[name]); err != nil {
				return nil, newShaderCompileError(name, err)
			}
		}
	}

	if len(r.names) > 0 {
		r.active = r.names[0]
		if _, ok := r.pipelines[r.initial]; ok {
			r.active = r.initial
		}
	}

	common.Logger().Info("shaders loaded", "count", len(r.names), "active", r.active)
	return r, nil
}

// partitionEntries checks names and splits the vertex stage from the fragments, sorted by name.
func partitionEntries(entries []shader.Entry) (string, []shader.Entry, error) {
	seen := make(map[string]struct{}, len(entries))
	var vertexSource string
	hasVertex := false
	fragments := make([]shader.Entry, 0, len(entries))

	for i, e := range entries {
		if e.Name == "" {
			return "", nil, fmt.Errorf("%w: entry %d has an empty name", ErrInvalidEntry, i)
		}
		if _, dup := seen[e.Name]; dup {
			return "", nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidEntry, e.Name)
		}
		seen[e.Name] = struct{}{}

		if e.Name == shader.VertexStageName {
			vertexSource = e.Source
			hasVertex = true
			continue
		}
		fragments = append(fragments, e)
	}
	if !hasVertex {
		return "", nil, ErrMissingVertexStage
	}

	slices.SortFunc(fragments, byName)
	return vertexSource, fragments, nil
}

// validate runs the validator over the processed source of every shader on a bounded worker pool
// and reports the first failure in name order.
func (r *registry) validate(shaders []shader.Shader) error {
	sorted := slices.Clone(shaders)
	slices.SortFunc(sorted, func(a, b shader.Shader) int { return strings.Compare(a.Key(), b.Key()) })

	pool := worker.NewDynamicWorkerPool(max(r.validationWorkers, 1), len(sorted)+1, 1*time.Second)
	results := make([]error, len(sorted))

	// A WaitGroup is the barrier; pool.Wait blocks until idle workers exit.
	var wg sync.WaitGroup
	for i, s := range sorted {
		wg.Add(1)
		idx, sh := i, s
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx] = r.validator.Validate(sh.Key(), sh.Source())
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, err := range results {
		if err != nil {
			return newShaderCompileError(sorted[i].Key(), err)
		}
	}
	return nil
}

func (r *registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.names)
}

func (r *registry) Select(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pipelines[name]; !ok || name == r.active {
		return false
	}
	r.active = name
	return true
}

func (r *registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *registry) ActivePipeline() pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[r.active]
}

func (r *registry) Pipeline(name string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[name]
}

func (r *registry) Next() string {
	return r.step(1)
}

func (r *registry) Previous() string {
	return r.step(-1)
}

func (r *registry) step(delta int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.names) == 0 {
		return ""
	}
	i, _ := slices.BinarySearch(r.names, r.active)
	r.active = r.names[common.WrapIndex(i+delta, len(r.names))]
	return r.active
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

func (r *registry) VertexShader() shader.Shader {
	return r.vertex
}

func byName(a, b shader.Entry) int {
	return strings.Compare(a.Name, b.Name)
}
