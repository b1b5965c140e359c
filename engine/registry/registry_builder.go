package registry

import "github.com/Carmen-Shannon/oxy-backdrop/engine/renderer/shader"

// RegistryBuilderOption is a functional option applied to a registry during Load.
type RegistryBuilderOption func(*registry)

// WithInitialShader selects name after loading when it is one of the fragment shaders.
// Otherwise the first name in sorted order is active.
//
// Parameters:
//   - name: the fragment shader to start with
//
// Returns:
//   - RegistryBuilderOption: a function that applies the initial shader option to a registry
func WithInitialShader(name string) RegistryBuilderOption {
	return func(r *registry) {
		r.initial = name
	}
}

// WithValidator checks every shader with v after annotations are expanded and before any
// pipeline is created. v sees the processed WGSL that is handed to the GPU.
//
// Parameters:
//   - v: the validator, e.g. shader.NewNagaValidator()
//
// Returns:
//   - RegistryBuilderOption: a function that applies the validator option to a registry
func WithValidator(v shader.Validator) RegistryBuilderOption {
	return func(r *registry) {
		r.validator = v
	}
}

// WithValidationWorkers bounds the number of entries validated concurrently. Defaults to 4.
//
// Parameters:
//   - n: the worker count, values below 1 mean 1
//
// Returns:
//   - RegistryBuilderOption: a function that applies the worker count option to a registry
func WithValidationWorkers(n int) RegistryBuilderOption {
	return func(r *registry) {
		r.validationWorkers = n
	}
}
