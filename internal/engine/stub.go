//go:build !llama

package engine

// This file provides a no-CGO stub that is compiled when the 'llama' build
// tag is NOT set, keeping default builds and CI CGO-free. The real binding
// lives in llama.go (tagged 'llama'). The stub refuses to load models
// rather than mocking behavior in production binaries.

type stubEngine struct{}

// New returns the engine for this build. Without the 'llama' tag it fails
// fast on the first LoadModel call.
func New() Engine { return stubEngine{} }

func (stubEngine) LoadModel(path string, opts ModelOptions) (Model, error) {
	return nil, ErrUnavailable("llama support not built (missing 'llama' build tag)")
}
