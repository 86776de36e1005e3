//go:build !llama

package backend

import "github.com/hyperengineering/embedd/internal/config"

// newEngine returns ErrLlamaNotCompiled when built without the llama tag.
func newEngine(_ config.BackendConfig) (engine, error) {
	return nil, ErrLlamaNotCompiled
}

// LlamaAvailable reports whether the binary carries the llama.cpp bindings.
func LlamaAvailable() bool {
	return false
}
