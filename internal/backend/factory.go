package backend

import (
	"fmt"
	"io"

	"github.com/hyperengineering/embedd/internal/config"
)

// New builds the configured backend and enforces the pipeline dimension
// contract. A backend whose declared width disagrees with the pipeline schema
// must prevent startup; the service never falls back to a different backend.
func New(cfg *config.Config) (Backend, error) {
	var b Backend
	switch cfg.Backend.Kind {
	case "deterministic":
		b = NewDeterministic(cfg.Backend.Model)
	case "llama":
		llama, err := NewLlama(cfg.Backend)
		if err != nil {
			return nil, err
		}
		b = llama
	case "remote":
		b = NewRemote(cfg.Backend)
	default:
		return nil, fmt.Errorf("unsupported backend: %q", cfg.Backend.Kind)
	}

	if b.Dimensions() != PipelineDimensions {
		if c, ok := b.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("backend dimension mismatch: got %d, expected %d for the pipeline vector schema",
			b.Dimensions(), PipelineDimensions)
	}
	return b, nil
}
