package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hyperengineering/embedd/internal/config"
	"github.com/hyperengineering/embedd/internal/vector"
)

// ErrLlamaNotCompiled is returned when the llama build tag is not enabled.
var ErrLlamaNotCompiled = errors.New("llama backend not compiled (build with -tags llama)")

// Compile-time interface check
var _ Backend = (*Llama)(nil)

// engine is the internal interface for local model inference. The real
// implementation binds llama.cpp and only compiles with the llama build tag;
// the default build gets a stub that fails at load time.
type engine interface {
	// EmbedText returns the model's pooled hidden-state vector for one text,
	// truncated at maxTokens. The vector is not normalized.
	EmbedText(ctx context.Context, text string, maxTokens int) ([]float32, error)
	// Dimensions returns the model's native embedding width, 0 if unknown.
	Dimensions() int
	// Close releases native resources.
	Close() error
}

// Llama wraps a loaded local GGUF model. The underlying model state is not
// safe for concurrent forward passes, so Embed serializes callers behind a
// mutex; concurrent requests queue rather than interleave.
type Llama struct {
	model      string
	device     string
	dimensions int

	mu  sync.Mutex // guards eng across Embed and Close
	eng engine
}

// truncateUTF8 cuts s at no more than max bytes without splitting a rune:
// the cut backs up to the nearest rune start so the tokenizer never sees a
// dangling continuation byte.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// NewLlama loads the model synchronously. Loading is blocking; a failure here
// must abort service startup, never degrade to another backend.
func NewLlama(cfg config.BackendConfig) (*Llama, error) {
	started := time.Now()
	slog.Info("loading model backend",
		"model", cfg.Model,
		"path", cfg.ModelPath,
		"precision", cfg.Precision,
		"gpu_layers", cfg.GPULayers,
	)

	eng, err := newEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("llama backend: %w", err)
	}

	device := "cpu"
	if cfg.GPULayers > 0 {
		device = "gpu"
	}

	dims := eng.Dimensions()
	if dims <= 0 {
		dims = PipelineDimensions
	}

	slog.Info("model loaded",
		"duration_ms", time.Since(started).Milliseconds(),
		"dimensions", dims,
		"device", device,
	)

	return &Llama{
		model:      cfg.Model,
		device:     device,
		dimensions: dims,
		eng:        eng,
	}, nil
}

// Embed runs one inference per text under the backend lock and L2-normalizes
// each pooled vector. An empty input returns immediately without touching
// the engine. No other lock is acquired while the mutex is held.
func (l *Llama) Embed(ctx context.Context, texts []string, maxLength int) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := l.eng.EmbedText(ctx, text, maxLength)
		if err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
		vector.Normalize(v)
		vectors[i] = v
	}
	return vectors, nil
}

// Health reports the backend identity.
func (l *Llama) Health() Health {
	return Health{
		Backend:    "llama",
		Model:      l.model,
		Device:     l.device,
		Dimensions: l.dimensions,
	}
}

// Dimensions returns the model's declared embedding width.
func (l *Llama) Dimensions() int {
	return l.dimensions
}

// Close releases the native model resources. Waits for any in-flight batch.
func (l *Llama) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.eng.Close()
}
