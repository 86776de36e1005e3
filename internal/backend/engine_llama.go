//go:build llama

package backend

import (
	"context"
	"fmt"

	llamago "github.com/tcpipuk/llama-go"

	"github.com/hyperengineering/embedd/internal/config"
)

// LlamaAvailable reports whether the binary carries the llama.cpp bindings.
func LlamaAvailable() bool {
	return true
}

// llamaEngine implements engine using the llama.cpp CGo bindings.
type llamaEngine struct {
	model      *llamago.Model
	llamaCtx   *llamago.Context
	dimensions int
}

func newEngine(cfg config.BackendConfig) (engine, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}

	model, err := llamago.LoadModel(cfg.ModelPath,
		llamago.WithGPULayers(cfg.GPULayers),
		llamago.WithSilentLoading(),
	)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	// Embedding contexts pool per-token states into one vector per input;
	// Qwen3-Embedding GGUFs carry last-token pooling in their metadata, which
	// matches the pipeline's vector semantics.
	ctxOpts := []llamago.ContextOption{llamago.WithEmbeddings()}
	if cfg.ContextSize > 0 {
		ctxOpts = append(ctxOpts, llamago.WithContext(cfg.ContextSize))
	}
	if cfg.Threads > 0 {
		ctxOpts = append(ctxOpts, llamago.WithThreads(cfg.Threads))
	}

	llamaCtx, err := model.NewContext(ctxOpts...)
	if err != nil {
		_ = model.Close()
		return nil, fmt.Errorf("create context: %w", err)
	}

	return &llamaEngine{
		model:      model,
		llamaCtx:   llamaCtx,
		dimensions: model.EmbeddingSize(),
	}, nil
}

func (e *llamaEngine) EmbedText(ctx context.Context, text string, maxTokens int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// llama.cpp rejects batches beyond the context window. Cap the input up
	// front; 4 bytes per token overestimates for every tokenizer we ship.
	if maxTokens > 0 && len(text) > maxTokens*4 {
		text = truncateUTF8(text, maxTokens*4)
	}

	emb, err := e.llamaCtx.GetEmbeddings(text)
	if err != nil {
		return nil, fmt.Errorf("get embeddings: %w", err)
	}
	return emb, nil
}

func (e *llamaEngine) Dimensions() int {
	return e.dimensions
}

func (e *llamaEngine) Close() error {
	e.llamaCtx.Close()
	return e.model.Close()
}
