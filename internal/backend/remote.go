package backend

import (
	"context"
	"fmt"
	"sort"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hyperengineering/embedd/internal/config"
	"github.com/hyperengineering/embedd/internal/vector"
)

// Compile-time interface check
var _ Backend = (*Remote)(nil)

// EmbeddingsService defines the interface for making embedding API calls.
// This abstraction enables testing without calling a real endpoint.
type EmbeddingsService interface {
	New(ctx context.Context, params openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

// Remote forwards embedding generation to an OpenAI-compatible endpoint
// (OpenAI itself, or a local server such as Ollama via its base URL). The
// upstream handles concurrency, so no lock is held here.
type Remote struct {
	embeddings EmbeddingsService
	model      openai.EmbeddingModel
	baseURL    string
	dimensions int
}

// NewRemote creates the remote backend. The declared dimensionality comes
// from configuration since the upstream model is opaque until the first call.
func NewRemote(cfg config.BackendConfig) *Remote {
	opts := []option.RequestOption{option.WithAPIKey(cfg.RemoteAPIKey)}
	if cfg.RemoteBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.RemoteBaseURL))
	}
	client := openai.NewClient(opts...)

	dims := cfg.RemoteDimensions
	if dims <= 0 {
		dims = PipelineDimensions
	}

	return &Remote{
		embeddings: client.Embeddings,
		model:      openai.EmbeddingModel(cfg.Model),
		baseURL:    cfg.RemoteBaseURL,
		dimensions: dims,
	}
}

// Embed requests one batch from the upstream. maxLength is ignored; the
// upstream applies its own truncation.
func (r *Remote) Embed(ctx context.Context, texts []string, _ int) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := r.embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.F[openai.EmbeddingNewParamsInputUnion](
			openai.EmbeddingNewParamsInputArrayOfStrings(texts),
		),
		Model: openai.F(r.model),
	})
	if err != nil {
		return nil, fmt.Errorf("remote embedding failed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("remote embedding failed: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// Sort by index to guarantee order matches input
	sort.Slice(resp.Data, func(i, j int) bool {
		return resp.Data[i].Index < resp.Data[j].Index
	})

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		v := make([]float32, len(data.Embedding))
		for j, f := range data.Embedding {
			v[j] = float32(f)
		}
		vector.Normalize(v)
		vectors[i] = v
	}
	return vectors, nil
}

// Health reports the backend identity.
func (r *Remote) Health() Health {
	return Health{
		Backend:    "remote",
		Model:      string(r.model),
		Device:     "remote",
		Dimensions: r.dimensions,
	}
}

// Dimensions returns the configured upstream embedding width.
func (r *Remote) Dimensions() int {
	return r.dimensions
}
