package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/embedd/internal/backend"
	"github.com/hyperengineering/embedd/internal/config"
	"github.com/hyperengineering/embedd/internal/types"
	"github.com/hyperengineering/embedd/internal/validation"
)

// Handler implements the API handlers. All state is injected at construction
// and read-only afterward; the backend carries its own concurrency discipline.
type Handler struct {
	cfg      *config.Config
	backend  backend.Backend
	instance string
	started  time.Time
}

// NewHandler creates a new Handler around the active backend.
func NewHandler(cfg *config.Config, b backend.Backend, instance string) *Handler {
	return &Handler{
		cfg:      cfg,
		backend:  b,
		instance: instance,
		started:  time.Now(),
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	bh := h.backend.Health()
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:             "ok",
		UptimeSeconds:      time.Since(h.started).Seconds(),
		PipelineDimensions: backend.PipelineDimensions,
		Instance:           h.instance,
		Backend:            bh.Backend,
		Model:              bh.Model,
		Device:             bh.Device,
		Dimensions:         bh.Dimensions,
	})
}

// Embed handles POST /embed (native shape).
func (h *Handler) Embed(w http.ResponseWriter, r *http.Request) {
	vectors, elapsedMS, ok := h.embedPipeline(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, types.EmbedResponse{
		Embeddings: vectors,
		Model:      h.cfg.Backend.Model,
		Dimensions: h.backend.Dimensions(),
		Count:      len(vectors),
		ElapsedMS:  elapsedMS,
	})
}

// OpenAIEmbeddings handles POST /v1/embeddings (OpenAI-compatible shape).
// Same pipeline as Embed; only the envelope differs.
func (h *Handler) OpenAIEmbeddings(w http.ResponseWriter, r *http.Request) {
	vectors, _, ok := h.embedPipeline(w, r)
	if !ok {
		return
	}

	data := make([]types.OpenAIEmbedding, len(vectors))
	for i, v := range vectors {
		data[i] = types.OpenAIEmbedding{
			Object:    "embedding",
			Index:     i,
			Embedding: v,
		}
	}

	writeJSON(w, http.StatusOK, types.OpenAIEmbeddingsResponse{
		Object: "list",
		Data:   data,
		Model:  h.cfg.Backend.Model,
		Usage:  types.OpenAIUsage{},
	})
}

// embedPipeline runs the shared request path: decode → validate → embed →
// contract check. On failure the response has already been written and ok is
// false. elapsedMS measures the backend call only.
func (h *Handler) embedPipeline(w http.ResponseWriter, r *http.Request) (vectors [][]float32, elapsedMS float64, ok bool) {
	body, err := h.decodeBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}

	texts, err := validation.ParseTexts(body, h.cfg.Limits.MaxItems)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}
	maxLength := validation.ParseMaxLength(body, h.cfg.Limits.MaxLength)

	started := time.Now()
	vectors, err = h.backend.Embed(r.Context(), texts, maxLength)
	if err != nil {
		// Full detail stays in the log; clients get a generic failure.
		slog.Error("embedding inference failed", "error", err, "texts", len(texts))
		writeError(w, http.StatusInternalServerError, "inference failed")
		return nil, 0, false
	}
	elapsedMS = float64(time.Since(started).Microseconds()) / 1000.0

	// Backend contract checks. A violation here is a backend bug, not a
	// client mistake, so it reports as a server error.
	if len(vectors) != len(texts) {
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("backend returned %d embeddings for %d texts", len(vectors), len(texts)))
		return nil, 0, false
	}
	if len(vectors) > 0 && len(vectors[0]) != h.backend.Dimensions() {
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("dimension mismatch: got %d, expected %d", len(vectors[0]), h.backend.Dimensions()))
		return nil, 0, false
	}

	return vectors, elapsedMS, true
}

// decodeBody reads the request body within the configured size limit and
// parses it as a JSON object.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Limits.MaxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, errors.New("failed to read request body")
	}
	if len(raw) == 0 {
		return nil, errors.New("empty request body")
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errors.New("request body must be a JSON object")
		}
		return nil, errors.New("invalid JSON body")
	}
	if body == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return body, nil
}
