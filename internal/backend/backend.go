// Package backend turns text into fixed-width embedding vectors.
//
// Three implementations share one capability set: a deterministic hash-based
// generator for tests and fallback, a local llama.cpp-backed model, and a
// forwarder to an OpenAI-compatible endpoint. New backends implement the
// interface; nothing subclasses an existing one.
package backend

import "context"

// PipelineDimensions is the vector width the downstream pipeline schema
// stores. Every backend must declare and produce exactly this width; the
// factory refuses to start the service otherwise.
const PipelineDimensions = 4096

// Health describes a backend's identity for the health endpoint.
// It is fixed at construction time.
type Health struct {
	Backend    string `json:"backend"`
	Model      string `json:"model"`
	Device     string `json:"device"`
	Dimensions int    `json:"dimensions"`
}

// Backend generates embedding vectors from text.
type Backend interface {
	// Embed returns one L2-normalized vector per input text, preserving
	// input order. maxLength bounds tokenization; backends that do not
	// tokenize ignore it.
	Embed(ctx context.Context, texts []string, maxLength int) ([][]float32, error)
	// Health reports the backend's identity fields.
	Health() Health
	// Dimensions returns the width of every vector this backend produces.
	Dimensions() int
}
