package backend

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
)

// Compile-time interface check
var _ Backend = (*Deterministic)(nil)

// Deterministic produces hash-derived unit vectors. It holds no state and is
// safe for concurrent use: the same text always yields the bit-identical
// vector, independent of call order.
type Deterministic struct {
	model string
}

// NewDeterministic creates the deterministic backend. The model name is only
// reported in responses; it does not affect the vectors.
func NewDeterministic(model string) *Deterministic {
	return &Deterministic{model: model}
}

// Embed derives one vector per text. maxLength is ignored: hashing consumes
// the whole string.
func (d *Deterministic) Embed(_ context.Context, texts []string, _ int) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = vectorForText(text)
	}
	return vectors, nil
}

// Health reports the backend identity.
func (d *Deterministic) Health() Health {
	return Health{
		Backend:    "deterministic",
		Model:      d.model,
		Device:     "cpu",
		Dimensions: PipelineDimensions,
	}
}

// Dimensions returns the pipeline-mandated width.
func (d *Deterministic) Dimensions() int {
	return PipelineDimensions
}

// vectorForText fills the vector from SHA-256 digests of "{text}\n{counter}",
// counter incrementing once per digest. Each digest is read as consecutive
// 2-byte little-endian integers mapped into [-1, 1); the final digest is
// truncated to exactly fill the remaining slots. The result is L2-normalized,
// with a zero norm redirected to a fixed unit vector.
func vectorForText(text string) []float32 {
	values := make([]float64, 0, PipelineDimensions)
	for counter := 0; len(values) < PipelineDimensions; counter++ {
		digest := sha256.Sum256([]byte(fmt.Sprintf("%s\n%d", text, counter)))
		for i := 0; i < len(digest) && len(values) < PipelineDimensions; i += 2 {
			pair := [2]byte{digest[i], 0}
			if i+1 < len(digest) {
				pair[1] = digest[i+1]
			}
			raw := binary.LittleEndian.Uint16(pair[:])
			values = append(values, float64(raw)/32767.5-1.0)
		}
	}

	var sum float64
	for _, v := range values {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		values[0] = 1.0
		norm = 1.0
	}

	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v / norm)
	}
	return vec
}
