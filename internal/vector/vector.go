// Package vector provides float32 vector math shared by the embedding backends.
package vector

import "math"

// Norm returns the Euclidean (L2) norm of v, accumulated in float64.
func Norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// Normalize scales v in place to unit length. A zero vector has no direction
// to preserve; its first component is forced to 1.0 so callers always receive
// a unit vector.
func Normalize(v []float32) {
	if len(v) == 0 {
		return
	}
	norm := Norm(v)
	if norm == 0 {
		v[0] = 1.0
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
