package backend

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/hyperengineering/embedd/internal/vector"
)

func TestDeterministicDimensions(t *testing.T) {
	d := NewDeterministic("test-model")

	if d.Dimensions() != PipelineDimensions {
		t.Fatalf("Dimensions() = %d, want %d", d.Dimensions(), PipelineDimensions)
	}

	vectors, err := d.Embed(context.Background(), []string{"hello world"}, 512)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("got %d vectors, want 1", len(vectors))
	}
	if len(vectors[0]) != PipelineDimensions {
		t.Errorf("vector width = %d, want %d", len(vectors[0]), PipelineDimensions)
	}
}

func TestDeterministicReproducible(t *testing.T) {
	d := NewDeterministic("test-model")

	first, err := d.Embed(context.Background(), []string{"hello world"}, 512)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	// Interleave other strings; "hello world" must come back bit-identical.
	if _, err := d.Embed(context.Background(), []string{"other", "strings"}, 512); err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	second, err := d.Embed(context.Background(), []string{"hello world"}, 512)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("component %d differs: %v vs %v", i, first[0][i], second[0][i])
		}
	}
}

// Golden leading components for "hello world", derived from the hash
// construction: SHA-256 over "hello world\n0", 2-byte little-endian pairs
// mapped into [-1, 1), L2-normalized over all 4096 components.
func TestDeterministicGoldenVector(t *testing.T) {
	want := []float64{
		0.003115121,
		-0.022638945,
		-0.018734682,
		0.020880645,
		-0.022657365,
		0.020559128,
	}

	got := vectorForText("hello world")
	for i, w := range want {
		if math.Abs(float64(got[i])-w) > 1e-6 {
			t.Errorf("component %d = %v, want %v", i, got[i], w)
		}
	}
}

func TestDeterministicNormalized(t *testing.T) {
	d := NewDeterministic("test-model")

	vectors, err := d.Embed(context.Background(), []string{"a", "b", "hello world", "a"}, 512)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	for i, v := range vectors {
		if norm := vector.Norm(v); math.Abs(norm-1.0) > 1e-5 {
			t.Errorf("vector %d norm = %v, want 1.0", i, norm)
		}
	}
}

func TestDeterministicOrderAndDuplicates(t *testing.T) {
	d := NewDeterministic("test-model")

	vectors, err := d.Embed(context.Background(), []string{"a", "b", "a"}, 512)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}
	if vectors[0][0] != vectors[2][0] || vectors[0][1] != vectors[2][1] {
		t.Error("duplicate inputs produced different vectors")
	}
	if vectors[0][0] == vectors[1][0] && vectors[0][1] == vectors[1][1] {
		t.Error("distinct inputs produced identical leading components")
	}
}

func TestDeterministicEmptyInput(t *testing.T) {
	d := NewDeterministic("test-model")

	vectors, err := d.Embed(context.Background(), nil, 512)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("got %d vectors, want 0", len(vectors))
	}
}

func TestDeterministicConcurrent(t *testing.T) {
	d := NewDeterministic("test-model")
	reference := vectorForText("hello world")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vectors, err := d.Embed(context.Background(), []string{"hello world"}, 512)
			if err != nil {
				t.Errorf("Embed() error: %v", err)
				return
			}
			for j := range reference {
				if vectors[0][j] != reference[j] {
					t.Errorf("concurrent result diverged at component %d", j)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDeterministicHealth(t *testing.T) {
	h := NewDeterministic("test-model").Health()

	if h.Backend != "deterministic" {
		t.Errorf("Backend = %q, want deterministic", h.Backend)
	}
	if h.Model != "test-model" {
		t.Errorf("Model = %q, want test-model", h.Model)
	}
	if h.Device != "cpu" {
		t.Errorf("Device = %q, want cpu", h.Device)
	}
	if h.Dimensions != PipelineDimensions {
		t.Errorf("Dimensions = %d, want %d", h.Dimensions, PipelineDimensions)
	}
}
