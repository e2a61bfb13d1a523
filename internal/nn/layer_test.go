package nn

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNewRandomDenseLayerShapeAndRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	layer, err := NewRandomDenseLayer(4, 3, "", rng)
	if err != nil {
		t.Fatalf("new random layer: %v", err)
	}

	if layer.InputCount() != 4 {
		t.Fatalf("input count: got %d, want 4", layer.InputCount())
	}
	if layer.OutputCount() != 3 {
		t.Fatalf("output count: got %d, want 3", layer.OutputCount())
	}
	if layer.ActivationName() != "sigmoid" {
		t.Fatalf("default activation: got %q, want sigmoid", layer.ActivationName())
	}

	for r := 0; r < 5; r++ {
		for c := 0; c < 3; c++ {
			w, err := layer.Weight(r, c)
			if err != nil {
				t.Fatalf("weight(%d,%d): %v", r, c, err)
			}
			if w < -1 || w >= 1 {
				t.Fatalf("weight(%d,%d)=%v outside [-1,1)", r, c, w)
			}
		}
	}
}

func TestNewRandomDenseLayerRejectsBadSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		name    string
		in, out int
	}{
		{"zero inputs", 0, 2},
		{"zero outputs", 3, 0},
		{"negative inputs", -1, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRandomDenseLayer(tc.in, tc.out, "", rng); err == nil {
				t.Fatalf("expected error for in=%d out=%d", tc.in, tc.out)
			}
		})
	}

	if _, err := NewRandomDenseLayer(2, 2, "", nil); err == nil {
		t.Fatal("expected error for nil random source")
	}
	if _, err := NewRandomDenseLayer(2, 2, "softplus", rng); !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected ErrActivationNotFound, got %v", err)
	}
}

func TestDenseLayerApply(t *testing.T) {
	// 2 inputs, 1 output, identity-ish check through sigmoid.
	weights := [][]float64{
		{1.0},
		{-1.0},
		{0.5}, // bias row
	}
	layer, err := NewDenseLayer(weights, "sigmoid")
	if err != nil {
		t.Fatalf("new layer: %v", err)
	}

	out, err := layer.Apply([]float64{2.0, 1.0})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("output length: got %d, want 1", len(out))
	}
	want := 1.0 / (1.0 + math.Exp(-(0.5 + 2.0*1.0 + 1.0*-1.0)))
	if math.Abs(out[0]-want) > 1e-12 {
		t.Fatalf("output: got %v, want %v", out[0], want)
	}
}

func TestDenseLayerApplyRejectsWrongLength(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	layer, err := NewRandomDenseLayer(3, 2, "tanh", rng)
	if err != nil {
		t.Fatalf("new layer: %v", err)
	}

	for _, n := range []int{0, 2, 4} {
		if _, err := layer.Apply(make([]float64, n)); !errors.Is(err, ErrInputLength) {
			t.Fatalf("length %d: expected ErrInputLength, got %v", n, err)
		}
	}
	out, err := layer.Apply(make([]float64, 3))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("output length: got %d, want 2", len(out))
	}
}

func TestNewDenseLayerRejectsRaggedMatrix(t *testing.T) {
	_, err := NewDenseLayer([][]float64{{1, 2}, {3}}, "")
	if err == nil {
		t.Fatal("expected error for ragged matrix")
	}
	_, err = NewDenseLayer([][]float64{{1, 2}}, "")
	if err == nil {
		t.Fatal("expected error for single-row matrix")
	}
}

func TestDenseLayerCloneIsIndependent(t *testing.T) {
	src := [][]float64{
		{0.25, -0.5},
		{0.75, 0.1},
	}
	layer, err := NewDenseLayer(src, "relu")
	if err != nil {
		t.Fatalf("new layer: %v", err)
	}

	clone := layer.Clone()
	clone.weights[0][0] = 99

	orig, err := layer.Weight(0, 0)
	if err != nil {
		t.Fatalf("weight: %v", err)
	}
	if orig != 0.25 {
		t.Fatalf("clone aliased original buffer: got %v", orig)
	}
	if clone.ActivationName() != "relu" {
		t.Fatalf("clone activation: got %q", clone.ActivationName())
	}
}

func TestDenseLayerWeightBounds(t *testing.T) {
	layer, err := NewDenseLayer([][]float64{{1}, {2}}, "")
	if err != nil {
		t.Fatalf("new layer: %v", err)
	}
	if _, err := layer.Weight(2, 0); err == nil {
		t.Fatal("expected row out of range error")
	}
	if _, err := layer.Weight(0, 1); err == nil {
		t.Fatal("expected column out of range error")
	}
	if _, err := layer.Weight(-1, 0); err == nil {
		t.Fatal("expected negative row error")
	}
}
