package nn

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	l1, err := NewRandomDenseLayer(3, 4, "tanh", rng)
	if err != nil {
		t.Fatalf("layer 1: %v", err)
	}
	l2, err := NewRandomDenseLayer(4, 2, "relu", rng)
	if err != nil {
		t.Fatalf("layer 2: %v", err)
	}
	net, err := NewNetwork(l1, l2)
	if err != nil {
		t.Fatalf("network: %v", err)
	}

	text := MarshalText(net)
	parsed, err := UnmarshalText(text)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if parsed.LayerCount() != 2 {
		t.Fatalf("layer count: got %d, want 2", parsed.LayerCount())
	}
	origLayers := net.Layers()
	parsedLayers := parsed.Layers()
	for i := range origLayers {
		if parsedLayers[i].InputCount() != origLayers[i].InputCount() ||
			parsedLayers[i].OutputCount() != origLayers[i].OutputCount() {
			t.Fatalf("layer %d shape mismatch", i)
		}
		// Activation is not persisted: round-trips always yield sigmoid.
		if parsedLayers[i].ActivationName() != "sigmoid" {
			t.Fatalf("layer %d activation: got %q, want sigmoid", i, parsedLayers[i].ActivationName())
		}
		for r := 0; r <= origLayers[i].InputCount(); r++ {
			for c := 0; c < origLayers[i].OutputCount(); c++ {
				want, _ := origLayers[i].Weight(r, c)
				got, _ := parsedLayers[i].Weight(r, c)
				if got != want {
					t.Fatalf("layer %d weight (%d,%d): got %v, want %v", i, r, c, got, want)
				}
			}
		}
	}
}

func TestMarshalTextLayout(t *testing.T) {
	l1, err := NewDenseLayer([][]float64{{1, 2}, {3, 4}, {5, 6}}, "")
	if err != nil {
		t.Fatalf("layer 1: %v", err)
	}
	l2, err := NewDenseLayer([][]float64{{7}, {8}, {9}}, "")
	if err != nil {
		t.Fatalf("layer 2: %v", err)
	}
	net, err := NewNetwork(l1, l2)
	if err != nil {
		t.Fatalf("network: %v", err)
	}

	text := MarshalText(net)
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("line count: got %d, want 2", len(lines))
	}
	if lines[0] != "2,2,2,1" {
		t.Fatalf("shape line: got %q, want \"2,2,2,1\"", lines[0])
	}
	if lines[1] != "1,2,3,4,5,6,7,8,9" {
		t.Fatalf("value line: got %q", lines[1])
	}
}

func TestUnmarshalTextFormatErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"single line", "2,3,3,1"},
		{"one shape pair", "2,3\n1,2,3,4,5,6,7,8,9"},
		{"odd shape count", "2,3,3\n1,2,3"},
		{"non numeric shape", "2,x,3,1\n1,2,3"},
		{"zero shape", "2,0,3,1\n1,2,3"},
		{"non numeric weight", "2,2,2,1\n1,2,3,4,5,6,abc,8,9"},
		{"short weights", "2,2,2,1\n1,2,3,4,5"},
		{"adjacency mismatch", "2,3,4,1\n" + strings.Repeat("1,", 13) + "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := UnmarshalText(tc.text); !errors.Is(err, ErrBadFormat) {
				t.Fatalf("expected ErrBadFormat, got %v", err)
			}
		})
	}
}

func TestUnmarshalTextEndToEndSigmoidRange(t *testing.T) {
	// 2,3,3,1 topology needs (2+1)*3 + (3+1)*1 = 13 weights.
	values := make([]string, 13)
	for i := range values {
		values[i] = "0.5"
	}
	text := "2,3,3,1\n" + strings.Join(values, ",")

	net, err := UnmarshalText(text)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := net.Process([]float64{0.3, -0.7})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("output length: got %d, want 1", len(out))
	}
	if out[0] <= 0 || out[0] >= 1 {
		t.Fatalf("sigmoid output out of (0,1): %v", out[0])
	}
}

func TestUnmarshalTextIgnoresExtraWeights(t *testing.T) {
	// Values beyond the declared shapes are tolerated; the parser consumes
	// exactly what the shape line requires.
	text := "1,1,1,1\n0.1,0.2,0.3,0.4,0.5"
	net, err := UnmarshalText(text)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if net.LayerCount() != 2 {
		t.Fatalf("layer count: got %d, want 2", net.LayerCount())
	}
}
