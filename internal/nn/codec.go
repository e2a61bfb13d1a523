package nn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadFormat wraps every parse failure of the two-line network text form.
var ErrBadFormat = errors.New("malformed network text")

// MarshalText serializes a network into its two-line text form.
// Line 1 holds comma-separated inputCount,outputCount pairs, one pair per
// layer in network order. Line 2 holds the flattened weights in row-major
// order with the bias row last within each layer, concatenated across layers.
// Activation choice is not persisted.
func MarshalText(n *Network) string {
	var shapes strings.Builder
	var values strings.Builder

	for i, layer := range n.layers {
		if i > 0 {
			shapes.WriteByte(',')
		}
		shapes.WriteString(strconv.Itoa(layer.InputCount()))
		shapes.WriteByte(',')
		shapes.WriteString(strconv.Itoa(layer.OutputCount()))

		for _, row := range layer.weights {
			for _, value := range row {
				if values.Len() > 0 {
					values.WriteByte(',')
				}
				values.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
			}
		}
	}
	return shapes.String() + "\n" + values.String()
}

// UnmarshalText is the exact inverse of MarshalText. Every reconstructed
// layer uses the sigmoid activation, so a round-trip of a relu/tanh network
// yields sigmoid layers with identical weights.
func UnmarshalText(text string) (*Network, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: expected 2 lines, got %d", ErrBadFormat, len(lines))
	}

	shapes, err := parseShapeLine(lines[0])
	if err != nil {
		return nil, err
	}
	values, err := parseValueLine(lines[1])
	if err != nil {
		return nil, err
	}

	layers := make([]*DenseLayer, 0, len(shapes)/2)
	cursor := 0
	for p := 0; p < len(shapes); p += 2 {
		in, out := shapes[p], shapes[p+1]
		need := (in + 1) * out
		if cursor+need > len(values) {
			return nil, fmt.Errorf("%w: layer %d needs %d weights, only %d values left",
				ErrBadFormat, p/2, need, len(values)-cursor)
		}

		weights := make([][]float64, in+1)
		for r := range weights {
			weights[r] = values[cursor : cursor+out : cursor+out]
			cursor += out
		}
		layer, err := NewDenseLayer(weights, DefaultActivation)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrBadFormat, p/2, err)
		}
		layers = append(layers, layer)
	}

	network, err := NewNetwork(layers...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return network, nil
}

func parseShapeLine(line string) ([]int, error) {
	tokens := strings.Split(strings.TrimSpace(line), ",")
	if len(tokens) < 4 {
		return nil, fmt.Errorf("%w: expected at least 2 layer shape pairs, got %d integers", ErrBadFormat, len(tokens))
	}
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("%w: odd shape count %d", ErrBadFormat, len(tokens))
	}

	shapes := make([]int, len(tokens))
	for i, token := range tokens {
		value, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("%w: shape token %q is not an integer", ErrBadFormat, token)
		}
		if value < 1 {
			return nil, fmt.Errorf("%w: shape value must be >= 1, got %d", ErrBadFormat, value)
		}
		shapes[i] = value
	}
	return shapes, nil
}

func parseValueLine(line string) ([]float64, error) {
	tokens := strings.Split(strings.TrimSpace(line), ",")
	values := make([]float64, len(tokens))
	for i, token := range tokens {
		value, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight token %q is not a number", ErrBadFormat, token)
		}
		values[i] = value
	}
	return values, nil
}
