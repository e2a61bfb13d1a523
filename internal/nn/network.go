package nn

import (
	"errors"
	"fmt"
)

// Network is an ordered sequence of dense layers. It owns its layers
// exclusively and is immutable after construction: mutation and crossover
// always produce a new instance.
type Network struct {
	layers []*DenseLayer
}

// NewNetwork validates that adjacent layers agree on width
// (layer[i].OutputCount == layer[i+1].InputCount) and clones every layer so
// the network never aliases caller-held buffers.
func NewNetwork(layers ...*DenseLayer) (*Network, error) {
	if len(layers) == 0 {
		return nil, errors.New("network needs at least one layer")
	}
	for i, layer := range layers {
		if layer == nil {
			return nil, fmt.Errorf("layer %d is nil", i)
		}
		if i == 0 {
			continue
		}
		prev := layers[i-1]
		if prev.OutputCount() != layer.InputCount() {
			return nil, fmt.Errorf("layer %d input count %d does not match layer %d output count %d",
				i, layer.InputCount(), i-1, prev.OutputCount())
		}
	}

	owned := make([]*DenseLayer, len(layers))
	for i, layer := range layers {
		owned[i] = layer.Clone()
	}
	return &Network{layers: owned}, nil
}

func (n *Network) InputCount() int {
	return n.layers[0].InputCount()
}

func (n *Network) OutputCount() int {
	return n.layers[len(n.layers)-1].OutputCount()
}

func (n *Network) LayerCount() int {
	return len(n.layers)
}

// Process threads the input through every layer in sequence.
func (n *Network) Process(input []float64) ([]float64, error) {
	signal := input
	for i, layer := range n.layers {
		out, err := layer.Apply(signal)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		signal = out
	}
	return signal, nil
}

// Layers returns a defensive copy of the layer sequence; mutating the result
// does not affect the network.
func (n *Network) Layers() []*DenseLayer {
	out := make([]*DenseLayer, len(n.layers))
	for i, layer := range n.layers {
		out[i] = layer.Clone()
	}
	return out
}

func (n *Network) Clone() *Network {
	return &Network{layers: n.Layers()}
}
