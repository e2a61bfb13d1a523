package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"evodrive/internal/nn"
)

// crossoverNetworks performs weight-wise uniform crossover between two
// networks of identical topology. Each weight of child 1 keeps parent 1's
// value with probability mixingRatio and otherwise swaps with parent 2's
// value; child 2 always takes the complementary choice. A ratio of 1 yields
// exact copies, a ratio of 0 an exact swap.
func crossoverNetworks(parent1, parent2 *nn.Network, mixingRatio float64, rng *rand.Rand) (*nn.Network, *nn.Network, error) {
	if rng == nil {
		return nil, nil, errors.New("random source is required")
	}

	layers1 := parent1.Layers()
	layers2 := parent2.Layers()
	if len(layers1) != len(layers2) {
		return nil, nil, fmt.Errorf("parent layer counts differ: %d != %d", len(layers1), len(layers2))
	}

	childLayers1 := make([]*nn.DenseLayer, len(layers1))
	childLayers2 := make([]*nn.DenseLayer, len(layers1))
	for i := range layers1 {
		w1 := layers1[i].Weights()
		w2 := layers2[i].Weights()
		if len(w1) != len(w2) || len(w1[0]) != len(w2[0]) {
			return nil, nil, fmt.Errorf("parent layer %d shapes differ", i)
		}

		for r := range w1 {
			for c := range w1[r] {
				if rng.Float64() >= mixingRatio {
					w1[r][c], w2[r][c] = w2[r][c], w1[r][c]
				}
			}
		}

		layer1, err := nn.NewDenseLayer(w1, layers1[i].ActivationName())
		if err != nil {
			return nil, nil, err
		}
		layer2, err := nn.NewDenseLayer(w2, layers2[i].ActivationName())
		if err != nil {
			return nil, nil, err
		}
		childLayers1[i] = layer1
		childLayers2[i] = layer2
	}

	child1, err := nn.NewNetwork(childLayers1...)
	if err != nil {
		return nil, nil, err
	}
	child2, err := nn.NewNetwork(childLayers2...)
	if err != nil {
		return nil, nil, err
	}
	return child1, child2, nil
}
