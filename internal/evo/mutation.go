package evo

import (
	"errors"
	"math"
	"math/rand"

	"evodrive/internal/nn"
)

// gaussian draws from N(0, 1) via the Box-Muller transform over two
// independent uniform draws, keeping the per-weight draw sequence identical
// for a given seed.
func gaussian(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// mutateNetwork returns a new network in which each weight has, with the
// given probability, Gaussian noise (mean 0, variance 1) added to it. The
// source network is never modified.
func mutateNetwork(source *nn.Network, probability float64, rng *rand.Rand) (*nn.Network, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	layers := source.Layers()
	mutated := make([]*nn.DenseLayer, len(layers))
	for i, layer := range layers {
		weights := layer.Weights()
		for r := range weights {
			for c := range weights[r] {
				if rng.Float64() < probability {
					weights[r][c] += gaussian(rng)
				}
			}
		}
		out, err := nn.NewDenseLayer(weights, layer.ActivationName())
		if err != nil {
			return nil, err
		}
		mutated[i] = out
	}
	return nn.NewNetwork(mutated...)
}
