package evo

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"evodrive/internal/nn"
)

// Chromosome pairs an identity with one neural network. The network is owned
// 1:1 and never mutated after construction.
type Chromosome struct {
	ID      string
	Network *nn.Network
}

// Population is the ordered set of chromosomes competing within one
// generation. The only in-place mutation is re-sorting by fitness; every
// generation boundary replaces the population wholesale.
type Population []Chromosome

// OutputWidth is the fixed output layer width of every randomly synthesized
// controller network (steering + acceleration channels).
const OutputWidth = 2

// HiddenWidth returns the hidden layer width used for a given input width.
func HiddenWidth(inputsLength int) int {
	return (inputsLength + 2) / 2
}

// NewRandomPopulation builds count chromosomes, each carrying a two-layer
// network sized to inputsLength with weights uniform in [-1,1). Chromosome
// ids come from idFn applied to the 1-based ordinal.
func NewRandomPopulation(count, inputsLength int, idFn func(ordinal int) string, rng *rand.Rand) (Population, error) {
	if count < 1 {
		return nil, fmt.Errorf("population count must be >= 1, got %d", count)
	}
	if inputsLength < 1 {
		return nil, fmt.Errorf("inputs length must be >= 1, got %d", inputsLength)
	}
	if idFn == nil {
		return nil, errors.New("id generator is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	hidden := HiddenWidth(inputsLength)
	population := make(Population, 0, count)
	for i := 1; i <= count; i++ {
		hiddenLayer, err := nn.NewRandomDenseLayer(inputsLength, hidden, "", rng)
		if err != nil {
			return nil, err
		}
		outputLayer, err := nn.NewRandomDenseLayer(hidden, OutputWidth, "", rng)
		if err != nil {
			return nil, err
		}
		network, err := nn.NewNetwork(hiddenLayer, outputLayer)
		if err != nil {
			return nil, err
		}
		population = append(population, Chromosome{ID: idFn(i), Network: network})
	}
	return population, nil
}

// SortByFitness reorders the population by descending fitness, stably.
// A chromosome id absent from the map scores 0; that silent fallback is the
// contract consumed by the generator, not an error.
func (p Population) SortByFitness(fitness map[string]float64) {
	sort.SliceStable(p, func(i, j int) bool {
		return fitness[p[i].ID] > fitness[p[j].ID]
	})
}
