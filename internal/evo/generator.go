package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"evodrive/internal/nn"
)

// ErrPopulationTooSmall is returned when a next generation is requested from
// fewer than 2 chromosomes.
var ErrPopulationTooSmall = errors.New("population needs at least 2 chromosomes")

// PopulationGenerator produces populations for the manager. Implementations
// own their random source so seeded runs are reproducible.
type PopulationGenerator interface {
	GenerateFirstPopulation(size int) (Population, error)
	GenerateFirstPopulationFromSeed(size int, seedText string) (Population, error)
	GeneratePopulation(current Population, generation int) (Population, error)
}

const (
	DefaultSelectionPercentage = 10.0
	DefaultMixingRatio         = 0.7
	DefaultMutationProbability = 0.3
)

// SRMConfig configures the Selection -> Recombination -> Mutation generator.
// Zero values for the three rates select the defaults above.
type SRMConfig struct {
	InputsLength        int
	SelectionPercentage float64
	MixingRatio         float64
	MutationProbability float64
	Rand                *rand.Rand
}

// SRMGenerator is the shipped PopulationGenerator: truncation selection,
// uniform crossover over a deterministic survivor-pair sweep, and Gaussian
// weight mutation with single-individual elitism.
type SRMGenerator struct {
	cfg SRMConfig
	rng *rand.Rand
}

func NewSRMGenerator(cfg SRMConfig) (*SRMGenerator, error) {
	if cfg.InputsLength < 1 {
		return nil, fmt.Errorf("inputs length must be >= 1, got %d", cfg.InputsLength)
	}
	if cfg.Rand == nil {
		return nil, errors.New("random source is required")
	}
	if cfg.SelectionPercentage == 0 {
		cfg.SelectionPercentage = DefaultSelectionPercentage
	}
	if cfg.SelectionPercentage < 0 || cfg.SelectionPercentage > 100 {
		return nil, fmt.Errorf("selection percentage must be in (0, 100], got %v", cfg.SelectionPercentage)
	}
	if cfg.MixingRatio == 0 {
		cfg.MixingRatio = DefaultMixingRatio
	}
	if cfg.MixingRatio < 0 || cfg.MixingRatio > 1 {
		return nil, fmt.Errorf("mixing ratio must be in [0, 1], got %v", cfg.MixingRatio)
	}
	if cfg.MutationProbability == 0 {
		cfg.MutationProbability = DefaultMutationProbability
	}
	if cfg.MutationProbability < 0 || cfg.MutationProbability > 1 {
		return nil, fmt.Errorf("mutation probability must be in (0, 1], got %v", cfg.MutationProbability)
	}

	return &SRMGenerator{cfg: cfg, rng: cfg.Rand}, nil
}

// GenerateFirstPopulation synthesizes size random chromosomes sized to the
// configured input width, with ids "1_{ordinal}".
func (g *SRMGenerator) GenerateFirstPopulation(size int) (Population, error) {
	return NewRandomPopulation(size, g.cfg.InputsLength, func(ordinal int) string {
		return fmt.Sprintf("1_%d", ordinal)
	}, g.rng)
}

// GenerateFirstPopulationFromSeed places the deserialized seed network
// unmutated as chromosome 1 and fills the remainder with Gaussian-mutated
// clones of the seed.
func (g *SRMGenerator) GenerateFirstPopulationFromSeed(size int, seedText string) (Population, error) {
	if size < 1 {
		return nil, fmt.Errorf("population size must be >= 1, got %d", size)
	}

	seed, err := nn.UnmarshalText(seedText)
	if err != nil {
		return nil, fmt.Errorf("parse seed network: %w", err)
	}

	population := make(Population, 0, size)
	population = append(population, Chromosome{ID: "1_1", Network: seed})
	for i := 2; i <= size; i++ {
		mutated, err := mutateNetwork(seed, g.cfg.MutationProbability, g.rng)
		if err != nil {
			return nil, err
		}
		population = append(population, Chromosome{ID: fmt.Sprintf("1_%d", i), Network: mutated})
	}
	return population, nil
}

// GeneratePopulation runs the SRM pipeline. The current population must
// already be sorted best-first; index 0 is taken as the fittest.
func (g *SRMGenerator) GeneratePopulation(current Population, generation int) (Population, error) {
	if len(current) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrPopulationTooSmall, len(current))
	}

	survivors := g.selectSurvivors(current)
	children, err := g.recombine(survivors, len(current))
	if err != nil {
		return nil, err
	}
	return g.mutateBatch(survivors, children, generation)
}

// selectSurvivors keeps the top ceil(n * pct/100) chromosomes by current
// order, never fewer than 2. Truncation selection, not probabilistic.
func (g *SRMGenerator) selectSurvivors(current Population) Population {
	keep := int(math.Ceil(float64(len(current)) * g.cfg.SelectionPercentage / 100))
	if keep < 2 {
		keep = 2
	}
	if keep > len(current) {
		keep = len(current)
	}
	return current[:keep]
}

// recombine produces exactly size child networks by uniform crossover over
// consecutive survivor pairs (0,1), (1,2), ... When the pair cursor exhausts
// the survivor list before size children exist it restarts from the first
// pair. The sweep is deterministic and intentionally not exhaustive over all
// survivor combinations; downstream convergence depends on this exact rule.
func (g *SRMGenerator) recombine(survivors Population, size int) ([]*nn.Network, error) {
	children := make([]*nn.Network, 0, size)
	pair := 0
	for len(children) < size {
		parent1 := survivors[pair].Network
		parent2 := survivors[pair+1].Network
		child1, child2, err := crossoverNetworks(parent1, parent2, g.cfg.MixingRatio, g.rng)
		if err != nil {
			return nil, err
		}
		children = append(children, child1)
		if len(children) < size {
			children = append(children, child2)
		}
		pair++
		if pair >= len(survivors)-1 {
			pair = 0
		}
	}
	return children, nil
}

// mutateBatch applies Gaussian mutation to every child except the first slot,
// which instead receives an unmutated clone of the fittest survivor under a
// fresh identity (elitism of exactly one individual).
func (g *SRMGenerator) mutateBatch(survivors Population, children []*nn.Network, generation int) (Population, error) {
	out := make(Population, 0, len(children))
	out = append(out, Chromosome{
		ID:      fmt.Sprintf("%d_1", generation),
		Network: survivors[0].Network.Clone(),
	})
	for i := 1; i < len(children); i++ {
		mutated, err := mutateNetwork(children[i], g.cfg.MutationProbability, g.rng)
		if err != nil {
			return nil, err
		}
		out = append(out, Chromosome{
			ID:      fmt.Sprintf("%d_%d", generation, i+1),
			Network: mutated,
		})
	}
	return out, nil
}
