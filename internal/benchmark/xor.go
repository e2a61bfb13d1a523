// Package benchmark ships built-in evaluators used to exercise the engine
// without a vehicle simulation attached.
package benchmark

import (
	"context"
	"fmt"
	"math"

	"evodrive/internal/evo"
)

// xorPatterns holds the four truth-table rows. Targets are 0/1 and the
// sigmoid output channel 0 is scored against them.
var xorPatterns = [4]struct {
	input  []float64
	target float64
}{
	{[]float64{0, 0}, 0},
	{[]float64{0, 1}, 1},
	{[]float64{1, 0}, 1},
	{[]float64{1, 1}, 0},
}

// XORInputs is the input width networks must have to run this evaluator.
const XORInputs = 2

// MaxXORFitness is the score of a perfect controller: proximity 1 on all
// four patterns.
const MaxXORFitness = 4.0

// XOREvaluator scores each chromosome by how closely its first output
// channel tracks the XOR truth table. Fitness per pattern is
// 1 - |target - output|, summed over the four patterns.
type XOREvaluator struct{}

func NewXOREvaluator() *XOREvaluator {
	return &XOREvaluator{}
}

func (e *XOREvaluator) Name() string { return "xor" }

func (e *XOREvaluator) Evaluate(ctx context.Context, population evo.Population) (map[string]float64, error) {
	fitness := make(map[string]float64, len(population))
	for _, chromosome := range population {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := e.score(chromosome)
		if err != nil {
			return nil, fmt.Errorf("evaluate chromosome %s: %w", chromosome.ID, err)
		}
		fitness[chromosome.ID] = score
	}
	return fitness, nil
}

func (e *XOREvaluator) score(chromosome evo.Chromosome) (float64, error) {
	total := 0.0
	for _, pattern := range xorPatterns {
		output, err := chromosome.Network.Process(pattern.input)
		if err != nil {
			return 0, err
		}
		total += 1 - math.Abs(pattern.target-output[0])
	}
	return total, nil
}
