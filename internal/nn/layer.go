package nn

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrInputLength = errors.New("input length mismatch")

// DenseLayer is a fully connected affine transform followed by an activation
// function. Weights are an (inputCount+1) x outputCount matrix whose last row
// holds the per-output biases. The buffer is exclusively owned: construction
// copies, Clone deep-copies, and no accessor hands out the backing slices.
type DenseLayer struct {
	weights    [][]float64
	activation ActivationFunc
	actName    string
}

// NewRandomDenseLayer builds a layer with weights drawn uniformly from [-1, 1)
// using the supplied random source.
func NewRandomDenseLayer(inputCount, outputCount int, activationName string, rng *rand.Rand) (*DenseLayer, error) {
	if inputCount < 1 {
		return nil, fmt.Errorf("input count must be >= 1, got %d", inputCount)
	}
	if outputCount < 1 {
		return nil, fmt.Errorf("output count must be >= 1, got %d", outputCount)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	if activationName == "" {
		activationName = DefaultActivation
	}
	fn, err := GetActivation(activationName)
	if err != nil {
		return nil, err
	}

	weights := make([][]float64, inputCount+1)
	for r := range weights {
		row := make([]float64, outputCount)
		for c := range row {
			row[c] = rng.Float64()*2 - 1
		}
		weights[r] = row
	}
	return &DenseLayer{weights: weights, activation: fn, actName: activationName}, nil
}

// NewDenseLayer builds a layer from an explicit weight matrix. The matrix must
// be rectangular with at least 2 rows (one input row plus the bias row) and at
// least 1 column. Used for crossover/mutation children and deserialization.
func NewDenseLayer(weights [][]float64, activationName string) (*DenseLayer, error) {
	if len(weights) < 2 {
		return nil, fmt.Errorf("weight matrix needs at least 2 rows, got %d", len(weights))
	}
	cols := len(weights[0])
	if cols < 1 {
		return nil, errors.New("weight matrix needs at least 1 column")
	}
	for r, row := range weights {
		if len(row) != cols {
			return nil, fmt.Errorf("weight matrix is not rectangular: row %d has %d columns, want %d", r, len(row), cols)
		}
	}

	if activationName == "" {
		activationName = DefaultActivation
	}
	fn, err := GetActivation(activationName)
	if err != nil {
		return nil, err
	}

	copied := make([][]float64, len(weights))
	for r, row := range weights {
		copied[r] = append([]float64(nil), row...)
	}
	return &DenseLayer{weights: copied, activation: fn, actName: activationName}, nil
}

func (l *DenseLayer) InputCount() int {
	return len(l.weights) - 1
}

func (l *DenseLayer) OutputCount() int {
	return len(l.weights[0])
}

func (l *DenseLayer) ActivationName() string {
	return l.actName
}

// Apply computes output[j] = activation(bias[j] + sum_i input[i]*weight[i][j]).
func (l *DenseLayer) Apply(input []float64) ([]float64, error) {
	in := l.InputCount()
	if len(input) != in {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInputLength, len(input), in)
	}

	out := make([]float64, l.OutputCount())
	bias := l.weights[in]
	for j := range out {
		total := bias[j]
		for i, value := range input {
			total += value * l.weights[i][j]
		}
		out[j] = l.activation(total)
	}
	return out, nil
}

// Weight returns the value at (row, col), the bias row being row==InputCount().
func (l *DenseLayer) Weight(row, col int) (float64, error) {
	if row < 0 || row >= len(l.weights) {
		return 0, fmt.Errorf("weight row out of range: %d", row)
	}
	if col < 0 || col >= len(l.weights[0]) {
		return 0, fmt.Errorf("weight column out of range: %d", col)
	}
	return l.weights[row][col], nil
}

// Weights returns a deep copy of the weight matrix.
func (l *DenseLayer) Weights() [][]float64 {
	out := make([][]float64, len(l.weights))
	for r, row := range l.weights {
		out[r] = append([]float64(nil), row...)
	}
	return out
}

func (l *DenseLayer) Clone() *DenseLayer {
	return &DenseLayer{
		weights:    l.Weights(),
		activation: l.activation,
		actName:    l.actName,
	}
}
