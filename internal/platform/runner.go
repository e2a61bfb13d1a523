// Package platform couples the evolution engine to persistence and exposes
// one-call run orchestration to the public API and the CLI.
package platform

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"evodrive/internal/evo"
	"evodrive/internal/model"
	"evodrive/internal/nn"
	"evodrive/internal/storage"
)

var ErrRunExists = errors.New("run id already recorded")

// RunConfig describes one evolution run end to end. Zero SRM rates select
// the engine defaults.
type RunConfig struct {
	RunID               string
	Evaluator           evo.Evaluator
	PopulationSize      int
	InputsLength        int
	SelectionPercentage float64
	MixingRatio         float64
	MutationProbability float64
	// FitnessGoal stops the run once a generation's best reaches it.
	// Zero disables the goal and leaves MaxGenerations as the only stop.
	FitnessGoal    float64
	MaxGenerations int
	Seed           int64
	// SeedNetworkText, when set, replaces random first-population synthesis.
	SeedNetworkText string
	// OnGeneration, when non-nil, observes each generation summary before
	// the stop decision is taken. It must not block.
	OnGeneration func(evo.GenerationSummary)
}

// RunReport is everything a finished run produced, already persisted.
type RunReport struct {
	Summary model.RunSummary
	Best    evo.Chromosome
	History []model.GenerationRecord
}

// Runner executes configured runs against a store.
type Runner struct {
	store storage.Store
}

func NewRunner(store storage.Store) (*Runner, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	return &Runner{store: store}, nil
}

// Run drives a full evolution run and persists its history, summary, and
// best network. The call blocks until the run terminates.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (RunReport, error) {
	if cfg.RunID == "" {
		return RunReport{}, errors.New("run id is required")
	}
	if cfg.Evaluator == nil {
		return RunReport{}, errors.New("evaluator is required")
	}
	if cfg.MaxGenerations < 1 {
		return RunReport{}, fmt.Errorf("max generations must be >= 1, got %d", cfg.MaxGenerations)
	}

	if _, exists, err := r.store.GetRunSummary(ctx, cfg.RunID); err != nil {
		return RunReport{}, fmt.Errorf("check run %s: %w", cfg.RunID, err)
	} else if exists {
		return RunReport{}, fmt.Errorf("%w: %s", ErrRunExists, cfg.RunID)
	}

	generator, err := evo.NewSRMGenerator(evo.SRMConfig{
		InputsLength:        cfg.InputsLength,
		SelectionPercentage: cfg.SelectionPercentage,
		MixingRatio:         cfg.MixingRatio,
		MutationProbability: cfg.MutationProbability,
		Rand:                rand.New(rand.NewSource(cfg.Seed)),
	})
	if err != nil {
		return RunReport{}, err
	}

	manager, err := evo.NewManager(evo.ManagerConfig{
		Generator:       generator,
		Evaluator:       cfg.Evaluator,
		PopulationSize:  cfg.PopulationSize,
		SeedNetworkText: cfg.SeedNetworkText,
		Decision: func(summary evo.GenerationSummary) bool {
			if cfg.OnGeneration != nil {
				cfg.OnGeneration(summary)
			}
			if cfg.FitnessGoal > 0 && summary.BestFitness >= cfg.FitnessGoal {
				return true
			}
			return summary.Generation >= cfg.MaxGenerations
		},
	})
	if err != nil {
		return RunReport{}, err
	}

	outcome, err := manager.Run(ctx)
	if err != nil {
		return RunReport{}, fmt.Errorf("run %s: %w", cfg.RunID, err)
	}

	report, err := r.persist(ctx, cfg, outcome)
	if err != nil {
		return RunReport{}, fmt.Errorf("persist run %s: %w", cfg.RunID, err)
	}
	return report, nil
}

func (r *Runner) persist(ctx context.Context, cfg RunConfig, outcome evo.RunOutcome) (RunReport, error) {
	versioned := model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
	final := outcome.History[len(outcome.History)-1]

	networkID := cfg.RunID + "/" + outcome.Best.ID
	record := model.NetworkRecord{
		VersionedRecord: versioned,
		ID:              networkID,
		Shapes:          networkShapes(outcome.Best.Network),
		Text:            nn.MarshalText(outcome.Best.Network),
		Best:            final.BestFitness,
	}
	if err := r.store.SaveNetwork(ctx, record); err != nil {
		return RunReport{}, err
	}

	history := make([]model.GenerationRecord, 0, len(outcome.History))
	for _, summary := range outcome.History {
		history = append(history, model.GenerationRecord{
			Generation:  summary.Generation,
			BestFitness: summary.BestFitness,
			SumFitness:  summary.SumFitness,
			BestID:      summary.BestID,
		})
	}
	if err := r.store.SaveGenerationHistory(ctx, cfg.RunID, history); err != nil {
		return RunReport{}, err
	}

	summary := model.RunSummary{
		VersionedRecord: versioned,
		ID:              cfg.RunID,
		Evaluator:       cfg.Evaluator.Name(),
		PopulationSize:  cfg.PopulationSize,
		Generations:     outcome.Generations,
		BestFitness:     final.BestFitness,
		BestNetworkID:   networkID,
		Seed:            cfg.Seed,
	}
	if err := r.store.SaveRunSummary(ctx, summary); err != nil {
		return RunReport{}, err
	}

	return RunReport{Summary: summary, Best: outcome.Best, History: history}, nil
}

// networkShapes flattens each layer's in,out pair in network order.
func networkShapes(network *nn.Network) []int {
	layers := network.Layers()
	shapes := make([]int, 0, 2*len(layers))
	for _, layer := range layers {
		shapes = append(shapes, layer.InputCount(), layer.OutputCount())
	}
	return shapes
}
