// Package evodrive is the embedding surface for the evolution engine: it
// wires storage, the run orchestrator, and the built-in evaluators behind a
// single client.
package evodrive

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"evodrive/internal/benchmark"
	"evodrive/internal/evo"
	"evodrive/internal/platform"
	"evodrive/internal/storage"
)

const defaultDBPath = "evodrive.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store  storage.Store
	runner *platform.Runner
}

// RunRequest configures one evolution run. Zero values select engine
// defaults; an empty RunID gets a generated one.
type RunRequest struct {
	RunID               string
	Evaluator           string
	Population          int
	Generations         int
	InputsLength        int
	SelectionPercentage float64
	MixingRatio         float64
	MutationProbability float64
	FitnessGoal         float64
	Seed                int64
	SeedNetworkText     string
	OnGeneration        func(Generation)
}

// Generation mirrors one generation summary for callers outside the engine.
type Generation struct {
	Number      int
	BestFitness float64
	SumFitness  float64
	BestID      string
}

type RunResult struct {
	RunID       string
	Generations int
	BestFitness float64
	NetworkID   string
	NetworkText string
}

type RunItem struct {
	RunID       string
	Evaluator   string
	Population  int
	Generations int
	BestFitness float64
	Seed        int64
}

type GenerationItem struct {
	Generation  int
	BestFitness float64
	SumFitness  float64
	BestID      string
}

type NetworkInfo struct {
	ID     string
	Shapes []int
	Text   string
	Best   float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	runner, err := platform.NewRunner(store)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, runner: runner}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes one evolution run with a named built-in evaluator and blocks
// until it terminates.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	evaluator, err := evaluatorFromName(req.Evaluator)
	if err != nil {
		return RunResult{}, err
	}
	return c.RunWith(ctx, req, evaluator)
}

// RunWith is Run with a caller-supplied evaluator, for embedders that bring
// their own simulation.
func (c *Client) RunWith(ctx context.Context, req RunRequest, evaluator evo.Evaluator) (RunResult, error) {
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.InputsLength <= 0 {
		req.InputsLength = defaultInputsFor(req.Evaluator)
	}

	var onGeneration func(evo.GenerationSummary)
	if req.OnGeneration != nil {
		hook := req.OnGeneration
		onGeneration = func(s evo.GenerationSummary) {
			hook(Generation{
				Number:      s.Generation,
				BestFitness: s.BestFitness,
				SumFitness:  s.SumFitness,
				BestID:      s.BestID,
			})
		}
	}

	report, err := c.runner.Run(ctx, platform.RunConfig{
		RunID:               req.RunID,
		Evaluator:           evaluator,
		PopulationSize:      req.Population,
		InputsLength:        req.InputsLength,
		SelectionPercentage: req.SelectionPercentage,
		MixingRatio:         req.MixingRatio,
		MutationProbability: req.MutationProbability,
		FitnessGoal:         req.FitnessGoal,
		MaxGenerations:      req.Generations,
		Seed:                req.Seed,
		SeedNetworkText:     req.SeedNetworkText,
		OnGeneration:        onGeneration,
	})
	if err != nil {
		return RunResult{}, err
	}

	record, _, err := c.store.GetNetwork(ctx, report.Summary.BestNetworkID)
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{
		RunID:       report.Summary.ID,
		Generations: report.Summary.Generations,
		BestFitness: report.Summary.BestFitness,
		NetworkID:   report.Summary.BestNetworkID,
		NetworkText: record.Text,
	}, nil
}

// Runs lists all recorded run summaries, oldest id first.
func (c *Client) Runs(ctx context.Context) ([]RunItem, error) {
	summaries, err := c.store.ListRunSummaries(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]RunItem, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, RunItem{
			RunID:       summary.ID,
			Evaluator:   summary.Evaluator,
			Population:  summary.PopulationSize,
			Generations: summary.Generations,
			BestFitness: summary.BestFitness,
			Seed:        summary.Seed,
		})
	}
	return items, nil
}

// FitnessHistory returns one item per generation of the given run.
func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]GenerationItem, error) {
	history, ok, err := c.store.GetGenerationHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no recorded history", runID)
	}
	items := make([]GenerationItem, 0, len(history))
	for _, record := range history {
		items = append(items, GenerationItem{
			Generation:  record.Generation,
			BestFitness: record.BestFitness,
			SumFitness:  record.SumFitness,
			BestID:      record.BestID,
		})
	}
	return items, nil
}

// BestNetwork returns the persisted winner of the given run.
func (c *Client) BestNetwork(ctx context.Context, runID string) (NetworkInfo, error) {
	summary, ok, err := c.store.GetRunSummary(ctx, runID)
	if err != nil {
		return NetworkInfo{}, err
	}
	if !ok {
		return NetworkInfo{}, fmt.Errorf("run %s not found", runID)
	}
	record, ok, err := c.store.GetNetwork(ctx, summary.BestNetworkID)
	if err != nil {
		return NetworkInfo{}, err
	}
	if !ok {
		return NetworkInfo{}, fmt.Errorf("network %s not found", summary.BestNetworkID)
	}
	return NetworkInfo{
		ID:     record.ID,
		Shapes: record.Shapes,
		Text:   record.Text,
		Best:   record.Best,
	}, nil
}

func evaluatorFromName(name string) (evo.Evaluator, error) {
	switch name {
	case "", "xor":
		return benchmark.NewXOREvaluator(), nil
	default:
		return nil, fmt.Errorf("unknown evaluator: %s", name)
	}
}

// Only xor ships today; custom evaluators must pass InputsLength themselves.
func defaultInputsFor(string) int {
	return benchmark.XORInputs
}
