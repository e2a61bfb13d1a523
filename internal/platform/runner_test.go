package platform

import (
	"context"
	"errors"
	"testing"

	"evodrive/internal/benchmark"
	"evodrive/internal/evo"
	"evodrive/internal/nn"
	"evodrive/internal/storage"
)

func newTestRunner(t *testing.T) (*Runner, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	runner, err := NewRunner(store)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner, store
}

func xorRunConfig(runID string) RunConfig {
	return RunConfig{
		RunID:          runID,
		Evaluator:      benchmark.NewXOREvaluator(),
		PopulationSize: 12,
		InputsLength:   benchmark.XORInputs,
		MaxGenerations: 5,
		Seed:           99,
	}
}

func TestRunnerRunPersistsEverything(t *testing.T) {
	ctx := context.Background()
	runner, store := newTestRunner(t)

	var observed []evo.GenerationSummary
	cfg := xorRunConfig("run-1")
	cfg.OnGeneration = func(s evo.GenerationSummary) {
		observed = append(observed, s)
	}

	report, err := runner.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Summary.Generations != 5 {
		t.Errorf("generations = %d, want 5", report.Summary.Generations)
	}
	if len(observed) != 5 {
		t.Errorf("observed %d summaries, want 5", len(observed))
	}
	if report.Summary.Evaluator != "xor" {
		t.Errorf("evaluator = %q, want %q", report.Summary.Evaluator, "xor")
	}

	summary, ok, err := store.GetRunSummary(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("summary not persisted: ok=%v err=%v", ok, err)
	}
	if summary.BestNetworkID != report.Summary.BestNetworkID {
		t.Errorf("summary network id = %q, report %q", summary.BestNetworkID, report.Summary.BestNetworkID)
	}

	history, ok, err := store.GetGenerationHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("history not persisted: ok=%v err=%v", ok, err)
	}
	if len(history) != 5 {
		t.Fatalf("history length = %d, want 5", len(history))
	}

	record, ok, err := store.GetNetwork(ctx, summary.BestNetworkID)
	if err != nil || !ok {
		t.Fatalf("best network not persisted: ok=%v err=%v", ok, err)
	}
	network, err := nn.UnmarshalText(record.Text)
	if err != nil {
		t.Fatalf("persisted network text does not parse: %v", err)
	}
	if network.InputCount() != benchmark.XORInputs {
		t.Errorf("persisted network inputs = %d, want %d", network.InputCount(), benchmark.XORInputs)
	}
	if record.Best != summary.BestFitness {
		t.Errorf("record best = %v, summary best = %v", record.Best, summary.BestFitness)
	}
}

func TestRunnerFitnessGoalStopsEarly(t *testing.T) {
	runner, _ := newTestRunner(t)

	cfg := xorRunConfig("run-goal")
	cfg.MaxGenerations = 50
	// Any sigmoid controller scores above zero on the proximity metric,
	// so a tiny goal terminates on generation 1.
	cfg.FitnessGoal = 0.001

	report, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Summary.Generations != 1 {
		t.Errorf("generations = %d, want 1", report.Summary.Generations)
	}
}

func TestRunnerRejectsDuplicateRunID(t *testing.T) {
	runner, _ := newTestRunner(t)

	if _, err := runner.Run(context.Background(), xorRunConfig("run-dup")); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := runner.Run(context.Background(), xorRunConfig("run-dup")); !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
}

func TestRunnerValidation(t *testing.T) {
	runner, _ := newTestRunner(t)
	ctx := context.Background()

	cfg := xorRunConfig("")
	if _, err := runner.Run(ctx, cfg); err == nil {
		t.Error("expected error for empty run id")
	}

	cfg = xorRunConfig("run-x")
	cfg.Evaluator = nil
	if _, err := runner.Run(ctx, cfg); err == nil {
		t.Error("expected error for nil evaluator")
	}

	cfg = xorRunConfig("run-y")
	cfg.MaxGenerations = 0
	if _, err := runner.Run(ctx, cfg); err == nil {
		t.Error("expected error for zero max generations")
	}

	if _, err := NewRunner(nil); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestRunnerReproducibleWithSeed(t *testing.T) {
	ctx := context.Background()

	run := func(id string) RunReport {
		runner, _ := newTestRunner(t)
		report, err := runner.Run(ctx, xorRunConfig(id))
		if err != nil {
			t.Fatalf("Run %s: %v", id, err)
		}
		return report
	}

	first := run("run-a")
	second := run("run-b")
	if first.Summary.BestFitness != second.Summary.BestFitness {
		t.Errorf("seeded runs diverged: %v vs %v", first.Summary.BestFitness, second.Summary.BestFitness)
	}
	if nn.MarshalText(first.Best.Network) != nn.MarshalText(second.Best.Network) {
		t.Error("seeded runs produced different best networks")
	}
}
