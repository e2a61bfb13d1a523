package evodrive

import (
	"context"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return client
}

func smallRun(id string) RunRequest {
	return RunRequest{
		RunID:       id,
		Evaluator:   "xor",
		Population:  10,
		Generations: 3,
		Seed:        7,
	}
}

func TestClientRunAndQuery(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	var generations []Generation
	req := smallRun("run-1")
	req.OnGeneration = func(g Generation) {
		generations = append(generations, g)
	}

	result, err := client.Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RunID != "run-1" {
		t.Errorf("run id = %q, want %q", result.RunID, "run-1")
	}
	if result.Generations != 3 {
		t.Errorf("generations = %d, want 3", result.Generations)
	}
	if result.NetworkText == "" {
		t.Error("expected network text in result")
	}
	if len(generations) != 3 {
		t.Errorf("observed %d generations, want 3", len(generations))
	}

	runs, err := client.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-1" || runs[0].Evaluator != "xor" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	history, err := client.FitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("FitnessHistory: %v", err)
	}
	if len(history) != 3 || history[0].Generation != 1 {
		t.Fatalf("unexpected history: %+v", history)
	}

	info, err := client.BestNetwork(ctx, "run-1")
	if err != nil {
		t.Fatalf("BestNetwork: %v", err)
	}
	if info.ID != result.NetworkID || info.Text != result.NetworkText {
		t.Fatalf("best network mismatch: %+v vs %+v", info, result)
	}
	if info.Best != result.BestFitness {
		t.Errorf("best fitness = %v, want %v", info.Best, result.BestFitness)
	}
}

func TestClientGeneratesRunID(t *testing.T) {
	client := newTestClient(t)

	req := smallRun("")
	result, err := client.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected a generated run id")
	}
}

func TestClientUnknownEvaluator(t *testing.T) {
	client := newTestClient(t)

	req := smallRun("run-bad")
	req.Evaluator = "track-day"
	if _, err := client.Run(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown evaluator")
	}
}

func TestClientMissingRunQueries(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	if _, err := client.FitnessHistory(ctx, "absent"); err == nil {
		t.Error("expected error for missing history")
	}
	if _, err := client.BestNetwork(ctx, "absent"); err == nil {
		t.Error("expected error for missing run")
	}
}
