package storage

import (
	"context"

	"evodrive/internal/model"
)

// Store defines persistence operations for evolved controller networks and
// run bookkeeping. A missing record is reported through the bool, never as
// an error.
type Store interface {
	Init(ctx context.Context) error
	SaveNetwork(ctx context.Context, record model.NetworkRecord) error
	GetNetwork(ctx context.Context, id string) (model.NetworkRecord, bool, error)
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, id string) (model.RunSummary, bool, error)
	ListRunSummaries(ctx context.Context) ([]model.RunSummary, error)
	SaveGenerationHistory(ctx context.Context, runID string, history []model.GenerationRecord) error
	GetGenerationHistory(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
}
