package storage

import (
	"context"
	"sort"
	"sync"

	"evodrive/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	networks  map[string]model.NetworkRecord
	summaries map[string]model.RunSummary
	history   map[string][]model.GenerationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.networks = make(map[string]model.NetworkRecord)
	s.summaries = make(map[string]model.RunSummary)
	s.history = make(map[string][]model.GenerationRecord)
	return nil
}

func (s *MemoryStore) SaveNetwork(_ context.Context, record model.NetworkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Shapes = append([]int(nil), record.Shapes...)
	s.networks[record.ID] = record
	return nil
}

func (s *MemoryStore) GetNetwork(_ context.Context, id string) (model.NetworkRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.networks[id]
	if !ok {
		return model.NetworkRecord{}, false, nil
	}
	record.Shapes = append([]int(nil), record.Shapes...)
	return record, true, nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, summary model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[summary.ID] = summary
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, id string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[id]
	return summary, ok, nil
}

func (s *MemoryStore) ListRunSummaries(_ context.Context) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.RunSummary, 0, len(s.summaries))
	for _, summary := range s.summaries {
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func (s *MemoryStore) SaveGenerationHistory(_ context.Context, runID string, history []model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationRecord, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetGenerationHistory(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationRecord, len(history))
	copy(copied, history)
	return copied, true, nil
}
