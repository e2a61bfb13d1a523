package evo

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrAlreadyStarted = errors.New("manager already started")

// Evaluator scores a population. The call blocks until every chromosome has
// been evaluated; the engine suspends for its duration and starts no new
// generation before it returns. Higher fitness is better. Chromosome ids
// missing from the returned map are treated as fitness 0 downstream.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, population Population) (map[string]float64, error)
}

// GenerationSummary is the notification emitted after each generation's
// population has been evaluated and sorted.
type GenerationSummary struct {
	Generation  int
	BestFitness float64
	SumFitness  float64
	BestID      string
}

// Decision receives each GenerationSummary and reports whether the generation
// just summarized is terminal. This replaces the original push-style
// callback: the recipient decides, the manager never re-enters itself.
type Decision func(GenerationSummary) bool

type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type ManagerConfig struct {
	Generator      PopulationGenerator
	Evaluator      Evaluator
	Decision       Decision
	PopulationSize int
	// SeedNetworkText, when non-empty, seeds the first population from a
	// serialized network instead of random synthesis.
	SeedNetworkText string
}

// Manager drives the generation life-cycle:
// NotStarted -> Running(1) -> Running(2) -> ... -> Finished.
type Manager struct {
	cfg ManagerConfig

	mu         sync.RWMutex
	state      State
	generation int
	best       *Chromosome
	history    []GenerationSummary
}

// RunOutcome is the result promoted out of the core at termination.
type RunOutcome struct {
	Best        Chromosome
	Generations int
	History     []GenerationSummary
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("population generator is required")
	}
	if cfg.Decision == nil {
		return nil, errors.New("decision function is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0, got %d", cfg.PopulationSize)
	}
	return &Manager{cfg: cfg}, nil
}

// Run executes generations until the decision function marks one terminal or
// the context is cancelled. It returns ErrAlreadyStarted on any call after
// the first; a Manager drives exactly one run.
func (m *Manager) Run(ctx context.Context) (RunOutcome, error) {
	m.mu.Lock()
	if m.state != StateNotStarted {
		m.mu.Unlock()
		return RunOutcome{}, ErrAlreadyStarted
	}
	m.state = StateRunning
	m.generation = 1
	m.mu.Unlock()

	var population Population
	var err error
	if m.cfg.SeedNetworkText != "" {
		population, err = m.cfg.Generator.GenerateFirstPopulationFromSeed(m.cfg.PopulationSize, m.cfg.SeedNetworkText)
	} else {
		population, err = m.cfg.Generator.GenerateFirstPopulation(m.cfg.PopulationSize)
	}
	if err != nil {
		return RunOutcome{}, fmt.Errorf("generate first population: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return RunOutcome{}, err
		}

		fitness, err := m.cfg.Evaluator.Evaluate(ctx, population)
		if err != nil {
			return RunOutcome{}, fmt.Errorf("evaluate generation %d: %w", m.Generation(), err)
		}

		population.SortByFitness(fitness)
		summary := summarize(m.Generation(), population, fitness)

		m.mu.Lock()
		m.history = append(m.history, summary)
		m.mu.Unlock()

		if m.cfg.Decision(summary) {
			best := Chromosome{ID: population[0].ID, Network: population[0].Network.Clone()}
			m.mu.Lock()
			m.state = StateFinished
			m.best = &best
			history := append([]GenerationSummary(nil), m.history...)
			generations := m.generation
			m.mu.Unlock()
			return RunOutcome{Best: best, Generations: generations, History: history}, nil
		}

		m.mu.Lock()
		m.generation++
		next := m.generation
		m.mu.Unlock()

		population, err = m.cfg.Generator.GeneratePopulation(population, next)
		if err != nil {
			return RunOutcome{}, fmt.Errorf("generate population %d: %w", next, err)
		}
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) Generation() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Best returns the winning chromosome once the manager is finished.
func (m *Manager) Best() (Chromosome, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.best == nil {
		return Chromosome{}, false
	}
	return *m.best, true
}

// History returns a copy of all generation summaries emitted so far.
func (m *Manager) History() []GenerationSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]GenerationSummary(nil), m.history...)
}

func summarize(generation int, sorted Population, fitness map[string]float64) GenerationSummary {
	sum := 0.0
	for _, chromosome := range sorted {
		sum += fitness[chromosome.ID]
	}
	return GenerationSummary{
		Generation:  generation,
		BestFitness: fitness[sorted[0].ID],
		SumFitness:  sum,
		BestID:      sorted[0].ID,
	}
}
