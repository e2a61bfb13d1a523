package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NetworkRecord stores a trained network in its two-line text form together
// with the per-layer shape pairs, so tooling can inspect topology without
// parsing the payload.
type NetworkRecord struct {
	VersionedRecord
	ID     string  `json:"id"`
	Shapes []int   `json:"shapes"`
	Text   string  `json:"text"`
	Best   float64 `json:"best_fitness"`
}

// GenerationRecord is one row of a run's fitness history.
type GenerationRecord struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	SumFitness  float64 `json:"sum_fitness"`
	BestID      string  `json:"best_id"`
}

// RunSummary describes one completed evolution run.
type RunSummary struct {
	VersionedRecord
	ID             string  `json:"id"`
	Evaluator      string  `json:"evaluator"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	BestFitness    float64 `json:"best_fitness"`
	BestNetworkID  string  `json:"best_network_id"`
	Seed           int64   `json:"seed"`
}
