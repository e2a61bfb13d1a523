package main

import (
	"fmt"

	"gopkg.in/ini.v1"

	"evodrive/pkg/evodrive"
)

// runProfile is the ini shape of a stored run configuration. Section [run]
// holds the engine knobs; anything omitted keeps the engine default.
type runProfile struct {
	RunID               string  `ini:"run_id"`
	Evaluator           string  `ini:"evaluator"`
	Population          int     `ini:"population"`
	Generations         int     `ini:"generations"`
	Inputs              int     `ini:"inputs"`
	SelectionPercentage float64 `ini:"selection_percentage"`
	MixingRatio         float64 `ini:"mixing_ratio"`
	MutationProbability float64 `ini:"mutation_probability"`
	FitnessGoal         float64 `ini:"fitness_goal"`
	Seed                int64   `ini:"seed"`
	ControllerFile      string  `ini:"controller_file"`
}

func loadRunRequestFromProfile(path string) (evodrive.RunRequest, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return evodrive.RunRequest{}, fmt.Errorf("load profile %s: %w", path, err)
	}

	var profile runProfile
	if err := cfg.Section("run").MapTo(&profile); err != nil {
		return evodrive.RunRequest{}, fmt.Errorf("parse profile %s: %w", path, err)
	}

	req := evodrive.RunRequest{
		RunID:               profile.RunID,
		Evaluator:           profile.Evaluator,
		Population:          profile.Population,
		Generations:         profile.Generations,
		InputsLength:        profile.Inputs,
		SelectionPercentage: profile.SelectionPercentage,
		MixingRatio:         profile.MixingRatio,
		MutationProbability: profile.MutationProbability,
		FitnessGoal:         profile.FitnessGoal,
		Seed:                profile.Seed,
	}
	if profile.ControllerFile != "" {
		inputs, text, err := evodrive.LoadControllerFile(profile.ControllerFile)
		if err != nil {
			return evodrive.RunRequest{}, err
		}
		req.SeedNetworkText = text
		if req.InputsLength == 0 {
			req.InputsLength = inputs
		}
	}
	return req, nil
}
