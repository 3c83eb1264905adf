// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/prometheusWaluigi/ASTRA/services/chart"
	"github.com/prometheusWaluigi/ASTRA/services/field"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
)

// RunConfig is the YAML run description shared by the evolve and retro
// commands.
type RunConfig struct {
	GridSize    int     `yaml:"grid_size" validate:"gt=0"`
	Duration    float64 `yaml:"duration" validate:"gt=0"`
	Dt          float64 `yaml:"dt" validate:"gt=0"`
	FrameBudget int     `yaml:"frame_budget" validate:"gte=0"`
	// HistoryLimit caps the field's stored snapshots; 0 keeps all.
	HistoryLimit int `yaml:"history_limit" validate:"gte=0"`
	Seed        uint64  `yaml:"seed"`
	NoiseKind   string  `yaml:"noise_kind" validate:"oneof=gaussian fractal levy"`
	NoiseScale  float64 `yaml:"noise_scale" validate:"gte=0"`
	Hurst       float64 `yaml:"hurst" validate:"gt=0,lt=1"`

	// Chart maps body names (sun, moon, ascendant, ...) to absolute
	// zodiacal degrees.
	Chart map[string]float64 `yaml:"chart" validate:"dive,gte=0,lt=360"`

	Enhanced  bool `yaml:"enhanced"`
	Narrative bool `yaml:"narrative"`

	Retro RetroRunConfig `yaml:"retro"`
}

// RetroRunConfig configures the bidirectional run.
type RetroRunConfig struct {
	Strength      float64 `yaml:"strength" validate:"gte=0,lte=1"`
	Iterations    int     `yaml:"iterations" validate:"gte=1"`
	BoundaryValue float64 `yaml:"boundary_value"`
}

var validate = validator.New()

// DefaultRunConfig returns the run used when no config file is given.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		GridSize:    64,
		Duration:    1.0,
		Dt:          0.01,
		FrameBudget: 10,
		NoiseKind:   string(noise.Fractal),
		NoiseScale:  0.1,
		Hurst:       0.8,
		Narrative:   true,
		Retro: RetroRunConfig{
			Strength:   0.1,
			Iterations: 2,
		},
	}
}

// LoadRunConfig reads and validates a run config; an empty path yields
// the defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading run config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing run config: %w", err)
		}
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid run config: %w", err)
	}
	return cfg, nil
}

func (c RunConfig) chartPositions() chart.Positions {
	pos := chart.Positions{}
	for body, deg := range c.Chart {
		pos[chart.Body(strings.ToLower(body))] = deg
	}
	return pos
}

// standardParams derives the evolution coefficients from the chart and
// applies the run's noise settings.
func (c RunConfig) standardParams() (field.Params, error) {
	p := chart.DeriveParams(c.chartPositions())
	kind, err := noise.ParseKind(c.NoiseKind)
	if err != nil {
		return p, err
	}
	p.Noise = kind
	p.Dt = c.Dt
	p.Hurst = c.Hurst
	return p, nil
}

func (c RunConfig) enhancedParams() (field.EnhancedParams, error) {
	std, err := c.standardParams()
	if err != nil {
		return field.EnhancedParams{}, err
	}
	p := field.DefaultEnhancedParams()
	p.Lambda = std.Lambda
	p.Gamma = std.Gamma
	p.Eta = std.Eta
	p.Noise = std.Noise
	p.Dt = std.Dt
	p.Hurst = std.Hurst
	return p, nil
}
