// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/chart"
	"github.com/prometheusWaluigi/ASTRA/services/field"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
	"github.com/prometheusWaluigi/ASTRA/services/retro"
)

var retroCmd = &cobra.Command{
	Use:   "retro",
	Short: "Run a bidirectional evolution and report temporal correlations",
	RunE:  runRetro,
}

func init() {
	rootCmd.AddCommand(retroCmd)
}

func runRetro(cmd *cobra.Command, args []string) error {
	cfg, err := LoadRunConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger("astra.retro")
	defer logger.Close()

	src := noise.NewGenerator(cfg.Seed)
	initial, err := chart.InitialField(cfg.chartPositions(), cfg.GridSize, cfg.NoiseScale, src)
	if err != nil {
		return err
	}
	var fieldOpts []field.Option
	if cfg.HistoryLimit > 0 {
		fieldOpts = append(fieldOpts, field.WithHistoryLimit(cfg.HistoryLimit))
	}
	f, err := field.NewField(initial, fieldOpts...)
	if err != nil {
		return err
	}

	params, err := cfg.standardParams()
	if err != nil {
		return err
	}

	var boundary *grid.Grid
	if cfg.Retro.BoundaryValue != 0 {
		boundary = grid.New(cfg.GridSize)
		boundary.Fill(func(i, j int) float64 { return cfg.Retro.BoundaryValue })
	}

	evolver := retro.NewEvolver(src, logger)
	result, err := evolver.EvolveBidirectional(cmd.Context(), f, retro.Config{
		Duration:      cfg.Duration,
		RetroStrength: cfg.Retro.Strength,
		Boundary:      boundary,
		Iterations:    cfg.Retro.Iterations,
		FrameBudget:   cfg.FrameBudget,
		Params:        params,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Bidirectional run: %d iterations, %d frames per pass, retro strength %.2f\n",
		len(result.AllIterations), len(result.Times), cfg.Retro.Strength)

	final := result.Entangled[len(result.Entangled)-1]
	fmt.Fprintf(out, "Final entangled state: mean=%.4f std=%.4f\n", final.Mean(), final.Std())

	lo, hi := correlationRange(result.Correlation)
	fmt.Fprintf(out, "Temporal correlation range: [%.4f, %.4f]\n", lo, hi)
	return nil
}

// correlationRange reports the off-diagonal extremes of the temporal
// correlation matrix.
func correlationRange(m [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range m {
		for j := range m[i] {
			if i == j {
				continue
			}
			if m[i][j] < lo {
				lo = m[i][j]
			}
			if m[i][j] > hi {
				hi = m[i][j]
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
