// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/chart"
	"github.com/prometheusWaluigi/ASTRA/services/field"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
	"github.com/prometheusWaluigi/ASTRA/services/narrative"
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Run a forward field evolution and print a summary",
	RunE:  runEvolve,
}

func init() {
	rootCmd.AddCommand(evolveCmd)
}

func runEvolve(cmd *cobra.Command, args []string) error {
	cfg, err := LoadRunConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger("astra.evolve")
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

	evolver := field.NewEvolver(field.NewStepper(src), logger)
	out := cmd.OutOrStdout()

	var result *field.ChartResult
	if cfg.Enhanced {
		params, err := cfg.enhancedParams()
		if err != nil {
			return err
		}
		result, err = evolver.EvolveChartEnhanced(cmd.Context(), f, cfg.Duration, cfg.FrameBudget, params)
		if err != nil {
			return err
		}
	} else {
		params, err := cfg.standardParams()
		if err != nil {
			return err
		}
		result, err = evolver.EvolveChart(cmd.Context(), f, cfg.Duration, cfg.FrameBudget, params)
		if err != nil {
			return err
		}
	}

	printEvolutionSummary(out, cfg, result)

	if cfg.Narrative {
		if err := printNarrative(out, cfg, result); err != nil {
			return err
		}
	}
	return nil
}

func printEvolutionSummary(out io.Writer, cfg RunConfig, result *field.ChartResult) {
	variant := "standard"
	if cfg.Enhanced {
		variant = "enhanced"
	}
	final := result.Final()
	fmt.Fprintf(out, "Evolved %dx%d field (%s) over t=[%.2f, %.2f], %d frames stored\n",
		cfg.GridSize, cfg.GridSize, variant,
		result.Times[0], result.Times[len(result.Times)-1], result.Frames())
	fmt.Fprintf(out, "Final state: mean=%.4f std=%.4f max|v|=%.4f\n",
		final.Mean(), final.Std(), final.MaxAbs())
	if len(result.Coherence) > 0 {
		fmt.Fprintf(out, "Final coherence: %.4f\n", result.Coherence[len(result.Coherence)-1])
	}
}

// printNarrative generates events frame by frame, with the full
// topology analysis reserved for the final frame.
func printNarrative(out io.Writer, cfg RunConfig, result *field.ChartResult) error {
	gen := narrative.NewGenerator(cfg.Seed, nil)

	var events []narrative.NarrativeEvent
	for i, state := range result.States {
		var prev *grid.Grid
		if i > 0 {
			prev = result.States[i-1]
		}
		withTopology := i == len(result.States)-1
		events = append(events, gen.Generate(state, prev, result.Times[i], withTopology)...)

		crossings := narrative.DetectCrossings(state, prev, result.Times[i], narrative.DefaultThresholds())
		for _, c := range crossings {
			events = append(events, c.ToNarrativeEvent())
		}
	}

	fmt.Fprintf(out, "\nNarrative (%d events):\n", len(events))
	return narrative.NewEventLog(events).WriteText(out)
}
