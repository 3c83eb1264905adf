// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package field

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/pkg/logging"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
	"github.com/prometheusWaluigi/ASTRA/services/field/telemetry"
)

// ChartResult holds the frames sampled from a chart evolution. Times
// and States are aligned; Joy and Coherence are populated only when
// metrics are requested and align with the same frames.
type ChartResult struct {
	Times     []float64
	States    []*grid.Grid
	Joy       []*grid.Grid
	Coherence []float64
}

// Frames returns the number of stored frames.
func (r *ChartResult) Frames() int { return len(r.States) }

// Final returns the last stored state.
func (r *ChartResult) Final() *grid.Grid { return r.States[len(r.States)-1] }

// Evolver drives multi-step chart evolutions. It is not safe for
// concurrent use; EvolveBatch builds one Evolver per run.
type Evolver struct {
	stepper *Stepper
	logger  *logging.Logger
}

// NewEvolver returns an Evolver using the given stepper. A nil logger
// falls back to the package default.
func NewEvolver(stepper *Stepper, logger *logging.Logger) *Evolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Evolver{stepper: stepper, logger: logger}
}

// EvolveChart evolves f for the given duration under the standard
// equation, storing at most frameBudget intermediate frames plus the
// initial and final states. A non-positive frameBudget stores only the
// endpoints. The context is checked every step.
func (e *Evolver) EvolveChart(ctx context.Context, f *Field, duration float64, frameBudget int, p Params) (*ChartResult, error) {
	step := func(state *grid.Grid) (*grid.Grid, error) {
		return e.stepper.Step(state, p)
	}
	return e.evolve(ctx, f, duration, frameBudget, p.Dt, "standard", step, false)
}

// EvolveChartEnhanced evolves f under the enhanced equation and
// computes the joy and coherence metrics at every stored frame.
func (e *Evolver) EvolveChartEnhanced(ctx context.Context, f *Field, duration float64, frameBudget int, p EnhancedParams) (*ChartResult, error) {
	step := func(state *grid.Grid) (*grid.Grid, error) {
		return e.stepper.StepEnhanced(state, p)
	}
	return e.evolve(ctx, f, duration, frameBudget, p.Dt, "enhanced", step, true)
}

func (e *Evolver) evolve(ctx context.Context, f *Field, duration float64, frameBudget int, dt float64,
	variant string, step func(*grid.Grid) (*grid.Grid, error), withMetrics bool) (*ChartResult, error) {

	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", ErrInvalidTimestep, dt)
	}
	if duration < 0 {
		return nil, fmt.Errorf("%w: duration=%g", ErrInvalidDuration, duration)
	}

	steps := int(math.Floor(duration / dt))
	stride := steps + 1
	if frameBudget > 0 {
		stride = steps / frameBudget
		if stride < 1 {
			stride = 1
		}
	}

	e.logger.Info("chart evolution started",
		"variant", variant, "steps", steps, "dt", dt, "stride", stride, "n", f.N())

	result := &ChartResult{}
	storeFrame := func() {
		result.Times = append(result.Times, f.Time())
		result.States = append(result.States, f.State().Clone())
		if withMetrics {
			result.Joy = append(result.Joy, Joy(f.State()))
			result.Coherence = append(result.Coherence, Coherence(f.State()))
		}
		telemetry.FramesStoredTotal.Inc()
	}
	storeFrame()

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evolution canceled at step %d: %w", i, err)
		}

		next, err := step(f.State())
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if err := f.Update(next, dt); err != nil {
			if errors.Is(err, ErrNonFinite) {
				telemetry.NonFiniteTotal.Inc()
			}
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		telemetry.StepsTotal.WithLabelValues(variant).Inc()

		if (i+1)%stride == 0 || i == steps-1 {
			storeFrame()
		}
	}

	e.logger.Info("chart evolution finished",
		"variant", variant, "frames", result.Frames(), "t_final", f.Time())
	return result, nil
}

// BatchItem is one independent run in a batch evolution.
type BatchItem struct {
	Initial     *grid.Grid
	Params      Params
	Duration    float64
	FrameBudget int
	Seed        uint64
}

// EvolveBatch runs the items concurrently under the standard equation,
// one goroutine and one seeded noise generator per item. Results align
// with items. The first failure cancels the remaining runs.
func EvolveBatch(ctx context.Context, logger *logging.Logger, items []BatchItem) ([]*ChartResult, error) {
	results := make([]*ChartResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	for idx, item := range items {
		g.Go(func() error {
			f, err := NewField(item.Initial)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", idx, err)
			}
			evolver := NewEvolver(NewStepper(noise.NewGenerator(item.Seed)), logger)
			result, err := evolver.EvolveChart(ctx, f, item.Duration, item.FrameBudget, item.Params)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", idx, err)
			}
			results[idx] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
