// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retro

import (
	"context"
	"fmt"
	"math"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/pkg/logging"
	"github.com/prometheusWaluigi/ASTRA/services/field"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
	"github.com/prometheusWaluigi/ASTRA/services/field/spectral"
	"github.com/prometheusWaluigi/ASTRA/services/field/telemetry"
)

// Config parameterizes a bidirectional evolution.
type Config struct {
	// Duration is the simulated time span of each forward pass.
	Duration float64

	// RetroStrength scales the pull toward future states during the
	// backward pass, typically in [0, 1].
	RetroStrength float64

	// Boundary, when non-nil, is blended half-and-half into the final
	// forward state before each backward pass.
	Boundary *grid.Grid

	// Iterations is the number of forward/backward refinement passes.
	Iterations int

	// FrameBudget bounds the stored intermediate frames per pass.
	FrameBudget int

	// Params are the standard equation coefficients; Params.Dt is the
	// step size for both directions.
	Params field.Params
}

// entanglementStrength is how far each aligned forward/backward pair
// moves toward its average.
const entanglementStrength = 0.3

// Iteration holds one refinement pass's histories. Forward, Backward
// and Entangled align with Times, all in chronological order.
type Iteration struct {
	Forward     []*grid.Grid
	Backward    []*grid.Grid
	Entangled   []*grid.Grid
	Times       []float64
	Correlation [][]float64
}

// Result holds the final iteration's histories plus every pass.
type Result struct {
	Iteration
	AllIterations []Iteration
}

// Evolver runs bidirectional evolutions. It is not safe for concurrent
// use.
type Evolver struct {
	stepper *field.Stepper
	src     field.NoiseSource
	logger  *logging.Logger
}

// NewEvolver returns an Evolver drawing both forward and backward noise
// from src. A nil logger falls back to the package default.
func NewEvolver(src field.NoiseSource, logger *logging.Logger) *Evolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Evolver{
		stepper: field.NewStepper(src),
		src:     src,
		logger:  logger,
	}
}

// EvolveBidirectional runs cfg.Iterations refinement passes over f.
// Each pass evolves forward for cfg.Duration, optionally blends the
// future boundary into the final state, evolves backward under
// retrocausal influence, and entangles the aligned forward and backward
// frames. The next pass restarts from the first entangled state. On
// return f holds the final entangled state.
func (e *Evolver) EvolveBidirectional(ctx context.Context, f *field.Field, cfg Config) (*Result, error) {
	p := cfg.Params
	if p.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", field.ErrInvalidTimestep, p.Dt)
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("%w: duration=%g", field.ErrInvalidDuration, cfg.Duration)
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, cfg.Iterations)
	}
	if cfg.Boundary != nil && cfg.Boundary.N() != f.N() {
		return nil, fmt.Errorf("%w: boundary is %d, field is %d",
			ErrBoundaryShape, cfg.Boundary.N(), f.N())
	}

	steps := int(math.Floor(cfg.Duration / p.Dt))
	stride := steps + 1
	if cfg.FrameBudget > 0 {
		stride = steps / cfg.FrameBudget
		if stride < 1 {
			stride = 1
		}
	}
	t0 := f.Time()

	e.logger.Info("bidirectional evolution started",
		"iterations", cfg.Iterations, "steps", steps, "dt", p.Dt,
		"retro_strength", cfg.RetroStrength, "n", f.N())

	result := &Result{}
	for iter := 0; iter < cfg.Iterations; iter++ {
		it, err := e.runIteration(ctx, f, cfg, steps, stride)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter, err)
		}
		result.AllIterations = append(result.AllIterations, it)
		telemetry.RetroIterationsTotal.Inc()

		// Restart the next pass from the first entangled state at the
		// original time coordinate.
		if err := f.Update(it.Entangled[0].Clone(), t0-f.Time()); err != nil {
			return nil, fmt.Errorf("iteration %d: restart: %w", iter, err)
		}

		e.logger.Debug("iteration finished",
			"iteration", iter+1,
			"corr_min", matrixMin(it.Correlation),
			"corr_max", matrixMax(it.Correlation))
	}

	final := result.AllIterations[len(result.AllIterations)-1]
	result.Iteration = final

	// Leave the field holding the final entangled state.
	last := final.Entangled[len(final.Entangled)-1]
	if err := f.Update(last.Clone(), 0); err != nil {
		return nil, fmt.Errorf("final state: %w", err)
	}

	e.logger.Info("bidirectional evolution finished",
		"iterations", cfg.Iterations, "frames", len(final.Entangled))
	return result, nil
}

func (e *Evolver) runIteration(ctx context.Context, f *field.Field, cfg Config, steps, stride int) (Iteration, error) {
	p := cfg.Params

	// Forward pass.
	fwd := []*grid.Grid{f.State().Clone()}
	times := []float64{f.Time()}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return Iteration{}, fmt.Errorf("forward step %d: %w", i, err)
		}
		next, err := e.stepper.Step(f.State(), p)
		if err != nil {
			return Iteration{}, fmt.Errorf("forward step %d: %w", i, err)
		}
		if err := f.Update(next, p.Dt); err != nil {
			return Iteration{}, fmt.Errorf("forward step %d: %w", i, err)
		}
		if (i+1)%stride == 0 || i == steps-1 {
			fwd = append(fwd, f.State().Clone())
			times = append(times, f.Time())
		}
	}

	// Blend the future boundary into the final state, half and half.
	if cfg.Boundary != nil {
		blended := f.State().Clone()
		blended.Scale(0.5)
		blended.AddScaled(0.5, cfg.Boundary)
		if err := f.Update(blended, 0); err != nil {
			return Iteration{}, fmt.Errorf("boundary blend: %w", err)
		}
	}

	// Backward pass, walking the stored frame times in reverse.
	bwd := []*grid.Grid{f.State().Clone()}
	for i := len(fwd) - 1; i >= 1; i-- {
		target := times[i-1]
		toTarget := int(math.Round((f.Time() - target) / p.Dt))
		for s := 0; s < toTarget; s++ {
			if err := ctx.Err(); err != nil {
				return Iteration{}, fmt.Errorf("backward pass: %w", err)
			}
			future := nearestFrame(fwd, times, f.Time()-p.Dt)
			next, err := e.retroStep(f.State(), future, p, cfg.RetroStrength)
			if err != nil {
				return Iteration{}, fmt.Errorf("backward pass: %w", err)
			}
			if err := f.Update(next, -p.Dt); err != nil {
				return Iteration{}, fmt.Errorf("backward pass: %w", err)
			}
		}
		bwd = append(bwd, f.State().Clone())
	}
	reverse(bwd)

	// Entangle aligned forward/backward pairs.
	entangled := make([]*grid.Grid, 0, len(fwd))
	for k := range fwd {
		a, _ := Entangle(fwd[k], bwd[k], entanglementStrength)
		entangled = append(entangled, a)
	}

	return Iteration{
		Forward:     fwd,
		Backward:    bwd,
		Entangled:   entangled,
		Times:       times,
		Correlation: TemporalCorrelation(entangled),
	}, nil
}

// retroStep computes one backward Euler step with retrocausal pull:
// the time-reversed standard dynamics plus a small fresh Gaussian term
// (a tenth of the configured amplitude, since the forward noise cannot
// be replayed exactly) and a pull of strength rs toward the future
// state.
func (e *Evolver) retroStep(current, future *grid.Grid, p field.Params, rs float64) (*grid.Grid, error) {
	lap := spectral.FractionalLaplacian(current, p.Alpha)
	nonlin := field.NonlinearTerm(current, p.Lambda, p.Gamma)
	eta, err := e.src.Generate(noise.Gaussian, current.N(), 0.1*p.Eta, p.Hurst)
	if err != nil {
		return nil, fmt.Errorf("backward noise: %w", err)
	}

	// deriv = -(-(-Δ)^(α/2)χ + nonlin + η) + rs·(future − χ), applied
	// with a negative time step.
	diff := future.Clone()
	diff.AddScaled(-1, current)

	next := current.Clone()
	next.AddScaled(-p.Dt, lap)
	next.AddScaled(p.Dt, nonlin)
	next.AddScaled(p.Dt, eta)
	next.AddScaled(-p.Dt*rs, diff)
	return next, nil
}

// Entangle pulls both states toward their average by the given
// strength, returning the entangled pair.
func Entangle(a, b *grid.Grid, strength float64) (*grid.Grid, *grid.Grid) {
	n := a.N()
	outA := grid.New(n)
	outB := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			avg := (a.At(i, j) + b.At(i, j)) / 2
			outA.Set(i, j, (1-strength)*a.At(i, j)+strength*avg)
			outB.Set(i, j, (1-strength)*b.At(i, j)+strength*avg)
		}
	}
	return outA, outB
}

// TemporalCorrelation computes the frame-by-frame correlation matrix of
// a history: each state is flattened and z-scored (with a 1e-10 guard
// against zero variance), and each entry is the mean elementwise
// product of two normalized states.
func TemporalCorrelation(history []*grid.Grid) [][]float64 {
	frames := len(history)
	means := make([]float64, frames)
	stds := make([]float64, frames)
	for i, state := range history {
		means[i] = state.Mean()
		stds[i] = state.Std() + 1e-10
	}

	corr := make([][]float64, frames)
	for i := range corr {
		corr[i] = make([]float64, frames)
		for j := range corr[i] {
			si, sj := history[i], history[j]
			n := si.N()
			var sum float64
			for r := 0; r < n; r++ {
				for c := 0; c < n; c++ {
					sum += (si.At(r, c) - means[i]) * (sj.At(r, c) - means[j])
				}
			}
			corr[i][j] = sum / float64(n*n) / (stds[i] * stds[j])
		}
	}
	return corr
}

func nearestFrame(frames []*grid.Grid, times []float64, t float64) *grid.Grid {
	best := 0
	bestDist := abs(times[0] - t)
	for i := 1; i < len(times); i++ {
		if d := abs(times[i] - t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return frames[best]
}

func reverse(s []*grid.Grid) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func matrixMin(m [][]float64) float64 {
	minV := math.Inf(1)
	for _, row := range m {
		for _, v := range row {
			if v < minV {
				minV = v
			}
		}
	}
	return minV
}

func matrixMax(m [][]float64) float64 {
	maxV := math.Inf(-1)
	for _, row := range m {
		for _, v := range row {
			if v > maxV {
				maxV = v
			}
		}
	}
	return maxV
}
