// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package field

import (
	"fmt"
	"math"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
	"github.com/prometheusWaluigi/ASTRA/services/field/spectral"
)

const (
	// maxFieldValue bounds the field after a clamped Euler step.
	maxFieldValue = 10.0

	// maxTermValue bounds the standard nonlinear term.
	maxTermValue = 100.0
)

// NoiseSource supplies stochastic forcing fields. *noise.Generator
// implements it; tests inject deterministic sources.
type NoiseSource interface {
	Generate(kind noise.Kind, n int, amplitude, hurst float64) (*grid.Grid, error)
}

// Stepper advances field states by single Euler steps. It is not safe
// for concurrent use because the noise source is stateful; give each
// worker its own Stepper.
type Stepper struct {
	noise NoiseSource
}

// NewStepper returns a Stepper drawing noise from src.
func NewStepper(src NoiseSource) *Stepper {
	return &Stepper{noise: src}
}

// Step advances state by one Euler step of the standard equation
//
//	χ' = clamp(χ + dt·(-(-Δ)^(α/2)χ + λ((∇χ)² + γχ²) + η_f), ±10)
//
// and returns the new state without modifying the input.
func (s *Stepper) Step(state *grid.Grid, p Params) (*grid.Grid, error) {
	if p.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", ErrInvalidTimestep, p.Dt)
	}

	lap := spectral.FractionalLaplacian(state, p.Alpha)
	nonlin := NonlinearTerm(state, p.Lambda, p.Gamma)
	eta, err := s.noise.Generate(p.Noise, state.N(), p.Eta, p.Hurst)
	if err != nil {
		return nil, fmt.Errorf("noise term: %w", err)
	}

	// Perturbation terms from planetary archetypes slot in here once
	// the archetype module lands; the derivative carries a zero
	// placeholder until then.
	next := state.Clone()
	next.AddScaled(-p.Dt, lap)
	next.AddScaled(p.Dt, nonlin)
	next.AddScaled(p.Dt, eta)
	next.Clamp(-maxFieldValue, maxFieldValue)
	return next, nil
}

// StepEnhanced advances state by one Euler step of the enhanced
// equation
//
//	χ' = χ + dt·(ν∇^α χ + (λ(t)/2)(∇^β χ)² + η_f + γχ·tanh(κχ))
//
// The diffusion term enters with a positive sign, matching the
// enhanced model's ∇^α convention. The result is unclamped unless
// p.ClampField is set.
func (s *Stepper) StepEnhanced(state *grid.Grid, p EnhancedParams) (*grid.Grid, error) {
	if p.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", ErrInvalidTimestep, p.Dt)
	}

	lap := spectral.FractionalLaplacian(state, p.Alpha)
	nonlin := EnhancedNonlinearTerm(state, p.Beta, p.EffectiveLambda())
	sym := SymmetryBreakingTerm(state, p.Gamma, p.Kappa)
	eta, err := s.noise.Generate(p.Noise, state.N(), p.Eta, p.Hurst)
	if err != nil {
		return nil, fmt.Errorf("noise term: %w", err)
	}

	next := state.Clone()
	next.AddScaled(p.Dt*p.Nu, lap)
	next.AddScaled(p.Dt, nonlin)
	next.AddScaled(p.Dt, sym)
	next.AddScaled(p.Dt, eta)
	if p.ClampField {
		next.Clamp(-maxFieldValue, maxFieldValue)
	}
	return next, nil
}

// NonlinearTerm computes the standard nonlinearity
//
//	λ((∇χ)² + γχ²)
//
// using central-difference gradients, clamped to [-100, 100].
func NonlinearTerm(state *grid.Grid, lambda, gamma float64) *grid.Grid {
	gy, gx := state.Gradient()
	n := state.N()

	out := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			gradSq := gx.At(i, j)*gx.At(i, j) + gy.At(i, j)*gy.At(i, j)
			v := gradSq
			if gamma != 0 {
				chi := state.At(i, j)
				v += gamma * chi * chi
			}
			out.Set(i, j, lambda*v)
		}
	}
	out.Clamp(-maxTermValue, maxTermValue)
	return out
}

// EnhancedNonlinearTerm computes the recursive amplification term
//
//	(λ/2)(∇^β χ)²
//
// with the fractional gradient taken as a fractional Laplacian of
// order β. Unlike the standard term it is not clamped; the field-level
// saturation of the spectral operator bounds it indirectly.
func EnhancedNonlinearTerm(state *grid.Grid, beta, lambda float64) *grid.Grid {
	gradBeta := spectral.FractionalLaplacian(state, beta)
	out := gradBeta.Clone()
	out.Map(func(v float64) float64 { return (lambda / 2) * v * v })
	return out
}

// SymmetryBreakingTerm computes the ego crystallization term
//
//	γχ·tanh(κχ)
func SymmetryBreakingTerm(state *grid.Grid, gamma, kappa float64) *grid.Grid {
	out := state.Clone()
	out.Map(func(chi float64) float64 {
		return gamma * chi * math.Tanh(kappa*chi)
	})
	return out
}
