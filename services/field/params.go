// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package field

import (
	"math"

	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
)

// Params holds the coefficients of the standard fKPZχ equation
//
//	∂χ/∂t = -(-Δ)^(α/2)χ + λ((∇χ)² + γχ²) + η_f
type Params struct {
	// Alpha is the fractional Laplacian order, typically in [1.0, 2.0].
	Alpha float64

	// Lambda is the nonlinearity strength (Sun).
	Lambda float64

	// Gamma is the symmetry-breaking strength (Ascendant).
	Gamma float64

	// Eta is the noise amplitude (Moon).
	Eta float64

	// Dt is the Euler time step.
	Dt float64

	// Noise selects the noise generator.
	Noise noise.Kind

	// Hurst is the fractal noise roughness exponent.
	Hurst float64
}

// DefaultParams returns the standard model coefficients.
func DefaultParams() Params {
	return Params{
		Alpha:  1.5,
		Lambda: 0.5,
		Gamma:  0.0,
		Eta:    0.1,
		Dt:     0.01,
		Noise:  noise.Fractal,
		Hurst:  0.8,
	}
}

// EnhancedParams holds the coefficients of the enhanced fKPZχ equation
//
//	∂χ/∂t = ν∇^α χ + (λ(t)/2)(∇^β χ)² + η_f + γχ·tanh(κχ)
//
// with λ(t) = λ₀·e^(-θ) modeling meditative damping of the
// nonlinearity.
type EnhancedParams struct {
	// Alpha is the fractional Laplacian order for the diffusion term.
	Alpha float64

	// Beta is the fractional gradient order for the nonlinear term.
	Beta float64

	// Nu is the diffusion coefficient.
	Nu float64

	// Lambda is the base nonlinearity strength before damping.
	Lambda float64

	// Theta damps the nonlinearity: λ(t) = λ·e^(-θ).
	Theta float64

	// Gamma is the ego symmetry-breaking strength.
	Gamma float64

	// Kappa sharpens the tanh saturation of the symmetry-breaking term.
	Kappa float64

	// Eta is the noise amplitude.
	Eta float64

	// Dt is the Euler time step.
	Dt float64

	// Noise selects the noise generator.
	Noise noise.Kind

	// Hurst is the fractal noise roughness exponent.
	Hurst float64

	// ClampField bounds the field to [-10, 10] after each step. The
	// enhanced equation is left unclamped by default; the bounded
	// nonlinearity keeps it stable at moderate coefficients.
	ClampField bool
}

// DefaultEnhancedParams returns the enhanced model coefficients.
func DefaultEnhancedParams() EnhancedParams {
	return EnhancedParams{
		Alpha:  1.5,
		Beta:   1.1,
		Nu:     1.0,
		Lambda: 0.5,
		Theta:  0.0,
		Gamma:  0.0,
		Kappa:  1.0,
		Eta:    0.1,
		Dt:     0.01,
		Noise:  noise.Fractal,
		Hurst:  0.7,
	}
}

// EffectiveLambda returns λ·e^(-θ), the damped nonlinearity strength.
func (p EnhancedParams) EffectiveLambda() float64 {
	return p.Lambda * math.Exp(-p.Theta)
}
