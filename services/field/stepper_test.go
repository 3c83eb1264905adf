// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
)

// zeroNoise is a NoiseSource producing all-zero fields, making steps
// deterministic.
type zeroNoise struct{}

func (zeroNoise) Generate(_ noise.Kind, n int, _, _ float64) (*grid.Grid, error) {
	return grid.New(n), nil
}

func smoothBump(n int) *grid.Grid {
	g := grid.New(n)
	c := float64(n-1) / 2
	g.Fill(func(i, j int) float64 {
		d2 := (float64(i)-c)*(float64(i)-c) + (float64(j)-c)*(float64(j)-c)
		return 2.0 * math.Exp(-d2/float64(n))
	})
	return g
}

func TestStep_RejectsNonPositiveDt(t *testing.T) {
	s := NewStepper(zeroNoise{})
	p := DefaultParams()
	p.Dt = 0

	_, err := s.Step(smoothBump(8), p)
	require.ErrorIs(t, err, ErrInvalidTimestep)

	p.Dt = -0.01
	_, err = s.Step(smoothBump(8), p)
	require.ErrorIs(t, err, ErrInvalidTimestep)
}

func TestStep_DiffusionShrinksBump(t *testing.T) {
	// With λ=0 and no noise only the -(-Δ)^(α/2) term acts, so the
	// bump's peak must decay.
	s := NewStepper(zeroNoise{})
	p := DefaultParams()
	p.Lambda = 0
	p.Eta = 0

	state := smoothBump(16)
	peakBefore := state.MaxAbs()

	next, err := s.Step(state, p)
	require.NoError(t, err)

	assert.Less(t, next.MaxAbs(), peakBefore)
}

func TestStep_ClampsToFieldBound(t *testing.T) {
	s := NewStepper(zeroNoise{})
	p := DefaultParams()
	p.Lambda = 1e6 // force the nonlinear term into saturation

	state := smoothBump(16)
	// Make sure the step would overshoot the bound without the clamp.
	p.Dt = 1.0

	next, err := s.Step(state, p)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			assert.LessOrEqual(t, next.At(i, j), 10.0)
			assert.GreaterOrEqual(t, next.At(i, j), -10.0)
		}
	}
}

func TestStep_DoesNotModifyInput(t *testing.T) {
	s := NewStepper(noise.NewGenerator(7))
	state := smoothBump(8)
	before := state.Clone()

	_, err := s.Step(state, DefaultParams())
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			assert.Equal(t, before.At(i, j), state.At(i, j))
		}
	}
}

func TestStep_DeterministicForSeed(t *testing.T) {
	state := smoothBump(16)
	p := DefaultParams()

	a, err := NewStepper(noise.NewGenerator(42)).Step(state, p)
	require.NoError(t, err)
	b, err := NewStepper(noise.NewGenerator(42)).Step(state, p)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			assert.Equal(t, a.At(i, j), b.At(i, j))
		}
	}
}

func TestStep_UnknownNoiseKindFails(t *testing.T) {
	s := NewStepper(noise.NewGenerator(1))
	p := DefaultParams()
	p.Noise = noise.Kind("static")

	_, err := s.Step(smoothBump(8), p)
	require.ErrorIs(t, err, noise.ErrUnknownKind)
}

func TestStepEnhanced_UnclampedByDefault(t *testing.T) {
	s := NewStepper(zeroNoise{})
	p := DefaultEnhancedParams()
	p.Lambda = 1e4
	p.Dt = 1.0
	p.Eta = 0

	next, err := s.StepEnhanced(smoothBump(16), p)
	require.NoError(t, err)

	assert.Greater(t, next.MaxAbs(), 10.0,
		"enhanced step must not clamp unless requested")
}

func TestStepEnhanced_ClampFieldOptIn(t *testing.T) {
	s := NewStepper(zeroNoise{})
	p := DefaultEnhancedParams()
	p.Lambda = 1e4
	p.Dt = 1.0
	p.Eta = 0
	p.ClampField = true

	next, err := s.StepEnhanced(smoothBump(16), p)
	require.NoError(t, err)

	assert.LessOrEqual(t, next.MaxAbs(), 10.0)
}

func TestStepEnhanced_ThetaDampsNonlinearity(t *testing.T) {
	// With high θ the effective λ collapses toward zero, so the damped
	// run must stay closer to the pure-diffusion trajectory.
	state := smoothBump(16)

	base := DefaultEnhancedParams()
	base.Eta = 0
	base.Lambda = 2.0

	damped := base
	damped.Theta = 10.0

	pure := base
	pure.Lambda = 0

	s := NewStepper(zeroNoise{})
	withNL, err := s.StepEnhanced(state, base)
	require.NoError(t, err)
	withDamp, err := s.StepEnhanced(state, damped)
	require.NoError(t, err)
	noNL, err := s.StepEnhanced(state, pure)
	require.NoError(t, err)

	distDamp := maxAbsDiff(withDamp, noNL)
	distFull := maxAbsDiff(withNL, noNL)
	assert.Less(t, distDamp, distFull)
}

func TestEffectiveLambda(t *testing.T) {
	p := DefaultEnhancedParams()
	p.Lambda = 0.5
	p.Theta = 1.0

	assert.InDelta(t, 0.5*math.Exp(-1), p.EffectiveLambda(), 1e-12)
}

func TestSymmetryBreakingTerm_SignFollowsGamma(t *testing.T) {
	state := smoothBump(8)

	// χ·tanh(κχ) ≥ 0, so the term's sign is γ's sign everywhere.
	pos := SymmetryBreakingTerm(state, 0.5, 1.0)
	neg := SymmetryBreakingTerm(state, -0.5, 1.0)

	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			assert.GreaterOrEqual(t, pos.At(i, j), 0.0)
			assert.LessOrEqual(t, neg.At(i, j), 0.0)
		}
	}
}

func TestNonlinearTerm_ClampedAndNonNegativeForPositiveLambda(t *testing.T) {
	state := smoothBump(8)
	state.Scale(1e4)

	term := NonlinearTerm(state, 0.5, 0.0)

	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			assert.GreaterOrEqual(t, term.At(i, j), 0.0)
			assert.LessOrEqual(t, term.At(i, j), 100.0)
		}
	}
}

func maxAbsDiff(a, b *grid.Grid) float64 {
	d := a.Clone()
	d.AddScaled(-1, b)
	return d.MaxAbs()
}
