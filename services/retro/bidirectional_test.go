// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retro

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/field"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
)

func bumpField(t *testing.T, n int) *field.Field {
	t.Helper()
	g := grid.New(n)
	c := float64(n-1) / 2
	g.Fill(func(i, j int) float64 {
		d2 := (float64(i)-c)*(float64(i)-c) + (float64(j)-c)*(float64(j)-c)
		return 2.0 * math.Exp(-d2/float64(n))
	})
	f, err := field.NewField(g)
	require.NoError(t, err)
	return f
}

func defaultConfig() Config {
	return Config{
		Duration:      0.1,
		RetroStrength: 0.1,
		Iterations:    2,
		FrameBudget:   4,
		Params:        field.DefaultParams(),
	}
}

func TestEvolveBidirectional_ValidatesInputs(t *testing.T) {
	e := NewEvolver(noise.NewGenerator(1), nil)
	f := bumpField(t, 8)

	cfg := defaultConfig()
	cfg.Params.Dt = 0
	_, err := e.EvolveBidirectional(context.Background(), f, cfg)
	require.ErrorIs(t, err, field.ErrInvalidTimestep)

	cfg = defaultConfig()
	cfg.Duration = -0.5
	_, err = e.EvolveBidirectional(context.Background(), f, cfg)
	require.ErrorIs(t, err, field.ErrInvalidDuration)

	cfg = defaultConfig()
	cfg.Iterations = 0
	_, err = e.EvolveBidirectional(context.Background(), f, cfg)
	require.ErrorIs(t, err, ErrInvalidIterations)

	cfg = defaultConfig()
	cfg.Boundary = grid.New(16)
	_, err = e.EvolveBidirectional(context.Background(), f, cfg)
	require.ErrorIs(t, err, ErrBoundaryShape)
}

func TestEvolveBidirectional_ZeroDurationSingleFrame(t *testing.T) {
	e := NewEvolver(noise.NewGenerator(7), nil)
	f := bumpField(t, 8)

	cfg := defaultConfig()
	cfg.Duration = 0
	result, err := e.EvolveBidirectional(context.Background(), f, cfg)
	require.NoError(t, err)

	require.Len(t, result.Times, 1)
	assert.Len(t, result.Forward, 1)
	assert.Len(t, result.Backward, 1)
	assert.Len(t, result.Entangled, 1)
}

func TestEvolveBidirectional_HistoriesAlign(t *testing.T) {
	e := NewEvolver(noise.NewGenerator(7), nil)
	f := bumpField(t, 8)

	result, err := e.EvolveBidirectional(context.Background(), f, defaultConfig())
	require.NoError(t, err)

	require.Len(t, result.AllIterations, 2)
	for _, it := range result.AllIterations {
		assert.Equal(t, len(it.Forward), len(it.Backward))
		assert.Equal(t, len(it.Forward), len(it.Entangled))
		assert.Equal(t, len(it.Forward), len(it.Times))
		assert.Len(t, it.Correlation, len(it.Entangled))
	}
	assert.Equal(t, result.Forward, result.AllIterations[1].Forward)
}

func TestEvolveBidirectional_FieldHoldsFinalEntangledState(t *testing.T) {
	e := NewEvolver(noise.NewGenerator(7), nil)
	f := bumpField(t, 8)

	result, err := e.EvolveBidirectional(context.Background(), f, defaultConfig())
	require.NoError(t, err)

	last := result.Entangled[len(result.Entangled)-1]
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			assert.Equal(t, last.At(i, j), f.State().At(i, j))
		}
	}
}

func TestEvolveBidirectional_ContextCancellation(t *testing.T) {
	e := NewEvolver(noise.NewGenerator(7), nil)
	f := bumpField(t, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EvolveBidirectional(ctx, f, defaultConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvolveBidirectional_BoundaryPullsFinalState(t *testing.T) {
	// With a strong constant boundary, the entangled final state must
	// sit closer to the boundary than a run without one.
	boundary := constGrid(8, 5.0)

	run := func(b *grid.Grid) *grid.Grid {
		e := NewEvolver(noise.NewGenerator(11), nil)
		f := bumpField(t, 8)
		cfg := defaultConfig()
		cfg.Boundary = b
		result, err := e.EvolveBidirectional(context.Background(), f, cfg)
		require.NoError(t, err)
		return result.Entangled[len(result.Entangled)-1]
	}

	with := run(boundary)
	without := run(nil)

	distWith := math.Abs(with.Mean() - 5.0)
	distWithout := math.Abs(without.Mean() - 5.0)
	assert.Less(t, distWith, distWithout)
}

func TestEntangle_MovesTowardAverage(t *testing.T) {
	a := constGrid(4, 0)
	b := constGrid(4, 10)

	ea, eb := Entangle(a, b, 0.3)

	// avg = 5; a moves 30% of the way up, b 30% of the way down.
	assert.InDelta(t, 1.5, ea.At(0, 0), 1e-12)
	assert.InDelta(t, 8.5, eb.At(0, 0), 1e-12)
}

func TestEntangle_FullStrengthCollapsesToAverage(t *testing.T) {
	a := constGrid(4, 2)
	b := constGrid(4, 6)

	ea, eb := Entangle(a, b, 1.0)

	assert.InDelta(t, 4.0, ea.At(1, 1), 1e-12)
	assert.InDelta(t, 4.0, eb.At(1, 1), 1e-12)
}

func TestTemporalCorrelation_SelfCorrelationIsOne(t *testing.T) {
	g := grid.New(8)
	g.Fill(func(i, j int) float64 { return math.Sin(float64(i*8 + j)) })

	corr := TemporalCorrelation([]*grid.Grid{g, g.Clone()})

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.InDelta(t, 1.0, corr[i][j], 1e-6)
		}
	}
}

func TestTemporalCorrelation_AntiCorrelatedStates(t *testing.T) {
	g := grid.New(8)
	g.Fill(func(i, j int) float64 { return math.Sin(float64(i*8 + j)) })
	neg := g.Clone()
	neg.Scale(-1)

	corr := TemporalCorrelation([]*grid.Grid{g, neg})

	assert.InDelta(t, -1.0, corr[0][1], 1e-6)
	assert.InDelta(t, -1.0, corr[1][0], 1e-6)
}

func TestTemporalCorrelation_DegenerateStateIsGuarded(t *testing.T) {
	flat := constGrid(8, 3.0)
	g := grid.New(8)
	g.Fill(func(i, j int) float64 { return float64(i) })

	corr := TemporalCorrelation([]*grid.Grid{flat, g})

	// The zero-variance state yields zero correlation, not NaN.
	assert.False(t, math.IsNaN(corr[0][0]))
	assert.InDelta(t, 0.0, corr[0][1], 1e-6)
}
