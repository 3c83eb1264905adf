// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package noise

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"gaussian", Gaussian, false},
		{"fractal", Fractal, false},
		{"levy", Levy, false},
		{"perlin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerator_SameSeedSameField(t *testing.T) {
	for _, kind := range []Kind{Gaussian, Fractal, Levy} {
		t.Run(string(kind), func(t *testing.T) {
			a, err := NewGenerator(42).Generate(kind, 16, 0.1, 0.8)
			require.NoError(t, err)
			b, err := NewGenerator(42).Generate(kind, 16, 0.1, 0.8)
			require.NoError(t, err)

			for i := 0; i < 16; i++ {
				for j := 0; j < 16; j++ {
					assert.Equal(t, a.At(i, j), b.At(i, j))
				}
			}
		})
	}
}

func TestGenerator_DifferentSeedsDiffer(t *testing.T) {
	a := NewGenerator(1).Gaussian(16, 0.1)
	b := NewGenerator(2).Gaussian(16, 0.1)

	same := true
	for i := 0; i < 16 && same; i++ {
		for j := 0; j < 16; j++ {
			if a.At(i, j) != b.At(i, j) {
				same = false
				break
			}
		}
	}
	assert.False(t, same, "distinct seeds produced identical fields")
}

func TestGenerate_UnknownKind(t *testing.T) {
	_, err := NewGenerator(7).Generate(Kind("cosmic"), 8, 0.1, 0.8)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestGaussian_Moments(t *testing.T) {
	g := NewGenerator(123).Gaussian(64, 0.1)

	// 4096 samples: mean ≈ 0 and std ≈ amplitude, loosely.
	assert.InDelta(t, 0.0, g.Mean(), 0.01)
	assert.InDelta(t, 0.1, g.Std(), 0.01)
}

func TestFractal_UnitVarianceTimesAmplitude(t *testing.T) {
	g := NewGenerator(99).Fractal(32, 0.25, 0.8)

	assert.InDelta(t, 0.25, g.Std(), 1e-9,
		"fractal noise must be normalized to the amplitude exactly")
	assert.True(t, g.AllFinite())
}

func TestFractal_NearZeroMean(t *testing.T) {
	// With the DC bin removed, the field mean comes only from spectral
	// leakage and stays tiny relative to the amplitude.
	g := NewGenerator(5).Fractal(32, 1.0, 0.8)
	assert.InDelta(t, 0.0, g.Mean(), 0.05)
}

func TestFractal_HurstControlsRoughness(t *testing.T) {
	// Higher Hurst exponent means a steeper spectrum, hence smoother
	// fields: neighboring cells should correlate more strongly.
	rough := NewGenerator(11).Fractal(64, 1.0, 0.2)
	smooth := NewGenerator(11).Fractal(64, 1.0, 0.9)

	assert.Greater(t, meanAbsNeighborDiff(rough), meanAbsNeighborDiff(smooth))
}

func TestLevy_FiniteAndNormalized(t *testing.T) {
	g := NewGenerator(321).Levy(32, 0.1)

	require.True(t, g.AllFinite(), "stable samples must never be NaN or Inf")
	assert.InDelta(t, 0.1, g.Std(), 1e-9)
}

func TestLevy_HeavierTailsThanGaussian(t *testing.T) {
	levy := NewGenerator(55).Levy(64, 1.0)
	gauss := NewGenerator(55).Gaussian(64, 1.0)

	// After normalizing both to unit std, the stable field's extreme
	// values should dominate the Gaussian's.
	gaussNorm := gauss.Clone()
	gaussNorm.Scale(1.0 / gauss.Std())
	assert.Greater(t, levy.MaxAbs(), gaussNorm.MaxAbs())
}

func meanAbsNeighborDiff(g interface {
	N() int
	At(i, j int) float64
}) float64 {
	n := g.N()
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		for j := 0; j < n-1; j++ {
			sum += math.Abs(g.At(i, j+1) - g.At(i, j))
			count++
		}
	}
	return sum / float64(count)
}
