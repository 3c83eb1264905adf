// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package noise generates the stochastic forcing fields for the fKPZχ
// equation.
//
// Three generators are available:
//
//   - Gaussian: iid white noise scaled by the amplitude
//   - Fractal: spectrally colored noise with power spectrum |k|^(-2H-1),
//     where H is the Hurst exponent (0.5 = Brownian, >0.5 = persistent)
//   - Levy: heavy-tailed α-stable samples (stability 1.5, zero skew) via
//     the Chambers-Mallows-Stuck transform, modeling rare large shocks
//
// Fractal and Levy fields are normalized to unit sample standard
// deviation before the amplitude is applied, so the amplitude parameter
// has the same meaning across generators.
package noise

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

// Kind identifies a noise generator.
type Kind string

const (
	// Gaussian is iid white noise.
	Gaussian Kind = "gaussian"

	// Fractal is spectrally colored noise with a Hurst exponent.
	Fractal Kind = "fractal"

	// Levy is heavy-tailed alpha-stable noise.
	Levy Kind = "levy"
)

// ParseKind converts a string to a Kind, or returns ErrUnknownKind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Gaussian, Fractal, Levy:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

const (
	// levyStability is the alpha-stable stability index
	// (1 = Cauchy, 2 = Gaussian).
	levyStability = 1.5

	// epsilon regularizes |k| at the origin of the spectrum.
	epsilon = 1e-10
)

// Generator produces noise fields from a seeded random source. It is
// not safe for concurrent use; give each worker its own Generator.
type Generator struct {
	normal  distuv.Normal
	uniform distuv.Uniform
	expo    distuv.Exponential
}

// NewGenerator returns a Generator seeded deterministically from seed.
// Equal seeds produce identical sample sequences.
func NewGenerator(seed uint64) *Generator {
	src := rand.NewPCG(seed, seed+0x9e3779b97f4a7c15)
	return &Generator{
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		uniform: distuv.Uniform{Min: -math.Pi / 2, Max: math.Pi / 2, Src: src},
		expo:    distuv.Exponential{Rate: 1, Src: src},
	}
}

// Generate dispatches to the generator named by kind. The hurst
// parameter is only consulted for Fractal noise.
func (g *Generator) Generate(kind Kind, n int, amplitude, hurst float64) (*grid.Grid, error) {
	switch kind {
	case Gaussian:
		return g.Gaussian(n, amplitude), nil
	case Fractal:
		return g.Fractal(n, amplitude, hurst), nil
	case Levy:
		return g.Levy(n, amplitude), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Gaussian returns an n×n field of iid N(0, amplitude²) samples.
func (g *Generator) Gaussian(n int, amplitude float64) *grid.Grid {
	out := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, amplitude*g.normal.Rand())
		}
	}
	return out
}

// Fractal returns an n×n colored noise field with power spectrum
// |k|^(-2·hurst-1), synthesized by filtering complex white noise in
// frequency space. The DC bin is zeroed so the field has no mean
// offset, and the result is normalized to standard deviation equal to
// amplitude.
func (g *Generator) Fractal(n int, amplitude, hurst float64) *grid.Grid {
	white := make([][]complex128, n)
	for i := range white {
		white[i] = make([]complex128, n)
		for j := range white[i] {
			white[i][j] = complex(g.normal.Rand(), g.normal.Rand())
		}
	}

	spectrum := fft.FFT2(white)

	k := waveNumbers(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			kMag := math.Sqrt(k[j]*k[j] + k[i]*k[i] + epsilon)
			power := math.Pow(kMag, -2*hurst-1)
			spectrum[i][j] *= complex(math.Sqrt(power), 0)
		}
	}
	spectrum[0][0] = 0

	colored := fft.IFFT2(spectrum)

	out := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, real(colored[i][j]))
		}
	}
	normalize(out, amplitude)
	return out
}

// Levy returns an n×n field of alpha-stable samples (stability 1.5,
// zero skew) generated with the Chambers-Mallows-Stuck transform and
// normalized to standard deviation equal to amplitude.
func (g *Generator) Levy(n int, amplitude float64) *grid.Grid {
	const alpha = levyStability

	out := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u := g.uniform.Rand()
			w := g.expo.Rand()

			x := math.Sin(alpha*u) / math.Pow(math.Cos(u), 1/alpha) *
				math.Pow(math.Cos(u-alpha*u)/w, (1-alpha)/alpha)
			out.Set(i, j, x)
		}
	}
	normalize(out, amplitude)
	return out
}

// normalize rescales g in place to standard deviation amplitude. A
// degenerate all-equal field is left unscaled.
func normalize(g *grid.Grid, amplitude float64) {
	std := g.Std()
	if std == 0 {
		return
	}
	g.Scale(amplitude / std)
}

// waveNumbers returns 2π·fftfreq(n) in natural FFT bin order.
func waveNumbers(n int) []float64 {
	k := make([]float64, n)
	scale := 2.0 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		if i < (n+1)/2 {
			k[i] = float64(i) * scale
		} else {
			k[i] = float64(i-n) * scale
		}
	}
	return k
}
