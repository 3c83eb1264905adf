// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package chart derives evolution parameters and initial field states
// from natal chart positions: the Sun sets the nonlinearity, the Moon
// the noise scale, and the Ascendant the symmetry breaking.
package chart

import (
	"math"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/field"
	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
)

// Body names the celestial bodies a chart can carry.
type Body string

const (
	Sun       Body = "sun"
	Moon      Body = "moon"
	Mercury   Body = "mercury"
	Venus     Body = "venus"
	Mars      Body = "mars"
	Jupiter   Body = "jupiter"
	Saturn    Body = "saturn"
	Uranus    Body = "uranus"
	Neptune   Body = "neptune"
	Pluto     Body = "pluto"
	Ascendant Body = "ascendant"
)

// peakAmplitudes weights the ten bodies' imprint on the initial field.
var peakAmplitudes = []struct {
	body      Body
	amplitude float64
}{
	{Sun, 1.0},
	{Moon, 0.8},
	{Mercury, 0.6},
	{Venus, 0.7},
	{Mars, 0.65},
	{Jupiter, 0.75},
	{Saturn, 0.7},
	{Uranus, 0.5},
	{Neptune, 0.5},
	{Pluto, 0.45},
}

// Positions maps bodies to absolute zodiacal degrees in [0, 360).
type Positions map[Body]float64

// DeriveParams maps chart positions onto evolution parameters: the
// Sun's position scales the nonlinearity over [0.1, 1.0], the Moon's
// the noise amplitude over [0.05, 0.25], and the Ascendant's the
// symmetry breaking over [-0.5, 0.5]. Bodies missing from the chart
// leave their parameter at the default.
func DeriveParams(pos Positions) field.Params {
	p := field.DefaultParams()
	if deg, ok := pos[Sun]; ok {
		p.Lambda = 0.1 + 0.9*(deg/360.0)
	}
	if deg, ok := pos[Moon]; ok {
		p.Eta = 0.05 + 0.2*(deg/360.0)
	}
	if deg, ok := pos[Ascendant]; ok {
		p.Gamma = -0.5 + deg/360.0
	}
	return p
}

// InitialField builds the starting state for a chart: a noise-scale
// Gaussian background plus one peak per body, placed on a ring at 80%
// of the field radius by zodiacal angle. The result is normalized to
// [-1, 1] by the maximum absolute value when nonzero.
func InitialField(pos Positions, n int, noiseScale float64, src *noise.Generator) (*grid.Grid, error) {
	background, err := src.Generate(noise.Gaussian, n, noiseScale, 0)
	if err != nil {
		return nil, err
	}

	center := float64(n / 2)
	radius := center * 0.8
	width := float64(n / 8)
	if width < 1 {
		width = 1
	}
	variance := 2 * width * width

	state := background
	for _, peak := range peakAmplitudes {
		deg, ok := pos[peak.body]
		if !ok {
			continue
		}
		theta := deg * math.Pi / 180.0
		px := clampIndex(int(center)+int(radius*math.Cos(theta)), n)
		py := clampIndex(int(center)+int(radius*math.Sin(theta)), n)

		amplitude := peak.amplitude
		state.Fill(func(i, j int) float64 {
			dx := float64(j - px)
			dy := float64(i - py)
			return state.At(i, j) + amplitude*math.Exp(-(dx*dx+dy*dy)/variance)
		})
	}

	if maxAbs := state.MaxAbs(); maxAbs > 0 {
		state.Scale(1 / maxAbs)
	}
	return state, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
