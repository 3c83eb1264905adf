// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package topology analyzes the shape of qualia fields: persistent
// homology (connected components and an approximate cycle count), graph
// and spectral curvature estimates, critical points, and archetypal
// motif classification.
package topology

import (
	"math"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

// Smooth applies a separable Gaussian blur with the given sigma and
// reflected boundaries. Sigma <= 0 returns a clone of the input.
func Smooth(g *grid.Grid, sigma float64) *grid.Grid {
	if sigma <= 0 {
		return g.Clone()
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	n := g.N()

	// Horizontal pass then vertical pass.
	tmp := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * g.At(i, reflect(j+k, n))
			}
			tmp.Set(i, j, sum)
		}
	}
	out := grid.New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * tmp.At(reflect(i+k, n), j)
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// gaussianKernel builds a normalized 1D kernel truncated at 4 sigma.
func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for k := -radius; k <= radius; k++ {
		v := math.Exp(-float64(k*k) / (2 * sigma * sigma))
		kernel[k+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect mirrors an out-of-range index back into [0, n).
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
