// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package field

import (
	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/field/spectral"
)

// RicciCurvature approximates Ricci curvature of the field as the
// negated order-2 spectral Laplacian. A proper implementation would use
// Ollivier-Ricci curvature on the induced graph.
func RicciCurvature(state *grid.Grid) *grid.Grid {
	out := spectral.FractionalLaplacian(state, 2.0)
	out.Scale(-1)
	return out
}

// Joy computes the joy field K(χ) = -Ric(χ). Negative curvature marks
// expansive regions: integration without collapse.
func Joy(state *grid.Grid) *grid.Grid {
	// -(-lap2) reduces to the raw order-2 operator.
	return spectral.FractionalLaplacian(state, 2.0)
}

// Coherence computes the scalar coherence metric: the mean squared
// magnitude of the order-1 fractional Laplacian.
func Coherence(state *grid.Grid) float64 {
	lap := spectral.FractionalLaplacian(state, 1.0)
	n := state.N()
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := lap.At(i, j)
			sum += v * v
		}
	}
	return sum / float64(n*n)
}
