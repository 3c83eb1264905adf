// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package topology

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/field/spectral"
)

// CurvatureEstimator computes a per-cell Ricci curvature estimate for a
// field. Estimators are selected explicitly by the caller; there is no
// silent fallback between them.
type CurvatureEstimator interface {
	Curvature(g *grid.Grid) *grid.Grid
}

// SpectralProxy estimates curvature as the negated order-2 spectral
// Laplacian. Cheap and defined on every cell.
type SpectralProxy struct{}

// Curvature implements CurvatureEstimator.
func (SpectralProxy) Curvature(g *grid.Grid) *grid.Grid {
	out := spectral.FractionalLaplacian(g, 2.0)
	out.Scale(-1)
	return out
}

// GraphForman estimates combinatorial Forman-Ricci curvature on the
// field's level graph: cells above Threshold become nodes, 8-connected
// neighbors become edges, and each edge carries the curvature
// 2 - (deg(u) + deg(v)). Edge curvatures are averaged back onto the
// endpoint cells. Cells below the threshold get zero curvature.
type GraphForman struct {
	// Threshold filters which cells join the graph.
	Threshold float64

	// Sigma smooths the field before graph construction; <= 0 skips
	// smoothing.
	Sigma float64
}

// Curvature implements CurvatureEstimator.
func (e GraphForman) Curvature(g *grid.Grid) *grid.Grid {
	smoothed := Smooth(g, e.Sigma)
	n := smoothed.N()

	lvl := simple.NewUndirectedGraph()
	id := func(i, j int) int64 { return int64(i*n + j) }
	inGraph := func(i, j int) bool {
		return i >= 0 && i < n && j >= 0 && j < n && smoothed.At(i, j) > e.Threshold
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if inGraph(i, j) {
				lvl.AddNode(simple.Node(id(i, j)))
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !inGraph(i, j) {
				continue
			}
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					if di == 0 && dj == 0 {
						continue
					}
					ni, nj := i+di, j+dj
					if inGraph(ni, nj) && id(ni, nj) > id(i, j) {
						lvl.SetEdge(simple.Edge{F: simple.Node(id(i, j)), T: simple.Node(id(ni, nj))})
					}
				}
			}
		}
	}

	degree := func(nodeID int64) int {
		return lvl.From(nodeID).Len()
	}

	out := grid.New(n)
	edges := lvl.Edges()
	for edges.Next() {
		edge := edges.Edge()
		u, v := edge.From().ID(), edge.To().ID()
		curv := float64(2 - (degree(u) + degree(v)))

		ui, uj := int(u)/n, int(u)%n
		vi, vj := int(v)/n, int(v)%n
		if du := degree(u); du > 0 {
			out.Set(ui, uj, out.At(ui, uj)+curv/float64(du))
		}
		if dv := degree(v); dv > 0 {
			out.Set(vi, vj, out.At(vi, vj)+curv/float64(dv))
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !inGraph(i, j) {
				continue
			}
			if d := degree(id(i, j)); d > 0 {
				out.Set(i, j, out.At(i, j)/float64(d))
			}
		}
	}
	return out
}

// JoyField computes joy as negative estimated Ricci curvature.
func JoyField(g *grid.Grid, est CurvatureEstimator) *grid.Grid {
	out := est.Curvature(g)
	out.Scale(-1)
	return out
}
