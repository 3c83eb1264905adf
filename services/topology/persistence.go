// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package topology

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Pair is one persistence interval. Death is +Inf for features that
// never die within the filtration.
type Pair struct {
	Birth, Death float64
}

// PersistenceResult holds diagrams per homology dimension: index 0 is
// connected components, index 1 the approximate cycle diagram.
type PersistenceResult struct {
	// Diagrams[d] lists the persistence pairs of dimension d.
	Diagrams [][]Pair

	// Thresholds is the distance filtration grid used for dimension 1.
	Thresholds []float64
}

// ComputePersistence runs a Vietoris-Rips style filtration over the
// point cloud. Dimension 0 is exact (union-find over edges sorted by
// distance); dimension 1 is the standard coarse approximation counting
// independent cycles |E| - |V| + |components| as the threshold grows.
// Resolution controls the dimension-1 filtration grid; non-positive
// means 100.
func ComputePersistence(cloud []Point, maxDim, resolution int) *PersistenceResult {
	if resolution <= 0 {
		resolution = 100
	}
	if maxDim < 0 {
		maxDim = 0
	}

	result := &PersistenceResult{Diagrams: make([][]Pair, maxDim+1)}
	for d := range result.Diagrams {
		result.Diagrams[d] = []Pair{}
	}
	if len(cloud) < 2 {
		return result
	}

	var edges []ripsEdge
	maxDist := 0.0
	for i := 0; i < len(cloud); i++ {
		for j := i + 1; j < len(cloud); j++ {
			d := pointDistance(cloud[i], cloud[j])
			edges = append(edges, ripsEdge{i, j, d})
			if d > maxDist {
				maxDist = d
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].dist < edges[j].dist })

	// Dimension 0: every point is born at 0; a component dies when the
	// edge that merges it into another appears.
	uf := newUnionFind(len(cloud))
	for _, e := range edges {
		if uf.find(e.a) != uf.find(e.b) {
			uf.union(e.a, e.b)
			result.Diagrams[0] = append(result.Diagrams[0], Pair{Birth: 0, Death: e.dist})
		}
	}

	if maxDim >= 1 {
		result.Thresholds = linspace(0, maxDist, resolution)
		result.Diagrams[1] = cycleDiagram(len(cloud), edges, result.Thresholds)
	}
	return result
}

type ripsEdge struct {
	a, b int
	dist float64
}

// cycleDiagram walks the filtration grid and records a birth with
// infinite death each time the independent cycle count grows.
func cycleDiagram(nPoints int, edges []ripsEdge, thresholds []float64) []Pair {

	g := simple.NewUndirectedGraph()
	for i := 0; i < nPoints; i++ {
		g.AddNode(simple.Node(i))
	}

	diagram := []Pair{}
	next := 0
	for tIdx, threshold := range thresholds {
		for next < len(edges) && edges[next].dist <= threshold {
			e := edges[next]
			g.SetEdge(simple.Edge{F: simple.Node(e.a), T: simple.Node(e.b)})
			next++
		}

		nEdges := g.Edges().Len()
		nComponents := len(topo.ConnectedComponents(g))
		cycles := nEdges - nPoints + nComponents
		if cycles < 0 {
			cycles = 0
		}
		if tIdx > 0 && cycles > len(diagram) {
			for len(diagram) < cycles {
				diagram = append(diagram, Pair{Birth: threshold, Death: math.Inf(1)})
			}
		}
	}
	return diagram
}

// BettiCurves samples the Betti number of each dimension over a common
// threshold grid spanning the diagrams' finite values.
func BettiCurves(diagrams [][]Pair, resolution int) [][]float64 {
	if resolution <= 0 {
		resolution = 100
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, diagram := range diagrams {
		for _, p := range diagram {
			for _, v := range []float64{p.Birth, p.Death} {
				if math.IsInf(v, 0) {
					continue
				}
				if v < minVal {
					minVal = v
				}
				if v > maxVal {
					maxVal = v
				}
			}
		}
	}
	if math.IsInf(minVal, 1) {
		minVal = 0
	}
	if math.IsInf(maxVal, -1) {
		maxVal = 1
	}

	thresholds := linspace(minVal, maxVal, resolution)
	curves := make([][]float64, len(diagrams))
	for dim, diagram := range diagrams {
		curves[dim] = make([]float64, resolution)
		for i, threshold := range thresholds {
			curves[dim][i] = float64(countAlive(diagram, threshold, maxVal))
		}
	}
	return curves
}

// BettiNumbers counts the features of each dimension alive at the given
// threshold.
func BettiNumbers(diagrams [][]Pair, threshold float64) []int {
	maxVal := math.Inf(-1)
	for _, diagram := range diagrams {
		for _, p := range diagram {
			if !math.IsInf(p.Death, 0) && p.Death > maxVal {
				maxVal = p.Death
			}
			if p.Birth > maxVal {
				maxVal = p.Birth
			}
		}
	}
	if math.IsInf(maxVal, -1) {
		maxVal = 1
	}

	betti := make([]int, len(diagrams))
	for dim, diagram := range diagrams {
		betti[dim] = countAlive(diagram, threshold, maxVal)
	}
	return betti
}

// MedianThreshold returns the median of all finite birth and death
// values, the default evaluation point for Betti numbers.
func MedianThreshold(diagrams [][]Pair) float64 {
	var values []float64
	for _, diagram := range diagrams {
		for _, p := range diagram {
			if !math.IsInf(p.Birth, 0) {
				values = append(values, p.Birth)
			}
			if !math.IsInf(p.Death, 0) {
				values = append(values, p.Death)
			}
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

// countAlive counts pairs born at or before the threshold and dying
// after it, with infinite deaths capped just past the finite maximum.
func countAlive(diagram []Pair, threshold, maxVal float64) int {
	count := 0
	for _, p := range diagram {
		death := p.Death
		if math.IsInf(death, 1) {
			death = maxVal * 1.1
		}
		if p.Birth <= threshold && death > threshold {
			count++
		}
	}
	return count
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// unionFind is a disjoint-set forest with path compression.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(x, y int) {
	rx, ry := u.find(x), u.find(y)
	if rx == ry {
		return
	}
	if u.rank[rx] < u.rank[ry] {
		rx, ry = ry, rx
	}
	u.parent[ry] = rx
	if u.rank[rx] == u.rank[ry] {
		u.rank[rx]++
	}
}
