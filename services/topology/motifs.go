// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package topology

import (
	"fmt"
	"math"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

// JoyCharacter summarizes the sign of the joy field relative to its
// spread.
type JoyCharacter string

const (
	JoyPositive JoyCharacter = "positive"
	JoyNegative JoyCharacter = "negative"
	JoyBalanced JoyCharacter = "balanced"
)

// Stability describes how persistent a motif tends to be over time.
type Stability string

const (
	StabilityHigh   Stability = "high"
	StabilityMedium Stability = "medium"
	StabilityLow    Stability = "low"
)

// MotifPattern is an archetypal topological signature: expected Betti
// numbers plus the joy character that accompanies them.
type MotifPattern struct {
	Name        string
	Description string
	Betti       [3]int
	Joy         JoyCharacter
	Stability   Stability
}

// motifPatterns is the archetype catalog matched against detected
// field topology.
var motifPatterns = []MotifPattern{
	{
		Name:        "RECURSIVE_LOOP",
		Description: "Self-referential thought pattern",
		Betti:       [3]int{1, 1, 0},
		Joy:         JoyNegative,
		Stability:   StabilityHigh,
	},
	{
		Name:        "EGO_CONDENSATION",
		Description: "Crystallization of identity structures",
		Betti:       [3]int{1, 0, 0},
		Joy:         JoyPositive,
		Stability:   StabilityHigh,
	},
	{
		Name:        "DISSOLUTION",
		Description: "Boundary dissolution, ego death",
		Betti:       [3]int{3, 2, 0},
		Joy:         JoyNegative,
		Stability:   StabilityLow,
	},
	{
		Name:        "INTEGRATION",
		Description: "Integration of disparate elements",
		Betti:       [3]int{1, 0, 1},
		Joy:         JoyBalanced,
		Stability:   StabilityMedium,
	},
	{
		Name:        "CATHARSIS",
		Description: "Emotional release pattern",
		Betti:       [3]int{1, 1, 1},
		Joy:         JoyNegative,
		Stability:   StabilityLow,
	},
}

// Coord is a cell location, row then column.
type Coord struct {
	I, J int
}

// CriticalPoints holds the detected extrema and approximate saddle
// points of a field.
type CriticalPoints struct {
	Minima  []Coord
	Maxima  []Coord
	Saddles []Coord
}

// Motif is a matched archetypal pattern with its match confidence.
type Motif struct {
	Name        string
	Description string
	Confidence  float64
	Stability   Stability
}

// MotifReport bundles everything DetectMotifs derives from a field.
type MotifReport struct {
	Betti        []int
	Critical     CriticalPoints
	Basins       [][]int
	NumBasins    int
	JoyCharacter JoyCharacter
	Motifs       []Motif
	Persistence  *PersistenceResult
}

// AttractorClass is the dynamical-systems reading of a field's
// topology.
type AttractorClass struct {
	Type        string
	Confidence  float64
	Description string
	NumMinima   int
	NumMaxima   int
	NumSaddles  int
	NumBasins   int
	Betti       []int
}

const saddleLaplacianTol = 0.01

// DetectCriticalPoints locates local minima, maxima, and approximate
// saddle points. The field is smoothed with sigma before detection;
// sigma <= 0 skips smoothing. Cells at the global minimum are never
// maxima and cells at the global maximum are never minima, so a flat
// field reports no critical points.
func DetectCriticalPoints(g *grid.Grid, sigma float64) CriticalPoints {
	smoothed := Smooth(g, sigma)
	n := smoothed.N()

	globalMin, globalMax := matrixExtrema(smoothed)

	var cp CriticalPoints
	isMax := make([][]bool, n)
	isMin := make([][]bool, n)
	for i := range isMax {
		isMax[i] = make([]bool, n)
		isMin[i] = make([]bool, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := smoothed.At(i, j)
			if neighborhoodMax(smoothed, i, j) == v && v != globalMin {
				isMax[i][j] = true
				cp.Maxima = append(cp.Maxima, Coord{i, j})
			}
			if neighborhoodMin(smoothed, i, j) == v && v != globalMax {
				isMin[i][j] = true
				cp.Minima = append(cp.Minima, Coord{i, j})
			}
		}
	}

	// Saddle candidates sit where the discrete Laplacian nearly
	// vanishes and the surrounding ring alternates above and below
	// the center.
	for i := 1; i < n-1; i++ {
		for j := 1; j < n-1; j++ {
			if isMax[i][j] || isMin[i][j] {
				continue
			}
			v := smoothed.At(i, j)
			lap := smoothed.At(i-1, j) + smoothed.At(i+1, j) +
				smoothed.At(i, j-1) + smoothed.At(i, j+1) - 4*v
			if math.Abs(lap) >= saddleLaplacianTol {
				continue
			}
			lo := neighborhoodMin(smoothed, i, j)
			hi := neighborhoodMax(smoothed, i, j)
			if !(lo < v && v < hi) {
				continue
			}
			corners := (smoothed.At(i-1, j-1) + smoothed.At(i-1, j+1) +
				smoothed.At(i+1, j-1) + smoothed.At(i+1, j+1)) / 4
			edges := (smoothed.At(i-1, j) + smoothed.At(i+1, j) +
				smoothed.At(i, j-1) + smoothed.At(i, j+1)) / 4
			if (corners > v && edges < v) || (corners < v && edges > v) {
				cp.Saddles = append(cp.Saddles, Coord{i, j})
			}
		}
	}
	return cp
}

// DetectBasins labels each cell with the basin of attraction it flows
// into under steepest descent. Basin labels count from 1 in the order
// the minima appear; cells whose descent terminates away from a
// detected minimum get label 0.
func DetectBasins(g *grid.Grid, cp CriticalPoints, sigma float64) [][]int {
	smoothed := Smooth(g, sigma)
	n := smoothed.N()

	labels := make([][]int, n)
	for i := range labels {
		labels[i] = make([]int, n)
		for j := range labels[i] {
			labels[i][j] = -1
		}
	}
	for idx, c := range cp.Minima {
		labels[c.I][c.J] = idx + 1
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if labels[i][j] >= 0 {
				continue
			}
			// Follow the steepest downhill neighbor until a
			// labeled cell or a dead end.
			path := [][2]int{}
			ci, cj := i, j
			for labels[ci][cj] < 0 {
				path = append(path, [2]int{ci, cj})
				ni, nj, ok := steepestNeighbor(smoothed, ci, cj)
				if !ok {
					labels[ci][cj] = 0
					break
				}
				ci, cj = ni, nj
			}
			lbl := labels[ci][cj]
			for _, p := range path {
				labels[p[0]][p[1]] = lbl
			}
		}
	}
	return labels
}

// DetectMotifs analyzes the field's persistent homology, critical
// points, basins, and joy character and matches the result against
// the archetype catalog. A nil estimator defaults to SpectralProxy.
// A NaN threshold selects the median persistence value.
func DetectMotifs(g *grid.Grid, threshold, sigma float64, est CurvatureEstimator) MotifReport {
	if est == nil {
		est = SpectralProxy{}
	}
	smoothed := Smooth(g, sigma)

	cloudThreshold := threshold
	if math.IsNaN(cloudThreshold) {
		cloudThreshold = 0
	}
	cloud := PreparePointCloud(smoothed, CloudOptions{Threshold: cloudThreshold})
	pers := ComputePersistence(cloud, 2, 0)

	bettiAt := threshold
	if math.IsNaN(bettiAt) {
		bettiAt = MedianThreshold(pers.Diagrams)
	}
	betti := BettiNumbers(pers.Diagrams, bettiAt)

	cp := DetectCriticalPoints(smoothed, 0)
	basins := DetectBasins(smoothed, cp, 0)

	joy := JoyField(smoothed, est)
	report := MotifReport{
		Betti:        betti,
		Critical:     cp,
		Basins:       basins,
		NumBasins:    countBasins(basins),
		JoyCharacter: joyCharacter(joy),
		Persistence:  pers,
	}

	for _, pattern := range motifPatterns {
		if bettiMatches(betti, pattern.Betti) && pattern.Joy == report.JoyCharacter {
			report.Motifs = append(report.Motifs, Motif{
				Name:        pattern.Name,
				Description: pattern.Description,
				Confidence:  0.7,
				Stability:   pattern.Stability,
			})
		}
	}
	if len(report.Motifs) == 0 {
		best := bestApproximateMatch(betti, report.JoyCharacter)
		report.Motifs = append(report.Motifs, Motif{
			Name:        best.Name,
			Description: best.Description,
			Confidence:  0.3,
			Stability:   best.Stability,
		})
	}
	return report
}

// ClassifyAttractor reads the field's critical points, basins, and
// Betti numbers as a dynamical-systems attractor type.
func ClassifyAttractor(g *grid.Grid, sigma float64) AttractorClass {
	smoothed := Smooth(g, sigma)

	cp := DetectCriticalPoints(smoothed, 0)
	basins := DetectBasins(smoothed, cp, 0)
	nBasins := countBasins(basins)

	cloud := PreparePointCloud(smoothed, CloudOptions{})
	pers := ComputePersistence(cloud, 2, 0)
	betti := BettiNumbers(pers.Diagrams, MedianThreshold(pers.Diagrams))

	ac := AttractorClass{
		Type:       "unknown",
		Confidence: 0.5,
		NumMinima:  len(cp.Minima),
		NumMaxima:  len(cp.Maxima),
		NumSaddles: len(cp.Saddles),
		NumBasins:  nBasins,
		Betti:      betti,
	}

	switch {
	case ac.NumMinima == 1 && nBasins == 1 && betti[1] == 0:
		ac.Type = "fixed_point"
		ac.Confidence = 0.9
		ac.Description = "Single fixed point attractor (stable equilibrium)"
	case ac.NumMinima > 1 && nBasins > 1:
		ac.Type = "multiple_fixed_points"
		ac.Confidence = 0.8
		ac.Description = fmt.Sprintf("Multiple fixed point attractors (%d basins)", nBasins)
	case betti[1] == 1 && ac.NumMinima == 0:
		ac.Type = "limit_cycle"
		ac.Confidence = 0.7
		ac.Description = "Limit cycle attractor (periodic behavior)"
	case betti[1] > 1:
		ac.Type = "complex_periodic"
		ac.Confidence = 0.6
		ac.Description = fmt.Sprintf("Complex periodic attractor (%d cycles)", betti[1])
	case betti[1] > 0 && betti[2] > 0:
		ac.Type = "strange_attractor"
		ac.Confidence = 0.7
		ac.Description = "Strange attractor (chaotic behavior)"
	}
	return ac
}

func joyCharacter(joy *grid.Grid) JoyCharacter {
	mean := joy.Mean()
	std := joy.Std()
	switch {
	case mean > std:
		return JoyPositive
	case mean < -std:
		return JoyNegative
	default:
		return JoyBalanced
	}
}

// bettiMatches compares observed Betti numbers to a pattern with the
// catalog's flexibility: a pattern expecting one component accepts any
// positive count, and for loops and voids any positive observation
// satisfies a positive expectation.
func bettiMatches(actual []int, pattern [3]int) bool {
	for i := 0; i < 3 && i < len(actual); i++ {
		a, p := actual[i], pattern[i]
		if a == p {
			continue
		}
		if i == 0 {
			if p == 1 && a > 0 {
				continue
			}
			return false
		}
		if p > 0 && a > 0 {
			continue
		}
		return false
	}
	return true
}

func bestApproximateMatch(betti []int, joy JoyCharacter) MotifPattern {
	best := motifPatterns[0]
	bestScore := -1.0
	for _, pattern := range motifPatterns {
		score := 0.0
		for i := 0; i < 3 && i < len(betti); i++ {
			a, p := betti[i], pattern.Betti[i]
			switch {
			case a == p:
				score += 1
			case (p > 0 && a > 0) || (p == 0 && a == 0):
				score += 0.5
			}
		}
		if pattern.Joy == joy {
			score += 1
		}
		if score > bestScore {
			bestScore = score
			best = pattern
		}
	}
	return best
}

func countBasins(labels [][]int) int {
	seen := map[int]struct{}{}
	for _, row := range labels {
		for _, l := range row {
			if l > 0 {
				seen[l] = struct{}{}
			}
		}
	}
	return len(seen)
}

// neighborhoodMax returns the max over the 3x3 window around (i, j),
// clipped at the edges.
func neighborhoodMax(g *grid.Grid, i, j int) float64 {
	n := g.N()
	m := math.Inf(-1)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			ni, nj := i+di, j+dj
			if ni < 0 || ni >= n || nj < 0 || nj >= n {
				continue
			}
			if v := g.At(ni, nj); v > m {
				m = v
			}
		}
	}
	return m
}

func neighborhoodMin(g *grid.Grid, i, j int) float64 {
	n := g.N()
	m := math.Inf(1)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			ni, nj := i+di, j+dj
			if ni < 0 || ni >= n || nj < 0 || nj >= n {
				continue
			}
			if v := g.At(ni, nj); v < m {
				m = v
			}
		}
	}
	return m
}

// steepestNeighbor returns the 8-neighbor with the lowest value
// strictly below the center, or ok=false at a local minimum.
func steepestNeighbor(g *grid.Grid, i, j int) (int, int, bool) {
	n := g.N()
	cur := g.At(i, j)
	bi, bj := -1, -1
	best := cur
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			if di == 0 && dj == 0 {
				continue
			}
			ni, nj := i+di, j+dj
			if ni < 0 || ni >= n || nj < 0 || nj >= n {
				continue
			}
			if v := g.At(ni, nj); v < best {
				best = v
				bi, bj = ni, nj
			}
		}
	}
	if bi < 0 {
		return 0, 0, false
	}
	return bi, bj, true
}

func matrixExtrema(g *grid.Grid) (float64, float64) {
	n := g.N()
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := g.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
