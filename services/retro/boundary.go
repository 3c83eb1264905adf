// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package retro implements retrocausal field evolution: future boundary
// conditions and the bidirectional forward/backward refinement loop of
// the fKPZχ-R equation.
package retro

import (
	"fmt"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

// BoundaryKind selects how a future boundary condition imprints itself
// on the evolving state.
type BoundaryKind int

const (
	// Fixed interpolates linearly toward the boundary state.
	Fixed BoundaryKind = iota

	// Attractor pulls toward the boundary proportionally to the
	// remaining difference.
	Attractor

	// PatternPreserving imposes the boundary's spatial pattern while
	// keeping the current state's mean and variance.
	PatternPreserving

	// TopologyPreserving emphasizes the boundary's local extrema when
	// blending, preserving its topological features.
	TopologyPreserving
)

// String returns the kind's name.
func (k BoundaryKind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Attractor:
		return "attractor"
	case PatternPreserving:
		return "pattern"
	case TopologyPreserving:
		return "topology"
	default:
		return fmt.Sprintf("BoundaryKind(%d)", int(k))
	}
}

// BoundaryCondition is a future field state that influences backward
// evolution. Its pull grows as the current time approaches the boundary
// time.
type BoundaryCondition struct {
	time     float64
	state    *grid.Grid
	kind     BoundaryKind
	strength float64
	mask     *grid.Grid
}

// NewBoundaryCondition creates a boundary at the given time. Strength
// is clamped to [0, 1]. A nil mask defaults to all ones; a mask of a
// different size than the state is rejected.
func NewBoundaryCondition(time float64, state *grid.Grid, kind BoundaryKind, strength float64, mask *grid.Grid) (*BoundaryCondition, error) {
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}
	if mask == nil {
		mask = grid.New(state.N())
		mask.Fill(func(i, j int) float64 { return 1 })
	} else if mask.N() != state.N() {
		return nil, fmt.Errorf("%w: mask is %d, state is %d",
			ErrMaskShape, mask.N(), state.N())
	}
	return &BoundaryCondition{
		time:     time,
		state:    state.Clone(),
		kind:     kind,
		strength: strength,
		mask:     mask.Clone(),
	}, nil
}

// Time returns the boundary's time coordinate.
func (b *BoundaryCondition) Time() float64 { return b.time }

// Kind returns the boundary kind.
func (b *BoundaryCondition) Kind() BoundaryKind { return b.kind }

// Strength returns the clamped boundary strength.
func (b *BoundaryCondition) Strength() float64 { return b.strength }

// State returns the boundary state. Callers must not modify it.
func (b *BoundaryCondition) State() *grid.Grid { return b.state }

// Apply returns the current state pulled toward the boundary, by an
// effective strength that decays with temporal distance:
//
//	s = strength · clamp(1 − |T−t| / max(1, T), 0, 1)
//
// Apply never modifies its input. Current must match the boundary's
// grid size. An unrecognized kind behaves as Fixed.
func (b *BoundaryCondition) Apply(current *grid.Grid, t float64) *grid.Grid {
	timeFactor := 1.0 - abs(b.time-t)/max1(b.time)
	if timeFactor < 0 {
		timeFactor = 0
	} else if timeFactor > 1 {
		timeFactor = 1
	}
	s := b.strength * timeFactor

	n := current.N()
	out := grid.New(n)

	switch b.kind {
	case Attractor:
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				cur := current.At(i, j)
				pull := s * (b.state.At(i, j) - cur) * b.mask.At(i, j)
				out.Set(i, j, cur+pull)
			}
		}

	case PatternPreserving:
		curMean := current.Mean()
		curStd := current.Std()
		bMean := b.state.Mean()
		bStd := b.state.Std() + 1e-10
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				norm := (b.state.At(i, j) - bMean) / bStd
				pattern := curMean + norm*curStd
				out.Set(i, j, (1-s)*current.At(i, j)+s*pattern*b.mask.At(i, j))
			}
		}

	case TopologyPreserving:
		topoMask := b.featureMask()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out.Set(i, j, (1-s)*current.At(i, j)+s*b.state.At(i, j)*topoMask.At(i, j))
			}
		}

	default: // Fixed and anything unrecognized
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out.Set(i, j, (1-s)*current.At(i, j)+s*b.state.At(i, j)*b.mask.At(i, j))
			}
		}
	}
	return out
}

// featureMask builds the topology-preserving blend mask: cells that are
// local extrema of the boundary state within their 3×3 neighborhood get
// triple weight, and the mask is normalized so its mean stays one.
func (b *BoundaryCondition) featureMask() *grid.Grid {
	n := b.state.N()
	mask := grid.New(n)
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			w := b.mask.At(i, j)
			if b.isLocalExtremum(i, j) {
				w *= 3.0
			}
			mask.Set(i, j, w)
			sum += w
		}
	}
	mean := sum/float64(n*n) + 1e-10
	mask.Scale(1.0 / mean)
	return mask
}

func (b *BoundaryCondition) isLocalExtremum(i, j int) bool {
	n := b.state.N()
	v := b.state.At(i, j)
	isMax, isMin := true, true
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			ni, nj := i+di, j+dj
			if ni < 0 || ni >= n || nj < 0 || nj >= n {
				continue
			}
			w := b.state.At(ni, nj)
			if w > v {
				isMax = false
			}
			if w < v {
				isMin = false
			}
		}
	}
	return isMax || isMin
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func max1(x float64) float64 {
	if x < 1 {
		return 1
	}
	return x
}
