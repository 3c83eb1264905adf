// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package grid provides the square 2D float64 field type used throughout
// the evolution engine.
//
// A Grid is the in-memory representation of the scalar field χ(x,t): an
// n×n array of IEEE-754 doubles. Grids are value containers only — the
// evolution semantics (stepping, clamping policy, history) live in the
// field service. The shape of a Grid is fixed at construction.
//
// # Ownership
//
// A Grid is not safe for concurrent mutation. The evolution loop that
// owns a field's live grid has exclusive write access; everything placed
// in a history must be an independent copy obtained via Clone.
package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Grid is a square n×n field of float64 values.
type Grid struct {
	n    int
	rows [][]float64
}

// New creates an all-zero n×n grid. Panics on a non-positive size,
// which indicates a programming error: sizes derive from already
// validated grids or configuration.
func New(n int) *Grid {
	if n <= 0 {
		panic(fmt.Sprintf("grid: size must be positive, got %d", n))
	}
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
	}
	return &Grid{n: n, rows: rows}
}

// FromRows creates a grid backed by a copy of the given square rows.
func FromRows(rows [][]float64) (*Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("grid rows must be non-empty")
	}
	g := New(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("grid must be square: row %d has %d cells, want %d", i, len(row), n)
		}
		copy(g.rows[i], row)
	}
	return g, nil
}

// N returns the side length of the grid.
func (g *Grid) N() int { return g.n }

// At returns the value at row i, column j.
func (g *Grid) At(i, j int) float64 { return g.rows[i][j] }

// Set writes the value at row i, column j.
func (g *Grid) Set(i, j int, v float64) { g.rows[i][j] = v }

// Rows exposes the backing rows for hot loops. Callers must not resize
// the slices or retain them past the grid's exclusive-ownership window.
func (g *Grid) Rows() [][]float64 { return g.rows }

// Clone returns an independent deep copy.
func (g *Grid) Clone() *Grid {
	out := New(g.n)
	for i := range g.rows {
		copy(out.rows[i], g.rows[i])
	}
	return out
}

// Fill sets every cell to f(i, j).
func (g *Grid) Fill(f func(i, j int) float64) {
	for i := 0; i < g.n; i++ {
		for j := 0; j < g.n; j++ {
			g.rows[i][j] = f(i, j)
		}
	}
}

// Add accumulates other into g elementwise. Panics on shape mismatch,
// which indicates a programming error: shapes are fixed at construction.
func (g *Grid) Add(other *Grid) {
	g.mustMatch(other)
	for i := range g.rows {
		floats.Add(g.rows[i], other.rows[i])
	}
}

// AddScaled accumulates s*other into g elementwise.
func (g *Grid) AddScaled(s float64, other *Grid) {
	g.mustMatch(other)
	for i := range g.rows {
		floats.AddScaled(g.rows[i], s, other.rows[i])
	}
}

// Scale multiplies every cell by s.
func (g *Grid) Scale(s float64) {
	for i := range g.rows {
		floats.Scale(s, g.rows[i])
	}
}

// Clamp bounds every cell to [lo, hi].
func (g *Grid) Clamp(lo, hi float64) {
	for i := range g.rows {
		for j, v := range g.rows[i] {
			if v < lo {
				g.rows[i][j] = lo
			} else if v > hi {
				g.rows[i][j] = hi
			}
		}
	}
}

// Map replaces every cell v with f(v).
func (g *Grid) Map(f func(v float64) float64) {
	for i := range g.rows {
		for j, v := range g.rows[i] {
			g.rows[i][j] = f(v)
		}
	}
}

// AllFinite reports whether every cell is neither NaN nor Inf.
func (g *Grid) AllFinite() bool {
	for i := range g.rows {
		for _, v := range g.rows[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Flatten returns all cells in row-major order as a fresh slice.
func (g *Grid) Flatten() []float64 {
	out := make([]float64, 0, g.n*g.n)
	for i := range g.rows {
		out = append(out, g.rows[i]...)
	}
	return out
}

// Mean returns the arithmetic mean of all cells.
func (g *Grid) Mean() float64 {
	return stat.Mean(g.Flatten(), nil)
}

// Std returns the population standard deviation of all cells. Population
// (divide-by-N) moments match the normalization conventions of the
// spectral noise synthesis and the correlation diagnostics.
func (g *Grid) Std() float64 {
	flat := g.Flatten()
	m := stat.Mean(flat, nil)
	var ss float64
	for _, v := range flat {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(flat)))
}

// MaxAbs returns the largest absolute cell value.
func (g *Grid) MaxAbs() float64 {
	var m float64
	for i := range g.rows {
		for _, v := range g.rows[i] {
			if a := math.Abs(v); a > m {
				m = a
			}
		}
	}
	return m
}

// Gradient returns the discrete gradient (d/drow, d/dcolumn) using
// central differences in the interior and one-sided differences at the
// edges, with unit spacing.
func (g *Grid) Gradient() (gy, gx *Grid) {
	n := g.n
	gy = New(n)
	gx = New(n)
	if n == 1 {
		return gy, gx
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch i {
			case 0:
				gy.rows[i][j] = g.rows[1][j] - g.rows[0][j]
			case n - 1:
				gy.rows[i][j] = g.rows[n-1][j] - g.rows[n-2][j]
			default:
				gy.rows[i][j] = (g.rows[i+1][j] - g.rows[i-1][j]) / 2
			}
			switch j {
			case 0:
				gx.rows[i][j] = g.rows[i][1] - g.rows[i][0]
			case n - 1:
				gx.rows[i][j] = g.rows[i][n-1] - g.rows[i][n-2]
			default:
				gx.rows[i][j] = (g.rows[i][j+1] - g.rows[i][j-1]) / 2
			}
		}
	}
	return gy, gx
}

func (g *Grid) mustMatch(other *Grid) {
	if other.n != g.n {
		panic(fmt.Sprintf("grid shape mismatch: %d vs %d", g.n, other.n))
	}
}
