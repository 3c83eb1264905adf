// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package field implements the fKPZχ field model: the evolving state,
// the Euler steppers for the standard and enhanced equations, the
// derived joy and coherence metrics, and the chart evolvers that drive
// multi-step runs.
package field

import (
	"fmt"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

// Snapshot is one recorded state of a Field.
type Snapshot struct {
	Time  float64
	State *grid.Grid
}

// Field is an evolving 2D scalar field χ with its time coordinate and
// an optional bounded history of past states. Field is not safe for
// concurrent use.
type Field struct {
	state        *grid.Grid
	time         float64
	history      []Snapshot
	historyLimit int
}

// Option configures a Field.
type Option func(*Field)

// WithHistoryLimit bounds the history to the most recent n snapshots.
// Zero or negative means unbounded.
func WithHistoryLimit(n int) Option {
	return func(f *Field) { f.historyLimit = n }
}

// NewField creates a Field from an initial state. The initial state is
// cloned into the first history snapshot at time zero. Non-finite
// initial values are rejected.
func NewField(initial *grid.Grid, opts ...Option) (*Field, error) {
	if !initial.AllFinite() {
		return nil, fmt.Errorf("initial state: %w", ErrNonFinite)
	}
	f := &Field{
		state: initial.Clone(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.record()
	return f, nil
}

// State returns the current field state. Callers must not modify the
// returned grid; use Update to advance the field.
func (f *Field) State() *grid.Grid { return f.state }

// Time returns the field's current time coordinate.
func (f *Field) Time() float64 { return f.time }

// N returns the grid size.
func (f *Field) N() int { return f.state.N() }

// Update replaces the field state with next and advances time by dt.
// The field is unchanged on error: a shape mismatch or any NaN or Inf
// cell rejects the update.
func (f *Field) Update(next *grid.Grid, dt float64) error {
	if next.N() != f.state.N() {
		return fmt.Errorf("%w: field is %d, update is %d",
			ErrShapeMismatch, f.state.N(), next.N())
	}
	if !next.AllFinite() {
		return fmt.Errorf("update at t=%g: %w", f.time+dt, ErrNonFinite)
	}
	f.state = next
	f.time += dt
	f.record()
	return nil
}

// History returns the recorded snapshots, oldest first. The slice is
// shared; callers must not modify it.
func (f *Field) History() []Snapshot { return f.history }

// record appends a snapshot. When the limit is exceeded the oldest
// interior snapshots are evicted; history[0] always stays the
// construction-time state.
func (f *Field) record() {
	f.history = append(f.history, Snapshot{Time: f.time, State: f.state.Clone()})
	if f.historyLimit > 0 && len(f.history) > f.historyLimit {
		overflow := len(f.history) - f.historyLimit
		kept := make([]Snapshot, 0, f.historyLimit)
		kept = append(kept, f.history[0])
		kept = append(kept, f.history[1+overflow:]...)
		f.history = kept
	}
}
