// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

func TestGenerate_HighVariabilityIsCatharsis(t *testing.T) {
	g := grid.New(16)
	g.Fill(func(i, j int) float64 {
		if j < 8 {
			return 1.0
		}
		return 0.0
	})

	gen := NewGenerator(1, nil)
	events := gen.Generate(g, nil, 3.0, false)

	require.Len(t, events, 1)
	assert.Equal(t, EventCatharsis, events[0].Type)
	assert.InDelta(t, 0.5, events[0].Intensity, 1e-9)
	assert.Equal(t, 3.0, events[0].Timestamp)
}

func TestGenerate_ElevatedMeanIsIntegration(t *testing.T) {
	g := grid.New(16)
	g.Fill(func(i, j int) float64 { return 0.9 })
	g.Set(0, 0, 1.0)

	gen := NewGenerator(1, nil)
	events := gen.Generate(g, nil, 0, false)

	require.Len(t, events, 1)
	assert.Equal(t, EventIntegration, events[0].Type)
	assert.Greater(t, events[0].Intensity, 0.7)
}

func TestGenerate_LargeIncreaseIsEmergence(t *testing.T) {
	prev := grid.New(8)
	cur := spikeGrid(8, 4, 4, 1.0)

	gen := NewGenerator(1, nil)
	events := gen.Generate(cur, prev, 1.0, false)

	require.Len(t, events, 1)
	assert.Equal(t, EventEmergence, events[0].Type)
	assert.InDelta(t, 1.0, events[0].Intensity, 1e-12)
}

func TestGenerate_LargeDecreaseIsDissolution(t *testing.T) {
	prev := grid.New(8)
	prev.Fill(func(i, j int) float64 { return 1.0 })
	cur := prev.Clone()
	cur.Set(2, 2, 0.2)

	gen := NewGenerator(1, nil)
	events := gen.Generate(cur, prev, 1.0, false)

	var sawDissolution bool
	for _, e := range events {
		if e.Type == EventDissolution {
			sawDissolution = true
			assert.InDelta(t, 0.8, e.Intensity, 1e-9)
		}
	}
	assert.True(t, sawDissolution)
}

func TestGenerate_TopologyEventsAreSeedDeterministic(t *testing.T) {
	g := grid.New(16)
	c := 8.0
	g.Fill(func(i, j int) float64 {
		di, dj := float64(i)-c, float64(j)-c
		return math.Exp(-(di*di + dj*dj) / 16.0)
	})

	a := NewGenerator(42, nil).Generate(g, nil, 0, true)
	b := NewGenerator(42, nil).Generate(g, nil, 0, true)

	require.NotEmpty(t, a)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Type, b[i].Type)
		assert.Equal(t, a[i].Description, b[i].Description)
		assert.True(t, a[i].Intensity >= 0 && a[i].Intensity <= 1)
	}
}
