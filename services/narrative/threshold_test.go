// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/topology"
)

// spikeGrid is zero everywhere except one hot cell.
func spikeGrid(n, i, j int, v float64) *grid.Grid {
	g := grid.New(n)
	g.Set(i, j, v)
	return g
}

func TestDetectCrossings_SpikeField(t *testing.T) {
	g := grid.New(16)
	g.Fill(func(i, j int) float64 { return 1.0 })
	g.Set(3, 7, 0.0)

	events := DetectCrossings(g, nil, 2.5, DefaultThresholds())

	var valueUp, valueDown, coherence, entropy bool
	for _, e := range events {
		assert.Equal(t, 2.5, e.Timestamp)
		switch {
		case e.Type == ThresholdValue && e.CrossedUpward:
			valueUp = true
		case e.Type == ThresholdValue:
			valueDown = true
		case e.Type == ThresholdCoherence:
			coherence = true
		case e.Type == ThresholdEntropy:
			entropy = true
		}
	}

	// Normalization pins the extremes to 0 and 1, so both value
	// thresholds trip; the near-constant bulk also trips coherence.
	assert.True(t, valueUp)
	assert.True(t, valueDown)
	assert.True(t, coherence)
	assert.False(t, entropy)
}

func TestDetectCrossings_FlatField(t *testing.T) {
	g := grid.New(8)
	g.Fill(func(i, j int) float64 { return 3.0 })

	events := DetectCrossings(g, nil, 0, DefaultThresholds())

	// A flat field normalizes to zero, which only trips the low-value
	// threshold.
	require.Len(t, events, 1)
	assert.Equal(t, ThresholdValue, events[0].Type)
	assert.False(t, events[0].CrossedUpward)
}

func TestDetectCrossings_Gradient(t *testing.T) {
	prev := grid.New(8)
	cur := spikeGrid(8, 4, 4, 20.0)

	events := DetectCrossings(cur, prev, 1.0, DefaultThresholds())

	var grad *ThresholdEvent
	for i := range events {
		if events[i].Type == ThresholdGradient {
			grad = &events[i]
		}
	}
	require.NotNil(t, grad)
	assert.True(t, grad.CrossedUpward)
	require.NotNil(t, grad.Location)
	assert.Equal(t, topology.Coord{I: 4, J: 4}, *grad.Location)
}

func TestThresholdEvent_ToNarrativeEvent(t *testing.T) {
	ev := ThresholdEvent{
		Timestamp:     1.5,
		Type:          ThresholdCoherence,
		Threshold:     0.8,
		Value:         1.0,
		Description:   "coherence up",
		CrossedUpward: true,
		Metadata:      map[string]any{"extra": 1},
	}

	ne := ev.ToNarrativeEvent()
	assert.Equal(t, EventIntegration, ne.Type)
	assert.InDelta(t, 0.25, ne.Intensity, 1e-12)
	assert.Equal(t, "COHERENCE", ne.Metadata["threshold_type"])
	assert.Equal(t, 1, ne.Metadata["extra"])
	assert.Equal(t, true, ne.Metadata["crossed_upward"])
}

func TestHistogramEntropy(t *testing.T) {
	flat := grid.New(8)
	assert.Equal(t, 0.0, histogramEntropy(normalizeUnit(flat)))

	half := grid.New(16)
	half.Fill(func(i, j int) float64 {
		if j < 8 {
			return 1.0
		}
		return 0.0
	})
	// Two equally filled density-20 bins.
	assert.InDelta(t, -66.4386, histogramEntropy(normalizeUnit(half)), 1e-3)
}

func TestDetectPhaseTransitions(t *testing.T) {
	halfA := grid.New(16)
	halfA.Fill(func(i, j int) float64 {
		if i*16+j < 128 {
			return 1.0
		}
		return 0.0
	})
	halfB := grid.New(16)
	halfB.Fill(func(i, j int) float64 {
		if i*16+j < 127 {
			return 1.0
		}
		return 0.0
	})
	flat := grid.New(16)

	history := []*grid.Grid{halfA, halfB, flat}
	times := []float64{0, 1, 2}

	events, err := DetectPhaseTransitions(history, times, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ThresholdComplexity, events[0].Type)
	assert.Equal(t, 2.0, events[0].Timestamp)
	assert.True(t, events[0].CrossedUpward)
}

func TestDetectPhaseTransitions_Errors(t *testing.T) {
	_, err := DetectPhaseTransitions([]*grid.Grid{grid.New(4)}, nil, 5)
	assert.ErrorIs(t, err, ErrHistoryMismatch)

	events, err := DetectPhaseTransitions(nil, nil, 5)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestDetectPhaseTransitions_StableHistory(t *testing.T) {
	var history []*grid.Grid
	var times []float64
	for i := 0; i < 8; i++ {
		history = append(history, spikeGrid(8, 4, 4, 1.0))
		times = append(times, float64(i))
	}

	events, err := DetectPhaseTransitions(history, times, 3)
	require.NoError(t, err)
	assert.Empty(t, events)
}
