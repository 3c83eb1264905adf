// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/topology"
)

// ThresholdType classifies the field property whose crossing was
// detected.
type ThresholdType int

const (
	ThresholdValue ThresholdType = iota
	ThresholdGradient
	ThresholdTopology
	ThresholdCurvature
	ThresholdEntropy
	ThresholdComplexity
	ThresholdResonance
	ThresholdCoherence
)

var thresholdTypeNames = map[ThresholdType]string{
	ThresholdValue:      "VALUE",
	ThresholdGradient:   "GRADIENT",
	ThresholdTopology:   "TOPOLOGY",
	ThresholdCurvature:  "CURVATURE",
	ThresholdEntropy:    "ENTROPY",
	ThresholdComplexity: "COMPLEXITY",
	ThresholdResonance:  "RESONANCE",
	ThresholdCoherence:  "COHERENCE",
}

func (t ThresholdType) String() string {
	if name, ok := thresholdTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ThresholdType(%d)", int(t))
}

// eventTypeFor maps a crossed threshold to the narrative event it
// signals.
func (t ThresholdType) eventTypeFor() EventType {
	switch t {
	case ThresholdGradient:
		return EventTransformation
	case ThresholdTopology:
		return EventEmergence
	case ThresholdCurvature:
		return EventInsight
	case ThresholdEntropy:
		return EventDissolution
	case ThresholdComplexity:
		return EventBifurcation
	case ThresholdResonance:
		return EventResonance
	case ThresholdCoherence:
		return EventIntegration
	default:
		return EventThreshold
	}
}

// Thresholds holds the detection levels applied to the normalized
// field.
type Thresholds struct {
	ValueHigh     float64
	ValueLow      float64
	GradientHigh  float64
	EntropyHigh   float64
	CoherenceHigh float64
}

// DefaultThresholds returns the detection levels used when the caller
// has no opinion.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ValueHigh:     0.8,
		ValueLow:      0.2,
		GradientHigh:  0.3,
		EntropyHigh:   0.7,
		CoherenceHigh: 0.8,
	}
}

// ThresholdEvent records one threshold crossing.
type ThresholdEvent struct {
	Timestamp     float64
	Type          ThresholdType
	Threshold     float64
	Value         float64
	Description   string
	Location      *topology.Coord
	CrossedUpward bool
	Metadata      map[string]any
}

func (e ThresholdEvent) String() string {
	direction := "v"
	if e.CrossedUpward {
		direction = "^"
	}
	return fmt.Sprintf("[%.2f] %s %s: %s", e.Timestamp, e.Type, direction, e.Description)
}

// ToNarrativeEvent converts the crossing into a narrative event whose
// intensity reflects how far past the threshold the value landed.
func (e ThresholdEvent) ToNarrativeEvent() NarrativeEvent {
	overshoot := e.Value - e.Threshold
	if !e.CrossedUpward {
		overshoot = e.Threshold - e.Value
	}
	intensity := 1.0
	if e.Threshold != 0 {
		intensity = math.Min(1.0, overshoot/e.Threshold)
	}

	ev := NewEvent(e.Timestamp, e.Type.eventTypeFor(), e.Description, intensity)
	ev.Location = e.Location
	ev.Metadata = map[string]any{
		"threshold_type":  e.Type.String(),
		"threshold_value": e.Threshold,
		"field_value":     e.Value,
		"crossed_upward":  e.CrossedUpward,
	}
	for k, v := range e.Metadata {
		ev.Metadata[k] = v
	}
	return ev
}

// DetectCrossings scans a field state for threshold crossings. The
// field is min-max normalized first so the thresholds act on [0, 1]
// regardless of the field's scale; previous may be nil, in which case
// gradient crossings are skipped.
func DetectCrossings(current, previous *grid.Grid, timestamp float64, th Thresholds) []ThresholdEvent {
	var events []ThresholdEvent

	norm := normalizeUnit(current)

	if loc, v := argMax(norm); v > th.ValueHigh {
		events = append(events, ThresholdEvent{
			Timestamp:     timestamp,
			Type:          ThresholdValue,
			Threshold:     th.ValueHigh,
			Value:         v,
			Description:   fmt.Sprintf("Field value exceeds high threshold (%.2f > %.2f)", v, th.ValueHigh),
			Location:      &loc,
			CrossedUpward: true,
		})
	}
	if loc, v := argMin(norm); v < th.ValueLow {
		events = append(events, ThresholdEvent{
			Timestamp:   timestamp,
			Type:        ThresholdValue,
			Threshold:   th.ValueLow,
			Value:       v,
			Description: fmt.Sprintf("Field value falls below low threshold (%.2f < %.2f)", v, th.ValueLow),
			Location:    &loc,
		})
	}

	if previous != nil && previous.N() == current.N() {
		prevNorm := normalizeUnit(previous)
		diff := norm.Clone()
		diff.AddScaled(-1, prevNorm)
		diff.Map(math.Abs)
		if loc, v := argMax(diff); v > th.GradientHigh {
			events = append(events, ThresholdEvent{
				Timestamp:     timestamp,
				Type:          ThresholdGradient,
				Threshold:     th.GradientHigh,
				Value:         v,
				Description:   fmt.Sprintf("Field gradient exceeds threshold (%.2f > %.2f)", v, th.GradientHigh),
				Location:      &loc,
				CrossedUpward: true,
			})
		}
	}

	if entropy := histogramEntropy(norm); entropy > th.EntropyHigh {
		events = append(events, ThresholdEvent{
			Timestamp:     timestamp,
			Type:          ThresholdEntropy,
			Threshold:     th.EntropyHigh,
			Value:         entropy,
			Description:   fmt.Sprintf("Field entropy exceeds threshold (%.2f > %.2f)", entropy, th.EntropyHigh),
			CrossedUpward: true,
		})
	}

	if std := norm.Std(); std > 0 {
		coherence := math.Min(1.0, norm.Mean()/std/5.0)
		if coherence > th.CoherenceHigh {
			events = append(events, ThresholdEvent{
				Timestamp:     timestamp,
				Type:          ThresholdCoherence,
				Threshold:     th.CoherenceHigh,
				Value:         coherence,
				Description:   fmt.Sprintf("Field coherence exceeds threshold (%.2f > %.2f)", coherence, th.CoherenceHigh),
				CrossedUpward: true,
			})
		}
	}

	return events
}

// DetectPhaseTransitions flags frames whose complexity deviates from
// the trailing window by more than two standard deviations. A
// non-positive window means 5 frames.
func DetectPhaseTransitions(history []*grid.Grid, timestamps []float64, window int) ([]ThresholdEvent, error) {
	if len(history) != len(timestamps) {
		return nil, fmt.Errorf("%w: %d frames, %d timestamps", ErrHistoryMismatch, len(history), len(timestamps))
	}
	if window <= 0 {
		window = 5
	}
	if len(history) < window+1 {
		return nil, nil
	}

	complexity := make([]float64, len(history))
	for i, frame := range history {
		complexity[i] = histogramEntropy(normalizeUnit(frame))
	}

	var events []ThresholdEvent
	for i := window; i < len(complexity); i++ {
		win := complexity[i-window : i]
		mean := stat.Mean(win, nil)
		std := stat.PopStdDev(win, nil)
		cur := complexity[i]
		if std <= 0 || math.Abs(cur-mean) <= 2*std {
			continue
		}

		threshold := mean + 2*std
		if cur < mean {
			threshold = mean - 2*std
		}
		events = append(events, ThresholdEvent{
			Timestamp:     timestamps[i],
			Type:          ThresholdComplexity,
			Threshold:     threshold,
			Value:         cur,
			Description:   "Phase transition detected: significant change in field complexity",
			CrossedUpward: cur > mean,
			Metadata: map[string]any{
				"previous_complexity": mean,
				"complexity_change":   cur - mean,
				"significance":        math.Abs(cur-mean) / std,
			},
		})
	}
	return events, nil
}

// normalizeUnit min-max scales the field to [0, 1]; a flat field maps
// to all zeros.
func normalizeUnit(g *grid.Grid) *grid.Grid {
	lo, hi, _, _ := fieldExtrema(g)
	out := g.Clone()
	if hi <= lo {
		out.Map(func(float64) float64 { return 0 })
		return out
	}
	span := hi - lo
	out.Map(func(v float64) float64 { return (v - lo) / span })
	return out
}

// histogramEntropy estimates field disorder from a 20-bin density
// histogram over [0, 1], normalized so the maximum is 1.
func histogramEntropy(norm *grid.Grid) float64 {
	const bins = 20
	n := norm.N()
	counts := make([]float64, bins)
	total := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := norm.At(i, j)
			b := int(v * bins)
			if b >= bins {
				b = bins - 1
			}
			if b < 0 {
				b = 0
			}
			counts[b]++
			total++
		}
	}

	var densities []float64
	for _, c := range counts {
		if c > 0 {
			densities = append(densities, c*bins/total)
		}
	}
	if len(densities) <= 1 {
		return 0
	}

	entropy := 0.0
	for _, d := range densities {
		entropy -= d * math.Log2(d)
	}
	return entropy / math.Log2(float64(len(densities)))
}

func fieldExtrema(g *grid.Grid) (lo, hi float64, loAt, hiAt topology.Coord) {
	n := g.N()
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := g.At(i, j)
			if v < lo {
				lo, loAt = v, topology.Coord{I: i, J: j}
			}
			if v > hi {
				hi, hiAt = v, topology.Coord{I: i, J: j}
			}
		}
	}
	return lo, hi, loAt, hiAt
}

func argMax(g *grid.Grid) (topology.Coord, float64) {
	_, hi, _, at := fieldExtrema(g)
	return at, hi
}

func argMin(g *grid.Grid) (topology.Coord, float64) {
	lo, _, at, _ := fieldExtrema(g)
	return at, lo
}
