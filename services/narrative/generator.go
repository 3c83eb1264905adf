// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import (
	"math"
	"math/rand/v2"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
	"github.com/prometheusWaluigi/ASTRA/services/topology"
)

// Archetype describes one archetypal pattern and the narrative
// templates used to describe it.
type Archetype struct {
	Name               string
	Description        string
	PsychologicalState string
	Templates          []string
}

var archetypes = map[string]Archetype{
	"RECURSIVE_LOOP": {
		Name:               "Recursive Loop",
		Description:        "A self-referential thought pattern creating a feedback loop",
		PsychologicalState: "Introspection, self-reflection, recursive thinking",
		Templates: []string{
			"A recursive pattern emerges, creating a self-referential loop in consciousness",
			"Thoughts begin to circle back on themselves, creating a recursive structure",
			"A self-reflective loop forms, allowing consciousness to observe itself",
			"The mind turns inward, creating a recursive pattern of self-observation",
		},
	},
	"EGO_CONDENSATION": {
		Name:               "Ego Condensation",
		Description:        "Crystallization of identity structures",
		PsychologicalState: "Identity formation, ego strengthening, boundary creation",
		Templates: []string{
			"The ego structure crystallizes, creating a stronger sense of self",
			"Identity boundaries form and solidify, creating a distinct sense of 'I'",
			"A condensation of self-concept occurs, strengthening ego structures",
			"The field condenses around a central identity, reinforcing ego boundaries",
		},
	},
	"DISSOLUTION": {
		Name:               "Dissolution",
		Description:        "Boundary dissolution, ego death",
		PsychologicalState: "Transcendence, mystical experience, ego death",
		Templates: []string{
			"Boundaries begin to dissolve, creating a sense of unity with the field",
			"Ego structures temporarily dissolve, allowing for transcendent experience",
			"A dissolution of identity boundaries occurs, opening to larger consciousness",
			"The field enters a dissolution phase, where rigid structures break down",
		},
	},
	"INTEGRATION": {
		Name:               "Integration",
		Description:        "Integration of disparate elements",
		PsychologicalState: "Wholeness, synthesis, resolution of conflicts",
		Templates: []string{
			"Previously separate elements integrate into a coherent whole",
			"A synthesis occurs, bringing together disparate aspects of consciousness",
			"An integration process begins, harmonizing conflicting elements",
			"The field reorganizes toward greater coherence and integration",
		},
	},
	"CATHARSIS": {
		Name:               "Catharsis",
		Description:        "Emotional release pattern",
		PsychologicalState: "Release, emotional clearing, breakthrough",
		Templates: []string{
			"An emotional release occurs, clearing blocked energy in the field",
			"A cathartic pattern emerges, allowing for emotional processing",
			"Tension in the field releases in a cathartic breakthrough",
			"A sudden release of built-up potential creates a cathartic shift",
		},
	},
}

// Generator turns field states into narrative events. Template choice
// is driven by a seeded source so runs are reproducible.
type Generator struct {
	rng *rand.Rand
	est topology.CurvatureEstimator
}

// NewGenerator builds a generator. A nil estimator defaults to the
// spectral curvature proxy.
func NewGenerator(seed uint64, est topology.CurvatureEstimator) *Generator {
	if est == nil {
		est = topology.SpectralProxy{}
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x6a09e667f3bcc909)),
		est: est,
	}
}

// Generate derives narrative events from the current field state:
// statistics-based events, optional topology-based motif and attractor
// events, and change events against the previous frame when given.
func (g *Generator) Generate(field, prev *grid.Grid, timestamp float64, withTopology bool) []NarrativeEvent {
	var events []NarrativeEvent

	lo, hi, _, _ := fieldExtrema(field)
	mean := field.Mean()
	std := field.Std()

	if span := hi - lo; span > 0 && std > 0.2*span {
		events = append(events, NewEvent(timestamp, EventCatharsis,
			"High variability in the field suggests emotional processing",
			math.Min(1.0, std/span)))
	}
	if hi > 0 && mean > 0.7*hi {
		events = append(events, NewEvent(timestamp, EventIntegration,
			"Elevated field values suggest integration of consciousness",
			mean/hi))
	}

	if withTopology {
		events = append(events, g.topologyEvents(field, timestamp)...)
	}

	if prev != nil && prev.N() == field.N() {
		events = append(events, changeEvents(field, prev, timestamp)...)
	}
	return events
}

// topologyEvents interprets detected motifs and the attractor type as
// archetypal narrative events.
func (g *Generator) topologyEvents(field *grid.Grid, timestamp float64) []NarrativeEvent {
	var events []NarrativeEvent

	report := topology.DetectMotifs(field, 0.0, 1.0, g.est)
	joyMean := topology.JoyField(field, g.est).Mean()

	for _, motif := range report.Motifs {
		arch, ok := archetypes[motif.Name]
		if !ok {
			continue
		}
		template := arch.Templates[g.rng.IntN(len(arch.Templates))]

		ev := NewEvent(timestamp, EventEmergence, template, motif.Confidence)
		ev.Betti = report.Betti
		joy := joyMean
		ev.Joy = &joy
		ev.Metadata = map[string]any{
			"pattern_name":        arch.Name,
			"psychological_state": arch.PsychologicalState,
			"stability":           string(motif.Stability),
		}
		events = append(events, ev)
	}

	ac := topology.ClassifyAttractor(field, 1.0)
	var (
		t    EventType
		desc string
	)
	switch ac.Type {
	case "fixed_point":
		t, desc = EventIntegration, "The field stabilizes around a fixed point, suggesting integration"
	case "limit_cycle":
		t, desc = EventRecursiveLoop, "The field enters a cyclical pattern, suggesting recursive thought"
	case "strange_attractor":
		t, desc = EventBifurcation, "The field exhibits complex dynamics, suggesting creative potential"
	default:
		return events
	}

	ev := NewEvent(timestamp, t, desc, ac.Confidence)
	ev.Betti = ac.Betti
	joy := joyMean
	ev.Joy = &joy
	ev.Metadata = map[string]any{"attractor_type": ac.Type}
	return append(events, ev)
}

// changeEvents compares against the previous frame and reports large
// net shifts as emergence or dissolution.
func changeEvents(field, prev *grid.Grid, timestamp float64) []NarrativeEvent {
	_, hi, _, _ := fieldExtrema(field)
	if hi <= 0 {
		return nil
	}

	diff := field.Clone()
	diff.AddScaled(-1, prev)

	n := diff.N()
	maxChange := 0.0
	up, down := 0, 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := diff.At(i, j)
			if a := math.Abs(v); a > maxChange {
				maxChange = a
			}
			if v > 0 {
				up++
			} else if v < 0 {
				down++
			}
		}
	}
	if maxChange <= 0.3*hi {
		return nil
	}

	intensity := math.Min(1.0, maxChange/hi)
	if up > down {
		return []NarrativeEvent{NewEvent(timestamp, EventEmergence,
			"A significant increase in field intensity suggests emergence", intensity)}
	}
	return []NarrativeEvent{NewEvent(timestamp, EventDissolution,
		"A significant decrease in field intensity suggests dissolution", intensity)}
}
