// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package narrative translates field states and topological structure
// into symbolic event streams: typed events, threshold crossings, and
// templated archetypal descriptions.
package narrative

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prometheusWaluigi/ASTRA/services/topology"
)

// EventType classifies narrative events.
type EventType int

const (
	EventEmergence EventType = iota
	EventDissolution
	EventTransformation
	EventIntegration
	EventBifurcation
	EventResonance
	EventThreshold
	EventTransit
	EventAspect
	EventMeditation
	EventInsight
	EventCatharsis
	EventRecursiveLoop
	EventStrangeAttractor

	// Jungian archetypes.
	EventTheHero
	EventTheMentor
	EventTheShadow
	EventTheTrickster
)

var eventTypeNames = map[EventType]string{
	EventEmergence:        "EMERGENCE",
	EventDissolution:      "DISSOLUTION",
	EventTransformation:   "TRANSFORMATION",
	EventIntegration:      "INTEGRATION",
	EventBifurcation:      "BIFURCATION",
	EventResonance:        "RESONANCE",
	EventThreshold:        "THRESHOLD",
	EventTransit:          "TRANSIT",
	EventAspect:           "ASPECT",
	EventMeditation:       "MEDITATION",
	EventInsight:          "INSIGHT",
	EventCatharsis:        "CATHARSIS",
	EventRecursiveLoop:    "RECURSIVE_LOOP",
	EventStrangeAttractor: "STRANGE_ATTRACTOR",
	EventTheHero:          "THE_HERO",
	EventTheMentor:        "THE_MENTOR",
	EventTheShadow:        "THE_SHADOW",
	EventTheTrickster:     "THE_TRICKSTER",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// ParseEventType resolves a name produced by String back to its
// EventType.
func ParseEventType(name string) (EventType, error) {
	for t, n := range eventTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEventType, name)
}

// MarshalJSON writes the event type as its name.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON reads an event type from its name.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseEventType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// NarrativeEvent is one significant moment in a field's evolution.
type NarrativeEvent struct {
	ID          uuid.UUID       `json:"id"`
	Timestamp   float64         `json:"timestamp"`
	Type        EventType       `json:"event_type"`
	Description string          `json:"description"`
	Intensity   float64         `json:"intensity"`
	Location    *topology.Coord `json:"location,omitempty"`
	Betti       []int           `json:"betti_numbers,omitempty"`
	Joy         *float64        `json:"joy_value,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	RealTime    time.Time       `json:"real_time"`
}

// NewEvent builds an event with a fresh ID, the current wall-clock
// time, and the intensity clamped to [0, 1].
func NewEvent(timestamp float64, t EventType, description string, intensity float64) NarrativeEvent {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return NarrativeEvent{
		ID:          uuid.New(),
		Timestamp:   timestamp,
		Type:        t,
		Description: description,
		Intensity:   intensity,
		RealTime:    time.Now(),
	}
}

func (e NarrativeEvent) String() string {
	return fmt.Sprintf("[%.2f] %s: %s (Intensity: %.2f)", e.Timestamp, e.Type, e.Description, e.Intensity)
}
