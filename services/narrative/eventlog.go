// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// TimeRange is the simulation-time span an event log covers.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// EventLog is a serializable, time-ordered collection of narrative
// events.
type EventLog struct {
	Version     string           `json:"version"`
	GeneratedAt time.Time        `json:"generated_at"`
	EventCount  int              `json:"event_count"`
	TimeRange   TimeRange        `json:"time_range"`
	Events      []NarrativeEvent `json:"events"`
}

const eventLogVersion = "0.1"

// NewEventLog orders the events by timestamp and wraps them with log
// metadata. The input slice is not modified.
func NewEventLog(events []NarrativeEvent) *EventLog {
	sorted := append([]NarrativeEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	log := &EventLog{
		Version:     eventLogVersion,
		GeneratedAt: time.Now(),
		EventCount:  len(sorted),
		Events:      sorted,
	}
	if len(sorted) > 0 {
		log.TimeRange = TimeRange{
			Start: sorted[0].Timestamp,
			End:   sorted[len(sorted)-1].Timestamp,
		}
	}
	return log
}

// WriteJSON serializes the log as indented JSON.
func (l *EventLog) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// WriteText renders one line per event for terminal output.
func (l *EventLog) WriteText(w io.Writer) error {
	for _, e := range l.Events {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}
