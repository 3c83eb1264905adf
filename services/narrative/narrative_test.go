// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_Strings(t *testing.T) {
	assert.Equal(t, "EMERGENCE", EventEmergence.String())
	assert.Equal(t, "RECURSIVE_LOOP", EventRecursiveLoop.String())
	assert.Equal(t, "THE_HERO", EventTheHero.String())
	assert.Equal(t, "EventType(99)", EventType(99).String())
}

func TestParseEventType(t *testing.T) {
	parsed, err := ParseEventType("CATHARSIS")
	require.NoError(t, err)
	assert.Equal(t, EventCatharsis, parsed)

	_, err = ParseEventType("NOT_A_TYPE")
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestNewEvent_ClampsIntensity(t *testing.T) {
	assert.Equal(t, 1.0, NewEvent(0, EventInsight, "x", 3.0).Intensity)
	assert.Equal(t, 0.0, NewEvent(0, EventInsight, "x", -1.0).Intensity)
	assert.NotEqual(t, NewEvent(0, EventInsight, "x", 0.5).ID, NewEvent(0, EventInsight, "x", 0.5).ID)
}

func TestEventLog_OrdersAndRoundTrips(t *testing.T) {
	events := []NarrativeEvent{
		NewEvent(2.0, EventDissolution, "later", 0.4),
		NewEvent(0.5, EventEmergence, "earlier", 0.9),
	}

	log := NewEventLog(events)
	assert.Equal(t, 2, log.EventCount)
	assert.Equal(t, 0.5, log.TimeRange.Start)
	assert.Equal(t, 2.0, log.TimeRange.End)
	assert.Equal(t, EventEmergence, log.Events[0].Type)

	// The input order is untouched.
	assert.Equal(t, EventDissolution, events[0].Type)

	var buf bytes.Buffer
	require.NoError(t, log.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"event_type": "EMERGENCE"`)

	var decoded EventLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, log.Events[0].Type, decoded.Events[0].Type)
	assert.Equal(t, log.Events[0].ID, decoded.Events[0].ID)
}

func TestEventLog_WriteText(t *testing.T) {
	log := NewEventLog([]NarrativeEvent{
		NewEvent(1.0, EventInsight, "a moment of clarity", 0.8),
	})

	var buf bytes.Buffer
	require.NoError(t, log.WriteText(&buf))

	line := strings.TrimSpace(buf.String())
	assert.Equal(t, "[1.00] INSIGHT: a moment of clarity (Intensity: 0.80)", line)
}

func TestEventLog_Empty(t *testing.T) {
	log := NewEventLog(nil)
	assert.Equal(t, 0, log.EventCount)
	assert.Equal(t, TimeRange{}, log.TimeRange)
}
