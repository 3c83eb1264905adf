// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry exposes Prometheus counters for field evolution.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepsTotal counts Euler steps, labeled by equation variant
	// ("standard" or "enhanced").
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "astra_field_steps_total",
		Help: "Total Euler steps taken, by equation variant.",
	}, []string{"variant"})

	// FramesStoredTotal counts frames stored by chart evolutions.
	FramesStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "astra_field_frames_stored_total",
		Help: "Total evolution frames stored.",
	})

	// NonFiniteTotal counts rejected non-finite field updates.
	NonFiniteTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "astra_field_nonfinite_updates_total",
		Help: "Total field updates rejected for NaN or Inf values.",
	})

	// RetroIterationsTotal counts completed retrocausal iterations.
	RetroIterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "astra_retro_iterations_total",
		Help: "Total completed bidirectional evolution iterations.",
	})
)
