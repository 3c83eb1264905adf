// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheusWaluigi/ASTRA/services/field/noise"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRunConfig_Defaults(t *testing.T) {
	cfg, err := LoadRunConfig("")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.GridSize)
	assert.Equal(t, 0.01, cfg.Dt)
	assert.Equal(t, string(noise.Fractal), cfg.NoiseKind)
	assert.Equal(t, 2, cfg.Retro.Iterations)
}

func TestLoadRunConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
grid_size: 32
duration: 0.5
noise_kind: gaussian
seed: 42
chart:
  sun: 120.5
  moon: 200
retro:
  strength: 0.3
  iterations: 4
`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.GridSize)
	assert.Equal(t, 0.5, cfg.Duration)
	assert.Equal(t, "gaussian", cfg.NoiseKind)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 120.5, cfg.Chart["sun"])
	assert.Equal(t, 0.3, cfg.Retro.Strength)
	assert.Equal(t, 4, cfg.Retro.Iterations)

	// Unset fields keep their defaults.
	assert.Equal(t, 0.01, cfg.Dt)
	assert.Equal(t, 0.8, cfg.Hurst)
}

func TestLoadRunConfig_RejectsInvalidValues(t *testing.T) {
	for name, content := range map[string]string{
		"zero grid":     "grid_size: 0",
		"bad noise":     "noise_kind: perlin",
		"negative dt":   "dt: -0.01",
		"chart degrees": "chart: {sun: 400}",
		"retro":         "retro: {strength: 2.0, iterations: 1}",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, content)
			_, err := LoadRunConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestStandardParams_FromChart(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Chart = map[string]float64{"sun": 0, "ascendant": 180}

	p, err := cfg.standardParams()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, p.Lambda, 1e-12)
	assert.InDelta(t, 0.0, p.Gamma, 1e-12)
	assert.Equal(t, noise.Fractal, p.Noise)
	assert.Equal(t, 0.8, p.Hurst)
}

func TestEnhancedParams_InheritChart(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Chart = map[string]float64{"moon": 180}
	cfg.NoiseKind = "levy"

	p, err := cfg.enhancedParams()
	require.NoError(t, err)
	assert.InDelta(t, 0.15, p.Eta, 1e-12)
	assert.Equal(t, noise.Levy, p.Noise)
	// Enhanced structural coefficients stay at their defaults.
	assert.Equal(t, 1.1, p.Beta)
	assert.Equal(t, 1.0, p.Nu)
}
