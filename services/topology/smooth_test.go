// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package topology

import (
	"math"
	"testing"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

func TestSmooth_ZeroSigmaReturnsCopy(t *testing.T) {
	g := grid.New(8)
	g.Set(3, 4, 2.0)

	out := Smooth(g, 0)
	if out.At(3, 4) != 2.0 {
		t.Fatalf("expected copy to preserve values, got %v", out.At(3, 4))
	}

	out.Set(0, 0, 99)
	if g.At(0, 0) != 0 {
		t.Fatal("smoothing with sigma 0 must not alias the input")
	}
}

func TestSmooth_PreservesConstantField(t *testing.T) {
	g := grid.New(16)
	g.Fill(func(i, j int) float64 { return 2.5 })

	out := Smooth(g, 1.5)
	for i := 0; i < 16; i++ {
		for j := 0; j < 16; j++ {
			if math.Abs(out.At(i, j)-2.5) > 1e-9 {
				t.Fatalf("cell (%d,%d) drifted to %v", i, j, out.At(i, j))
			}
		}
	}
}

func TestSmooth_SpreadsSpike(t *testing.T) {
	g := grid.New(16)
	g.Set(8, 8, 1.0)

	out := Smooth(g, 1.0)
	if out.At(8, 8) >= 1.0 {
		t.Fatalf("spike should shrink, got %v", out.At(8, 8))
	}
	if out.At(8, 9) <= 0 {
		t.Fatalf("neighbor should gain mass, got %v", out.At(8, 9))
	}
	if g.At(8, 9) != 0 {
		t.Fatal("input must stay unmodified")
	}
}

func TestPreparePointCloud_ThresholdAndCoords(t *testing.T) {
	g := grid.New(8)
	g.Set(2, 5, 1.0)
	g.Set(6, 1, 0.8)
	g.Set(0, 0, -1.0)

	cloud := PreparePointCloud(g, CloudOptions{Threshold: 0.5})
	if len(cloud) != 2 {
		t.Fatalf("expected 2 points, got %d", len(cloud))
	}
	for _, p := range cloud {
		if p.Value == 1.0 && (p.X != 5 || p.Y != 2) {
			t.Fatalf("point coordinates swapped: %+v", p)
		}
	}
}

func TestPreparePointCloud_SubsamplesDeterministically(t *testing.T) {
	g := grid.New(16)
	g.Fill(func(i, j int) float64 { return 1.0 })

	a := PreparePointCloud(g, CloudOptions{MaxPoints: 50, Seed: 11})
	b := PreparePointCloud(g, CloudOptions{MaxPoints: 50, Seed: 11})

	if len(a) != 50 {
		t.Fatalf("expected 50 points, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed must give the same cloud, differs at %d", i)
		}
	}
}
