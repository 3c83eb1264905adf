// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package topology

import (
	"math"
	"math/rand/v2"

	"github.com/prometheusWaluigi/ASTRA/pkg/grid"
)

// Point is one sample of a field embedded in 3D: grid coordinates plus
// the field value.
type Point struct {
	X, Y, Value float64
}

// CloudOptions configures point cloud extraction. The zero value means
// no smoothing, threshold zero, a 1000-point cap and seed zero.
type CloudOptions struct {
	// Threshold keeps only cells whose (smoothed) value exceeds it.
	Threshold float64

	// MaxPoints caps the cloud size by uniform subsampling.
	// Non-positive means the default of 1000.
	MaxPoints int

	// Sigma is the Gaussian smoothing width; <= 0 disables smoothing.
	Sigma float64

	// Seed makes the subsampling deterministic.
	Seed uint64
}

// PreparePointCloud converts a field to a point cloud for persistence
// computation: smooth, keep cells above the threshold, subsample to at
// most MaxPoints.
func PreparePointCloud(g *grid.Grid, opts CloudOptions) []Point {
	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = 1000
	}

	smoothed := Smooth(g, opts.Sigma)
	n := smoothed.N()

	var cloud []Point
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := smoothed.At(i, j); v > opts.Threshold {
				cloud = append(cloud, Point{X: float64(j), Y: float64(i), Value: v})
			}
		}
	}

	if len(cloud) > maxPoints {
		rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xda3e39cb94b95bdb))
		rng.Shuffle(len(cloud), func(a, b int) {
			cloud[a], cloud[b] = cloud[b], cloud[a]
		})
		cloud = cloud[:maxPoints]
	}
	return cloud
}

func pointDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dv := a.Value - b.Value
	return math.Sqrt(dx*dx + dy*dy + dv*dv)
}
