// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package retro

import "errors"

var (
	// ErrMaskShape is returned when a boundary mask does not match the
	// boundary state's grid size.
	ErrMaskShape = errors.New("boundary mask shape must match state")

	// ErrInvalidIterations is returned when the refinement iteration
	// count is not at least one.
	ErrInvalidIterations = errors.New("iteration count must be at least 1")

	// ErrBoundaryShape is returned when the boundary grid does not
	// match the evolving field's size.
	ErrBoundaryShape = errors.New("boundary grid shape must match field")
)
