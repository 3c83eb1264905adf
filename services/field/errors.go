// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package field

import "errors"

var (
	// ErrNonFinite is returned when a field update contains NaN or Inf.
	ErrNonFinite = errors.New("field state contains non-finite values")

	// ErrShapeMismatch is returned when a grid's size does not match
	// the field it is applied to.
	ErrShapeMismatch = errors.New("grid shape mismatch")

	// ErrInvalidTimestep is returned when the time step is not
	// strictly positive.
	ErrInvalidTimestep = errors.New("time step must be positive")

	// ErrInvalidDuration is returned when the evolution duration is
	// negative. A zero duration is a valid zero-step run.
	ErrInvalidDuration = errors.New("duration must not be negative")
)
