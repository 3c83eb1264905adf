// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cities

import "errors"

var (
	// ErrMissingColumn is returned when the CSV header lacks one of
	// the required columns.
	ErrMissingColumn = errors.New("cities: missing required column")

	// ErrEmptyDataset is returned when the CSV carries no usable rows.
	ErrEmptyDataset = errors.New("cities: no usable rows in dataset")
)
