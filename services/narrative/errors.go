// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package narrative

import "errors"

var (
	// ErrUnknownEventType is returned when parsing an event type name
	// that is not in the catalog.
	ErrUnknownEventType = errors.New("narrative: unknown event type")

	// ErrHistoryMismatch is returned when a frame history and its
	// timestamps disagree in length.
	ErrHistoryMismatch = errors.New("narrative: history and timestamps differ in length")
)
