// Copyright (C) 2025 The ASTRA Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package noise

import "errors"

// ErrUnknownKind is returned when a noise kind string does not name a
// supported generator.
var ErrUnknownKind = errors.New("unknown noise kind")
