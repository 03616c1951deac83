// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import "errors"

var (
	// ErrTruncated reports a stuffed stream cut off mid-group.
	ErrTruncated = errors.New("sysex: truncated stream")

	// ErrFraming reports a message missing its start byte, vendor
	// marker, or terminator, or carrying an interior byte with the
	// high bit set.
	ErrFraming = errors.New("sysex: bad framing")
)
