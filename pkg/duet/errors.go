// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

import "errors"

var (
	// ErrBusy reports a request issued while another transaction is
	// outstanding or while monitoring is streaming.
	ErrBusy = errors.New("duet: transaction in progress")

	// ErrTimeout reports that no correlated response arrived within
	// the deadline.
	ErrTimeout = errors.New("duet: response timeout")

	// ErrResponse reports a response that does not match the shape
	// expected for the issued command.
	ErrResponse = errors.New("duet: unexpected response")
)
