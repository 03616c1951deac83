// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import (
	"fmt"
	"time"
)

// Frame is one decoded protocol message: a command byte plus its
// payload with the 7-bit stuffing already removed. Payload bytes are
// unrestricted (0-255).
type Frame struct {
	Command   byte
	Payload   []byte
	Timestamp time.Time
}

// Build encodes a complete wire message for the given command and
// payload. The payload may be nil or empty; the command byte is
// carried unstuffed.
func Build(command byte, payload []byte) []byte {
	stuffed := Encode(payload)

	wire := make([]byte, 0, len(stuffed)+4)
	wire = append(wire, StartByte, VendorMarker, command)
	wire = append(wire, stuffed...)
	wire = append(wire, EndByte)

	return wire
}

// Parse decodes a complete wire message. It requires the start byte,
// vendor marker, and terminator to be present and unstuffs the
// payload between them.
func Parse(wire []byte) (*Frame, error) {
	if len(wire) < 4 {
		return nil, fmt.Errorf("%w: message too short (%d bytes)", ErrFraming, len(wire))
	}
	if wire[0] != StartByte {
		return nil, fmt.Errorf("%w: expected start byte 0x%02X, got 0x%02X", ErrFraming, StartByte, wire[0])
	}
	if wire[1] != VendorMarker {
		return nil, fmt.Errorf("%w: expected vendor marker 0x%02X, got 0x%02X", ErrFraming, VendorMarker, wire[1])
	}
	if wire[len(wire)-1] != EndByte {
		return nil, fmt.Errorf("%w: expected terminator 0x%02X, got 0x%02X", ErrFraming, EndByte, wire[len(wire)-1])
	}

	for _, b := range wire[2 : len(wire)-1] {
		if b&0x80 != 0 {
			return nil, fmt.Errorf("%w: interior byte 0x%02X has high bit set", ErrFraming, b)
		}
	}

	payload, err := Decode(wire[3 : len(wire)-1])
	if err != nil {
		return nil, err
	}

	return &Frame{
		Command:   wire[2],
		Payload:   payload,
		Timestamp: time.Now(),
	}, nil
}
