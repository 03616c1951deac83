// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import (
	"fmt"
	"time"
)

// Decoder implements a streaming decoder state machine for byte
// transports that deliver messages without record boundaries (serial
// ports). Feed it bytes one at a time; it emits a Frame whenever a
// complete message has been seen and resynchronizes on the next start
// byte after an error.
type Decoder struct {
	state   int
	command byte
	stuffed []byte
}

// NewDecoder creates a new streaming decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		state:   stateIdle,
		stuffed: make([]byte, 0, MaxPayloadSize),
	}
}

// Reset returns the decoder to idle, discarding any partial message.
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.command = 0
	d.stuffed = d.stuffed[:0]
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed frame, or nil if the message is incomplete.
// Returns an error if decoding fails; the decoder resets itself and
// the caller may keep feeding bytes.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	// A start byte always begins a new message, even mid-frame.
	if b == StartByte {
		d.Reset()
		d.state = stateMarker
		return nil, nil
	}

	if b == EndByte {
		if d.state != statePayload {
			d.Reset()
			return nil, fmt.Errorf("%w: unexpected terminator in state %d", ErrFraming, d.state)
		}

		payload, err := Decode(d.stuffed)
		if err != nil {
			d.Reset()
			return nil, err
		}
		frame := &Frame{
			Command:   d.command,
			Payload:   payload,
			Timestamp: time.Now(),
		}
		d.Reset()
		return frame, nil
	}

	if b&0x80 != 0 {
		// Unrelated MIDI traffic (status bytes, realtime messages)
		// outside a frame is skipped silently; inside a frame it
		// means the message is corrupt.
		if d.state == stateIdle {
			return nil, nil
		}
		d.Reset()
		return nil, fmt.Errorf("%w: interior byte 0x%02X has high bit set", ErrFraming, b)
	}

	switch d.state {
	case stateIdle:
		// Waiting for a start byte.
		return nil, nil

	case stateMarker:
		if b != VendorMarker {
			d.Reset()
			return nil, fmt.Errorf("%w: expected vendor marker 0x%02X, got 0x%02X", ErrFraming, VendorMarker, b)
		}
		d.state = stateCommand
		return nil, nil

	case stateCommand:
		d.command = b
		d.state = statePayload
		return nil, nil

	case statePayload:
		if len(d.stuffed) >= MaxPayloadSize {
			d.Reset()
			return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrFraming, MaxPayloadSize)
		}
		d.stuffed = append(d.stuffed, b)
		return nil, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("%w: invalid state %d", ErrFraming, d.state)
	}
}

// DecodeBytes runs a buffer through the decoder and returns every
// frame completed by it. Decode errors are returned alongside the
// frames recovered before and after them.
func (d *Decoder) DecodeBytes(buf []byte) ([]*Frame, error) {
	var frames []*Frame
	var firstErr error

	for _, b := range buf {
		frame, err := d.DecodeByte(b)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if frame != nil {
			frames = append(frames, frame)
		}
	}

	return frames, firstErr
}
