// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuild_EmptyPayload(t *testing.T) {
	wire := Build(CmdHello, nil)
	expected := []byte{0xF0, 0x77, 0x01, 0xF7}
	if !bytes.Equal(wire, expected) {
		t.Errorf("Build = %x, expected %x", wire, expected)
	}
}

func TestBuild_PayloadIsStuffed(t *testing.T) {
	wire := Build(CmdReadADC, []byte{0xFF})
	expected := []byte{0xF0, 0x77, 0x04, 0x01, 0x7F, 0xF7}
	if !bytes.Equal(wire, expected) {
		t.Errorf("Build = %x, expected %x", wire, expected)
	}

	for _, b := range wire[1 : len(wire)-1] {
		if b > 0x7F {
			t.Errorf("interior byte 0x%02X has high bit set", b)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x00},
		{0xFF, 0x00, 0x80, 0x7F},
		bytes.Repeat([]byte{0xAB}, 33),
	}

	for _, payload := range payloads {
		frame, err := Parse(Build(CmdWriteSettings, payload))
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}
		if frame.Command != CmdWriteSettings {
			t.Errorf("command = 0x%02X, expected 0x%02X", frame.Command, CmdWriteSettings)
		}
		if !bytes.Equal(frame.Payload, payload) {
			t.Errorf("payload = %x, expected %x", frame.Payload, payload)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"empty", nil},
		{"too short", []byte{0xF0, 0x77, 0xF7}},
		{"missing start byte", []byte{0x00, 0x77, 0x01, 0xF7}},
		{"wrong vendor marker", []byte{0xF0, 0x42, 0x01, 0xF7}},
		{"missing terminator", []byte{0xF0, 0x77, 0x01, 0x00}},
		{"high bit interior byte", []byte{0xF0, 0x77, 0x01, 0x80, 0x00, 0xF7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.wire)
			if !errors.Is(err, ErrFraming) {
				t.Errorf("expected ErrFraming, got %v", err)
			}
		})
	}
}

func TestParse_TruncatedPayload(t *testing.T) {
	// A lone stuffed header byte with no data bytes.
	_, err := Parse([]byte{0xF0, 0x77, 0x18, 0x00, 0xF7})
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}
