// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

// Package sysex implements the wire level of the Duet SysEx command
// protocol: the 7-bit byte-stuffing codec, message framing, and a
// streaming decoder for unframed byte transports.
//
// Every Duet message is a MIDI System Exclusive message of the form
//
//	0xF0 0x77 <command> <stuffed payload> 0xF7
//
// where the payload is re-encoded so that every interior byte has its
// high bit clear, as MIDI requires.
package sysex

// Protocol framing bytes
const (
	StartByte    = 0xF0
	EndByte      = 0xF7
	VendorMarker = 0x77
)

// Command codes
const (
	CmdHello              = 0x01
	CmdWriteADCGain       = 0x02
	CmdWriteADCOffset     = 0x03
	CmdReadADC            = 0x04
	CmdSetDAC             = 0x05
	CmdResetSettings      = 0x07
	CmdWriteLUTEntry      = 0x0A
	CmdWriteLUT           = 0x0B
	CmdEraseLUT           = 0x0C
	CmdDisableADCCorr     = 0x0D
	CmdEnableADCCorr      = 0x0E
	CmdGetSerialNumber    = 0x0F
	CmdMonitor            = 0x10
	CmdSoftReset          = 0x11
	CmdEnterCalibration   = 0x12
	CmdResetIntoBootloader = 0x13
	CmdReadSettings       = 0x18
	CmdWriteSettings      = 0x19
	CmdSetFrequency       = 0x20
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateMarker
	stateCommand
	statePayload
)

// MaxPayloadSize bounds the stuffed payload length accepted by the
// streaming decoder. The largest real message is a settings record
// (tens of bytes), so this leaves generous headroom.
const MaxPayloadSize = 256
