// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import "fmt"

// The 7-bit codec makes arbitrary binary payloads safe to carry inside
// a SysEx message. Input is processed in groups of up to 7 bytes: each
// group is emitted as one header byte followed by the group's bytes
// with bit 7 cleared. Header bit i holds the original bit 7 of the
// group's i-th byte, so the header itself always has bit 7 clear.
//
// Overhead is a fixed header byte per 7 input bytes, independent of
// byte values: len(Encode(x)) == len(x) + ceil(len(x)/7).

// Encode re-encodes data as a 7-bit-safe byte stream.
func Encode(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}

	out := make([]byte, 0, len(data)+(len(data)+6)/7)

	for start := 0; start < len(data); start += 7 {
		group := data[start:]
		if len(group) > 7 {
			group = group[:7]
		}

		var header byte
		for i, b := range group {
			if b&0x80 != 0 {
				header |= 1 << i
			}
		}

		out = append(out, header)
		for _, b := range group {
			out = append(out, b&0x7F)
		}
	}

	return out
}

// Decode is the exact inverse of Encode. A final short group (fewer
// than 7 data bytes before the stream ends) is valid; a header byte
// with no data bytes at all marks a truncated stream.
func Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(data)%8 == 1 {
		return nil, fmt.Errorf("%w: header byte at offset %d has no data bytes", ErrTruncated, len(data)-1)
	}

	out := make([]byte, 0, len(data)-(len(data)+7)/8)

	for start := 0; start < len(data); start += 8 {
		header := data[start]
		group := data[start+1:]
		if len(group) > 7 {
			group = group[:7]
		}

		for i, b := range group {
			if header&(1<<i) != 0 {
				b |= 0x80
			}
			out = append(out, b)
		}
	}

	return out, nil
}

// EncodedLen returns the stuffed length of an n-byte payload.
func EncodedLen(n int) int {
	return n + (n+6)/7
}
