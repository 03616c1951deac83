// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

import (
	"encoding/binary"
	"math"
)

// Kind is the wire encoding of a record field.
type Kind int

const (
	KindUint8 Kind = iota
	KindUint16
	KindUint32
	KindInt16
	KindBool
	KindFix16
	// KindReserved keeps the byte slot of a removed field so the
	// offsets of every later field never shift.
	KindReserved
)

// Width returns the number of bytes the kind occupies on the wire.
func (k Kind) Width() int {
	switch k {
	case KindUint8, KindBool, KindReserved:
		return 1
	case KindUint16, KindInt16, KindFix16:
		return 2
	case KindUint32:
		return 4
	default:
		return 0
	}
}

// field describes one slot of a record schema: its wire encoding, its
// default, and accessors into the record struct. Field values travel
// through float64, which represents every encodable value exactly.
type field[T any] struct {
	name  string
	kind  Kind
	scale float64 // fix16 only
	def   float64
	get   func(*T) float64
	set   func(*T, float64)
}

// schema is an ordered, append-only list of field descriptors. New
// fields are only ever added at the end; removed fields become
// KindReserved placeholders.
type schema[T any] []field[T]

// size returns the packed byte length of the full current schema.
func (s schema[T]) size() int {
	n := 0
	for _, f := range s {
		n += f.kind.Width()
	}
	return n
}

// pack serializes every field in declared order. The buffer always
// has the full current-schema length, reserved slots included.
func (s schema[T]) pack(rec *T) []byte {
	buf := make([]byte, 0, s.size())

	for _, f := range s {
		if f.kind == KindReserved {
			buf = append(buf, 0)
			continue
		}

		v := f.get(rec)
		switch f.kind {
		case KindUint8:
			buf = append(buf, byte(clamp(v, 0, math.MaxUint8)))
		case KindUint16:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(clamp(v, 0, math.MaxUint16)))
		case KindUint32:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(clamp(v, 0, math.MaxUint32)))
		case KindInt16:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(clamp(v, math.MinInt16, math.MaxInt16))))
		case KindBool:
			if v != 0 {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case KindFix16:
			buf = binary.LittleEndian.AppendUint16(buf, uint16(packFix16(v, f.scale)))
		}
	}

	return buf
}

// unpack walks the schema in order, consuming bytes while they last.
// The first field with insufficient bytes remaining, and every field
// after it, takes its declared default, so a buffer written by an
// older, shorter schema decodes without error. Trailing bytes beyond
// the schema are ignored.
func (s schema[T]) unpack(buf []byte, rec *T) {
	offset := 0

	for _, f := range s {
		width := f.kind.Width()
		short := offset+width > len(buf)

		if f.kind == KindReserved {
			offset += width
			continue
		}
		if short {
			def := f.def
			if f.kind == KindFix16 {
				// Defaults resolve through the same quantizer as
				// decoded data, so packing a defaulted record and
				// unpacking it again is an exact identity.
				def = unpackFix16(packFix16(def, f.scale), f.scale)
			}
			f.set(rec, def)
			offset += width
			continue
		}

		var v float64
		switch f.kind {
		case KindUint8:
			v = float64(buf[offset])
		case KindUint16:
			v = float64(binary.LittleEndian.Uint16(buf[offset:]))
		case KindUint32:
			v = float64(binary.LittleEndian.Uint32(buf[offset:]))
		case KindInt16:
			v = float64(int16(binary.LittleEndian.Uint16(buf[offset:])))
		case KindBool:
			if buf[offset] != 0 {
				v = 1
			}
		case KindFix16:
			v = unpackFix16(int16(binary.LittleEndian.Uint16(buf[offset:])), f.scale)
		}

		f.set(rec, v)
		offset += width
	}
}

// packFix16 encodes a real value as a scaled signed 16-bit integer,
// clamped to the representable range.
func packFix16(v, scale float64) int16 {
	return int16(clamp(math.Round(v*scale), math.MinInt16, math.MaxInt16))
}

// unpackFix16 is the inverse of packFix16 up to one quantization step.
func unpackFix16(raw int16, scale float64) float64 {
	return float64(raw) / scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
