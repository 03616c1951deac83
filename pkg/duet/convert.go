// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

import "math"

// DefaultHardwareRevision is assumed when the serial-number response
// predates the revision byte.
const DefaultHardwareRevision = 4

// ADC code domain: 12-bit converter.
const adcCodeMax = 4095

// EncodeFix16 converts a real value to the 16.16 fixed-point wire
// form used by SET_FREQ, rounding away from zero.
func EncodeFix16(v float64) uint32 {
	if v >= 0 {
		return uint32(int32(v*65536.0 + 0.5))
	}
	return uint32(int32(v*65536.0 - 0.5))
}

// DecodeFix16 is the inverse of EncodeFix16.
func DecodeFix16(raw uint32) float64 {
	return float64(int32(raw)) / 65536.0
}

// voltageRange returns the CV input range for a hardware revision.
// Revision 5 boards extended the front end below ground.
func voltageRange(revision int) (vmin, vspan float64) {
	if revision >= 5 {
		return -0.5, 6.6
	}
	return 0, 6.0
}

// CodeToVolts maps an ADC code to the input voltage it represents.
// The front end inverts: code 0 reads the maximum voltage.
func CodeToVolts(revision int, code uint16) float64 {
	vmin, vspan := voltageRange(revision)
	c := float64(code)
	if c > adcCodeMax {
		c = adcCodeMax
	}
	return vmin + (vspan - c/adcCodeMax*vspan)
}

// VoltsToCode is the inverse of CodeToVolts, clamped to the 12-bit
// code domain.
func VoltsToCode(revision int, volts float64) uint16 {
	vmin, vspan := voltageRange(revision)
	code := adcCodeMax - (volts-vmin)/vspan*adcCodeMax
	return uint16(clamp(math.Round(code), 0, adcCodeMax))
}
