// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

// Package duet is the host-side client for the Duet dual-oscillator
// synthesizer module's SysEx command set.
//
// It covers the settings and telemetry record codecs, the
// calibration and factory commands, and a transaction client that
// multiplexes request/response exchanges and streaming telemetry
// over a single injected Transport.
package duet

// ADCChannel selects one of the module's multiplexed ADC inputs.
type ADCChannel uint8

// ADC channels
const (
	ADCDutyA     ADCChannel = 0
	ADCDutyAPot  ADCChannel = 1
	ADCDutyB     ADCChannel = 2
	ADCDutyBPot  ADCChannel = 3
	ADCChorusPot ADCChannel = 4
	ADCCVAPot    ADCChannel = 5
	ADCCVBPot    ADCChannel = 6
	ADCCVA       ADCChannel = 7
	ADCCVB       ADCChannel = 8
)

// String returns the channel's schematic name.
func (c ADCChannel) String() string {
	switch c {
	case ADCDutyA:
		return "DUTY_A"
	case ADCDutyAPot:
		return "DUTY_A_POT"
	case ADCDutyB:
		return "DUTY_B"
	case ADCDutyBPot:
		return "DUTY_B_POT"
	case ADCChorusPot:
		return "CHORUS_POT"
	case ADCCVAPot:
		return "CV_A_POT"
	case ADCCVBPot:
		return "CV_B_POT"
	case ADCCVA:
		return "CV_A"
	case ADCCVB:
		return "CV_B"
	default:
		return "UNKNOWN"
	}
}
