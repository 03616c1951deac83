// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package sysex

import "fmt"

// CommandName returns the protocol name for a command code.
func CommandName(command byte) string {
	switch command {
	case CmdHello:
		return "HELLO"
	case CmdWriteADCGain:
		return "WRITE_ADC_GAIN"
	case CmdWriteADCOffset:
		return "WRITE_ADC_OFFSET"
	case CmdReadADC:
		return "READ_ADC"
	case CmdSetDAC:
		return "SET_DAC"
	case CmdResetSettings:
		return "RESET_SETTINGS"
	case CmdWriteLUTEntry:
		return "WRITE_LUT_ENTRY"
	case CmdWriteLUT:
		return "WRITE_LUT"
	case CmdEraseLUT:
		return "ERASE_LUT"
	case CmdDisableADCCorr:
		return "DISABLE_ADC_CORR"
	case CmdEnableADCCorr:
		return "ENABLE_ADC_CORR"
	case CmdGetSerialNumber:
		return "GET_SERIAL_NUMBER"
	case CmdMonitor:
		return "MONITOR"
	case CmdSoftReset:
		return "SOFT_RESET"
	case CmdEnterCalibration:
		return "ENTER_CALIBRATION"
	case CmdResetIntoBootloader:
		return "RESET_INTO_BOOTLOADER"
	case CmdReadSettings:
		return "READ_SETTINGS"
	case CmdWriteSettings:
		return "WRITE_SETTINGS"
	case CmdSetFrequency:
		return "SET_FREQ"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame renders a frame in human-readable form for log output.
func FormatFrame(f *Frame) string {
	timestamp := f.Timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s (0x%02X) len=%d\n", timestamp, CommandName(f.Command), f.Command, len(f.Payload))

	if len(f.Payload) > 0 {
		result += "  Payload: "
		for i, b := range f.Payload {
			if i > 0 && i%16 == 0 {
				result += "\n           "
			}
			result += fmt.Sprintf("%02X ", b)
		}
		result += "\n"
	}

	return result
}
