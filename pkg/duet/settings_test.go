// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

import (
	"bytes"
	"math"
	"testing"
)

func TestSettingsSize(t *testing.T) {
	// 2+2+1 + 8 fix16 + reserved + 2 fix16 + 2 + 1 + 4
	if SettingsSize != 33 {
		t.Errorf("SettingsSize = %d, expected 33", SettingsSize)
	}
}

func TestSettings_DefaultRoundTrip(t *testing.T) {
	defaults := DefaultSettings()
	unpacked := UnpackSettings(defaults.Pack())

	if defaults != unpacked {
		t.Errorf("default round trip mismatch:\n packed:   %+v\n unpacked: %+v", defaults, unpacked)
	}
}

func TestSettings_PackLength(t *testing.T) {
	s := DefaultSettings()
	if got := len(s.Pack()); got != SettingsSize {
		t.Errorf("len(Pack) = %d, expected %d", got, SettingsSize)
	}
}

func TestSettings_RoundTripModifiedRecord(t *testing.T) {
	s := DefaultSettings()
	s.ADCGainCorrection = 1900
	s.ADCOffsetCorrection = -12
	s.LEDBrightness = 40
	s.CastorKnobMin = -0.5
	s.LFOFrequency = 1.5
	s.SmoothSensitivity = 12.0
	s.PolluxFollowerThreshold = 512
	s.ADCCorrectionEnabled = false
	s.Osc8MFrequency = 7998123

	got := UnpackSettings(s.Pack())
	if s != got {
		t.Errorf("round trip mismatch:\n in:  %+v\n out: %+v", s, got)
	}
}

func TestUnpackSettings_TruncatedToOlderSchema(t *testing.T) {
	s := DefaultSettings()
	s.ADCGainCorrection = 1234
	s.SmoothSensitivity = 15.0
	s.PolluxFollowerThreshold = 333

	buf := s.Pack()

	// An older firmware's record stops before adc_correction_enabled
	// and osc8m_freq (bool + uint32 = last 5 bytes).
	got := UnpackSettings(buf[:len(buf)-5])

	if got.ADCGainCorrection != 1234 || got.SmoothSensitivity != 15.0 || got.PolluxFollowerThreshold != 333 {
		t.Errorf("earlier fields lost their encoded values: %+v", got)
	}
	if !got.ADCCorrectionEnabled {
		t.Error("missing adc_correction_enabled should default to true")
	}
	if got.Osc8MFrequency != 8000000 {
		t.Errorf("missing osc8m_freq should default to 8000000, got %d", got.Osc8MFrequency)
	}
}

func TestUnpackSettings_EmptyBufferYieldsDefaults(t *testing.T) {
	if got := UnpackSettings(nil); got != DefaultSettings() {
		t.Errorf("UnpackSettings(nil) = %+v", got)
	}
}

func TestUnpackSettings_IgnoresTrailingBytes(t *testing.T) {
	s := DefaultSettings()
	s.LEDBrightness = 9

	buf := append(s.Pack(), 0xAA, 0xBB, 0xCC)
	got := UnpackSettings(buf)

	if got != s {
		t.Errorf("trailing bytes changed the decode: %+v", got)
	}
}

func TestSettings_ReservedSlotStaysZero(t *testing.T) {
	s := DefaultSettings()
	buf := s.Pack()

	// The reserved slot sits after the 2+2+1 integer header and
	// eight fix16 fields.
	offset := 5 + 8*2
	if buf[offset] != 0 {
		t.Errorf("reserved slot = 0x%02X, expected 0", buf[offset])
	}

	// A stale value in the slot must not affect the decode.
	buf[offset] = 0x7F
	if got := UnpackSettings(buf); got != DefaultSettings() {
		t.Errorf("reserved slot leaked into decode: %+v", got)
	}
}

func TestFix16_QuantizationBound(t *testing.T) {
	values := []float64{-7.5, -1.02, -0.001, 0, 0.05, 0.2, 1.0, 1.02, 3.999, 7.9}
	scales := []float64{256, 4096}

	for _, scale := range scales {
		for _, v := range values {
			got := unpackFix16(packFix16(v, scale), scale)
			if math.Abs(got-v) > 1/scale {
				t.Errorf("fix16 scale %.0f: |%v - %v| > %v", scale, got, v, 1/scale)
			}
		}
	}
}

func TestFix16_Clamps(t *testing.T) {
	if packFix16(1e9, 4096) != math.MaxInt16 {
		t.Error("overflow should clamp to MaxInt16")
	}
	if packFix16(-1e9, 4096) != math.MinInt16 {
		t.Error("underflow should clamp to MinInt16")
	}
}

func TestMonitorUpdate_RoundTrip(t *testing.T) {
	m := MonitorUpdate{
		CastorPitchKnob: 0.5,
		CastorPitchCV:   2.25,
		PolluxPitchKnob: -0.125,
		PolluxPitchCV:   1.0,
		ButtonState:     1,
		LFOValue:        -0.75,
		LoopTime:        180,
		AnimationTime:   40,
		SampleTime:      95,
	}

	buf := m.Pack()
	if len(buf) != MonitorUpdateSize {
		t.Fatalf("len(Pack) = %d, expected %d", len(buf), MonitorUpdateSize)
	}

	if got := UnpackMonitorUpdate(buf); got != m {
		t.Errorf("round trip mismatch:\n in:  %+v\n out: %+v", m, got)
	}
}

func TestUnpackMonitorUpdate_ShortBuffer(t *testing.T) {
	m := MonitorUpdate{CastorPitchKnob: 1.5, CastorPitchCV: -0.5}
	full := m.Pack()

	got := UnpackMonitorUpdate(full[:4])
	if got.CastorPitchKnob != 1.5 || got.CastorPitchCV != -0.5 {
		t.Errorf("present fields decoded wrong: %+v", got)
	}
	if got.PolluxPitchKnob != 0 || got.LoopTime != 0 {
		t.Errorf("missing fields should be zero: %+v", got)
	}

	if !bytes.Equal(full[:4], m.Pack()[:4]) {
		t.Error("Pack is not deterministic")
	}
}
