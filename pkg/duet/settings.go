// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

// Settings is the persisted configuration record of the Duet module.
// The wire layout is defined by settingsSchema and is append-only
// across firmware versions: a record written by older firmware is
// shorter and decodes with the newer fields at their defaults.
type Settings struct {
	// ADC error correction, applied on-device to every reading.
	ADCGainCorrection    uint16
	ADCOffsetCorrection  int16
	ADCCorrectionEnabled bool

	LEDBrightness uint8

	// Pitch knob ranges, in CV octaves relative to center.
	CastorKnobMin float64
	CastorKnobMax float64
	PolluxKnobMin float64
	PolluxKnobMax float64

	ChorusMaxIntensity float64
	LFOFrequency       float64 // Hz

	// CV input error correction.
	CVOffsetError float64
	CVGainError   float64

	// Pitch smoothing filter.
	SmoothInitialGain float64
	SmoothSensitivity float64

	// Pollux follows Castor's pitch CV when its own input reads
	// below this ADC code.
	PolluxFollowerThreshold uint16

	// Measured system oscillator frequency, Hz.
	Osc8MFrequency uint32
}

// settingsSchema is the ordered wire layout of Settings. Append only;
// never reorder. The reserved slot held QuantizeEnabled before pitch
// quantization moved on-device.
var settingsSchema = schema[Settings]{
	{name: "adc_gain_corr", kind: KindUint16, def: 2048,
		get: func(s *Settings) float64 { return float64(s.ADCGainCorrection) },
		set: func(s *Settings, v float64) { s.ADCGainCorrection = uint16(v) }},
	{name: "adc_offset_corr", kind: KindInt16, def: 0,
		get: func(s *Settings) float64 { return float64(s.ADCOffsetCorrection) },
		set: func(s *Settings, v float64) { s.ADCOffsetCorrection = int16(v) }},
	{name: "led_brightness", kind: KindUint8, def: 127,
		get: func(s *Settings) float64 { return float64(s.LEDBrightness) },
		set: func(s *Settings, v float64) { s.LEDBrightness = uint8(v) }},
	{name: "castor_knob_min", kind: KindFix16, scale: 4096, def: -1.02,
		get: func(s *Settings) float64 { return s.CastorKnobMin },
		set: func(s *Settings, v float64) { s.CastorKnobMin = v }},
	{name: "castor_knob_max", kind: KindFix16, scale: 4096, def: 1.02,
		get: func(s *Settings) float64 { return s.CastorKnobMax },
		set: func(s *Settings, v float64) { s.CastorKnobMax = v }},
	{name: "pollux_knob_min", kind: KindFix16, scale: 4096, def: -1.02,
		get: func(s *Settings) float64 { return s.PolluxKnobMin },
		set: func(s *Settings, v float64) { s.PolluxKnobMin = v }},
	{name: "pollux_knob_max", kind: KindFix16, scale: 4096, def: 1.02,
		get: func(s *Settings) float64 { return s.PolluxKnobMax },
		set: func(s *Settings, v float64) { s.PolluxKnobMax = v }},
	{name: "chorus_max_intensity", kind: KindFix16, scale: 4096, def: 0.05,
		get: func(s *Settings) float64 { return s.ChorusMaxIntensity },
		set: func(s *Settings, v float64) { s.ChorusMaxIntensity = v }},
	{name: "lfo_frequency", kind: KindFix16, scale: 256, def: 0.2,
		get: func(s *Settings) float64 { return s.LFOFrequency },
		set: func(s *Settings, v float64) { s.LFOFrequency = v }},
	{name: "cv_offset_error", kind: KindFix16, scale: 4096, def: 0,
		get: func(s *Settings) float64 { return s.CVOffsetError },
		set: func(s *Settings, v float64) { s.CVOffsetError = v }},
	{name: "cv_gain_error", kind: KindFix16, scale: 4096, def: 1.0,
		get: func(s *Settings) float64 { return s.CVGainError },
		set: func(s *Settings, v float64) { s.CVGainError = v }},
	{name: "reserved_quantize", kind: KindReserved},
	{name: "smooth_initial_gain", kind: KindFix16, scale: 4096, def: 0.1,
		get: func(s *Settings) float64 { return s.SmoothInitialGain },
		set: func(s *Settings, v float64) { s.SmoothInitialGain = v }},
	{name: "smooth_sensitivity", kind: KindFix16, scale: 256, def: 30.0,
		get: func(s *Settings) float64 { return s.SmoothSensitivity },
		set: func(s *Settings, v float64) { s.SmoothSensitivity = v }},
	{name: "pollux_follower_threshold", kind: KindUint16, def: 100,
		get: func(s *Settings) float64 { return float64(s.PolluxFollowerThreshold) },
		set: func(s *Settings, v float64) { s.PolluxFollowerThreshold = uint16(v) }},
	{name: "adc_correction_enabled", kind: KindBool, def: 1,
		get: func(s *Settings) float64 { return boolToFloat(s.ADCCorrectionEnabled) },
		set: func(s *Settings, v float64) { s.ADCCorrectionEnabled = v != 0 }},
	{name: "osc8m_freq", kind: KindUint32, def: 8000000,
		get: func(s *Settings) float64 { return float64(s.Osc8MFrequency) },
		set: func(s *Settings, v float64) { s.Osc8MFrequency = uint32(v) }},
}

// SettingsSize is the packed byte length of the current schema.
var SettingsSize = settingsSchema.size()

// DefaultSettings returns a record with every field at its declared
// default.
func DefaultSettings() Settings {
	var s Settings
	settingsSchema.unpack(nil, &s)
	return s
}

// Pack serializes the record into its full current-version layout.
func (s *Settings) Pack() []byte {
	return settingsSchema.pack(s)
}

// UnpackSettings decodes a settings buffer. Buffers shorter than the
// current schema decode the missing trailing fields to defaults;
// longer buffers have their trailing bytes ignored. It never fails.
func UnpackSettings(buf []byte) Settings {
	var s Settings
	settingsSchema.unpack(buf, &s)
	return s
}
