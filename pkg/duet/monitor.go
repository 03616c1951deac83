// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

// MonitorUpdate is one telemetry snapshot, streamed by the module
// while monitoring is enabled. It decodes with the same fixed-layout
// rules as Settings, so older firmware that streams a shorter record
// still decodes cleanly.
type MonitorUpdate struct {
	// Pitch inputs, in CV octaves.
	CastorPitchKnob float64
	CastorPitchCV   float64
	PolluxPitchKnob float64
	PolluxPitchCV   float64

	ButtonState uint8
	LFOValue    float64

	// Firmware loop timings, microseconds.
	LoopTime      uint16
	AnimationTime uint16
	SampleTime    uint16
}

var monitorSchema = schema[MonitorUpdate]{
	{name: "castor_pitch_knob", kind: KindFix16, scale: 4096,
		get: func(m *MonitorUpdate) float64 { return m.CastorPitchKnob },
		set: func(m *MonitorUpdate, v float64) { m.CastorPitchKnob = v }},
	{name: "castor_pitch_cv", kind: KindFix16, scale: 4096,
		get: func(m *MonitorUpdate) float64 { return m.CastorPitchCV },
		set: func(m *MonitorUpdate, v float64) { m.CastorPitchCV = v }},
	{name: "pollux_pitch_knob", kind: KindFix16, scale: 4096,
		get: func(m *MonitorUpdate) float64 { return m.PolluxPitchKnob },
		set: func(m *MonitorUpdate, v float64) { m.PolluxPitchKnob = v }},
	{name: "pollux_pitch_cv", kind: KindFix16, scale: 4096,
		get: func(m *MonitorUpdate) float64 { return m.PolluxPitchCV },
		set: func(m *MonitorUpdate, v float64) { m.PolluxPitchCV = v }},
	{name: "button_state", kind: KindUint8,
		get: func(m *MonitorUpdate) float64 { return float64(m.ButtonState) },
		set: func(m *MonitorUpdate, v float64) { m.ButtonState = uint8(v) }},
	{name: "lfo_value", kind: KindFix16, scale: 4096,
		get: func(m *MonitorUpdate) float64 { return m.LFOValue },
		set: func(m *MonitorUpdate, v float64) { m.LFOValue = v }},
	{name: "loop_time", kind: KindUint16,
		get: func(m *MonitorUpdate) float64 { return float64(m.LoopTime) },
		set: func(m *MonitorUpdate, v float64) { m.LoopTime = uint16(v) }},
	{name: "animation_time", kind: KindUint16,
		get: func(m *MonitorUpdate) float64 { return float64(m.AnimationTime) },
		set: func(m *MonitorUpdate, v float64) { m.AnimationTime = uint16(v) }},
	{name: "sample_time", kind: KindUint16,
		get: func(m *MonitorUpdate) float64 { return float64(m.SampleTime) },
		set: func(m *MonitorUpdate, v float64) { m.SampleTime = uint16(v) }},
}

// MonitorUpdateSize is the packed byte length of a full snapshot.
var MonitorUpdateSize = monitorSchema.size()

// Pack serializes the snapshot. The device side is authoritative for
// this layout; packing exists for tests and emulation.
func (m *MonitorUpdate) Pack() []byte {
	return monitorSchema.pack(m)
}

// UnpackMonitorUpdate decodes a telemetry snapshot. Never fails;
// short buffers decode missing fields to zero values.
func UnpackMonitorUpdate(buf []byte) MonitorUpdate {
	var m MonitorUpdate
	monitorSchema.unpack(buf, &m)
	return m
}
