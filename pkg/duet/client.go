// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aurelia Instruments

package duet

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurelia-instruments/duetctl/pkg/sysex"
)

// DefaultTimeout bounds every request/response exchange unless the
// caller's context expires first.
const DefaultTimeout = 1000 * time.Millisecond

// DefaultADCSamples is the sample count used by ReadADCAverage when
// the caller passes zero.
const DefaultADCSamples = 10

// Client drives the Duet SysEx command set over an injected
// Transport. It is a cooperative, non-reentrant state machine: at
// most one transaction may be outstanding, and transactions are
// mutually exclusive with streaming telemetry. Overlapping calls are
// rejected with ErrBusy rather than queued.
type Client struct {
	transport Transport
	log       zerolog.Logger
	timeout   time.Duration

	// txMu is the single-transaction permit. TryLock instead of Lock
	// so an overlapping call fails fast without touching the wire.
	txMu   sync.Mutex
	respCh chan *sysex.Frame

	stateMu   sync.Mutex
	streaming bool
	onMonitor func(MonitorUpdate)

	revision int // cached hardware revision, 0 until read
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the debug logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout overrides DefaultTimeout for every exchange.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient wraps a transport. The client registers itself as the
// transport's inbound handler; the transport stays caller-owned.
func NewClient(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		log:       zerolog.Nop(),
		timeout:   DefaultTimeout,
		respCh:    make(chan *sysex.Frame, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	t.SetHandler(c.dispatch)
	return c
}

// dispatch routes every inbound frame either to the streaming
// callback or to the pending transaction's waiter, never both.
// Monitor snapshots carry the MONITOR command byte; anything else
// received while streaming is treated as a transaction response.
func (c *Client) dispatch(wire []byte) {
	frame, err := sysex.Parse(wire)
	if err != nil {
		c.log.Debug().Err(err).Int("len", len(wire)).Msg("dropping undecodable frame")
		return
	}

	c.stateMu.Lock()
	streaming, onMonitor := c.streaming, c.onMonitor
	c.stateMu.Unlock()

	if streaming && frame.Command == sysex.CmdMonitor {
		if onMonitor != nil {
			onMonitor(UnpackMonitorUpdate(frame.Payload))
		}
		return
	}

	select {
	case c.respCh <- frame:
	default:
		c.log.Debug().Str("cmd", sysex.CommandName(frame.Command)).Msg("discarding unsolicited frame")
	}
}

func (c *Client) isStreaming() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.streaming
}

// roundTrip sends one framed request and waits for the next inbound
// frame, the client timeout, or the caller's context.
func (c *Client) roundTrip(ctx context.Context, command byte, payload []byte) (*sysex.Frame, error) {
	if !c.txMu.TryLock() {
		return nil, fmt.Errorf("%w: %s rejected", ErrBusy, sysex.CommandName(command))
	}
	defer c.txMu.Unlock()

	if c.isStreaming() {
		return nil, fmt.Errorf("%w: monitoring is active", ErrBusy)
	}

	// A caller that abandoned an earlier call may have left its late
	// response behind.
	select {
	case stale := <-c.respCh:
		c.log.Debug().Str("cmd", sysex.CommandName(stale.Command)).Msg("discarding stale response")
	default:
	}

	if err := c.transport.Send(ctx, sysex.Build(command, payload)); err != nil {
		return nil, fmt.Errorf("send %s: %w", sysex.CommandName(command), err)
	}
	c.log.Debug().Str("cmd", sysex.CommandName(command)).Int("payload", len(payload)).Msg("request")

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case frame := <-c.respCh:
		c.log.Debug().Str("cmd", sysex.CommandName(frame.Command)).Int("payload", len(frame.Payload)).Msg("response")
		return frame, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, sysex.CommandName(command), c.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// send transmits a command the device never acknowledges.
func (c *Client) send(ctx context.Context, command byte, payload []byte) error {
	if !c.txMu.TryLock() {
		return fmt.Errorf("%w: %s rejected", ErrBusy, sysex.CommandName(command))
	}
	defer c.txMu.Unlock()

	if c.isStreaming() {
		return fmt.Errorf("%w: monitoring is active", ErrBusy)
	}

	c.log.Debug().Str("cmd", sysex.CommandName(command)).Int("payload", len(payload)).Msg("send")
	return c.transport.Send(ctx, sysex.Build(command, payload))
}

// Version reads the firmware version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	frame, err := c.roundTrip(ctx, sysex.CmdHello, nil)
	if err != nil {
		return "", err
	}
	return string(frame.Payload), nil
}

// SerialNumber reads the 16-byte device serial (rendered as hex) and
// the hardware revision. Firmware that predates the revision byte
// reports DefaultHardwareRevision.
func (c *Client) SerialNumber(ctx context.Context) (string, int, error) {
	frame, err := c.roundTrip(ctx, sysex.CmdGetSerialNumber, nil)
	if err != nil {
		return "", 0, err
	}
	if len(frame.Payload) < 16 {
		return "", 0, fmt.Errorf("%w: serial number payload is %d bytes", ErrResponse, len(frame.Payload))
	}

	revision := DefaultHardwareRevision
	if len(frame.Payload) > 16 {
		revision = int(frame.Payload[16])
	}

	c.stateMu.Lock()
	c.revision = revision
	c.stateMu.Unlock()

	return hex.EncodeToString(frame.Payload[:16]), revision, nil
}

// HardwareRevision returns the cached hardware revision, reading the
// serial number first if no exchange has established it yet.
func (c *Client) HardwareRevision(ctx context.Context) (int, error) {
	c.stateMu.Lock()
	rev := c.revision
	c.stateMu.Unlock()
	if rev != 0 {
		return rev, nil
	}
	_, rev, err := c.SerialNumber(ctx)
	return rev, err
}

// LoadSettings reads and decodes the module's persisted settings.
func (c *Client) LoadSettings(ctx context.Context) (Settings, error) {
	frame, err := c.roundTrip(ctx, sysex.CmdReadSettings, nil)
	if err != nil {
		return Settings{}, err
	}
	return UnpackSettings(frame.Payload), nil
}

// SaveSettings writes the full settings record and waits for the
// device to acknowledge the NVM write.
func (c *Client) SaveSettings(ctx context.Context, s Settings) error {
	_, err := c.roundTrip(ctx, sysex.CmdWriteSettings, s.Pack())
	return err
}

// ResetSettings restores factory defaults on the device.
func (c *Client) ResetSettings(ctx context.Context) error {
	return c.send(ctx, sysex.CmdResetSettings, nil)
}

// ReadADC reads one raw code from an ADC channel.
func (c *Client) ReadADC(ctx context.Context, ch ADCChannel) (uint16, error) {
	frame, err := c.roundTrip(ctx, sysex.CmdReadADC, []byte{byte(ch)})
	if err != nil {
		return 0, err
	}
	if len(frame.Payload) < 2 {
		return 0, fmt.Errorf("%w: ADC payload is %d bytes", ErrResponse, len(frame.Payload))
	}
	return binary.BigEndian.Uint16(frame.Payload[:2]), nil
}

// ReadADCAverage reads a channel samples times sequentially and
// returns the arithmetic mean. Latency is linear in samples; there
// is no pipelining.
func (c *Client) ReadADCAverage(ctx context.Context, ch ADCChannel, samples int) (float64, error) {
	if samples <= 0 {
		samples = DefaultADCSamples
	}

	sum := 0.0
	for i := 0; i < samples; i++ {
		code, err := c.ReadADC(ctx, ch)
		if err != nil {
			return 0, err
		}
		sum += float64(code)
	}
	return sum / float64(samples), nil
}

// ReadADCVolts reads a channel and converts the code to volts using
// the device's hardware revision.
func (c *Client) ReadADCVolts(ctx context.Context, ch ADCChannel) (float64, error) {
	rev, err := c.HardwareRevision(ctx)
	if err != nil {
		return 0, err
	}
	code, err := c.ReadADC(ctx, ch)
	if err != nil {
		return 0, err
	}
	return CodeToVolts(rev, code), nil
}

// WriteLUTEntry writes one calibration row: the oscillator timer
// period and the charge DAC codes for both oscillators.
func (c *Client) WriteLUTEntry(ctx context.Context, entry uint8, period uint32, castor, pollux uint16) error {
	payload := make([]byte, 9)
	payload[0] = entry
	binary.BigEndian.PutUint32(payload[1:5], period)
	binary.BigEndian.PutUint16(payload[5:7], castor)
	binary.BigEndian.PutUint16(payload[7:9], pollux)

	_, err := c.roundTrip(ctx, sysex.CmdWriteLUTEntry, payload)
	return err
}

// WriteLUT persists the staged calibration table to NVM.
func (c *Client) WriteLUT(ctx context.Context) error {
	return c.send(ctx, sysex.CmdWriteLUT, nil)
}

// EraseLUT erases the persisted calibration table.
func (c *Client) EraseLUT(ctx context.Context) error {
	return c.send(ctx, sysex.CmdEraseLUT, nil)
}

// SetDAC sets all four charge DAC channels directly.
func (c *Client) SetDAC(ctx context.Context, ch0, ch1, ch2, ch3 uint16) error {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint16(payload[0:2], ch0)
	binary.BigEndian.PutUint16(payload[2:4], ch1)
	binary.BigEndian.PutUint16(payload[4:6], ch2)
	binary.BigEndian.PutUint16(payload[6:8], ch3)
	return c.send(ctx, sysex.CmdSetDAC, payload)
}

// SetFrequency sets one oscillator to a frequency in Hz.
func (c *Client) SetFrequency(ctx context.Context, osc uint8, hz float64) error {
	payload := make([]byte, 5)
	payload[0] = osc
	binary.BigEndian.PutUint32(payload[1:5], EncodeFix16(hz))
	return c.send(ctx, sysex.CmdSetFrequency, payload)
}

// SetADCGainError writes the ADC gain correction as a 1.11
// fixed-point factor.
func (c *Client) SetADCGainError(ctx context.Context, gain float64) error {
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, uint16(gain*2048))
	return c.send(ctx, sysex.CmdWriteADCGain, payload)
}

// SetADCOffsetError writes the ADC offset correction in codes.
func (c *Client) SetADCOffsetError(ctx context.Context, offset int16) error {
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, uint16(offset))
	return c.send(ctx, sysex.CmdWriteADCOffset, payload)
}

// EnableADCCorrection turns on-device ADC error correction on.
func (c *Client) EnableADCCorrection(ctx context.Context) error {
	return c.send(ctx, sysex.CmdEnableADCCorr, nil)
}

// DisableADCCorrection turns on-device ADC error correction off.
func (c *Client) DisableADCCorrection(ctx context.Context) error {
	return c.send(ctx, sysex.CmdDisableADCCorr, nil)
}

// EnterCalibration puts the module into calibration mode.
func (c *Client) EnterCalibration(ctx context.Context) error {
	return c.send(ctx, sysex.CmdEnterCalibration, nil)
}

// SoftReset restarts the firmware.
func (c *Client) SoftReset(ctx context.Context) error {
	return c.send(ctx, sysex.CmdSoftReset, nil)
}

// ResetIntoBootloader restarts the module into its UF2 bootloader.
func (c *Client) ResetIntoBootloader(ctx context.Context) error {
	return c.send(ctx, sysex.CmdResetIntoBootloader, nil)
}

// EnableMonitor enters streaming mode. Every MONITOR frame the
// module sends is decoded and delivered to fn from the transport's
// reader context until DisableMonitor. Entering while a transaction
// is outstanding fails with ErrBusy; entry and exit are guarded like
// any other transaction so the transition is atomic.
func (c *Client) EnableMonitor(ctx context.Context, fn func(MonitorUpdate)) error {
	if !c.txMu.TryLock() {
		return fmt.Errorf("%w: MONITOR rejected", ErrBusy)
	}
	defer c.txMu.Unlock()

	if c.isStreaming() {
		return fmt.Errorf("%w: monitoring already active", ErrBusy)
	}

	if err := c.transport.Send(ctx, sysex.Build(sysex.CmdMonitor, []byte{1})); err != nil {
		return fmt.Errorf("send MONITOR: %w", err)
	}

	c.stateMu.Lock()
	c.streaming = true
	c.onMonitor = fn
	c.stateMu.Unlock()

	c.log.Debug().Msg("monitor enabled")
	return nil
}

// DisableMonitor leaves streaming mode. Telemetry frames still in
// flight when the toggle lands are discarded by dispatch.
func (c *Client) DisableMonitor(ctx context.Context) error {
	if !c.txMu.TryLock() {
		return fmt.Errorf("%w: MONITOR rejected", ErrBusy)
	}
	defer c.txMu.Unlock()

	if err := c.transport.Send(ctx, sysex.Build(sysex.CmdMonitor, []byte{0})); err != nil {
		return fmt.Errorf("send MONITOR: %w", err)
	}

	c.stateMu.Lock()
	c.streaming = false
	c.onMonitor = nil
	c.stateMu.Unlock()

	c.log.Debug().Msg("monitor disabled")
	return nil
}

// Streaming reports whether the client is in streaming mode.
func (c *Client) Streaming() bool {
	return c.isStreaming()
}
