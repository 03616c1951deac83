// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Aurelia Instruments

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/aurelia-instruments/duetctl/pkg/duet"
	"github.com/aurelia-instruments/duetctl/pkg/sysex"
)

// Connection provides a common interface for reading/writing bytes
// from serial or WebSocket
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = fmt.Errorf("websocket connection closed")

// WebSocketConnection wraps a WebSocket connection to a debug bridge
// for byte-level reading
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	// If we have buffered data, return it first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, err
		}

		// Only binary messages carry SysEx traffic
		if messageType != websocket.BinaryMessage {
			continue
		}

		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// OpenSerialConnection opens a serial port connection
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// GetPassword retrieves the bridge password from the environment or
// prompts the user
func GetPassword() (string, error) {
	if pw := os.Getenv("DUETCTL_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenConnection opens the connection selected by the persistent
// flags: --url wins over --port.
func OpenConnection() (Connection, string, error) {
	if wsURL != "" {
		password, err := GetPassword()
		if err != nil {
			return nil, "", err
		}
		conn, err := OpenWebSocketConnection(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, wsURL, nil
	}

	if portName == "" {
		return nil, "", fmt.Errorf("no connection specified (use --port or --url)")
	}

	conn, err := OpenSerialConnection(portName, baudRate)
	if err != nil {
		return nil, "", err
	}
	return conn, fmt.Sprintf("%s @ %d baud", portName, baudRate), nil
}

// frameTransport adapts a byte-stream Connection to duet.Transport by
// running the streaming decoder in a reader goroutine and delivering
// one complete wire message per handler call.
type frameTransport struct {
	conn Connection

	mu      sync.Mutex
	handler func([]byte)

	done chan struct{}
}

func newFrameTransport(conn Connection) *frameTransport {
	t := &frameTransport{
		conn: conn,
		done: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *frameTransport) Send(ctx context.Context, wire []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.conn.Write(wire)
	return err
}

func (t *frameTransport) SetHandler(handler func(wire []byte)) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

func (t *frameTransport) Close() error {
	close(t.done)
	return t.conn.Close()
}

func (t *frameTransport) readLoop() {
	decoder := sysex.NewDecoder()
	buf := make([]byte, 128)

	for {
		select {
		case <-t.done:
			return
		default:
		}

		n, err := t.conn.Read(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if err == ErrConnectionClosed {
				log.Warn().Msg("connection closed")
				return
			}
			// Brief pause before retry on transient errors (e.g. serial)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for i := 0; i < n; i++ {
			frame, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil {
				log.Debug().Err(decodeErr).Msg("decode error")
				continue
			}
			if frame == nil {
				continue
			}

			t.mu.Lock()
			handler := t.handler
			t.mu.Unlock()
			if handler != nil {
				handler(sysex.Build(frame.Command, frame.Payload))
			}
		}
	}
}

// openClient opens the configured connection and wraps it in a
// protocol client. The returned closer shuts both down.
func openClient() (*duet.Client, string, func(), error) {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return nil, "", nil, err
	}

	transport := newFrameTransport(conn)
	client := duet.NewClient(transport, duet.WithLogger(log))

	return client, connInfo, func() { transport.Close() }, nil
}
