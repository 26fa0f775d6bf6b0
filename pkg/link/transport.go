// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
)

const (
	// DefaultReadTimeout bounds each link read so teardown is observed promptly
	DefaultReadTimeout = 1 * time.Second
	// DefaultIdleTimeout is how long a WebSocket may stay silent, pongs
	// included, before the link is treated as failed
	DefaultIdleTimeout = 10 * time.Second
)

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// Conn is an open physical link
type Conn = io.ReadCloser

// Opener opens the link described by cfg
type Opener func(ctx context.Context, cfg Config) (Conn, error)

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// OpenSerial opens a serial port 8N1 with a bounded read timeout
func OpenSerial(cfg Config, readTimeout time.Duration) (*SerialConnection, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Port, err)
	}

	return &SerialConnection{port: port}, nil
}

// WebSocketOptions configures the WebSocket transport
type WebSocketOptions struct {
	Username         string
	Password         string
	SkipTLSVerify    bool
	HandshakeTimeout time.Duration

	// ReadTimeout bounds each Read. A Read that sees no message in time
	// returns (0, nil).
	ReadTimeout time.Duration
	// IdleTimeout fails the link when neither a message nor a pong arrives
	// within it. Pings are sent well inside the window.
	IdleTimeout time.Duration
}

// WebSocketConnection wraps a WebSocket connection for byte-level reading.
// Text and binary messages are both treated as stream bytes.
type WebSocketConnection struct {
	conn        *websocket.Conn
	readTimeout time.Duration

	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once

	buf       []byte
	bufOffset int

	mu  sync.Mutex
	err error
}

func newWebSocketConnection(conn *websocket.Conn, readTimeout, idleTimeout time.Duration) *WebSocketConnection {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	w := &WebSocketConnection{
		conn:        conn,
		readTimeout: readTimeout,
		messages:    make(chan []byte),
		done:        make(chan struct{}),
	}

	// Deadline and pong handler are only touched from the read pump
	extend := func() {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	extend()
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	go w.readPump(extend)
	go w.pingLoop(idleTimeout * 9 / 10)
	return w
}

// readPump owns every read on the socket. A read deadline leaves a gorilla
// connection unusable, so an expired idle deadline ends the pump for good.
func (w *WebSocketConnection) readPump(extend func()) {
	defer close(w.messages)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
			return
		}
		extend()

		if messageType != websocket.BinaryMessage && messageType != websocket.TextMessage {
			continue
		}

		select {
		case w.messages <- data:
		case <-w.done:
			return
		}
	}
}

func (w *WebSocketConnection) pingLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(period)); err != nil {
				return
			}
		}
	}
}

func (w *WebSocketConnection) isClosed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *WebSocketConnection) readErr() error {
	if w.isClosed() {
		return ErrConnectionClosed
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		return ErrConnectionClosed
	}
	return w.err
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.isClosed() {
		return 0, ErrConnectionClosed
	}

	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	timer := time.NewTimer(w.readTimeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return 0, ErrConnectionClosed
	case data, ok := <-w.messages:
		if !ok {
			return 0, w.readErr()
		}
		w.buf = data
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	case <-timer.C:
		return 0, nil
	}
}

func (w *WebSocketConnection) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return w.conn.Close()
}

// OpenWebSocket dials a ws:// or wss:// URL with optional HTTP Basic auth
func OpenWebSocket(ctx context.Context, wsURL string, opts WebSocketOptions) (*WebSocketConnection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	handshakeTimeout := opts.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: opts.SkipTLSVerify,
		}
	}

	headers := http.Header{}
	if opts.Username != "" && opts.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(opts.Username + ":" + opts.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	dialCtx, cancel := context.WithTimeout(ctx, handshakeTimeout+5*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return newWebSocketConnection(conn, opts.ReadTimeout, opts.IdleTimeout), nil
}

// DefaultOpener opens a WebSocket for ws:// and wss:// ports and a serial port
// otherwise
func DefaultOpener(wsOpts WebSocketOptions, readTimeout time.Duration) Opener {
	if wsOpts.ReadTimeout <= 0 {
		wsOpts.ReadTimeout = readTimeout
	}
	return func(ctx context.Context, cfg Config) (Conn, error) {
		if cfg.IsWebSocket() {
			return OpenWebSocket(ctx, cfg.Port, wsOpts)
		}
		return OpenSerial(cfg, readTimeout)
	}
}
