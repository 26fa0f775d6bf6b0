// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNoConfig is returned when no port has been selected or discovered
	ErrNoConfig = errors.New("no port selected")
	// ErrUnsupportedBaud is returned for baud rates outside BaudRates
	ErrUnsupportedBaud = errors.New("unsupported baud rate")
	// ErrManagerClosed is returned by SetConfig after Close
	ErrManagerClosed = errors.New("link manager closed")
)

// BaudRates is the fixed set of selectable baud rates
var BaudRates = []int{9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

// DefaultBaudRate is used when no baud rate is configured
const DefaultBaudRate = 115200

// Config identifies the physical link to read from. Port is a serial device
// path, or a ws:// or wss:// URL for a WebSocket bridge.
type Config struct {
	Port     string
	BaudRate int
}

// IsWebSocket reports whether Port is a WebSocket URL
func (c Config) IsWebSocket() bool {
	return strings.HasPrefix(c.Port, "ws://") || strings.HasPrefix(c.Port, "wss://")
}

// Validate checks the port is set and the baud rate is supported
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return ErrNoConfig
	}
	if c.IsWebSocket() {
		return nil
	}
	if !slices.Contains(BaudRates, c.BaudRate) {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaud, c.BaudRate)
	}
	return nil
}

// String returns a human-readable description of the link
func (c Config) String() string {
	if c.IsWebSocket() {
		return fmt.Sprintf("WebSocket: %s", c.Port)
	}
	return fmt.Sprintf("Serial: %s @ %d baud", c.Port, c.BaudRate)
}
