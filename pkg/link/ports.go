// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortLister returns the names of the available serial ports
type PortLister func() ([]string, error)

// PortInfo describes a discovered serial port
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts returns the serial ports present on the system
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// DetailedPorts returns the serial ports with USB details where available
func DetailedPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return ports, nil
}

// DiscoverConfig selects the first available port. Returns ErrNoConfig when the
// system has no serial ports.
func DiscoverConfig(list PortLister, baudRate int) (*Config, error) {
	if list == nil {
		list = ListPorts
	}
	ports, err := list()
	if err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		return nil, ErrNoConfig
	}
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Config{Port: ports[0], BaudRate: baudRate}, nil
}
