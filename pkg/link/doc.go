// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package link owns the physical connection to the position tracker. A Reader
// streams one serial port or WebSocket bridge through the decode, validate and
// classify Pipeline and hands results to an EventSink. A Manager keeps at most
// one Reader alive and replaces it when the port or baud rate changes.
package link
