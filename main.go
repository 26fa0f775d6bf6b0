// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Minewatch - Hazard Zone Position Monitor
//
// A CLI tool for tracking an object's reported position over a serial or
// WebSocket link and classifying it against known hazard zones.

package main

import (
	"os"

	"github.com/Thermoquad/minewatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
