// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/minewatch/pkg/config"
	"github.com/Thermoquad/minewatch/pkg/link"
)

var (
	v          = config.New()
	configFile string

	// WebSocket URL, an alternative to --port
	wsURL string

	// settings is resolved in PersistentPreRunE before any command runs
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "minewatch",
	Short: "Position tracker hazard monitor",
	Long: `Minewatch - A CLI tool for monitoring a tracked object's position against
circular hazard zones.

Reads distance[X,Y] frames (millimeters, 0-4000 on each axis) from a serial
port or WebSocket bridge, validates them and classifies each point as SAFE,
WARNING or MINE against the configured zones. The link is reopened every
2 seconds after a failure.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

With no port given, the first discovered serial port is used.

For WebSocket authentication, the password is read from the MINEWATCH_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Settings may also come from a config file (--config, or minewatch.yaml in the
working directory or ~/.config/minewatch) and MINEWATCH_* environment variables.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")

	// Serial connection flags
	flags.StringP("port", "p", "", "Serial port device (or ws:// URL)")
	flags.IntP("baud", "b", link.DefaultBaudRate, fmt.Sprintf("Baud rate (serial only, one of %v)", link.BaudRates))

	// WebSocket connection flags
	flags.StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.String("username", "", "Username for HTTP Basic auth")
	flags.Bool("no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Logging and metrics
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console or json)")
	flags.String("log-file", "", "Log file (defaults to minewatch.log in TUI mode)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100")

	bindFlag(config.KeyPort, "port")
	bindFlag(config.KeyBaud, "baud")
	bindFlag(config.KeyUsername, "username")
	bindFlag(config.KeyNoSSLVerify, "no-ssl-verify")
	bindFlag(config.KeyLogLevel, "log-level")
	bindFlag(config.KeyLogFormat, "log-format")
	bindFlag(config.KeyLogFile, "log-file")
	bindFlag(config.KeyMetricsAddr, "metrics-addr")
}

func bindFlag(key, name string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

// bindLocalFlag binds a command-local flag to a settings key
func bindLocalFlag(cmd *cobra.Command, key, name string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(err)
	}
}

func loadSettings(cmd *cobra.Command, args []string) error {
	if err := config.ReadFile(v, configFile); err != nil {
		return err
	}
	if wsURL != "" {
		v.Set(config.KeyPort, wsURL)
	}

	s, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = s
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
