// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/minewatch/pkg/link"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Long: `List the serial ports present on this system, with USB vendor and
product IDs where the platform reports them. The first port listed is the one
the monitor selects when --port is not given.`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := link.DetailedPorts()
	if err != nil {
		return err
	}
	printPorts(cmd.OutOrStdout(), ports)
	return nil
}

func printPorts(out io.Writer, ports []link.PortInfo) {
	if len(ports) == 0 {
		fmt.Fprintln(out, "No serial ports found")
		return
	}
	for _, p := range ports {
		if !p.IsUSB {
			fmt.Fprintf(out, "%s\n", p.Name)
			continue
		}
		line := fmt.Sprintf("%s  USB %s:%s", p.Name, p.VID, p.PID)
		if p.SerialNumber != "" {
			line += "  serial=" + p.SerialNumber
		}
		if p.Product != "" {
			line += "  " + p.Product
		}
		fmt.Fprintln(out, line)
	}
}
