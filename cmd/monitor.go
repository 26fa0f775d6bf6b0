// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/minewatch/pkg/link"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive TUI showing the tracked object on the field map",
	Long: `Monitor the tracked object's position on a terminal field map.

The map shows the 4000 x 4000 mm field with each hazard zone's warning ring
and critical core. The latest point is drawn in green (SAFE), yellow (WARNING)
or red (MINE). Link state, statistics and recent events are shown alongside.

Keys:
  p  pick a serial port        b  pick a baud rate
  r  rescan serial ports       a  add a point by hand
  c  clear the current point   q  quit

Choosing a port or baud rate stops the current reader before the new one
starts. Logs are written to --log-file (minewatch.log by default) while the
TUI is running.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, settings, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	m := initialModel(sess.manager, link.ListPorts, sess.classifier, settings.Baud)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Forward delivered events to the TUI; each wakeup drains everything queued
	forwardCtx, cancelForward := context.WithCancel(ctx)
	defer cancelForward()
	go sess.mailbox.Run(forwardCtx, func(events []link.Event) {
		p.Send(eventsMsg(events))
	})

	if err := sess.start(); err != nil {
		return err
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
