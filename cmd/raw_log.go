// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/minewatch/pkg/config"
	"github.com/Thermoquad/minewatch/pkg/link"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display classified points and link status in text form",
	Long: `Continuously decode, classify and display position frames as they arrive.

Each accepted point is printed with a timestamp, its coordinates and its
safety status. Link state changes, read errors and rejected frames are printed
as they happen. A statistics summary is printed every --stats-interval
(0 disables it).

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().Duration("stats-interval", 10*time.Second, "Statistics summary interval")
	bindLocalFlag(rawLogCmd, config.KeyStatsInterval, "stats-interval")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, settings, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Minewatch - Raw Point Log\n")
	fmt.Fprintf(out, "Zones: %d | Footprint: %gx%g mm\n", len(sess.classifier.Zones()), sess.classifier.Footprint().Width, sess.classifier.Footprint().Height)
	fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")

	if err := sess.start(); err != nil {
		return err
	}

	printEvents(ctx, sess.mailbox, out, settings.StatsInterval)
	return nil
}

// printEvents writes every delivered event to out until ctx is cancelled,
// with a statistics summary every interval
func printEvents(ctx context.Context, mailbox *link.Mailbox, out io.Writer, interval time.Duration) {
	stats := link.NewStatistics()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			fmt.Fprintf(out, "\n%s\n", stats.String())
		case <-mailbox.C():
			for _, e := range mailbox.Drain() {
				stats.Update(e)
				fmt.Fprintln(out, link.FormatEvent(e))
			}
		}
	}
}
