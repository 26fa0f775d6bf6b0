// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/link"
)

// Exit codes for frame_test
const (
	exitFrameReceived = 0
	exitFrameTimeout  = 1
	exitLinkError     = 2
)

var frameTestTimeout time.Duration

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid position frame",
	Long: `Wait for a valid distance[X,Y] frame on the connection until timeout.

This command opens the serial port or WebSocket once (no reconnect) and waits
for a complete frame whose coordinates fall inside the field. Noise bytes are
ignored; out-of-field frames are reported and skipped.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking wiring and baud rate before starting the monitor.`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().DurationVar(&frameTestTimeout, "timeout", 10*time.Second, "Time to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	cfg, err := resolveLinkConfig(settings, nil)
	if err == nil && cfg == nil {
		err = link.ErrNoConfig
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(exitLinkError)
	}

	opener, err := newOpener(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(exitLinkError)
	}

	classifier, err := settings.Classifier()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Minewatch - Frame Test\n")
	fmt.Fprintf(out, "Connection: %s\n", cfg)
	fmt.Fprintf(out, "Timeout: %s\n", frameTestTimeout)
	fmt.Fprintf(out, "Waiting for valid position frame...\n\n")

	ctx, cancel := context.WithTimeout(cmd.Context(), frameTestTimeout)
	defer cancel()

	point, err := waitForFrame(ctx, opener, *cfg, classifier, settings.MaxBuffer, out)
	switch {
	case err == nil:
		fmt.Fprintf(out, "SUCCESS: Received valid frame\n")
		fmt.Fprintf(out, "  Point: %s\n", point.Point)
		fmt.Fprintf(out, "  Status: %s\n", point.Status)
		fmt.Fprintf(out, "  Distance: %.1f mm\n", point.Distance)
		os.Exit(exitFrameReceived)

	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %s\n", frameTestTimeout)
		os.Exit(exitFrameTimeout)

	default:
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(exitLinkError)
	}
	return nil
}

// waitForFrame opens cfg once and returns the first accepted point. Rejected
// frames are written to out. Returns ctx.Err() on timeout.
func waitForFrame(ctx context.Context, opener link.Opener, cfg link.Config, classifier *hazard.Classifier, maxBuffer int, out io.Writer) (link.ClassifiedPoint, error) {
	conn, err := opener(ctx, cfg)
	if err != nil {
		return link.ClassifiedPoint{}, err
	}
	defer conn.Close()

	pointChan := make(chan link.ClassifiedPoint, 1)
	errChan := make(chan error, 1)

	sink := link.SinkFunc(func(e link.Event) {
		switch e.Kind {
		case link.EventPoint:
			select {
			case pointChan <- e.Point:
			default:
			}
		case link.EventStatus:
			fmt.Fprintf(out, "(%s)\n", e.Status.Text)
		}
	})
	pipeline := link.NewPipeline(classifier, sink, maxBuffer, nil, zerolog.Nop())

	go func() {
		buf := make([]byte, link.DefaultReadBufferSize)
		for {
			n, err := conn.Read(buf)
			if n > 0 && pipeline.Process(buf[:n]) > 0 {
				return
			}
			if err != nil {
				errChan <- err
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	select {
	case p := <-pointChan:
		return p, nil
	case err := <-errChan:
		return link.ClassifiedPoint{}, err
	case <-ctx.Done():
		return link.ClassifiedPoint{}, ctx.Err()
	}
}
