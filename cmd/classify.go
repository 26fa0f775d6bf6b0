// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/position"
)

var classifyCmd = &cobra.Command{
	Use:   "classify X Y",
	Short: "Classify a single point against the configured zones",
	Long: `Validate and classify one point offline, without opening a link.

X and Y are in millimeters and must lie within 0-4000. The configured zones
and footprint are used, so this is a quick way to check a config file.`,
	Args: cobra.ExactArgs(2),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	classifier, err := settings.Classifier()
	if err != nil {
		return err
	}
	return classifyPoint(cmd.OutOrStdout(), classifier, args[0], args[1])
}

func classifyPoint(out io.Writer, classifier *hazard.Classifier, xText, yText string) error {
	p, verr := position.ParseManual(xText, yText)
	if verr != nil {
		return verr
	}

	res := classifier.Classify(p)
	fmt.Fprintf(out, "Point:    %s\n", p)
	fmt.Fprintf(out, "Status:   %s\n", res.Status)
	if res.Zone >= 0 {
		fmt.Fprintf(out, "Zone:     %d (%s)\n", res.Zone, classifier.Zones()[res.Zone])
	}
	fmt.Fprintf(out, "Distance: %.1f mm to nearest zone center\n", res.Distance)
	return nil
}
