// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"fmt"

	"github.com/Thermoquad/minewatch/pkg/hazard"
)

const timestampFormat = "15:04:05.000"

// FormatPoint formats a classified point into a human-readable line
func FormatPoint(p ClassifiedPoint) string {
	result := fmt.Sprintf("[%s] POINT %s %s", p.Time.Format(timestampFormat), p.Point, p.Status)
	if p.Status != hazard.Safe {
		result += fmt.Sprintf(" zone=%d", p.Zone)
	}
	result += fmt.Sprintf(" distance=%.1fmm", p.Distance)
	return result
}

// FormatStatus formats a status event into a human-readable line
func FormatStatus(s Status) string {
	return fmt.Sprintf("[%s] %s %s", s.Time.Format(timestampFormat), s.Kind, s.Text)
}

// FormatEvent formats either event variant
func FormatEvent(e Event) string {
	if e.Kind == EventPoint {
		return FormatPoint(e.Point)
	}
	return FormatStatus(e.Status)
}
