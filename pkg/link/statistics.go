// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"fmt"
	"time"

	"github.com/Thermoquad/minewatch/pkg/hazard"
)

// Statistics tracks point and link event counts on the consumer side
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPoints   uint64
	SafePoints    uint64
	WarningPoints uint64
	MinePoints    uint64
	Rejected      uint64
	LinkErrors    uint64
	Connects      uint64

	// Rates (calculated)
	PointRate float64 // points/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update counts one delivered event
func (s *Statistics) Update(e Event) {
	switch e.Kind {
	case EventPoint:
		s.TotalPoints++
		switch e.Point.Status {
		case hazard.Safe:
			s.SafePoints++
		case hazard.Warning:
			s.WarningPoints++
		case hazard.Mine:
			s.MinePoints++
		}
	case EventStatus:
		switch e.Status.Kind {
		case StatusRejected:
			s.Rejected++
		case StatusLinkError:
			s.LinkErrors++
		case StatusConnecting:
			s.Connects++
		default:
			return
		}
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates point and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PointRate = float64(s.TotalPoints) / elapsed
		s.ErrorRate = float64(s.Rejected+s.LinkErrors) / elapsed
	}
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Points:    %8d\n", s.TotalPoints)
	result += fmt.Sprintf("  Safe:          %8d (%.1f%%)\n", s.SafePoints, percent(s.SafePoints, s.TotalPoints))
	result += fmt.Sprintf("  Warning:       %8d (%.1f%%)\n", s.WarningPoints, percent(s.WarningPoints, s.TotalPoints))
	result += fmt.Sprintf("  Mine:          %8d (%.1f%%)\n", s.MinePoints, percent(s.MinePoints, s.TotalPoints))

	if s.Rejected > 0 {
		result += fmt.Sprintf("Rejected Frames: %8d\n", s.Rejected)
	}
	if s.LinkErrors > 0 {
		result += fmt.Sprintf("Link Errors:     %8d\n", s.LinkErrors)
	}
	if s.Connects > 1 {
		result += fmt.Sprintf("Reconnects:      %8d\n", s.Connects-1)
	}

	result += fmt.Sprintf("Point Rate:      %8.1f pts/sec\n", s.PointRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
