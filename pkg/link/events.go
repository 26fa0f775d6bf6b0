// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"time"

	"github.com/Thermoquad/minewatch/pkg/hazard"
	"github.com/Thermoquad/minewatch/pkg/position"
)

// ClassifiedPoint is an accepted point with its safety status
type ClassifiedPoint struct {
	Point    position.Point
	Status   hazard.Status
	Zone     int
	Distance float64
	Time     time.Time
}

// StatusKind categorizes status events
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusConnecting
	StatusAwaiting
	StatusStreaming
	StatusLinkError
	StatusRejected
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "IDLE"
	case StatusConnecting:
		return "CONNECTING"
	case StatusAwaiting:
		return "AWAITING"
	case StatusStreaming:
		return "STREAMING"
	case StatusLinkError:
		return "LINK_ERROR"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Status is a human readable status or diagnostic line
type Status struct {
	Kind StatusKind
	Text string
	Time time.Time
}

func (s Status) String() string {
	return s.Text
}

// EventSink receives classified points and status text. Both methods are
// called from the reader goroutine and must not block.
type EventSink interface {
	PublishPoint(ClassifiedPoint)
	PublishStatus(Status)
}

// EventKind distinguishes the two event variants
type EventKind int

const (
	EventPoint EventKind = iota
	EventStatus
)

// Event is one queued sink delivery
type Event struct {
	Kind   EventKind
	Point  ClassifiedPoint
	Status Status
}

// SinkFunc adapts a single callback to EventSink
type SinkFunc func(Event)

func (f SinkFunc) PublishPoint(p ClassifiedPoint) { f(Event{Kind: EventPoint, Point: p}) }

func (f SinkFunc) PublishStatus(s Status) { f(Event{Kind: EventStatus, Status: s}) }
