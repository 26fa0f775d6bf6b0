// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"sync"

	"github.com/Thermoquad/minewatch/pkg/metrics"
)

// DefaultMailboxCapacity is the number of undelivered events held before the
// oldest are dropped
const DefaultMailboxCapacity = 1024

// Mailbox is an EventSink that queues events for a consumer running elsewhere.
// Producers never block. Events are delivered in publish order, at most once.
//
// Delivery is bounded rather than at-least-once: when the consumer falls more
// than capacity events behind, the oldest queued events are dropped so the
// reader goroutine keeps pace with the link. Drops are counted by Dropped and
// the recorder; the newest point always survives.
type Mailbox struct {
	mu       sync.Mutex
	queue    []Event
	capacity int
	dropped  uint64
	notify   chan struct{}
	recorder metrics.Recorder
}

// NewMailbox creates a mailbox; capacity <= 0 selects DefaultMailboxCapacity
func NewMailbox(capacity int, recorder metrics.Recorder) *Mailbox {
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Mailbox{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		recorder: recorder,
	}
}

func (m *Mailbox) PublishPoint(p ClassifiedPoint) {
	m.push(Event{Kind: EventPoint, Point: p})
}

func (m *Mailbox) PublishStatus(s Status) {
	m.push(Event{Kind: EventStatus, Status: s})
}

func (m *Mailbox) push(e Event) {
	m.mu.Lock()
	drop := 0
	if len(m.queue) >= m.capacity {
		drop = len(m.queue) - m.capacity + 1
		m.queue = m.queue[drop:]
		m.dropped += uint64(drop)
	}
	m.queue = append(m.queue, e)
	m.mu.Unlock()

	if drop > 0 {
		m.recorder.EventsDropped(drop)
	}

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// C is signalled whenever events become available
func (m *Mailbox) C() <-chan struct{} {
	return m.notify
}

// Drain removes and returns all queued events in publish order
func (m *Mailbox) Drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil
	}
	events := m.queue
	m.queue = nil
	return events
}

// Len returns the number of queued events
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Dropped returns the total number of events discarded for capacity
func (m *Mailbox) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Run delivers drained batches to fn until ctx is cancelled
func (m *Mailbox) Run(ctx context.Context, fn func([]Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.notify:
			if events := m.Drain(); len(events) > 0 {
				fn(events)
			}
		}
	}
}
