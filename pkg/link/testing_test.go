// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var errFakeRead = errors.New("fake read failure")

// fakeConn serves scripted chunks, then blocks until closed or fails
type fakeConn struct {
	chunks  chan []byte
	failErr error
	repeat  []byte

	closeOnce sync.Once
	closed    chan struct{}
	onClose   func()
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		chunks: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.repeat != nil {
		select {
		case <-c.closed:
			return 0, io.ErrClosedPipe
		case <-time.After(time.Millisecond):
			return copy(p, c.repeat), nil
		}
	}

	select {
	case <-c.closed:
		return 0, io.ErrClosedPipe
	case chunk, ok := <-c.chunks:
		if !ok {
			if c.failErr != nil {
				return 0, c.failErr
			}
			<-c.closed
			return 0, io.ErrClosedPipe
		}
		return copy(p, chunk), nil
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.onClose != nil {
			c.onClose()
		}
	})
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type openCall struct {
	cfg  Config
	time time.Time
}

// fakeOpener hands out connections produced by next and tracks how many are
// open at once
type fakeOpener struct {
	mu    sync.Mutex
	calls []openCall
	next  func(n int, cfg Config) (*fakeConn, error)

	open    atomic.Int32
	maxOpen atomic.Int32
}

func (o *fakeOpener) Open(ctx context.Context, cfg Config) (Conn, error) {
	o.mu.Lock()
	n := len(o.calls)
	o.calls = append(o.calls, openCall{cfg: cfg, time: time.Now()})
	o.mu.Unlock()

	conn, err := o.next(n, cfg)
	if err != nil {
		return nil, err
	}

	cur := o.open.Add(1)
	for {
		peak := o.maxOpen.Load()
		if cur <= peak || o.maxOpen.CompareAndSwap(peak, cur) {
			break
		}
	}
	conn.onClose = func() { o.open.Add(-1) }
	return conn, nil
}

func (o *fakeOpener) Calls() []openCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]openCall(nil), o.calls...)
}

// recordingSink collects events in delivery order
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) PublishPoint(p ClassifiedPoint) {
	s.mu.Lock()
	s.events = append(s.events, Event{Kind: EventPoint, Point: p})
	s.mu.Unlock()
}

func (s *recordingSink) PublishStatus(st Status) {
	s.mu.Lock()
	s.events = append(s.events, Event{Kind: EventStatus, Status: st})
	s.mu.Unlock()
}

func (s *recordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *recordingSink) Points() []ClassifiedPoint {
	var points []ClassifiedPoint
	for _, e := range s.Events() {
		if e.Kind == EventPoint {
			points = append(points, e.Point)
		}
	}
	return points
}

func (s *recordingSink) StatusKinds() []StatusKind {
	var kinds []StatusKind
	for _, e := range s.Events() {
		if e.Kind == EventStatus {
			kinds = append(kinds, e.Status.Kind)
		}
	}
	return kinds
}
