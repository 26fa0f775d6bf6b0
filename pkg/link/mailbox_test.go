// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/minewatch/pkg/metrics"
	"github.com/Thermoquad/minewatch/pkg/position"
)

func pointAt(x float64) ClassifiedPoint {
	return ClassifiedPoint{Point: position.Point{X: x, Y: x}}
}

func TestMailbox_DeliversInOrder(t *testing.T) {
	m := NewMailbox(0, nil)

	m.PublishStatus(Status{Kind: StatusConnecting, Text: "connecting"})
	m.PublishPoint(pointAt(1))
	m.PublishPoint(pointAt(2))

	select {
	case <-m.C():
	default:
		t.Fatal("expected notification")
	}

	events := m.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, EventStatus, events[0].Kind)
	assert.Equal(t, float64(1), events[1].Point.Point.X)
	assert.Equal(t, float64(2), events[2].Point.Point.X)

	assert.Nil(t, m.Drain())
	assert.Equal(t, 0, m.Len())
}

func TestMailbox_DropsOldestWhenFull(t *testing.T) {
	rec := metrics.New()
	m := NewMailbox(3, rec)

	for i := 1; i <= 5; i++ {
		m.PublishPoint(pointAt(float64(i)))
	}

	events := m.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, float64(3), events[0].Point.Point.X)
	assert.Equal(t, float64(5), events[2].Point.Point.X)
	assert.Equal(t, uint64(2), m.Dropped())
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.DroppedEventsTotal))
}

func TestMailbox_ProducerNeverBlocks(t *testing.T) {
	m := NewMailbox(1, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			m.PublishPoint(pointAt(float64(i)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked with no consumer")
	}
	assert.Equal(t, 1, m.Len())
}

func TestMailbox_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers = 4
	const perProducer = 1000

	m := NewMailbox(producers*perProducer, nil)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				m.PublishPoint(ClassifiedPoint{Point: position.Point{X: float64(p), Y: float64(i)}})
			}
		}(p)
	}
	wg.Wait()

	events := m.Drain()
	require.Len(t, events, producers*perProducer)

	last := make([]float64, producers)
	for i := range last {
		last[i] = -1
	}
	for _, e := range events {
		p := int(e.Point.Point.X)
		assert.Greater(t, e.Point.Point.Y, last[p])
		last[p] = e.Point.Point.Y
	}
}

func TestMailbox_RunDeliversBatches(t *testing.T) {
	m := NewMailbox(0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var got []Event
	finished := make(chan struct{})
	go func() {
		m.Run(ctx, func(events []Event) {
			mu.Lock()
			got = append(got, events...)
			mu.Unlock()
		})
		close(finished)
	}()

	for i := 0; i < 10; i++ {
		m.PublishPoint(pointAt(float64(i)))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 10
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, e := range got {
		assert.Equal(t, float64(i), e.Point.Point.X)
	}
}

func TestSinkFunc(t *testing.T) {
	var got []Event
	var sink EventSink = SinkFunc(func(e Event) { got = append(got, e) })

	sink.PublishPoint(pointAt(7))
	sink.PublishStatus(Status{Kind: StatusIdle, Text: "idle"})

	require.Len(t, got, 2)
	assert.Equal(t, EventPoint, got[0].Kind)
	assert.Equal(t, "idle", got[1].Status.String())
}
