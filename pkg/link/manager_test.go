// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package link

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/minewatch/pkg/hazard"
)

func TestManager_ConfigChangeStopsOldReaderFirst(t *testing.T) {
	cfgA := Config{Port: "/dev/ttyA", BaudRate: 115200}
	cfgB := Config{Port: "/dev/ttyB", BaudRate: 9600}

	connA := newFakeConn()
	connA.repeat = []byte("distance[1,1]")
	connB := newFakeConn()
	connB.repeat = []byte("distance[2000,2000]")

	opener := &fakeOpener{next: func(_ int, cfg Config) (*fakeConn, error) {
		if cfg == cfgA {
			return connA, nil
		}
		return connB, nil
	}}

	mailbox := NewMailbox(1<<20, nil)
	m := NewManager(context.Background(), opener.Open, hazard.MustDefault(), mailbox, testReaderOptions(time.Hour, nil))
	defer m.Close()

	require.NoError(t, m.SetConfig(&cfgA))

	var events []Event
	pointsFrom := func(x float64) int {
		n := 0
		for _, e := range events {
			if e.Kind == EventPoint && e.Point.Point.X == x {
				n++
			}
		}
		return n
	}

	require.Eventually(t, func() bool {
		events = append(events, mailbox.Drain()...)
		return pointsFrom(1) >= 5
	}, time.Second, time.Millisecond)

	require.NoError(t, m.SetConfig(&cfgB))
	assert.True(t, connA.isClosed(), "old handle must be closed before SetConfig returns")

	require.Eventually(t, func() bool {
		events = append(events, mailbox.Drain()...)
		return pointsFrom(2000) >= 5
	}, time.Second, time.Millisecond)

	m.Close()
	events = append(events, mailbox.Drain()...)

	firstB := -1
	for i, e := range events {
		if e.Kind == EventPoint && e.Point.Point.X == 2000 {
			firstB = i
			break
		}
	}
	require.GreaterOrEqual(t, firstB, 0)
	for _, e := range events[firstB:] {
		if e.Kind == EventPoint {
			assert.NotEqual(t, float64(1), e.Point.Point.X, "old reader delivered after the new reader started")
		}
	}

	assert.Equal(t, int32(1), opener.maxOpen.Load())
	assert.Equal(t, &cfgB, m.Config())
}

func TestManager_NilConfigIsIdle(t *testing.T) {
	opener := &fakeOpener{next: func(int, Config) (*fakeConn, error) { return newFakeConn(), nil }}
	sink := &recordingSink{}

	m := NewManager(context.Background(), opener.Open, hazard.MustDefault(), sink, testReaderOptions(time.Hour, nil))
	defer m.Close()

	require.NoError(t, m.SetConfig(nil))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, opener.Calls())
	assert.Nil(t, m.Config())
	assert.Equal(t, Disconnected, m.State())
	assert.Equal(t, []StatusKind{StatusIdle}, sink.StatusKinds())
}

func TestManager_NilConfigStopsActiveReader(t *testing.T) {
	conn := newFakeConn()
	opener := &fakeOpener{next: func(int, Config) (*fakeConn, error) { return conn, nil }}

	m := NewManager(context.Background(), opener.Open, hazard.MustDefault(), &recordingSink{}, testReaderOptions(time.Hour, nil))
	defer m.Close()

	require.NoError(t, m.SetConfig(&testConfig))
	require.Eventually(t, func() bool { return m.State() == Streaming }, time.Second, time.Millisecond)

	require.NoError(t, m.SetConfig(nil))
	assert.True(t, conn.isClosed())
	assert.Equal(t, Disconnected, m.State())
}

func TestManager_RejectsInvalidConfig(t *testing.T) {
	conn := newFakeConn()
	opener := &fakeOpener{next: func(int, Config) (*fakeConn, error) { return conn, nil }}

	m := NewManager(context.Background(), opener.Open, hazard.MustDefault(), &recordingSink{}, testReaderOptions(time.Hour, nil))
	defer m.Close()

	require.NoError(t, m.SetConfig(&testConfig))
	require.Eventually(t, func() bool { return m.State() == Streaming }, time.Second, time.Millisecond)

	err := m.SetConfig(&Config{Port: "/dev/ttyUSB1", BaudRate: 1234})
	assert.ErrorIs(t, err, ErrUnsupportedBaud)

	err = m.SetConfig(&Config{Port: "  ", BaudRate: 115200})
	assert.ErrorIs(t, err, ErrNoConfig)

	// Current reader is untouched
	assert.False(t, conn.isClosed())
	assert.Equal(t, &testConfig, m.Config())
}

func TestManager_CloseStopsReader(t *testing.T) {
	conn := newFakeConn()
	opener := &fakeOpener{next: func(int, Config) (*fakeConn, error) { return conn, nil }}

	m := NewManager(context.Background(), opener.Open, hazard.MustDefault(), &recordingSink{}, testReaderOptions(time.Hour, nil))
	require.NoError(t, m.SetConfig(&testConfig))
	require.Eventually(t, func() bool { return m.State() == Streaming }, time.Second, time.Millisecond)

	m.Close()
	assert.True(t, conn.isClosed())
	assert.ErrorIs(t, m.SetConfig(&testConfig), ErrManagerClosed)
}
