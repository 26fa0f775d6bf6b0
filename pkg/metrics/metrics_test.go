// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FrameDecoded()
	m.FrameDecoded()
	m.PointClassified("MINE")
	m.PointRejected()
	m.BytesEvicted(128)
	m.LinkError()
	m.Reconnect()
	m.LinkState(2)
	m.EventsDropped(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PointsTotal.WithLabelValues("MINE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedTotal))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.EvictedBytesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LinkErrorsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconnectsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinkStateGauge))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DroppedEventsTotal))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.FrameDecoded()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "minewatch_parser_frames_total 1"))
}

func TestNop_ImplementsRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.FrameDecoded()
	r.LinkState(1)
}
