// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics exposes link and pipeline counters as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minewatch"

// Recorder receives pipeline and link events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	FrameDecoded()
	PointClassified(status string)
	PointRejected()
	BytesEvicted(n int)
	LinkError()
	Reconnect()
	LinkState(state int)
	EventsDropped(n int)
}

// Nop discards everything
type Nop struct{}

func (Nop) FrameDecoded() {}
func (Nop) PointClassified(string) {}
func (Nop) PointRejected() {}
func (Nop) BytesEvicted(int) {}
func (Nop) LinkError() {}
func (Nop) Reconnect() {}
func (Nop) LinkState(int) {}
func (Nop) EventsDropped(int) {}

// Metrics is a Prometheus backed Recorder
type Metrics struct {
	registry *prometheus.Registry

	FramesTotal        prometheus.Counter
	PointsTotal        *prometheus.CounterVec
	RejectedTotal      prometheus.Counter
	EvictedBytesTotal  prometheus.Counter
	LinkErrorsTotal    prometheus.Counter
	ReconnectsTotal    prometheus.Counter
	LinkStateGauge     prometheus.Gauge
	DroppedEventsTotal prometheus.Counter
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "frames_total",
			Help:      "Total number of complete frames extracted from the stream",
		}),

		PointsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "classifier",
				Name:      "points_total",
				Help:      "Total number of classified points by safety status",
			},
			[]string{"status"},
		),

		RejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "rejected_total",
			Help:      "Total number of frames rejected as out of field bounds",
		}),

		EvictedBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "evicted_bytes_total",
			Help:      "Total number of unmatched bytes discarded by the residual buffer cap",
		}),

		LinkErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "errors_total",
			Help:      "Total number of open or read failures",
		}),

		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "reconnects_total",
			Help:      "Total number of reopen attempts after a failure",
		}),

		LinkStateGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "state",
			Help:      "Link state (0=disconnected, 1=connecting, 2=streaming)",
		}),

		DroppedEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sink",
			Name:      "dropped_events_total",
			Help:      "Total number of events dropped because the consumer fell behind",
		}),
	}

	m.registry.MustRegister(
		m.FramesTotal,
		m.PointsTotal,
		m.RejectedTotal,
		m.EvictedBytesTotal,
		m.LinkErrorsTotal,
		m.ReconnectsTotal,
		m.LinkStateGauge,
		m.DroppedEventsTotal,
	)
	return m
}

// Registry returns the registry holding all collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FrameDecoded() { m.FramesTotal.Inc() }

func (m *Metrics) PointClassified(status string) { m.PointsTotal.WithLabelValues(status).Inc() }

func (m *Metrics) PointRejected() { m.RejectedTotal.Inc() }

func (m *Metrics) BytesEvicted(n int) { m.EvictedBytesTotal.Add(float64(n)) }

func (m *Metrics) LinkError() { m.LinkErrorsTotal.Inc() }

func (m *Metrics) Reconnect() { m.ReconnectsTotal.Inc() }

func (m *Metrics) LinkState(state int) { m.LinkStateGauge.Set(float64(state)) }

func (m *Metrics) EventsDropped(n int) { m.DroppedEventsTotal.Add(float64(n)) }
