// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the Prometheus instruments for ircdesk.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jeranaias/ircdesk/internal/refresh"
)

var (
	instance *Metrics
	once     sync.Once
)

// Metrics holds the refresh and session instruments.
type Metrics struct {
	// Refresh coordinator
	RendersTotal         *prometheus.CounterVec
	RendersSuppressed    prometheus.Counter
	RenderErrorsTotal    prometheus.Counter
	TrackedConversations prometheus.Gauge

	// Session
	EventsReceived *prometheus.CounterVec
	EventsDropped  prometheus.Counter
	SendsLimited   prometheus.Counter
}

// GetMetrics returns the metrics singleton.
func GetMetrics() *Metrics {
	once.Do(func() {
		instance = newMetrics(prometheus.DefaultRegisterer)
	})
	return instance
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.RendersTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ircdesk_renders_total",
			Help: "Conversation renders dispatched by the refresh coordinator",
		},
		[]string{"reason"},
	)
	m.RendersSuppressed = factory.NewCounter(prometheus.CounterOpts{
		Name: "ircdesk_renders_suppressed_total",
		Help: "Announcements deferred because the conversation rendered too recently",
	})
	m.RenderErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "ircdesk_render_errors_total",
		Help: "Renders whose renderer returned an error",
	})
	m.TrackedConversations = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ircdesk_tracked_conversations",
		Help: "Conversations with refresh state",
	})

	m.EventsReceived = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ircdesk_session_events_total",
			Help: "Session events handled, by kind",
		},
		[]string{"kind"},
	)
	m.EventsDropped = factory.NewCounter(prometheus.CounterOpts{
		Name: "ircdesk_session_events_dropped_total",
		Help: "Session events dropped because the event buffer was full",
	})
	m.SendsLimited = factory.NewCounter(prometheus.CounterOpts{
		Name: "ircdesk_sends_rate_limited_total",
		Help: "Outgoing messages rejected by flood control",
	})

	return m
}

// =============================================================================
// REFRESH OBSERVER
// =============================================================================

type refreshObserver struct {
	m *Metrics
}

// RefreshObserver returns a refresh.Observer backed by the singleton.
func RefreshObserver() refresh.Observer {
	return refreshObserver{m: GetMetrics()}
}

func (o refreshObserver) Rendered(_ refresh.Key, reason refresh.Reason, err error) {
	o.m.RendersTotal.WithLabelValues(reason.String()).Inc()
	if err != nil {
		o.m.RenderErrorsTotal.Inc()
	}
}

func (o refreshObserver) Suppressed(refresh.Key) {
	o.m.RendersSuppressed.Inc()
}

func (o refreshObserver) Tracked(n int) {
	o.m.TrackedConversations.Set(float64(n))
}
