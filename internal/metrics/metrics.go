// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package metrics provides Prometheus instrumentation for the API
// surface, the mutation pipeline, and the broadcast fan-out.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Mutation Metrics
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shape_mutations_total",
			Help: "Total number of shape mutations by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "committed", "rejected"
	)

	ShapesCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shapes_current",
			Help: "Current number of shapes in the store",
		},
	)

	// Broadcast Metrics
	EventsBroadcastTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_broadcast_total",
			Help: "Total number of events fanned out to subscribers",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriber_sessions_active",
			Help: "Current number of attached subscriber sessions",
		},
	)

	SessionsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriber_sessions_dropped_total",
			Help: "Total number of sessions dropped for falling fatally behind",
		},
	)

	SnapshotShapes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_shapes",
			Help:    "Shapes per snapshot delivered to an attaching session",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMutation records a mutation attempt's outcome.
func RecordMutation(kind string, committed bool) {
	outcome := "committed"
	if !committed {
		outcome = "rejected"
	}
	MutationsTotal.WithLabelValues(kind, outcome).Inc()
}
