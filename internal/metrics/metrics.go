// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics holds the Prometheus collectors of the gate.
//
// [Metrics] implements the observer interfaces of the session, navigation and
// backend packages, so those packages never import Prometheus themselves.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taibuivan/aulagate/internal/session"
)

// Metrics holds all Prometheus metrics for the gate.
type Metrics struct {
	// Navigation guard metrics
	NavigationDecisions *prometheus.CounterVec
	NavigationHops      *prometheus.HistogramVec

	// Session lifecycle metrics
	SessionLogouts *prometheus.CounterVec

	// School backend metrics
	BackendRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		NavigationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aulagate_navigation_decisions_total",
				Help: "Total number of navigation guard decisions",
			},
			[]string{"verdict", "reason"},
		),
		NavigationHops: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aulagate_navigation_hops",
				Help:    "Redirects followed before a navigation settled",
				Buckets: []float64{0, 1, 2, 3, 5, 8},
			},
			[]string{"outcome"},
		),
		SessionLogouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aulagate_session_logouts_total",
				Help: "Total number of cleared sessions",
			},
			[]string{"cause"},
		),
		BackendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aulagate_backend_requests_total",
				Help: "Total number of school backend requests",
			},
			[]string{"op", "status"},
		),
	}
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler exposes registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// # Observers

// ObserveDecision counts one guard decision.
func (m *Metrics) ObserveDecision(verdict, reason string) {
	m.NavigationDecisions.WithLabelValues(verdict, reason).Inc()
}

// ObserveTransition records how many redirects a navigation followed.
func (m *Metrics) ObserveTransition(outcome string, hops int) {
	m.NavigationHops.WithLabelValues(outcome).Observe(float64(hops))
}

// ObserveLogout implements [session.LogoutObserver].
func (m *Metrics) ObserveLogout(cause session.LogoutCause) {
	m.SessionLogouts.WithLabelValues(string(cause)).Inc()
}

// ObserveBackendRequest counts one school backend round trip.
func (m *Metrics) ObserveBackendRequest(op, status string) {
	m.BackendRequests.WithLabelValues(op, status).Inc()
}

