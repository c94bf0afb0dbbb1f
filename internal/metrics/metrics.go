// Package metrics provides the Prometheus metrics of the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cookstove"

// Ingest paths and pairing results used as label values.
const (
	PathAuthenticated = "authenticated"
	PathOpen          = "open"

	PairingSuccess  = "success"
	PairingNotFound = "not_found"
	PairingConflict = "conflict"
	PairingInvalid  = "invalid"
)

// Metrics holds the API collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	IngestRecords       *prometheus.CounterVec
	IngestRejected      *prometheus.CounterVec
	PairingAttempts     *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors and registers the API metrics on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IngestRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "records_total",
				Help:      "Usage records accepted",
			},
			[]string{"path"},
		),
		IngestRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "rejected_total",
				Help:      "Usage submissions rejected",
			},
			[]string{"path", "reason"},
		),
		PairingAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pairing",
				Name:      "attempts_total",
				Help:      "Stove pairing attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.HTTPRequestsTotal, m.HTTPRequestDuration, m.IngestRecords, m.IngestRejected, m.PairingAttempts)
	return m
}

// Handler exposes the registry in the Prometheus text and OpenMetrics formats.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IngestAccepted(path string) {
	if m == nil {
		return
	}
	m.IngestRecords.WithLabelValues(path).Inc()
}

func (m *Metrics) IngestRejectedWith(path, reason string) {
	if m == nil {
		return
	}
	m.IngestRejected.WithLabelValues(path, reason).Inc()
}

func (m *Metrics) PairingAttempt(result string) {
	if m == nil {
		return
	}
	m.PairingAttempts.WithLabelValues(result).Inc()
}
