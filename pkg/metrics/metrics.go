// Package metrics exposes Prometheus collectors for settlements and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chris/clothing-swap-settlement/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swap_settlement"

// Collector holds the application collectors on a private registry.
type Collector struct {
	Registry *prometheus.Registry

	settlements        *prometheus.CounterVec
	settlementDuration *prometheus.HistogramVec
	ledgerDrift        prometheus.Gauge
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	httpInFlight       prometheus.Gauge
}

// New creates a Collector and registers every collector plus the Go and
// process collectors.
func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		settlements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "settlement",
				Name:      "total",
				Help:      "Settlements attempted, by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		settlementDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "settlement",
				Name:      "duration_seconds",
				Help:      "Duration of settlements including conflict retries.",
				Buckets:   prometheus.ExponentialBuckets(0.002, 2, 12),
			},
			[]string{"kind"},
		),
		ledgerDrift: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "inconsistent_users",
				Help:      "Users whose balance did not match their ledger at the last audit.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
	}

	c.Registry.MustRegister(
		c.settlements,
		c.settlementDuration,
		c.ledgerDrift,
		c.httpRequests,
		c.httpDuration,
		c.httpInFlight,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveSettlement records one settlement. The outcome label is "ok" or the
// error kind.
func (c *Collector) ObserveSettlement(kind string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = models.ErrorKind(err)
	}
	c.settlements.WithLabelValues(kind, outcome).Inc()
	c.settlementDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// SetInconsistentUsers records the result of the last ledger audit.
func (c *Collector) SetInconsistentUsers(n int) {
	c.ledgerDrift.Set(float64(n))
}

// RequestStarted tracks an in-flight request and returns the function that
// completes it.
func (c *Collector) RequestStarted() func(method, route string, status int) {
	start := time.Now()
	c.httpInFlight.Inc()
	return func(method, route string, status int) {
		c.httpInFlight.Dec()
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
