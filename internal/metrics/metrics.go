package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for relay_requests_total.
const (
	OutcomeOK         = "ok"
	OutcomeConfig     = "config_error"
	OutcomeValidation = "validation_error"
	OutcomeUpstream   = "upstream_error"
	OutcomeInternal   = "internal_error"
)

// Collector owns the relay's Prometheus registry and metric instances.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
}

// NewCollector creates a collector with its own registry. If registry is
// nil a fresh one is used.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gemini_relay",
			Name:      "requests_total",
			Help:      "Relay requests by outcome.",
		}, []string{"outcome"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gemini_relay",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of upstream generateContent calls.",
			// Optimized for LLM request latencies (100ms - 30s)
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}),
	}
	registry.MustRegister(c.requestsTotal, c.upstreamDuration)
	return c
}

// RecordRequest counts one relay request with the given outcome label.
func (c *Collector) RecordRequest(outcome string) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the duration of one completed upstream call.
func (c *Collector) ObserveUpstream(d time.Duration) {
	if c == nil {
		return
	}
	c.upstreamDuration.Observe(d.Seconds())
}

// Handler returns the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
