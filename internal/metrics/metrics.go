// Package metrics exposes Prometheus metrics for relayed requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goatrelay"

// Collector owns a private registry with the relay metrics:
//   - goatrelay_relay_requests_total{endpoint,status}
//   - goatrelay_relay_request_duration_seconds{endpoint}
//   - goatrelay_relay_stream_chunks_total{endpoint}
//   - goatrelay_relay_upstream_errors_total{endpoint,kind}
//   - goatrelay_relay_prompt_tokens_estimate_total{endpoint}
//
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	streamChunks    *prometheus.CounterVec
	upstreamErrors  *prometheus.CounterVec
	promptTokens    *prometheus.CounterVec
}

// NewCollector creates a collector. A nil registry gets a fresh one with the
// Go and process collectors registered.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "requests_total",
				Help:      "Relay requests by endpoint and response status.",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "request_duration_seconds",
				Help:      "Time from request receipt to response completion.",
				// LLM and agent calls run from sub-second to several minutes.
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"endpoint"},
		),
		streamChunks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "stream_chunks_total",
				Help:      "Upstream chunks forwarded to clients on streamed responses.",
			},
			[]string{"endpoint"},
		),
		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "upstream_errors_total",
				Help:      "Failed relays by error kind.",
			},
			[]string{"endpoint", "kind"},
		),
		promptTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relay",
				Name:      "prompt_tokens_estimate_total",
				Help:      "Estimated prompt tokens sent upstream.",
			},
			[]string{"endpoint"},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.streamChunks,
		c.upstreamErrors,
		c.promptTokens,
	)
	return c
}

// RecordRequest records a finished relay.
func (c *Collector) RecordRequest(endpoint string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordError counts a failed relay of the given kind.
func (c *Collector) RecordError(endpoint, kind string) {
	if c == nil {
		return
	}
	c.upstreamErrors.WithLabelValues(endpoint, kind).Inc()
}

// RecordStreamChunks adds n forwarded chunks.
func (c *Collector) RecordStreamChunks(endpoint string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.streamChunks.WithLabelValues(endpoint).Add(float64(n))
}

// RecordPromptTokens adds an estimated prompt size.
func (c *Collector) RecordPromptTokens(endpoint string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.promptTokens.WithLabelValues(endpoint).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
