package metrics

import (
	"fmt"
	"net/http"

	"github.com/FairForge/nfstraffic/internal/traffic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nfstraffic"

// Pass results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds all Prometheus metrics of the service. It implements
// traffic.Recorder.
type Metrics struct {
	BytesTotal       *prometheus.CounterVec
	BytesPerSecond   *prometheus.GaugeVec
	PassesTotal      *prometheus.CounterVec
	ActiveWorkers    *prometheus.GaugeVec
	RequestCounter   *prometheus.CounterVec
	LatencyHistogram *prometheus.HistogramVec
	registry         *prometheus.Registry
}

var _ traffic.Recorder = (*Metrics)(nil)

// New creates all metrics on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		BytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Total bytes moved by traffic workers",
			},
			[]string{"mode"},
		),
		BytesPerSecond: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bytes_per_second",
				Help:      "Most recent interval throughput reported by any worker",
			},
			[]string{"mode"},
		),
		PassesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Completed read or write passes",
			},
			[]string{"mode", "result"},
		),
		ActiveWorkers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_workers",
				Help:      "Traffic workers currently running",
			},
			[]string{"mode"},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		LatencyHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.BytesTotal,
		m.BytesPerSecond,
		m.PassesTotal,
		m.ActiveWorkers,
		m.RequestCounter,
		m.LatencyHistogram,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// AddBytes counts bytes moved by one pass
func (m *Metrics) AddBytes(mode traffic.Mode, n int64) {
	if n > 0 {
		m.BytesTotal.WithLabelValues(string(mode)).Add(float64(n))
	}
}

// ObserveRate records the latest interval throughput
func (m *Metrics) ObserveRate(mode traffic.Mode, bytesPerSecond int64) {
	m.BytesPerSecond.WithLabelValues(string(mode)).Set(float64(bytesPerSecond))
}

// PassCompleted counts a finished pass by outcome
func (m *Metrics) PassCompleted(mode traffic.Mode, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.PassesTotal.WithLabelValues(string(mode), result).Inc()
}

// WorkerStarted increments the active worker gauge
func (m *Metrics) WorkerStarted(mode traffic.Mode) {
	m.ActiveWorkers.WithLabelValues(string(mode)).Inc()
}

// WorkerStopped decrements the active worker gauge
func (m *Metrics) WorkerStopped(mode traffic.Mode) {
	m.ActiveWorkers.WithLabelValues(string(mode)).Dec()
}

// IncrementRequest increments the request counter
func (m *Metrics) IncrementRequest(method, path string, status int) {
	m.RequestCounter.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
}

// RecordLatency records request latency
func (m *Metrics) RecordLatency(method, path string, seconds float64) {
	m.LatencyHistogram.WithLabelValues(method, path).Observe(seconds)
}

// Handler returns the Prometheus metrics handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
