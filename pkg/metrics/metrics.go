// Package metrics holds the Prometheus collectors for conversions and the
// HTTP service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for odbconv
type Metrics struct {
	registry prometheus.Gatherer

	// Conversion metrics
	recordsTotal        *prometheus.CounterVec
	droppedRecordsTotal *prometheus.CounterVec
	conversionsTotal    *prometheus.CounterVec
	conversionDuration  *prometheus.HistogramVec
	containerBytes      *prometheus.HistogramVec

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec
}

// New creates and registers all metrics on a fresh registry. Extra collectors,
// such as the Go runtime collector for long running servers, are registered
// alongside.
func New(extra ...prometheus.Collector) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(extra...)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers all metrics on reg and gathers from g
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: g,

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odbconv_records_total",
				Help: "Total number of records processed",
			},
			[]string{"direction", "disposition"},
		),

		droppedRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odbconv_dropped_records_total",
				Help: "Total number of records dropped or warned, by reason",
			},
			[]string{"direction", "reason"},
		),

		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odbconv_conversions_total",
				Help: "Total number of conversions",
			},
			[]string{"direction", "status"},
		),

		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "odbconv_conversion_duration_seconds",
				Help:    "Conversion duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),

		containerBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "odbconv_container_bytes",
				Help:    "Size of containers produced or consumed",
				Buckets: prometheus.ExponentialBuckets(64, 4, 10),
			},
			[]string{"direction"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "odbconv_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "odbconv_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "odbconv_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),
	}
}

// Gatherer returns the gatherer the metrics were registered with
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordRecords adds n records with the given disposition
func (m *Metrics) RecordRecords(direction, disposition string, n int) {
	if n <= 0 {
		return
	}
	m.recordsTotal.WithLabelValues(direction, disposition).Add(float64(n))
}

// RecordIssue records one dropped or warned record
func (m *Metrics) RecordIssue(direction, reason string) {
	m.droppedRecordsTotal.WithLabelValues(direction, reason).Inc()
}

// RecordConversion records a finished conversion
func (m *Metrics) RecordConversion(direction string, success bool, size int, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.conversionsTotal.WithLabelValues(direction, status).Inc()
	m.conversionDuration.WithLabelValues(direction).Observe(duration.Seconds())
	if size > 0 {
		m.containerBytes.WithLabelValues(direction).Observe(float64(size))
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
