// Package telemetry exposes the vault's Prometheus metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/accessvault/internal/application"
	"github.com/ericfisherdev/accessvault/internal/domain/policy"
)

const namespace = "accessvault"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Compile-time interface satisfaction check.
var _ application.Metrics = (*Metrics)(nil)

// Metrics owns a private registry so independent instances never collide.
type Metrics struct {
	registry *prometheus.Registry

	denied         *prometheus.CounterVec
	reveals        prometheus.Counter
	integrityFails *prometheus.CounterVec
	scans          *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	scanDuration   prometheus.Histogram
	lastScan       prometheus.Gauge
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		denied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_denied_total",
			Help:      "Credential operations rejected by the visibility rules",
		}, []string{"action"}),
		reveals: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secret_reveals_total",
			Help:      "Secrets disclosed after a successful audit record",
		}),
		integrityFails: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_failures_total",
			Help:      "Decryption and audit sink failures during reveal",
		}, []string{"kind"}),
		scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "scans_total",
			Help:      "Expiration scans by outcome",
		}, []string{"status"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "notifications_total",
			Help:      "Notifications appended by the expiration monitor",
		}, []string{"kind"}),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "scan_duration_seconds",
			Help:      "Duration of expiration scans",
			Buckets:   histogramBuckets,
		}),
		lastScan: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "last_scan_timestamp_seconds",
			Help:      "Unix time of the last successful expiration scan",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackNotifications exports the live size of the notification store.
func (m *Metrics) TrackNotifications(size func() int) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_stored",
		Help:      "Notifications currently held in memory",
	}, func() float64 { return float64(size()) })
}

func (m *Metrics) Denied(action policy.Action) {
	m.denied.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) Revealed() {
	m.reveals.Inc()
}

func (m *Metrics) DecryptFailed() {
	m.integrityFails.WithLabelValues("decryption").Inc()
}

func (m *Metrics) AuditFailed() {
	m.integrityFails.WithLabelValues("audit_sink").Inc()
}

func (m *Metrics) ScanCompleted(alerts, criticals int, took time.Duration) {
	m.scans.WithLabelValues("success").Inc()
	m.notifications.WithLabelValues("alert").Add(float64(alerts))
	m.notifications.WithLabelValues("critical").Add(float64(criticals))
	m.scanDuration.Observe(took.Seconds())
	m.lastScan.SetToCurrentTime()
}

func (m *Metrics) ScanFailed() {
	m.scans.WithLabelValues("error").Inc()
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, took time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requests.With(labels).Inc()
	m.requestLatency.With(labels).Observe(took.Seconds())
}
