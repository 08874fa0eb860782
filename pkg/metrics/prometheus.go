// Package metrics provides Prometheus metrics for the Pulse feedback service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the Pulse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Lifecycle metrics
	eventsCreated  prometheus.Counter
	eventsClosed   prometheus.Counter
	eventsExtended prometheus.Counter

	// Authorization metrics
	participantsGranted prometheus.Counter
	participantsRevoked prometheus.Counter

	// Submission metrics
	submissionsAccepted *prometheus.CounterVec
	submissionsRejected *prometheus.CounterVec
	ratingValues        prometheus.Histogram

	// State gauges
	eventsTotal  prometheus.Gauge
	markersTotal prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pulse",
		subsystem:        "feedback",
		histogramBuckets: prometheus.LinearBuckets(1, 1, 10),
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_created_total",
		Help:      "Total number of feedback events created",
	})

	m.eventsClosed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_closed_total",
		Help:      "Total number of close operations accepted",
	})

	m.eventsExtended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_extended_total",
		Help:      "Total number of duration extensions accepted",
	})

	m.participantsGranted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants_granted_total",
		Help:      "Total number of participant grants written",
	})

	m.participantsRevoked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants_revoked_total",
		Help:      "Total number of participant revocations written",
	})

	m.submissionsAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of accepted submissions by feedback kind",
	}, []string{"kind"})

	m.submissionsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Total number of rejected submissions by rejection reason",
	}, []string{"reason"})

	m.ratingValues = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_values",
		Help:      "Distribution of accepted rating values",
		Buckets:   m.histogramBuckets,
	})

	m.eventsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_total",
		Help:      "Number of events ever created",
	})

	m.markersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dedup_markers_total",
		Help:      "Number of dedup markers recorded",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordEventCreated increments the created-events counter.
func RecordEventCreated() {
	if globalManager.enabled {
		globalManager.eventsCreated.Inc()
	}
}

// RecordEventClosed increments the closed-events counter.
func RecordEventClosed() {
	if globalManager.enabled {
		globalManager.eventsClosed.Inc()
	}
}

// RecordEventExtended increments the extended-events counter.
func RecordEventExtended() {
	if globalManager.enabled {
		globalManager.eventsExtended.Inc()
	}
}

// RecordParticipantGranted increments the grant counter.
func RecordParticipantGranted() {
	if globalManager.enabled {
		globalManager.participantsGranted.Inc()
	}
}

// RecordParticipantRevoked increments the revocation counter.
func RecordParticipantRevoked() {
	if globalManager.enabled {
		globalManager.participantsRevoked.Inc()
	}
}

// RecordSubmissionAccepted increments the accepted counter for a kind.
func RecordSubmissionAccepted(kind string) {
	if globalManager.enabled {
		globalManager.submissionsAccepted.WithLabelValues(kind).Inc()
	}
}

// RecordSubmissionRejected increments the rejected counter for a reason.
func RecordSubmissionRejected(reason string) {
	if globalManager.enabled {
		globalManager.submissionsRejected.WithLabelValues(reason).Inc()
	}
}

// ObserveRatingValue records one accepted rating value.
func ObserveRatingValue(value float64) {
	if globalManager.enabled {
		globalManager.ratingValues.Observe(value)
	}
}

// UpdateEventCount sets the events-total gauge.
func UpdateEventCount(n uint64) {
	if globalManager.enabled {
		globalManager.eventsTotal.Set(float64(n))
	}
}

// UpdateMarkerCount sets the dedup-markers gauge.
func UpdateMarkerCount(n int64) {
	if globalManager.enabled {
		globalManager.markersTotal.Set(float64(n))
	}
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
	}
}
