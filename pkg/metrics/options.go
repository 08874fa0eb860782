// Package metrics provides Prometheus metrics for the Pulse feedback service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithRatingBuckets sets the histogram buckets for rating values.
func WithRatingBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithMetricsEnabled enables or disables metrics collection.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRegistry sets the Prometheus registerer used for all metrics.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
