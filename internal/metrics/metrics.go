// Package metrics holds the Prometheus collectors shared by the pipeline components.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkclean"

// Metrics groups the counters exported on /metrics.
type Metrics struct {
	Resolutions *prometheus.CounterVec
	Geolocation *prometheus.CounterVec
	Languages   *prometheus.CounterVec
	Clipboard   *prometheus.CounterVec
	CacheWrites *prometheus.CounterVec
	Events      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Share link resolutions by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		Geolocation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geolocation_lookups_total",
			Help:      "Geolocation provider lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		Languages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "language_detections_total",
			Help:      "Detected languages by source.",
		}, []string{"language", "source"}),
		Clipboard: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clipboard_writes_total",
			Help:      "Clipboard strategy attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recent_cache_writes_total",
			Help:      "Recent links cache persistence attempts by outcome.",
		}, []string{"outcome"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Analytics events consumed by topic and outcome.",
		}, []string{"topic", "outcome"}),
	}

	reg.MustRegister(m.Resolutions, m.Geolocation, m.Languages, m.Clipboard, m.CacheWrites, m.Events)

	return m
}

func (m *Metrics) ObserveResolution(strategy, outcome string) {
	if m == nil {
		return
	}

	m.Resolutions.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) ObserveGeolocation(provider, outcome string) {
	if m == nil {
		return
	}

	m.Geolocation.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveLanguage(language, source string) {
	if m == nil {
		return
	}

	m.Languages.WithLabelValues(language, source).Inc()
}

func (m *Metrics) ObserveClipboard(strategy, outcome string) {
	if m == nil {
		return
	}

	m.Clipboard.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) ObserveCacheWrite(outcome string) {
	if m == nil {
		return
	}

	m.CacheWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEvent(topic, outcome string) {
	if m == nil {
		return
	}

	m.Events.WithLabelValues(topic, outcome).Inc()
}
