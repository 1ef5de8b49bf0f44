// Package metrics provides Prometheus metrics for answering and entry refreshes.
// A nil *Manager is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Degrade reasons.
const (
	ReasonScoringFailure   = "scoring_failure"
	ReasonResourceExceeded = "resource_exceeded"
	ReasonSnapshotLoad     = "snapshot_load"
)

// Manager holds every metric the service exports.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	answers            *prometheus.CounterVec
	rankingDuration    prometheus.Histogram
	bestScore          prometheus.Histogram
	scoringFailures    prometheus.Counter
	degraded           *prometheus.CounterVec
	generationDuration prometheus.Histogram
	generationErrors   prometheus.Counter
	entries            prometheus.Gauge
	refreshes          *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

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

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets the registry metrics are registered on.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a Manager on its own registry, with Go runtime and process collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kotae",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.answers = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "answers_total",
		Help:      "Answers produced, by source (knowledge-base or generated)",
	}, []string{"source"})

	m.rankingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "ranking_duration_seconds",
		Help:      "Time spent scoring and ranking entries for one question",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	m.bestScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "best_match_score",
		Help:      "Relevance score of the best entry per question",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	m.scoringFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "scoring_failures_total",
		Help:      "Entries that could not be scored and were dropped",
	})

	m.degraded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "degraded_total",
		Help:      "Questions answered without the knowledge base, by reason",
	}, []string{"reason"})

	m.generationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "generation_duration_seconds",
		Help:      "Language model request latency",
		Buckets:   m.histogramBuckets,
	})

	m.generationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "generation_errors_total",
		Help:      "Failed language model requests",
	})

	m.entries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "entries",
		Help:      "Entries in the current knowledge snapshot",
	})

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "refreshes_total",
		Help:      "Knowledge source reloads, by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, by route, method and status code",
	}, []string{"route", "method", "code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// Registry returns the registry backing the manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordAnswer counts an answer from source.
func (m *Manager) RecordAnswer(source string) {
	if m == nil {
		return
	}
	m.answers.WithLabelValues(source).Inc()
}

// ObserveRanking records ranking latency and the best score (negative when there was no entry).
func (m *Manager) ObserveRanking(d time.Duration, best float64) {
	if m == nil {
		return
	}
	m.rankingDuration.Observe(d.Seconds())
	if best >= 0 {
		m.bestScore.Observe(best)
	}
}

// RecordScoringFailure counts a dropped entry.
func (m *Manager) RecordScoringFailure() {
	if m == nil {
		return
	}
	m.scoringFailures.Inc()
}

// RecordDegraded counts a question answered with an empty snapshot.
func (m *Manager) RecordDegraded(reason string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(reason).Inc()
}

// ObserveGeneration records one language model request.
func (m *Manager) ObserveGeneration(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
	if err != nil {
		m.generationErrors.Inc()
	}
}

// SetEntries sets the entry count gauge.
func (m *Manager) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}

// RecordRefresh counts a source reload.
func (m *Manager) RecordRefresh(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// RecordHTTPRequest counts and times one HTTP request.
func (m *Manager) RecordHTTPRequest(route, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
