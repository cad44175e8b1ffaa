// Package metrics provides Prometheus metrics export for the recommendation
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports pipeline metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	llmCalls  *prometheus.CounterVec
	llmErrors *prometheus.CounterVec

	searches          prometheus.Counter
	recommendations   *prometheus.CounterVec
	degradedResponses prometheus.Counter

	pipelineLatency prometheus.Histogram
}

// NewExporter creates a new metrics exporter with its own registry.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sommelier_cache_hits_total",
			Help: "Cache hits by content kind.",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sommelier_cache_misses_total",
			Help: "Cache misses by content kind.",
		}, []string{"kind"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sommelier_llm_calls_total",
			Help: "LLM completion calls by purpose.",
		}, []string{"purpose"}),
		llmErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sommelier_llm_errors_total",
			Help: "Failed LLM completion calls by purpose.",
		}, []string{"purpose"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sommelier_vector_searches_total",
			Help: "Vector similarity searches issued.",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sommelier_recommendations_total",
			Help: "Recommendation requests by outcome (ok, empty, degraded).",
		}, []string{"outcome"}),
		degradedResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sommelier_degraded_responses_total",
			Help: "Requests answered with a degraded advisory message.",
		}),
		pipelineLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sommelier_pipeline_duration_seconds",
			Help:    "End-to-end recommendation pipeline latency.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}

	registry.MustRegister(
		e.cacheHits, e.cacheMisses,
		e.llmCalls, e.llmErrors,
		e.searches, e.recommendations, e.degradedResponses,
		e.pipelineLatency,
	)
	return e
}

// All recording methods are nil-safe so callers can run without metrics.

func (e *Exporter) CacheHit(kind string) {
	if e != nil {
		e.cacheHits.WithLabelValues(kind).Inc()
	}
}

func (e *Exporter) CacheMiss(kind string) {
	if e != nil {
		e.cacheMisses.WithLabelValues(kind).Inc()
	}
}

func (e *Exporter) LLMCall(purpose string) {
	if e != nil {
		e.llmCalls.WithLabelValues(purpose).Inc()
	}
}

func (e *Exporter) LLMError(purpose string) {
	if e != nil {
		e.llmErrors.WithLabelValues(purpose).Inc()
	}
}

func (e *Exporter) Search() {
	if e != nil {
		e.searches.Inc()
	}
}

// Recommendation records a finished pipeline run.
func (e *Exporter) Recommendation(outcome string, seconds float64) {
	if e == nil {
		return
	}
	e.recommendations.WithLabelValues(outcome).Inc()
	e.pipelineLatency.Observe(seconds)
	if outcome == "degraded" {
		e.degradedResponses.Inc()
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
