// Package metrics holds the Prometheus collectors exported by the backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	KeywordResearchTotal *prometheus.CounterVec
	SEOAnalysisTotal     prometheus.Counter
	ModelRequestsTotal   *prometheus.CounterVec
	PageFetchTotal       *prometheus.CounterVec
	CacheLookupsTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		KeywordResearchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "keyword_research_total",
				Help:      "Keyword research requests by outcome",
			},
			[]string{"outcome"},
		),
		SEOAnalysisTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seo_analysis_total",
				Help:      "Completed SEO analyses",
			},
		),
		ModelRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_requests_total",
				Help:      "Text-generation provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		PageFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "page_fetch_total",
				Help:      "Page fetches by outcome",
			},
			[]string{"outcome"},
		),
		CacheLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suggestion_cache_lookups_total",
				Help:      "Suggestion cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.KeywordResearchTotal,
		m.SEOAnalysisTotal,
		m.ModelRequestsTotal,
		m.PageFetchTotal,
		m.CacheLookupsTotal,
	)
	return m
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveKeywordResearch counts a research call; degraded results count separately
func (m *Metrics) ObserveKeywordResearch(err error, degraded bool) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.KeywordResearchTotal.WithLabelValues("failure").Inc()
	case degraded:
		m.KeywordResearchTotal.WithLabelValues("degraded").Inc()
	default:
		m.KeywordResearchTotal.WithLabelValues("success").Inc()
	}
}

// ObserveSEOAnalysis counts a completed report
func (m *Metrics) ObserveSEOAnalysis() {
	if m == nil {
		return
	}
	m.SEOAnalysisTotal.Inc()
}

// ObserveModelRequest counts a provider call
func (m *Metrics) ObserveModelRequest(provider string, ok bool) {
	if m == nil {
		return
	}
	m.ModelRequestsTotal.WithLabelValues(provider, outcome(ok)).Inc()
}

// ObservePageFetch counts a page fetch
func (m *Metrics) ObservePageFetch(ok bool) {
	if m == nil {
		return
	}
	m.PageFetchTotal.WithLabelValues(outcome(ok)).Inc()
}

// ObserveCacheLookup counts a suggestion cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
