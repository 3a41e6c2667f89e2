// Package metrics exposes Prometheus instrumentation for extraction and
// summarization. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "niviskar"

type Metrics struct {
	Registry *prometheus.Registry

	Summaries          *prometheus.CounterVec
	Extractions        *prometheus.CounterVec
	ExtractionFailures prometheus.Counter
	Duration           prometheus.Histogram
	Selected           prometheus.Histogram
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summaries produced, by level and outcome.",
		}, []string{"level", "outcome"}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Documents turned into text, by extraction strategy.",
		}, []string{"strategy"}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Documents for which every extraction strategy failed.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Time spent summarizing extracted text.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		Selected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sentences_selected",
			Help:      "Sentences kept per summary.",
			Buckets:   prometheus.LinearBuckets(0, 2, 7),
		}),
	}

	m.Registry.MustRegister(
		m.Summaries,
		m.Extractions,
		m.ExtractionFailures,
		m.Duration,
		m.Selected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSummary records one summarization run.
func (m *Metrics) ObserveSummary(level, outcome string, sentences int, took time.Duration) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(level, outcome).Inc()
	m.Duration.Observe(took.Seconds())
	m.Selected.Observe(float64(sentences))
}

// ObserveExtraction records a successful extraction by strategy.
func (m *Metrics) ObserveExtraction(strategy string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(strategy).Inc()
}

// ObserveExtractionFailure records a document that yielded no text.
func (m *Metrics) ObserveExtractionFailure() {
	if m == nil {
		return
	}
	m.ExtractionFailures.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
