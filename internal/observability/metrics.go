package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "water_quality"

// Metrics holds the Prometheus counters, histograms, and gauges for the load pipeline.
type Metrics struct {
	RowsRead          *prometheus.CounterVec // labels: category
	RecordsClassified *prometheus.CounterVec // labels: category, verdict
	SourceFailures    *prometheus.CounterVec // labels: category
	LoadsCompleted    prometheus.Counter
	LoadDuration      prometheus.Histogram
	RecordsLoaded     *prometheus.GaugeVec // labels: category

	// Publishing metrics.
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter

	// Chart serving metrics.
	SeriesCache       *prometheus.CounterVec // labels: result={hit,miss}
	InvalidSelections *prometheus.CounterVec // labels: category
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all pipeline metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.RowsRead,
		m.RecordsClassified,
		m.SourceFailures,
		m.LoadsCompleted,
		m.LoadDuration,
		m.RecordsLoaded,
		m.RecordsPublished,
		m.PublishErrors,
		m.SeriesCache,
		m.InvalidSelections,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data lines read from sources, by category.",
		}, []string{"category"}),
		RecordsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_classified_total",
			Help:      "Records accepted and classified, by category and verdict.",
		}, []string{"category", "verdict"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Loads whose source could not be opened or read, by category.",
		}, []string{"category"}),
		LoadsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_completed_total",
			Help:      "Reload requests that ran to completion.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a complete reload across all requested categories.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Records currently held, by category.",
		}, []string{"category"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Classified records written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish a category's records.",
		}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_total",
			Help:      "Chart cache lookups by result.",
		}, []string{"result"}),
		InvalidSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_selections_total",
			Help:      "Chart requests for group keys that do not exist, by category.",
		}, []string{"category"}),
	}
}
