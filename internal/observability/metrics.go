package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// extraction pipeline.
type Metrics struct {
	LinesExtracted   prometheus.Counter
	RecordsAssembled prometheus.Counter
	UnitsProcessed   prometheus.Counter

	// Correction metrics, labelled by audit kind.
	CorrectionsApplied *prometheus.CounterVec // labels: kind={raw-override,replacement,spillover,normalized-override,unknown-code}

	FetchDuration     prometheus.Histogram
	ExtractionRunning prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LinesExtracted,
		m.RecordsAssembled,
		m.UnitsProcessed,
		m.CorrectionsApplied,
		m.FetchDuration,
		m.ExtractionRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		LinesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nucleartest_reader",
			Name:      "lines_extracted_total",
			Help:      "Total table-body lines sliced from source documents.",
		}),
		RecordsAssembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nucleartest_reader",
			Name:      "records_assembled_total",
			Help:      "Total typed records concatenated into the dataset.",
		}),
		UnitsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nucleartest_reader",
			Name:      "units_processed_total",
			Help:      "Total (state, url, line-range) units fully processed.",
		}),
		CorrectionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nucleartest_reader",
			Name:      "corrections_applied_total",
			Help:      "Corrective actions applied during extraction, by kind.",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nucleartest_reader",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one source document fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ExtractionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nucleartest_reader",
			Name:      "extraction_running",
			Help:      "1 while an extraction run is active, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nucleartest_reader",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nucleartest_reader",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nucleartest_reader",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}
