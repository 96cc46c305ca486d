package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the query server.
type Metrics struct {
	Requests        *prometheus.CounterVec   // labels: route, status
	RequestDuration *prometheus.HistogramVec // labels: route
	RejectedQueries *prometheus.CounterVec   // labels: reason={empty_selection,unknown_group,unknown_metric,not_found,bad_request}

	// Snapshot metrics, set once per load.
	SnapshotMetros    prometheus.Gauge
	SnapshotSummaries prometheus.Gauge
	CoercedValues     prometheus.Gauge
	LoadDuration      prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.RejectedQueries,
		m.SnapshotMetros,
		m.SnapshotSummaries,
		m.CoercedValues,
		m.LoadDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metroclusters",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metroclusters",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"route"}),
		RejectedQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metroclusters",
			Name:      "rejected_queries_total",
			Help:      "Queries rejected before computation, by reason.",
		}, []string{"reason"}),
		SnapshotMetros: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metroclusters",
			Name:      "snapshot_metros",
			Help:      "Metros in the loaded snapshot.",
		}),
		SnapshotSummaries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metroclusters",
			Name:      "snapshot_summaries",
			Help:      "Summary records derived from the loaded snapshot.",
		}),
		CoercedValues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metroclusters",
			Name:      "snapshot_coerced_values",
			Help:      "Non-numeric metric cells treated as missing at load.",
		}),
		LoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "metroclusters",
			Name:      "snapshot_load_duration_seconds",
			Help:      "Time spent loading and aggregating the snapshot.",
		}),
	}
}
