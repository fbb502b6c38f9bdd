package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the Prometheus collectors of the catalog service.
type Metrics struct {
	SourceEntriesFetched prometheus.Gauge
	SnapshotEntries      prometheus.Gauge
	SnapshotBuildsTotal  *prometheus.CounterVec // labels: result
	SnapshotBuildDur     prometheus.Histogram
	MalformedSourceTotal prometheus.Counter
	QueriesTotal         *prometheus.CounterVec // labels: result
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceEntriesFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_source_entries_fetched",
			Help: "Raw instrument entries returned by the last successful source fetch",
		}),
		SnapshotEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_snapshot_entries",
			Help: "Unique instruments retained in the last built snapshot",
		}),
		SnapshotBuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_snapshot_builds_total",
			Help: "Snapshot builds by result",
		}, []string{"result"}),
		SnapshotBuildDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_snapshot_build_duration_seconds",
			Help:    "Snapshot build duration including fetch and persist",
			Buckets: prometheus.DefBuckets,
		}),
		MalformedSourceTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_source_malformed_total",
			Help: "Source payloads without a usable instrument list",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "get_instruments queries by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.SourceEntriesFetched,
		m.SnapshotEntries,
		m.SnapshotBuildsTotal,
		m.SnapshotBuildDur,
		m.MalformedSourceTotal,
		m.QueriesTotal,
	)

	return m
}
