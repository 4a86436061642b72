package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the map viewer.
type Metrics struct {
	SettleEvents    *prometheus.CounterVec // labels: kind={load,moveend,zoomend}
	CriteriaChanges *prometheus.CounterVec // labels: field
	SideListSize    prometheus.Histogram
	MarkerCount     prometheus.Histogram
	ActiveSessions  prometheus.Gauge

	// Activity feed metrics.
	ActivityPublished prometheus.Counter
	ActivityDropped   prometheus.Counter
	ActivityErrors    prometheus.Counter
	ActivityRunning   prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

var setBuckets = []float64{0, 1, 2, 3, 5, 10, 20, 50, 100}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SettleEvents,
		m.CriteriaChanges,
		m.SideListSize,
		m.MarkerCount,
		m.ActiveSessions,
		m.ActivityPublished,
		m.ActivityDropped,
		m.ActivityErrors,
		m.ActivityRunning,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
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
		SettleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "viewport_settle_events_total",
			Help:      "Map settle events received, by widget event kind.",
		}, []string{"kind"}),
		CriteriaChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "criteria_changes_total",
			Help:      "Filter input changes, by field.",
		}, []string{"field"}),
		SideListSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catmap",
			Name:      "side_list_size",
			Help:      "Number of records in the side list after each recomputation.",
			Buckets:   setBuckets,
		}),
		MarkerCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catmap",
			Name:      "marker_count",
			Help:      "Number of markers after each recomputation.",
			Buckets:   setBuckets,
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catmap",
			Name:      "active_sessions",
			Help:      "Viewer sessions currently held in memory.",
		}),
		ActivityPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "activity_events_published_total",
			Help:      "Viewport events written to the activity topic.",
		}),
		ActivityDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "activity_events_dropped_total",
			Help:      "Viewport events dropped because the feed buffer was full.",
		}),
		ActivityErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "activity_publish_errors_total",
			Help:      "Failed batch writes to the activity topic.",
		}),
		ActivityRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catmap",
			Name:      "activity_feed_running",
			Help:      "1 when the activity feed is active, 0 when shut down.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catmap",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "catmap",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catmap",
			Name:      "geocode_enabled",
			Help:      "1 when place enrichment is enabled, 0 otherwise.",
		}),
	}
}
