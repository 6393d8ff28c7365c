// Package prometheus implements the database state server's metrics
// interfaces against the Prometheus client, the way the teacher's own
// pkg/metrics/prometheus backs its cache and S3 metrics.
package prometheus

import (
	"time"

	"github.com/marmos91/dbss/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterDBSSMetricsConstructor(func() metrics.DBSSMetrics {
		return NewDBSSMetrics()
	})
}

// dbssMetrics is the Prometheus implementation of metrics.DBSSMetrics.
type dbssMetrics struct {
	activations       *prometheus.CounterVec
	pendingFetchCount prometheus.Gauge
	activeObjectCount prometheus.Gauge
	dbRoundTrip       *prometheus.HistogramVec
	fieldAccess       *prometheus.CounterVec
	dispatchErrors    *prometheus.CounterVec
}

// NewDBSSMetrics creates a Prometheus-backed metrics.DBSSMetrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewDBSSMetrics() metrics.DBSSMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &dbssMetrics{
		activations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbss_activations_total",
				Help: "Total number of ACTIVATE_WITH_DEFAULTS(_OTHER) requests by outcome",
			},
			[]string{"outcome"}, // "fetched", "coalesced", "already_active"
		),
		pendingFetchCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dbss_pending_fetches",
				Help: "Current number of in-flight DB_GET_ALL pending fetch entries",
			},
		),
		activeObjectCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dbss_active_objects",
				Help: "Current number of Active Object Records held in memory",
			},
		),
		dbRoundTrip: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dbss_db_round_trip_milliseconds",
				Help: "Duration of a DB_* request/response round trip in milliseconds",
				Buckets: []float64{
					0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000,
				},
			},
			[]string{"operation"}, // "get_all", "get_field", "get_fields"
		),
		fieldAccess: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbss_field_access_total",
				Help: "Total number of field reads/writes by kind and resolution source",
			},
			[]string{"kind", "source"}, // kind: get_all/get_field/get_fields/set_field/set_fields; source: ram/db/mixed
		),
		dispatchErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbss_dispatch_errors_total",
				Help: "Total number of dispatch-level errors by reason",
			},
			[]string{"reason"},
		),
	}
}

func (m *dbssMetrics) RecordActivation(outcome string) {
	m.activations.WithLabelValues(outcome).Inc()
}

func (m *dbssMetrics) SetPendingFetchCount(n int) {
	m.pendingFetchCount.Set(float64(n))
}

func (m *dbssMetrics) SetActiveObjectCount(n int) {
	m.activeObjectCount.Set(float64(n))
}

func (m *dbssMetrics) ObserveDBRoundTrip(operation string, duration time.Duration) {
	m.dbRoundTrip.WithLabelValues(operation).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *dbssMetrics) RecordFieldAccess(kind, source string) {
	m.fieldAccess.WithLabelValues(kind, source).Inc()
}

func (m *dbssMetrics) RecordDispatchError(reason string) {
	m.dispatchErrors.WithLabelValues(reason).Inc()
}
