package metrics

import "time"

// DBSSMetrics records the dispatch loop's operational behavior: how
// often objects activate, how effective pending-fetch coalescing is,
// how long database round-trips take, and how dispatch errors break
// down by cause. A nil DBSSMetrics is always a valid, zero-overhead
// receiver — every recording method on a nil value must be called
// through the package-level helpers below, never directly.
type DBSSMetrics interface {
	// RecordActivation counts one ACTIVATE_WITH_DEFAULTS(_OTHER),
	// outcome is "fetched", "coalesced", or "already_active".
	RecordActivation(outcome string)

	// SetPendingFetchCount reports the current size of the pending
	// fetch table, sampled after each table mutation.
	SetPendingFetchCount(n int)

	// SetActiveObjectCount reports the current size of the active
	// object registry, sampled after each table mutation.
	SetActiveObjectCount(n int)

	// ObserveDBRoundTrip records the latency of one DB_* request/response
	// pair, keyed by DB operation name ("get_all", "get_field",
	// "get_fields").
	ObserveDBRoundTrip(operation string, duration time.Duration)

	// RecordFieldAccess counts one field read or write, kind is
	// "get_all" or "get_field" or "get_fields" or "set_field" or "set_fields",
	// source is "ram" or "db" or "mixed".
	RecordFieldAccess(kind string, source string)

	// RecordDispatchError counts one dispatch-level error by its
	// dberr.DispatchError reason string.
	RecordDispatchError(reason string)
}

// NewDBSSMetrics returns the Prometheus-backed DBSSMetrics registered by
// pkg/metrics/prometheus's init, or nil when metrics are disabled.
func NewDBSSMetrics() DBSSMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusDBSSMetrics()
}

// newPrometheusDBSSMetrics is populated by pkg/metrics/prometheus/dbss.go's
// init, mirroring the teacher's cache/S3 metrics indirection.
var newPrometheusDBSSMetrics func() DBSSMetrics

// RegisterDBSSMetricsConstructor is called by pkg/metrics/prometheus's
// init to supply the concrete constructor without pkg/metrics importing
// the prometheus client package.
func RegisterDBSSMetricsConstructor(constructor func() DBSSMetrics) {
	newPrometheusDBSSMetrics = constructor
}

// RecordActivation is a nil-safe wrapper for m.RecordActivation.
func RecordActivation(m DBSSMetrics, outcome string) {
	if m != nil {
		m.RecordActivation(outcome)
	}
}

// SetPendingFetchCount is a nil-safe wrapper for m.SetPendingFetchCount.
func SetPendingFetchCount(m DBSSMetrics, n int) {
	if m != nil {
		m.SetPendingFetchCount(n)
	}
}

// SetActiveObjectCount is a nil-safe wrapper for m.SetActiveObjectCount.
func SetActiveObjectCount(m DBSSMetrics, n int) {
	if m != nil {
		m.SetActiveObjectCount(n)
	}
}

// ObserveDBRoundTrip is a nil-safe wrapper for m.ObserveDBRoundTrip.
func ObserveDBRoundTrip(m DBSSMetrics, operation string, duration time.Duration) {
	if m != nil {
		m.ObserveDBRoundTrip(operation, duration)
	}
}

// RecordFieldAccess is a nil-safe wrapper for m.RecordFieldAccess.
func RecordFieldAccess(m DBSSMetrics, kind, source string) {
	if m != nil {
		m.RecordFieldAccess(kind, source)
	}
}

// RecordDispatchError is a nil-safe wrapper for m.RecordDispatchError.
func RecordDispatchError(m DBSSMetrics, reason string) {
	if m != nil {
		m.RecordDispatchError(reason)
	}
}
