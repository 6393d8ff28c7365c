// Package metrics exposes the database state server's Prometheus
// registry and the domain-level metrics interfaces its packages record
// against, following the same interface-plus-constructor-indirection
// shape the teacher uses in its own pkg/metrics (an interface here,
// a concrete promauto-backed implementation in pkg/metrics/prometheus,
// wired together by a package-level constructor variable) so that
// internal/dbss never has to import the prometheus client directly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process's Prometheus registry and marks
// metrics collection enabled. Safe to call once at startup; callers
// that never call it get IsEnabled() == false and every constructor in
// this package returns nil, which every recording call treats as a
// silent no-op.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// GetRegistry returns the process registry, lazily initializing it.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}
