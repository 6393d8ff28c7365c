package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/dbss/internal/adminapi/handlers"
	"github.com/marmos91/dbss/internal/dbss"
	"github.com/marmos91/dbss/internal/logger"
	"github.com/marmos91/dbss/pkg/metrics"
)

// NewRouter builds the admin API's chi router: request-id/real-ip/log/
// recover/timeout middleware exactly as the teacher's control plane API
// does it, a health pair, a Prometheus exposition endpoint, and the
// /debug/* introspection+mutation routes backed by admin.
func NewRouter(admin chan<- dbss.AdminCommand, commandTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler()
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	if metrics.IsEnabled() {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}

	debugHandler := handlers.NewDebugHandler(admin, commandTimeout)
	r.Route("/debug", func(r chi.Router) {
		r.Get("/active", debugHandler.ListActive)
		r.Get("/pending", debugHandler.ListPending)
		r.Post("/active/{doid}/evict", debugHandler.ForceEvict)
	})

	return r
}

// isHealthPath reports whether path is a healthcheck endpoint, so
// requestLogger can demote it to DEBUG and avoid polluting logs.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger logs requests through internal/logger, mirroring the
// teacher's control plane API middleware: DEBUG for healthchecks, INFO
// for everything else, status/bytes/duration captured via chi's
// response-writer wrapper.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		args := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("admin API request completed", args...)
		} else {
			logger.Info("admin API request completed", args...)
		}
	})
}
