package handlers

import "net/http"

// HealthHandler handles the admin API's unauthenticated health endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Liveness handles GET /health: the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{"service": "dbss-admin"}))
}

// Readiness handles GET /health/ready. The admin API has no external
// dependency of its own to check — it's ready as soon as it's listening,
// since /debug/* requests block on Server.Run rather than on a store.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(nil))
}
