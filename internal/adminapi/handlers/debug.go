package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/dbss/internal/dbss"
)

// DebugHandler serves the /debug/* introspection and mutation routes by
// sending an AdminCommand into internal/dbss's Server.Run dispatch loop
// and waiting for its AdminResult, rather than reading or mutating the
// registry from this handler's own goroutine (internal/dbss's Registry
// is documented as touched only from that loop).
type DebugHandler struct {
	admin   chan<- dbss.AdminCommand
	timeout time.Duration
}

func NewDebugHandler(admin chan<- dbss.AdminCommand, timeout time.Duration) *DebugHandler {
	return &DebugHandler{admin: admin, timeout: timeout}
}

// dispatch sends cmd and waits for its result, bounded by h.timeout and
// the request context. A timeout here means the dispatch loop is busy
// or wedged; it is reported as 503 rather than hung indefinitely.
func (h *DebugHandler) dispatch(ctx context.Context, kind dbss.AdminCommandKind, doid uint32) (dbss.AdminResult, error) {
	result := make(chan dbss.AdminResult, 1)
	cmd := dbss.AdminCommand{Kind: kind, DOID: doid, Result: result}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	select {
	case h.admin <- cmd:
	case <-ctx.Done():
		return dbss.AdminResult{}, ctx.Err()
	}

	select {
	case res := <-result:
		return res, nil
	case <-ctx.Done():
		return dbss.AdminResult{}, ctx.Err()
	}
}

// ListActive handles GET /debug/active.
func (h *DebugHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatch(r.Context(), dbss.AdminSnapshot, 0)
	if err != nil {
		ServiceUnavailable(w, "dispatch loop did not respond in time: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse(res.Snapshot.Active))
}

// ListPending handles GET /debug/pending.
func (h *DebugHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	res, err := h.dispatch(r.Context(), dbss.AdminSnapshot, 0)
	if err != nil {
		ServiceUnavailable(w, "dispatch loop did not respond in time: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, okResponse(res.Snapshot.Pending))
}

// ForceEvict handles POST /debug/active/{doid}/evict.
func (h *DebugHandler) ForceEvict(w http.ResponseWriter, r *http.Request) {
	doid, err := strconv.ParseUint(chi.URLParam(r, "doid"), 10, 32)
	if err != nil {
		BadRequest(w, "doid must be a 32-bit unsigned integer")
		return
	}

	res, err := h.dispatch(r.Context(), dbss.AdminForceEvict, uint32(doid))
	if err != nil {
		ServiceUnavailable(w, "dispatch loop did not respond in time: "+err.Error())
		return
	}
	if res.Err != nil {
		InternalServerError(w, res.Err.Error())
		return
	}
	if !res.Evicted {
		NotFound(w, "doid is not active")
		return
	}
	writeJSON(w, http.StatusOK, okResponse(map[string]any{"doid": uint32(doid), "evicted": true}))
}
