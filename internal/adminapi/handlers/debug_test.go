package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/dbss/internal/dbss"
)

// withDOIDParam attaches a chi route context carrying the doid URL
// param, mirroring what chi's router would set up for a real request.
func withDOIDParam(req *http.Request, doid string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("doid", doid)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// fakeDispatchLoop answers AdminCommands the way internal/dbss.Server.Run
// would, without spinning up a real dispatch loop, so handler tests stay
// scoped to HTTP behavior.
func fakeDispatchLoop(t *testing.T, admin chan dbss.AdminCommand, respond func(dbss.AdminCommand) dbss.AdminResult) {
	t.Helper()
	go func() {
		for cmd := range admin {
			cmd.Result <- respond(cmd)
		}
	}()
}

func TestDebugHandler_ListActive_ReturnsSnapshot(t *testing.T) {
	admin := make(chan dbss.AdminCommand)
	fakeDispatchLoop(t, admin, func(cmd dbss.AdminCommand) dbss.AdminResult {
		return dbss.AdminResult{Snapshot: dbss.Snapshot{
			Active: []dbss.ActiveObjectSummary{{DOID: 1, Class: 5, FieldCount: 2}},
		}}
	})

	h := NewDebugHandler(admin, time.Second)
	req := httptest.NewRequest("GET", "/debug/active", nil)
	w := httptest.NewRecorder()

	h.ListActive(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
}

func TestDebugHandler_ListPending_ReturnsSnapshot(t *testing.T) {
	admin := make(chan dbss.AdminCommand)
	fakeDispatchLoop(t, admin, func(cmd dbss.AdminCommand) dbss.AdminResult {
		return dbss.AdminResult{Snapshot: dbss.Snapshot{
			Pending: []dbss.PendingFetchSummary{{DOID: 1, Context: 42, WaiterCount: 3}},
		}}
	})

	h := NewDebugHandler(admin, time.Second)
	req := httptest.NewRequest("GET", "/debug/pending", nil)
	w := httptest.NewRecorder()

	h.ListPending(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestDebugHandler_ForceEvict_InvalidDOID_Returns400(t *testing.T) {
	admin := make(chan dbss.AdminCommand)
	h := NewDebugHandler(admin, time.Second)

	req := httptest.NewRequest("POST", "/debug/active/notanumber/evict", nil)
	req = withDOIDParam(req, "notanumber")
	w := httptest.NewRecorder()

	h.ForceEvict(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
		t.Errorf("expected content type %q, got %q", ContentTypeProblemJSON, ct)
	}
}

func TestDebugHandler_ForceEvict_NotActive_Returns404(t *testing.T) {
	admin := make(chan dbss.AdminCommand)
	fakeDispatchLoop(t, admin, func(cmd dbss.AdminCommand) dbss.AdminResult {
		return dbss.AdminResult{Evicted: false}
	})

	h := NewDebugHandler(admin, time.Second)
	req := httptest.NewRequest("POST", "/debug/active/1/evict", nil)
	req = withDOIDParam(req, "1")
	w := httptest.NewRecorder()

	h.ForceEvict(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestDebugHandler_ForceEvict_Evicted_ReturnsOK(t *testing.T) {
	admin := make(chan dbss.AdminCommand)
	fakeDispatchLoop(t, admin, func(cmd dbss.AdminCommand) dbss.AdminResult {
		return dbss.AdminResult{Evicted: true}
	})

	h := NewDebugHandler(admin, time.Second)
	req := httptest.NewRequest("POST", "/debug/active/1/evict", nil)
	req = withDOIDParam(req, "1")
	w := httptest.NewRecorder()

	h.ForceEvict(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestDebugHandler_ListActive_DispatchTimeout_Returns503(t *testing.T) {
	// No fakeDispatchLoop consumer: the send on admin blocks until the
	// handler's own timeout fires.
	admin := make(chan dbss.AdminCommand)
	h := NewDebugHandler(admin, 10*time.Millisecond)

	req := httptest.NewRequest("GET", "/debug/active", nil)
	w := httptest.NewRecorder()

	h.ListActive(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}
