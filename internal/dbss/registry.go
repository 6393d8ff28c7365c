package dbss

import "time"

// Registry owns the two tables the dispatcher consults on every message:
// DOID → Active Object Record, and DOID → Pending Fetch Entry. It is
// touched only from the single dispatch loop (§5), so it needs no
// locking of its own.
type Registry struct {
	active  map[uint32]*ActiveObjectRecord
	pending map[uint32]*PendingFetchEntry
	// byContext resolves a DB_GET_ALL_RESP's context back to the DOID
	// whose Pending Fetch Entry issued it.
	byContext map[uint32]uint32
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		active:    make(map[uint32]*ActiveObjectRecord),
		pending:   make(map[uint32]*PendingFetchEntry),
		byContext: make(map[uint32]uint32),
	}
}

// Active returns the Active Object Record for doid, if any.
func (r *Registry) Active(doid uint32) (*ActiveObjectRecord, bool) {
	rec, ok := r.active[doid]
	return rec, ok
}

// SetActive installs rec as the Active Object Record for its DOID.
func (r *Registry) SetActive(rec *ActiveObjectRecord) {
	r.active[rec.DOID] = rec
}

// DeleteActive removes a DOID's Active Object Record.
func (r *Registry) DeleteActive(doid uint32) {
	delete(r.active, doid)
}

// Pending returns the Pending Fetch Entry for doid, if any.
func (r *Registry) Pending(doid uint32) (*PendingFetchEntry, bool) {
	e, ok := r.pending[doid]
	return e, ok
}

// PendingByContext resolves a DB response context to its Pending Fetch Entry.
func (r *Registry) PendingByContext(context uint32) (*PendingFetchEntry, bool) {
	doid, ok := r.byContext[context]
	if !ok {
		return nil, false
	}
	return r.Pending(doid)
}

// CreatePending installs a new Pending Fetch Entry for doid under context.
func (r *Registry) CreatePending(doid, context uint32) *PendingFetchEntry {
	e := &PendingFetchEntry{DOID: doid, Context: context, CreatedAt: time.Now()}
	r.pending[doid] = e
	r.byContext[context] = doid
	return e
}

// DestroyPending removes doid's Pending Fetch Entry and its context mapping.
func (r *Registry) DestroyPending(doid uint32) {
	if e, ok := r.pending[doid]; ok {
		delete(r.byContext, e.Context)
	}
	delete(r.pending, doid)
}

// IsContextLive reports whether context currently names a Pending Fetch
// Entry, for the global context counter's collision check (§9).
func (r *Registry) IsContextLive(context uint32) bool {
	_, ok := r.byContext[context]
	return ok
}

// ActiveCount returns the number of Active Object Records currently held.
func (r *Registry) ActiveCount() int {
	return len(r.active)
}

// PendingCount returns the number of in-flight Pending Fetch Entries.
func (r *Registry) PendingCount() int {
	return len(r.pending)
}
