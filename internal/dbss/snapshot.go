package dbss

// ActiveObjectSummary is a read-only, JSON-friendly view of an
// ActiveObjectRecord for the admin introspection API. It omits raw field
// bytes — operators inspect counts and locations, not payloads.
type ActiveObjectSummary struct {
	DOID        uint32 `json:"doid"`
	Class       uint16 `json:"class"`
	Parent      uint32 `json:"parent"`
	Zone        uint32 `json:"zone"`
	Located     bool   `json:"located"`
	FieldCount  int    `json:"field_count"`
	LastMutator uint64 `json:"last_mutator"`
}

// PendingFetchSummary is a read-only view of a PendingFetchEntry.
type PendingFetchSummary struct {
	DOID        uint32 `json:"doid"`
	Context     uint32 `json:"context"`
	WaiterCount int    `json:"waiter_count"`
}

// Snapshot is a point-in-time copy of the registry's two tables, safe to
// hand to a goroutine outside the dispatch loop (the admin HTTP server)
// since it shares no memory with the live records.
type Snapshot struct {
	Active  []ActiveObjectSummary
	Pending []PendingFetchSummary
}

// Snapshot builds a Snapshot of the registry's current contents. Must
// only be called from the dispatch loop goroutine; callers elsewhere
// reach it through Server's admin command channel (internal/dbss's
// rangesubscriber.go), never directly.
func (r *Registry) Snapshot() Snapshot {
	active := make([]ActiveObjectSummary, 0, len(r.active))
	for _, rec := range r.active {
		active = append(active, ActiveObjectSummary{
			DOID:        rec.DOID,
			Class:       rec.Class,
			Parent:      rec.Location.Parent,
			Zone:        rec.Location.Zone,
			Located:     rec.Location.IsValid(),
			FieldCount:  len(rec.Fields),
			LastMutator: uint64(rec.LastMutator),
		})
	}

	pending := make([]PendingFetchSummary, 0, len(r.pending))
	for _, e := range r.pending {
		pending = append(pending, PendingFetchSummary{
			DOID:        e.DOID,
			Context:     e.Context,
			WaiterCount: len(e.Waiters),
		})
	}

	return Snapshot{Active: active, Pending: pending}
}
