package dbss

import (
	"time"

	"github.com/marmos91/dbss/internal/bus"
)

// fieldWaiterEntry tracks a GET_FIELD/GET_FIELDS that forwarded some of
// its fields to the database and is waiting on the response to complete
// a reply that may also carry RAM-resolved values (§4.2's "mixed
// requests" rule). It is keyed by the DB context DBSS allocated for the
// forwarded request, distinct from the Pending Fetch Entry table, which
// exists only for ACTIVATE/GET_ALL coalescing.
type fieldWaiterEntry struct {
	DOID          uint32
	ReplyChannel  bus.Channel
	CallerContext uint32
	// Resolved holds field values already answered from RAM before the
	// DB round-trip, keyed by field id. Non-nil only for a GET_FIELDS
	// waiter; a single GET_FIELD either resolves from RAM outright or
	// forwards in full, so it never needs a partial result to merge.
	Resolved map[uint16][]byte
	// CreatedAt is when the forwarding request was sent, used to
	// observe DB round-trip latency once the response arrives.
	CreatedAt time.Time
}

type fieldWaiterTable struct {
	byContext map[uint32]*fieldWaiterEntry
}

func newFieldWaiterTable() *fieldWaiterTable {
	return &fieldWaiterTable{byContext: make(map[uint32]*fieldWaiterEntry)}
}

func (t *fieldWaiterTable) isLive(context uint32) bool {
	_, ok := t.byContext[context]
	return ok
}

func (t *fieldWaiterTable) create(context uint32, e *fieldWaiterEntry) {
	t.byContext[context] = e
}

func (t *fieldWaiterTable) get(context uint32) (*fieldWaiterEntry, bool) {
	e, ok := t.byContext[context]
	return e, ok
}

func (t *fieldWaiterTable) destroy(context uint32) {
	delete(t.byContext, context)
}
