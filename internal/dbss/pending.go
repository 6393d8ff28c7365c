package dbss

import (
	"time"

	"github.com/marmos91/dbss/internal/bus"
)

// Waiter is a caller parked on a Pending Fetch Entry awaiting its DB_GET_ALL
// response. Exactly two shapes exist (§4.3): an activation, which wants a
// location broadcast, and a GET_ALL, which wants a direct reply.
type Waiter interface {
	isWaiter()
}

// ActivateWaiter is an ACTIVATE_WITH_DEFAULTS(_OTHER) parked on a fetch.
type ActivateWaiter struct {
	TargetLocation bus.Location
	// Overrides carries ACTIVATE_WITH_DEFAULTS_OTHER's field overrides,
	// nil for the plain variant.
	Overrides map[uint16][]byte
}

func (ActivateWaiter) isWaiter() {}

// GetAllWaiter is a GET_ALL parked on a fetch.
type GetAllWaiter struct {
	ReplyChannel  bus.Channel
	CallerContext uint32
}

func (GetAllWaiter) isWaiter() {}

// PendingFetchEntry coalesces every caller waiting on the same in-flight
// DB_GET_ALL. Per §9 it is a tagged-union waiter list keyed by DOID; the
// only invariant is single-entry-per-DOID.
type PendingFetchEntry struct {
	DOID      uint32
	Context   uint32
	Waiters   []Waiter
	CreatedAt time.Time
}
