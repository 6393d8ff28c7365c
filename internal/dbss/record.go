// Package dbss implements the Database State Server's core state machine:
// the object registry, the pending-fetch coalescer, and the dispatcher
// that wires inbound bus messages to both. Nothing in this package talks
// to a socket directly; internal/bus.Sender is its only output, and
// internal/bus.DatagramIterator is its only input.
package dbss

import "github.com/marmos91/dbss/internal/bus"

// ActiveObjectRecord is an object currently resident in RAM: it has a
// class, a ram-or-required field snapshot, and — once an ACTIVATE waiter
// has resolved it — a location. Per §3/§5 there is exactly one of these
// per active DOID, owned solely by the dispatch loop.
type ActiveObjectRecord struct {
	DOID     uint32
	Class    uint16
	Location bus.Location
	// Fields holds the ram-or-required snapshot, keyed by field id. This
	// is the same map used to answer GET_ALL and to seed a fresh record
	// on activation (SPEC_FULL §12).
	Fields map[uint16][]byte
	// LastMutator is the sender of the most recent SET_FIELD(S) applied
	// to this record. DELETE_RAM broadcasts carry it as their source
	// channel; before any mutation it is the zero Channel, meaning "use
	// the DBSS's own channel" (SPEC_FULL §12).
	LastMutator bus.Channel
}

// NewActiveObjectRecord builds a record with an empty field map.
func NewActiveObjectRecord(doid uint32, class uint16) *ActiveObjectRecord {
	return &ActiveObjectRecord{
		DOID:     doid,
		Class:    class,
		Location: bus.InvalidLocation,
		Fields:   make(map[uint16][]byte),
	}
}
