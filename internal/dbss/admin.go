package dbss

import (
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/pkg/metrics"
)

// Snapshot returns a point-in-time copy of the registry, safe to hand to
// a goroutine outside the dispatch loop. Callers reach this exclusively
// through Server's admin command channel (rangesubscriber.go) so the
// read itself still happens on the dispatch loop goroutine.
func (d *Dispatcher) Snapshot() Snapshot {
	return d.registry.Snapshot()
}

// ForceEvict tears down doid's Active Object Record the same way
// handleDeleteRam does — broadcasting to its current location with the
// last mutator as source — but on an operator's request rather than a
// DELETE_RAM message. Reports whether doid was active.
func (d *Dispatcher) ForceEvict(doid uint32) (bool, error) {
	rec, active := d.registry.Active(doid)
	if !active {
		return false, nil
	}

	if rec.Location.IsValid() {
		source := rec.LastMutator
		if source == 0 {
			source = d.selfChannel
		}
		if err := d.send(dbproto.BuildDeleteRamBroadcast(rec.Location.Channel(), source, doid)); err != nil {
			return false, err
		}
	}

	d.registry.DeleteActive(doid)
	metrics.SetActiveObjectCount(d.metrics, d.registry.ActiveCount())
	return true, nil
}
