package dbss

import (
	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/pkg/metrics"
)

// handleDeleteRam implements DELETE_RAM: broadcast the teardown to the
// object's current location, using the last channel that mutated it as
// the broadcast's source (falling back to DBSS's own channel if the
// object was never mutated), then drop the Active Object Record. A no-op
// on an inactive doid — there is nothing in RAM to delete.
func (d *Dispatcher) handleDeleteRam(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDeleteRequest(it)
	if err != nil {
		return err
	}

	rec, active := d.registry.Active(req.DOID)
	if !active {
		return nil
	}

	if rec.Location.IsValid() {
		source := rec.LastMutator
		if source == 0 {
			source = d.selfChannel
		}
		if err := d.send(dbproto.BuildDeleteRamBroadcast(rec.Location.Channel(), source, req.DOID)); err != nil {
			return err
		}
	}

	d.registry.DeleteActive(req.DOID)
	metrics.SetActiveObjectCount(d.metrics, d.registry.ActiveCount())
	return nil
}

// handleDeleteDisk implements DELETE_DISK: always forward to the database
// regardless of activation state, and additionally broadcast to the
// object's location when active. Per §9's resolved Open Question, this
// never tears down the Active Object Record itself — only DELETE_RAM does.
func (d *Dispatcher) handleDeleteDisk(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseDeleteRequest(it)
	if err != nil {
		return err
	}

	if err := d.send(dbproto.BuildDBDelete(d.dbChannel, d.selfChannel, req.DOID)); err != nil {
		return err
	}

	if rec, active := d.registry.Active(req.DOID); active && rec.Location.IsValid() {
		source := rec.LastMutator
		if source == 0 {
			source = d.selfChannel
		}
		if err := d.send(dbproto.BuildDeleteDiskBroadcast(rec.Location.Channel(), source, req.DOID)); err != nil {
			return err
		}
	}
	return nil
}
