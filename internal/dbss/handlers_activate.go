package dbss

import (
	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/logger"
	"github.com/marmos91/dbss/pkg/metrics"
)

func (d *Dispatcher) handleActivateWithDefaults(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseActivateWithDefaults(it)
	if err != nil {
		return err
	}
	return d.activate(req)
}

func (d *Dispatcher) handleActivateWithDefaultsOther(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseActivateWithDefaultsOther(it)
	if err != nil {
		return err
	}
	return d.activate(req)
}

// activate implements the ACTIVATE_WITH_DEFAULTS(_OTHER) row of §4.2's
// dispatch table.
func (d *Dispatcher) activate(req dbproto.ActivateRequest) error {
	if _, active := d.registry.Active(req.DOID); active {
		logger.Debug("activate on already-active object, ignoring", logger.DOID(req.DOID))
		metrics.RecordActivation(d.metrics, "already_active")
		return nil
	}

	waiter := ActivateWaiter{
		TargetLocation: bus.Location{Parent: req.Parent, Zone: req.Zone},
		Overrides:      overridesByID(req.Overrides),
	}

	if pending, ok := d.registry.Pending(req.DOID); ok {
		pending.Waiters = append(pending.Waiters, waiter)
		metrics.RecordActivation(d.metrics, "coalesced")
		return nil
	}

	context := d.nextContext()
	entry := d.registry.CreatePending(req.DOID, context)
	entry.Waiters = append(entry.Waiters, waiter)
	metrics.RecordActivation(d.metrics, "fetched")
	metrics.SetPendingFetchCount(d.metrics, d.registry.PendingCount())

	return d.send(dbproto.BuildDBGetAll(d.dbChannel, d.selfChannel, context, req.DOID))
}

func overridesByID(fields []dbproto.FieldValue) map[uint16][]byte {
	if fields == nil {
		return nil
	}
	m := make(map[uint16][]byte, len(fields))
	for _, f := range fields {
		m[f.ID] = f.Data
	}
	return m
}
