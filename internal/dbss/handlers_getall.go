package dbss

import (
	"time"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/dberr"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/marmos91/dbss/internal/logger"
	"github.com/marmos91/dbss/pkg/metrics"
)

// handleGetAll answers GET_ALL. An active object replies immediately from
// RAM; an inactive one is folded into the Pending Fetch Coalescer (§4.3)
// as a GetAllWaiter, sharing any DB_GET_ALL already in flight for the doid.
func (d *Dispatcher) handleGetAll(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseGetAllRequest(it)
	if err != nil {
		return err
	}

	if rec, active := d.registry.Active(req.DOID); active {
		metrics.RecordFieldAccess(d.metrics, "get_all", "ram")
		return d.replyGetAllFromRecord(it.Sender(), req.Context, rec)
	}

	waiter := GetAllWaiter{ReplyChannel: it.Sender(), CallerContext: req.Context}

	if pending, ok := d.registry.Pending(req.DOID); ok {
		pending.Waiters = append(pending.Waiters, waiter)
		return nil
	}

	context := d.nextContext()
	entry := d.registry.CreatePending(req.DOID, context)
	entry.Waiters = append(entry.Waiters, waiter)
	metrics.SetPendingFetchCount(d.metrics, d.registry.PendingCount())

	return d.send(dbproto.BuildDBGetAll(d.dbChannel, d.selfChannel, context, req.DOID))
}

func (d *Dispatcher) replyGetAllFromRecord(replyTo bus.Channel, callerContext uint32, rec *ActiveObjectRecord) error {
	required, err := d.requiredFieldValues(rec)
	if err != nil {
		return err
	}
	optional, err := d.optionalFieldValues(rec)
	if err != nil {
		return err
	}
	return d.send(dbproto.BuildGetAllResp(replyTo, d.selfChannel, callerContext,
		rec.DOID, rec.Location.Parent, rec.Location.Zone, rec.Class, required, optional))
}

// handleDBGetAllResp implements §4.3's Pending-Fetch Completion algorithm:
// a single DB_GET_ALL_RESP fans out to every waiter that coalesced onto
// this fetch, in arrival order, then the pending entry is torn down.
func (d *Dispatcher) handleDBGetAllResp(it *bus.DatagramIterator) error {
	resp, err := dbproto.ParseDBGetAllResp(it)
	if err != nil {
		return err
	}

	entry, ok := d.registry.PendingByContext(resp.Context)
	if !ok {
		logger.Warn("stale DB_GET_ALL_RESP, no pending entry", logger.DBContext(resp.Context))
		return nil
	}
	doid := entry.DOID
	metrics.ObserveDBRoundTrip(d.metrics, "get_all", time.Since(entry.CreatedAt))

	if resp.Status != bus.DBStatusSuccess {
		logger.Warn("dropping pending fetch waiters, database reports object missing", logger.DOID(doid), logger.Err(dberr.NewObjectNotFoundError(doid)))
		d.failPendingFetch(entry)
		d.registry.DestroyPending(doid)
		metrics.SetPendingFetchCount(d.metrics, d.registry.PendingCount())
		return nil
	}

	rec, err := d.buildRecordFromDBGetAll(doid, resp)
	if err != nil {
		logger.Warn("schema inconsistency completing pending fetch", logger.DOID(doid), logger.Err(err))
		d.failPendingFetch(entry)
		d.registry.DestroyPending(doid)
		metrics.SetPendingFetchCount(d.metrics, d.registry.PendingCount())
		return nil
	}
	d.registry.SetActive(rec)
	metrics.SetActiveObjectCount(d.metrics, d.registry.ActiveCount())

	if err := d.resolvePendingFetch(entry, rec); err != nil {
		return err
	}
	d.registry.DestroyPending(doid)
	metrics.SetPendingFetchCount(d.metrics, d.registry.PendingCount())
	return nil
}

func (d *Dispatcher) failPendingFetch(entry *PendingFetchEntry) {
	for _, w := range entry.Waiters {
		if gw, ok := w.(GetAllWaiter); ok {
			if err := d.send(dbproto.BuildGetAllRespFailure(gw.ReplyChannel, d.selfChannel, gw.CallerContext)); err != nil {
				logger.Warn("failed to notify GET_ALL waiter of failure", logger.DOID(entry.DOID), logger.Err(err))
			}
		}
	}
}

// buildRecordFromDBGetAll constructs the Active Object Record from a
// successful DB_GET_ALL_RESP, applying DC defaults for any ram-or-required
// field the database didn't return. A required field missing from both the
// response and the schema's defaults is a schema inconsistency (§9).
func (d *Dispatcher) buildRecordFromDBGetAll(doid uint32, resp dbproto.GetAllResult) (*ActiveObjectRecord, error) {
	ramDefs, err := d.classifier.RAMFields(resp.Class)
	if err != nil {
		return nil, err
	}

	returned := make(map[uint16][]byte, len(resp.Fields))
	for _, f := range resp.Fields {
		returned[f.ID] = f.Data
	}

	rec := NewActiveObjectRecord(doid, resp.Class)
	for _, def := range ramDefs {
		if v, ok := returned[def.ID]; ok {
			rec.Fields[def.ID] = v
			continue
		}
		if def.Default != nil {
			rec.Fields[def.ID] = def.Default
			continue
		}
		if !def.Flags.Has(dc.FlagRequired) {
			continue
		}
		return nil, dberr.NewSchemaInconsistentError(doid, def.ID)
	}
	return rec, nil
}

// resolvePendingFetch processes a pending entry's waiters in arrival order
// once rec is active. The first ActivateWaiter encountered sets rec's
// location (§4.3's first-wins rule); every ActivateWaiter triggers an
// ENTER_LOCATION broadcast to its own target location regardless. Each
// GetAllWaiter is answered with rec's location as of that point in the
// iteration, which may still be invalid if no ActivateWaiter preceded it.
func (d *Dispatcher) resolvePendingFetch(entry *PendingFetchEntry, rec *ActiveObjectRecord) error {
	for _, w := range entry.Waiters {
		switch waiter := w.(type) {
		case ActivateWaiter:
			if !rec.Location.IsValid() {
				rec.Location = waiter.TargetLocation
			}
			for id, v := range waiter.Overrides {
				rec.Fields[id] = v
			}
			if err := d.broadcastEnterLocation(rec, waiter.TargetLocation); err != nil {
				return err
			}
		case GetAllWaiter:
			if err := d.replyGetAllFromRecord(waiter.ReplyChannel, waiter.CallerContext, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) broadcastEnterLocation(rec *ActiveObjectRecord, target bus.Location) error {
	required, err := d.requiredFieldValues(rec)
	if err != nil {
		return err
	}
	optional, err := d.optionalFieldValues(rec)
	if err != nil {
		return err
	}
	locationChannel := target.Channel()
	if len(optional) == 0 {
		return d.send(dbproto.BuildEnterLocationWithRequired(locationChannel, d.selfChannel,
			rec.DOID, target.Parent, target.Zone, rec.Class, required))
	}
	return d.send(dbproto.BuildEnterLocationWithRequiredOther(locationChannel, d.selfChannel,
		rec.DOID, target.Parent, target.Zone, rec.Class, required, optional))
}
