package dbss

import (
	"time"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/marmos91/dbss/internal/logger"
	"github.com/marmos91/dbss/pkg/metrics"
)

// handleGetField answers GET_FIELD. A ram-or-required field on an active
// object is answered straight from the record; otherwise a db field is
// forwarded to the database and answered when DB_GET_FIELD_RESP arrives,
// and any other field gets a FAILURE reply.
func (d *Dispatcher) handleGetField(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseGetFieldRequest(it)
	if err != nil {
		return err
	}

	flags, err := d.classifier.Flags(req.Class, req.FieldID)
	if err != nil {
		return err
	}

	if rec, active := d.registry.Active(req.DOID); active && ramOrRequired(flags) {
		v := rec.Fields[req.FieldID]
		metrics.RecordFieldAccess(d.metrics, "get_field", "ram")
		return d.send(dbproto.BuildGetFieldResp(it.Sender(), d.selfChannel, req.Context, bus.DBStatusSuccess,
			dbproto.FieldValue{ID: req.FieldID, Data: v}))
	}

	if !flags.Has(dc.FlagDB) {
		return d.send(dbproto.BuildGetFieldResp(it.Sender(), d.selfChannel, req.Context, bus.DBStatusFailure, dbproto.FieldValue{ID: req.FieldID}))
	}

	context := d.nextContext()
	d.fields.create(context, &fieldWaiterEntry{
		DOID:          req.DOID,
		ReplyChannel:  it.Sender(),
		CallerContext: req.Context,
		CreatedAt:     time.Now(),
	})
	metrics.RecordFieldAccess(d.metrics, "get_field", "db")
	return d.send(dbproto.BuildDBGetField(d.dbChannel, d.selfChannel, context, req.DOID, req.FieldID))
}

// handleGetFields partitions the requested field ids between RAM (answered
// immediately, only when active) and DB (forwarded, tracked in the field
// waiter table so the eventual DB_GET_FIELDS_RESP can be merged with the
// RAM-resolved subset). Fields with neither the ram/required nor the db
// flag set have nothing to answer with and are dropped from the reply.
func (d *Dispatcher) handleGetFields(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseGetFieldsRequest(it)
	if err != nil {
		return err
	}

	rec, active := d.registry.Active(req.DOID)
	resolved := make(map[uint16][]byte)
	var dbFieldIDs []uint16

	for _, fieldID := range req.FieldIDs {
		flags, err := d.classifier.Flags(req.Class, fieldID)
		if err != nil {
			logger.Debug("dropping unknown field in GET_FIELDS", logger.DOID(req.DOID), logger.FieldID(fieldID))
			continue
		}
		if active && ramOrRequired(flags) {
			resolved[fieldID] = rec.Fields[fieldID]
			continue
		}
		if flags.Has(dc.FlagDB) {
			dbFieldIDs = append(dbFieldIDs, fieldID)
		}
	}

	if len(dbFieldIDs) == 0 {
		metrics.RecordFieldAccess(d.metrics, "get_fields", "ram")
		return d.send(dbproto.BuildGetFieldsResp(it.Sender(), d.selfChannel, req.Context, bus.DBStatusSuccess, fieldValuesFromMap(resolved)))
	}

	context := d.nextContext()
	d.fields.create(context, &fieldWaiterEntry{
		DOID:          req.DOID,
		ReplyChannel:  it.Sender(),
		CallerContext: req.Context,
		Resolved:      resolved,
		CreatedAt:     time.Now(),
	})
	source := "db"
	if len(resolved) > 0 {
		source = "mixed"
	}
	metrics.RecordFieldAccess(d.metrics, "get_fields", source)
	return d.send(dbproto.BuildDBGetFields(d.dbChannel, d.selfChannel, context, req.DOID, dbFieldIDs))
}

func (d *Dispatcher) handleDBGetFieldResp(it *bus.DatagramIterator) error {
	resp, err := dbproto.ParseDBGetFieldResp(it)
	if err != nil {
		return err
	}
	waiter, ok := d.fields.get(resp.Context)
	if !ok {
		logger.Warn("stale DB_GET_FIELD_RESP, no waiter", logger.DBContext(resp.Context))
		return nil
	}
	d.fields.destroy(resp.Context)
	metrics.ObserveDBRoundTrip(d.metrics, "get_field", time.Since(waiter.CreatedAt))

	if resp.Status != bus.DBStatusSuccess {
		return d.send(dbproto.BuildGetFieldResp(waiter.ReplyChannel, d.selfChannel, waiter.CallerContext, bus.DBStatusFailure, resp.Field))
	}
	return d.send(dbproto.BuildGetFieldResp(waiter.ReplyChannel, d.selfChannel, waiter.CallerContext, bus.DBStatusSuccess, resp.Field))
}

func (d *Dispatcher) handleDBGetFieldsResp(it *bus.DatagramIterator) error {
	resp, err := dbproto.ParseDBGetFieldsResp(it)
	if err != nil {
		return err
	}
	waiter, ok := d.fields.get(resp.Context)
	if !ok {
		logger.Warn("stale DB_GET_FIELDS_RESP, no waiter", logger.DBContext(resp.Context))
		return nil
	}
	d.fields.destroy(resp.Context)
	metrics.ObserveDBRoundTrip(d.metrics, "get_fields", time.Since(waiter.CreatedAt))

	if resp.Status != bus.DBStatusSuccess {
		return d.send(dbproto.BuildGetFieldsResp(waiter.ReplyChannel, d.selfChannel, waiter.CallerContext, bus.DBStatusFailure, nil))
	}

	merged := waiter.Resolved
	if merged == nil {
		merged = make(map[uint16][]byte, len(resp.Fields))
	}
	for _, f := range resp.Fields {
		merged[f.ID] = f.Data
	}
	return d.send(dbproto.BuildGetFieldsResp(waiter.ReplyChannel, d.selfChannel, waiter.CallerContext, bus.DBStatusSuccess, fieldValuesFromMap(merged)))
}

func ramOrRequired(flags dc.FieldFlags) bool {
	return flags.Has(dc.FlagRAM) || flags.Has(dc.FlagRequired)
}

func fieldValuesFromMap(m map[uint16][]byte) []dbproto.FieldValue {
	if len(m) == 0 {
		return nil
	}
	values := make([]dbproto.FieldValue, 0, len(m))
	for id, data := range m {
		values = append(values, dbproto.FieldValue{ID: id, Data: data})
	}
	return values
}
