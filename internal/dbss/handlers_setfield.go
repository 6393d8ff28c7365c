package dbss

import (
	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/marmos91/dbss/pkg/metrics"
)

// handleSetField implements §4.2's SET_FIELD row: a db field is forwarded
// to the database, a ram-or-required field on an active object is applied
// to the record, and a broadcast field is mirrored to the object's current
// location (only meaningful while active — an inactive object has no
// location to broadcast to).
func (d *Dispatcher) handleSetField(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseSetFieldRequest(it)
	if err != nil {
		return err
	}
	flags, err := d.classifier.Flags(req.Class, req.Field.ID)
	if err != nil {
		return err
	}

	if flags.Has(dc.FlagDB) {
		if err := d.send(dbproto.BuildDBSetField(d.dbChannel, d.selfChannel, req.DOID, req.Field)); err != nil {
			return err
		}
		metrics.RecordFieldAccess(d.metrics, "set_field", "db")
	} else {
		metrics.RecordFieldAccess(d.metrics, "set_field", "ram")
	}

	rec, active := d.registry.Active(req.DOID)
	if !active {
		return nil
	}
	if ramOrRequired(flags) {
		rec.Fields[req.Field.ID] = req.Field.Data
		rec.LastMutator = it.Sender()
	}
	if flags.Has(dc.FlagBroadcast) && rec.Location.IsValid() {
		if err := d.send(dbproto.BuildSetFieldBroadcast(rec.Location.Channel(), it.Sender(), req.DOID, req.Class, req.Field)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) handleSetFields(it *bus.DatagramIterator) error {
	req, err := dbproto.ParseSetFieldsRequest(it)
	if err != nil {
		return err
	}

	rec, active := d.registry.Active(req.DOID)

	var dbFields []dbproto.FieldValue
	var broadcastFields []dbproto.FieldValue
	for _, f := range req.Fields {
		flags, err := d.classifier.Flags(req.Class, f.ID)
		if err != nil {
			continue
		}
		if flags.Has(dc.FlagDB) {
			dbFields = append(dbFields, f)
		}
		if active && ramOrRequired(flags) {
			rec.Fields[f.ID] = f.Data
			rec.LastMutator = it.Sender()
		}
		if flags.Has(dc.FlagBroadcast) {
			broadcastFields = append(broadcastFields, f)
		}
	}

	if len(dbFields) > 0 {
		if err := d.send(dbproto.BuildDBSetFields(d.dbChannel, d.selfChannel, req.DOID, dbFields)); err != nil {
			return err
		}
	}
	source := "ram"
	if len(dbFields) > 0 {
		source = "mixed"
		if len(dbFields) == len(req.Fields) {
			source = "db"
		}
	}
	metrics.RecordFieldAccess(d.metrics, "set_fields", source)
	if active && rec.Location.IsValid() && len(broadcastFields) > 0 {
		if err := d.send(dbproto.BuildSetFieldsBroadcast(rec.Location.Channel(), it.Sender(), req.DOID, req.Class, broadcastFields)); err != nil {
			return err
		}
	}
	return nil
}
