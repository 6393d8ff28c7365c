package dbproto

import (
	"fmt"

	"github.com/marmos91/dbss/internal/bus"
)

// BuildDBGetAll encodes DB_GET_ALL(context, doid), per §6.
func BuildDBGetAll(recipient, sender bus.Channel, context, doid uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetAll)
	return dg.AddUint32(context).AddUint32(doid)
}

// BuildDBGetField encodes DB_GET_FIELD(context, doid, field_id).
func BuildDBGetField(recipient, sender bus.Channel, context, doid uint32, fieldID uint16) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetField)
	return dg.AddUint32(context).AddUint32(doid).AddUint16(fieldID)
}

// BuildDBGetFields encodes DB_GET_FIELDS(context, doid, count, (field_id)*).
func BuildDBGetFields(recipient, sender bus.Channel, context, doid uint32, fieldIDs []uint16) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetFields)
	dg.AddUint32(context).AddUint32(doid).AddUint16(uint16(len(fieldIDs)))
	for _, id := range fieldIDs {
		dg.AddUint16(id)
	}
	return dg
}

// BuildDBSetField encodes DB_SET_FIELD(doid, field_id, value). Fire-and-forget.
func BuildDBSetField(recipient, sender bus.Channel, doid uint32, field FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectSetField)
	dg.AddUint32(doid)
	return writeField(dg, field)
}

// BuildDBSetFields encodes DB_SET_FIELDS(doid, count, (field_id, value)*). Fire-and-forget.
func BuildDBSetFields(recipient, sender bus.Channel, doid uint32, fields []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectSetFields)
	dg.AddUint32(doid)
	return writeFields(dg, fields)
}

// BuildDBDelete encodes DB_DELETE(doid). Fire-and-forget.
func BuildDBDelete(recipient, sender bus.Channel, doid uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectDelete)
	return dg.AddUint32(doid)
}

// GetAllResult is a parsed DB_GET_ALL_RESP.
type GetAllResult struct {
	Context uint32
	Status  bus.DBStatus
	Class   uint16
	Fields  []FieldValue
}

// ParseDBGetAllResp decodes DB_GET_ALL_RESP(context, status, [class, field_count, (field_id, value)*]).
// The class/fields are only present on SUCCESS.
func ParseDBGetAllResp(it *bus.DatagramIterator) (GetAllResult, error) {
	var res GetAllResult
	var err error
	if res.Context, err = it.ReadUint32(); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_ALL_RESP context: %w", err)
	}
	status, err := it.ReadUint8()
	if err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_ALL_RESP status: %w", err)
	}
	res.Status = bus.DBStatus(status)
	if res.Status != bus.DBStatusSuccess {
		return res, nil
	}
	if res.Class, err = it.ReadUint16(); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_ALL_RESP class: %w", err)
	}
	if res.Fields, err = readFields(it); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_ALL_RESP fields: %w", err)
	}
	return res, nil
}

// GetFieldResult is a parsed DB_GET_FIELD_RESP.
type GetFieldResult struct {
	Context uint32
	Status  bus.DBStatus
	Field   FieldValue
}

// ParseDBGetFieldResp decodes DB_GET_FIELD_RESP(context, status, [field]).
func ParseDBGetFieldResp(it *bus.DatagramIterator) (GetFieldResult, error) {
	var res GetFieldResult
	var err error
	if res.Context, err = it.ReadUint32(); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_FIELD_RESP context: %w", err)
	}
	status, err := it.ReadUint8()
	if err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_FIELD_RESP status: %w", err)
	}
	res.Status = bus.DBStatus(status)
	if res.Status != bus.DBStatusSuccess {
		return res, nil
	}
	if res.Field, err = readField(it); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_FIELD_RESP field: %w", err)
	}
	return res, nil
}

// GetFieldsResult is a parsed DB_GET_FIELDS_RESP.
type GetFieldsResult struct {
	Context uint32
	Status  bus.DBStatus
	Fields  []FieldValue
}

// ParseDBGetFieldsResp decodes DB_GET_FIELDS_RESP(context, status, [count, (field_id, value)*]).
func ParseDBGetFieldsResp(it *bus.DatagramIterator) (GetFieldsResult, error) {
	var res GetFieldsResult
	var err error
	if res.Context, err = it.ReadUint32(); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_FIELDS_RESP context: %w", err)
	}
	status, err := it.ReadUint8()
	if err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_FIELDS_RESP status: %w", err)
	}
	res.Status = bus.DBStatus(status)
	if res.Status != bus.DBStatusSuccess {
		return res, nil
	}
	if res.Fields, err = readFields(it); err != nil {
		return res, fmt.Errorf("dbproto: DB_GET_FIELDS_RESP fields: %w", err)
	}
	return res, nil
}
