package dbproto

import (
	"fmt"

	"github.com/marmos91/dbss/internal/bus"
)

// The functions in this file are the database server's side of the
// protocol: parsing requests the DBSS sent and building the responses it
// expects back. internal/dbfake is their only caller in this repository,
// but they live here because the wire shapes are this package's contract,
// not a fake-specific detail.

// GetAllRequest is a parsed DB_GET_ALL request.
type GetAllRequest struct {
	Context uint32
	DOID    uint32
}

// ParseDBGetAll decodes DB_GET_ALL(context, doid).
func ParseDBGetAll(it *bus.DatagramIterator) (GetAllRequest, error) {
	var req GetAllRequest
	var err error
	if req.Context, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_ALL context: %w", err)
	}
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_ALL doid: %w", err)
	}
	return req, nil
}

// BuildDBGetAllFailureResp encodes DB_GET_ALL_RESP for a failure: context and
// status only, no class/fields.
func BuildDBGetAllFailureResp(recipient, sender bus.Channel, context uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetAllResp)
	return dg.AddUint32(context).AddUint8(uint8(bus.DBStatusFailure))
}

// BuildDBGetAllSuccessResp encodes DB_GET_ALL_RESP(context, SUCCESS, class, fields).
func BuildDBGetAllSuccessResp(recipient, sender bus.Channel, context uint32, class uint16, fields []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetAllResp)
	dg.AddUint32(context).AddUint8(uint8(bus.DBStatusSuccess)).AddUint16(class)
	return writeFields(dg, fields)
}

// GetFieldRequest is a parsed DB_GET_FIELD request.
type GetFieldRequest struct {
	Context uint32
	DOID    uint32
	FieldID uint16
}

// ParseDBGetField decodes DB_GET_FIELD(context, doid, field_id).
func ParseDBGetField(it *bus.DatagramIterator) (GetFieldRequest, error) {
	var req GetFieldRequest
	var err error
	if req.Context, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_FIELD context: %w", err)
	}
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_FIELD doid: %w", err)
	}
	if req.FieldID, err = it.ReadUint16(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_FIELD field id: %w", err)
	}
	return req, nil
}

// BuildDBGetFieldFailureResp encodes a failed DB_GET_FIELD_RESP.
func BuildDBGetFieldFailureResp(recipient, sender bus.Channel, context uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetFieldResp)
	return dg.AddUint32(context).AddUint8(uint8(bus.DBStatusFailure))
}

// BuildDBGetFieldSuccessResp encodes a successful DB_GET_FIELD_RESP.
func BuildDBGetFieldSuccessResp(recipient, sender bus.Channel, context uint32, field FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetFieldResp)
	dg.AddUint32(context).AddUint8(uint8(bus.DBStatusSuccess))
	return writeField(dg, field)
}

// GetFieldsRequest is a parsed DB_GET_FIELDS request.
type GetFieldsRequest struct {
	Context  uint32
	DOID     uint32
	FieldIDs []uint16
}

// ParseDBGetFields decodes DB_GET_FIELDS(context, doid, count, (field_id)*).
func ParseDBGetFields(it *bus.DatagramIterator) (GetFieldsRequest, error) {
	var req GetFieldsRequest
	var err error
	if req.Context, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_FIELDS context: %w", err)
	}
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_FIELDS doid: %w", err)
	}
	count, err := it.ReadUint16()
	if err != nil {
		return req, fmt.Errorf("dbproto: DB_GET_FIELDS count: %w", err)
	}
	req.FieldIDs = make([]uint16, count)
	for i := range req.FieldIDs {
		if req.FieldIDs[i], err = it.ReadUint16(); err != nil {
			return req, fmt.Errorf("dbproto: DB_GET_FIELDS field %d: %w", i, err)
		}
	}
	return req, nil
}

// BuildDBGetFieldsFailureResp encodes a failed DB_GET_FIELDS_RESP.
func BuildDBGetFieldsFailureResp(recipient, sender bus.Channel, context uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetFieldsResp)
	return dg.AddUint32(context).AddUint8(uint8(bus.DBStatusFailure))
}

// BuildDBGetFieldsSuccessResp encodes a successful DB_GET_FIELDS_RESP.
func BuildDBGetFieldsSuccessResp(recipient, sender bus.Channel, context uint32, fields []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgDBServerObjectGetFieldsResp)
	dg.AddUint32(context).AddUint8(uint8(bus.DBStatusSuccess))
	return writeFields(dg, fields)
}

// SetFieldRequest is a parsed DB_SET_FIELD request.
type SetFieldRequest struct {
	DOID  uint32
	Field FieldValue
}

// ParseDBSetField decodes DB_SET_FIELD(doid, field_id, value).
func ParseDBSetField(it *bus.DatagramIterator) (SetFieldRequest, error) {
	var req SetFieldRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_SET_FIELD doid: %w", err)
	}
	if req.Field, err = readField(it); err != nil {
		return req, fmt.Errorf("dbproto: DB_SET_FIELD field: %w", err)
	}
	return req, nil
}

// SetFieldsRequest is a parsed DB_SET_FIELDS request.
type SetFieldsRequest struct {
	DOID   uint32
	Fields []FieldValue
}

// ParseDBSetFields decodes DB_SET_FIELDS(doid, count, (field_id, value)*).
func ParseDBSetFields(it *bus.DatagramIterator) (SetFieldsRequest, error) {
	var req SetFieldsRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_SET_FIELDS doid: %w", err)
	}
	if req.Fields, err = readFields(it); err != nil {
		return req, fmt.Errorf("dbproto: DB_SET_FIELDS fields: %w", err)
	}
	return req, nil
}

// DeleteRequest is a parsed DB_DELETE request.
type DeleteRequest struct {
	DOID uint32
}

// ParseDBDelete decodes DB_DELETE(doid).
func ParseDBDelete(it *bus.DatagramIterator) (DeleteRequest, error) {
	var req DeleteRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DB_DELETE doid: %w", err)
	}
	return req, nil
}
