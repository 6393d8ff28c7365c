package dbproto

import (
	"fmt"

	"github.com/marmos91/dbss/internal/bus"
)

// ActivateRequest is a parsed ACTIVATE_WITH_DEFAULTS(_OTHER).
type ActivateRequest struct {
	DOID      uint32
	Parent    uint32
	Zone      uint32
	Overrides []FieldValue // non-nil only for the _OTHER variant
}

// ParseActivateWithDefaults decodes ACTIVATE_WITH_DEFAULTS(doid, parent, zone).
func ParseActivateWithDefaults(it *bus.DatagramIterator) (ActivateRequest, error) {
	return parseActivate(it, false)
}

// ParseActivateWithDefaultsOther decodes ACTIVATE_WITH_DEFAULTS_OTHER(doid,
// parent, zone, override_count, (field_id, value)*). Per §9, merging these
// overrides with DC defaults follows the surrounding ecosystem's DC
// field-override convention: overrides replace the corresponding default,
// by field id, before the required-field set is computed.
func ParseActivateWithDefaultsOther(it *bus.DatagramIterator) (ActivateRequest, error) {
	return parseActivate(it, true)
}

func parseActivate(it *bus.DatagramIterator, withOverrides bool) (ActivateRequest, error) {
	var req ActivateRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: ACTIVATE_WITH_DEFAULTS doid: %w", err)
	}
	if req.Parent, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: ACTIVATE_WITH_DEFAULTS parent: %w", err)
	}
	if req.Zone, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: ACTIVATE_WITH_DEFAULTS zone: %w", err)
	}
	if !withOverrides {
		return req, nil
	}
	if req.Overrides, err = readFields(it); err != nil {
		return req, fmt.Errorf("dbproto: ACTIVATE_WITH_DEFAULTS_OTHER overrides: %w", err)
	}
	return req, nil
}

// GetAllRequest is a parsed state-server GET_ALL.
type GetAllRequest struct {
	Context uint32
	DOID    uint32
}

// ParseGetAllRequest decodes GET_ALL(context, doid). The reply channel is
// the datagram's sender, read separately by the caller.
func ParseGetAllRequest(it *bus.DatagramIterator) (GetAllRequest, error) {
	var req GetAllRequest
	var err error
	if req.Context, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: GET_ALL context: %w", err)
	}
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: GET_ALL doid: %w", err)
	}
	return req, nil
}

// BuildGetAllResp encodes GET_ALL_RESP per §4.5: context, doid, parent,
// zone, class, required fields, optional_count, optional fields. status is
// always DBStatusSuccess; use BuildGetAllRespFailure for the FAILURE case.
func BuildGetAllResp(recipient, sender bus.Channel, context, doid, parent, zone uint32, class uint16, required, optional []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgStateServerObjectGetAllResp)
	dg.AddUint32(context).AddUint8(uint8(bus.DBStatusSuccess)).AddUint32(doid).AddUint32(parent).AddUint32(zone).AddUint16(class)
	writeFields(dg, required)
	return writeFields(dg, optional)
}

// GetAllResponse is a parsed GET_ALL_RESP, used by tests asserting on
// emitted broadcasts.
type GetAllResponse struct {
	Context            uint32
	Status             bus.DBStatus
	DOID, Parent, Zone uint32
	Class              uint16
	Required, Optional []FieldValue
}

// ParseGetAllResponse decodes a GET_ALL_RESP payload. Fields beyond status
// are only present on SUCCESS.
func ParseGetAllResponse(it *bus.DatagramIterator) (GetAllResponse, error) {
	var resp GetAllResponse
	var err error
	if resp.Context, err = it.ReadUint32(); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP context: %w", err)
	}
	status, err := it.ReadUint8()
	if err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP status: %w", err)
	}
	resp.Status = bus.DBStatus(status)
	if resp.Status != bus.DBStatusSuccess {
		return resp, nil
	}
	if resp.DOID, err = it.ReadUint32(); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP doid: %w", err)
	}
	if resp.Parent, err = it.ReadUint32(); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP parent: %w", err)
	}
	if resp.Zone, err = it.ReadUint32(); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP zone: %w", err)
	}
	if resp.Class, err = it.ReadUint16(); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP class: %w", err)
	}
	if resp.Required, err = readFields(it); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP required fields: %w", err)
	}
	if resp.Optional, err = readFields(it); err != nil {
		return resp, fmt.Errorf("dbproto: GET_ALL_RESP optional fields: %w", err)
	}
	return resp, nil
}

// BuildGetAllRespFailure encodes a failed GET_ALL_RESP: context and status
// only, per §4.3's FAILURE branch (no object exists to describe).
func BuildGetAllRespFailure(recipient, sender bus.Channel, context uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgStateServerObjectGetAllResp)
	return dg.AddUint32(context).AddUint8(uint8(bus.DBStatusFailure))
}

// GetFieldRequest is a parsed state-server GET_FIELD. Class is carried on
// the wire alongside doid/field_id so the classifier (§4.4) can resolve
// flags even when no Active Object Record exists yet to supply it — the
// caller (the shard holding this object) always knows the class.
type GetFieldRequest struct {
	Context uint32
	DOID    uint32
	Class   uint16
	FieldID uint16
}

// ParseGetFieldRequest decodes GET_FIELD(context, doid, class, field_id).
func ParseGetFieldRequest(it *bus.DatagramIterator) (GetFieldRequest, error) {
	var req GetFieldRequest
	var err error
	if req.Context, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELD context: %w", err)
	}
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELD doid: %w", err)
	}
	if req.Class, err = it.ReadUint16(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELD class: %w", err)
	}
	if req.FieldID, err = it.ReadUint16(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELD field id: %w", err)
	}
	return req, nil
}

// GetFieldsRequest is a parsed state-server GET_FIELDS. See GetFieldRequest
// for why Class is present.
type GetFieldsRequest struct {
	Context  uint32
	DOID     uint32
	Class    uint16
	FieldIDs []uint16
}

// ParseGetFieldsRequest decodes GET_FIELDS(context, doid, class, count, (field_id)*).
func ParseGetFieldsRequest(it *bus.DatagramIterator) (GetFieldsRequest, error) {
	var req GetFieldsRequest
	var err error
	if req.Context, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELDS context: %w", err)
	}
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELDS doid: %w", err)
	}
	if req.Class, err = it.ReadUint16(); err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELDS class: %w", err)
	}
	count, err := it.ReadUint16()
	if err != nil {
		return req, fmt.Errorf("dbproto: GET_FIELDS count: %w", err)
	}
	req.FieldIDs = make([]uint16, count)
	for i := range req.FieldIDs {
		if req.FieldIDs[i], err = it.ReadUint16(); err != nil {
			return req, fmt.Errorf("dbproto: GET_FIELDS field %d: %w", i, err)
		}
	}
	return req, nil
}

// BuildGetFieldResp encodes GET_FIELD_RESP(context, status, [field]).
func BuildGetFieldResp(recipient, sender bus.Channel, context uint32, status bus.DBStatus, field FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgStateServerObjectGetFieldResp)
	dg.AddUint32(context).AddUint8(uint8(status))
	if status != bus.DBStatusSuccess {
		return dg
	}
	return writeField(dg, field)
}

// BuildGetFieldsResp encodes GET_FIELDS_RESP(context, status, [fields]).
func BuildGetFieldsResp(recipient, sender bus.Channel, context uint32, status bus.DBStatus, fields []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{recipient}, sender, bus.MsgStateServerObjectGetFieldsResp)
	dg.AddUint32(context).AddUint8(uint8(status))
	if status != bus.DBStatusSuccess {
		return dg
	}
	return writeFields(dg, fields)
}

// SetFieldRequest is a parsed state-server SET_FIELD. See GetFieldRequest
// for why Class is present.
type SetFieldRequest struct {
	DOID  uint32
	Class uint16
	Field FieldValue
}

// ParseSetFieldRequest decodes SET_FIELD(doid, class, field).
func ParseSetFieldRequest(it *bus.DatagramIterator) (SetFieldRequest, error) {
	var req SetFieldRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: SET_FIELD doid: %w", err)
	}
	if req.Class, err = it.ReadUint16(); err != nil {
		return req, fmt.Errorf("dbproto: SET_FIELD class: %w", err)
	}
	if req.Field, err = readField(it); err != nil {
		return req, fmt.Errorf("dbproto: SET_FIELD field: %w", err)
	}
	return req, nil
}

// SetFieldsRequest is a parsed state-server SET_FIELDS.
type SetFieldsRequest struct {
	DOID   uint32
	Class  uint16
	Fields []FieldValue
}

// ParseSetFieldsRequest decodes SET_FIELDS(doid, class, fields).
func ParseSetFieldsRequest(it *bus.DatagramIterator) (SetFieldsRequest, error) {
	var req SetFieldsRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: SET_FIELDS doid: %w", err)
	}
	if req.Class, err = it.ReadUint16(); err != nil {
		return req, fmt.Errorf("dbproto: SET_FIELDS class: %w", err)
	}
	if req.Fields, err = readFields(it); err != nil {
		return req, fmt.Errorf("dbproto: SET_FIELDS fields: %w", err)
	}
	return req, nil
}

// BuildSetFieldBroadcast re-encodes an inbound SET_FIELD verbatim for
// rebroadcast to a location channel. Per §9, the broadcast's source
// channel must be the original requester, not the DBSS.
func BuildSetFieldBroadcast(location, originalSender bus.Channel, doid uint32, class uint16, field FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{location}, originalSender, bus.MsgStateServerObjectSetField)
	dg.AddUint32(doid).AddUint16(class)
	return writeField(dg, field)
}

// BuildSetFieldsBroadcast is the SET_FIELDS analogue of BuildSetFieldBroadcast.
func BuildSetFieldsBroadcast(location, originalSender bus.Channel, doid uint32, class uint16, fields []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{location}, originalSender, bus.MsgStateServerObjectSetFields)
	dg.AddUint32(doid).AddUint16(class)
	return writeFields(dg, fields)
}

// DeleteRequest is a parsed DELETE_RAM or DELETE_DISK request; both carry
// only a doid.
type DeleteRequest struct {
	DOID uint32
}

// ParseDeleteRequest decodes DELETE_RAM(doid) or DELETE_DISK(doid).
func ParseDeleteRequest(it *bus.DatagramIterator) (DeleteRequest, error) {
	var req DeleteRequest
	var err error
	if req.DOID, err = it.ReadUint32(); err != nil {
		return req, fmt.Errorf("dbproto: DELETE doid: %w", err)
	}
	return req, nil
}

// BuildDeleteRamBroadcast encodes the DELETE_RAM broadcast to a location channel.
func BuildDeleteRamBroadcast(location, sender bus.Channel, doid uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{location}, sender, bus.MsgStateServerObjectDeleteRam)
	return dg.AddUint32(doid)
}

// BuildDeleteDiskBroadcast encodes the DELETE_DISK broadcast to a location channel.
func BuildDeleteDiskBroadcast(location, sender bus.Channel, doid uint32) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{location}, sender, bus.MsgDBSSObjectDeleteDisk)
	return dg.AddUint32(doid)
}

// BuildEnterLocationWithRequired encodes ENTER_LOCATION_WITH_REQUIRED(doid,
// parent, zone, class, required fields), per §4.5.
func BuildEnterLocationWithRequired(location, sender bus.Channel, doid, parent, zone uint32, class uint16, required []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{location}, sender, bus.MsgStateServerObjectEnterLocationWithRequired)
	dg.AddUint32(doid).AddUint32(parent).AddUint32(zone).AddUint16(class)
	return writeFields(dg, required)
}

// BuildEnterLocationWithRequiredOther is the _OTHER variant, appending the
// ram-but-not-required fields whose value is set.
func BuildEnterLocationWithRequiredOther(location, sender bus.Channel, doid, parent, zone uint32, class uint16, required, optional []FieldValue) *bus.Datagram {
	dg := bus.NewDatagram([]bus.Channel{location}, sender, bus.MsgStateServerObjectEnterLocationWithRequiredOther)
	dg.AddUint32(doid).AddUint32(parent).AddUint32(zone).AddUint16(class)
	writeFields(dg, required)
	return writeFields(dg, optional)
}

// EnterLocationMessage is a parsed ENTER_LOCATION_WITH_REQUIRED(_OTHER),
// used by tests asserting on emitted broadcasts.
type EnterLocationMessage struct {
	DOID, Parent, Zone uint32
	Class              uint16
	Required, Optional []FieldValue
}

// ParseEnterLocationWithRequired decodes the base variant (no optional fields).
func ParseEnterLocationWithRequired(it *bus.DatagramIterator) (EnterLocationMessage, error) {
	return parseEnterLocation(it, false)
}

// ParseEnterLocationWithRequiredOther decodes the _OTHER variant.
func ParseEnterLocationWithRequiredOther(it *bus.DatagramIterator) (EnterLocationMessage, error) {
	return parseEnterLocation(it, true)
}

func parseEnterLocation(it *bus.DatagramIterator, withOptional bool) (EnterLocationMessage, error) {
	var msg EnterLocationMessage
	var err error
	if msg.DOID, err = it.ReadUint32(); err != nil {
		return msg, fmt.Errorf("dbproto: ENTER_LOCATION doid: %w", err)
	}
	if msg.Parent, err = it.ReadUint32(); err != nil {
		return msg, fmt.Errorf("dbproto: ENTER_LOCATION parent: %w", err)
	}
	if msg.Zone, err = it.ReadUint32(); err != nil {
		return msg, fmt.Errorf("dbproto: ENTER_LOCATION zone: %w", err)
	}
	if msg.Class, err = it.ReadUint16(); err != nil {
		return msg, fmt.Errorf("dbproto: ENTER_LOCATION class: %w", err)
	}
	if msg.Required, err = readFields(it); err != nil {
		return msg, fmt.Errorf("dbproto: ENTER_LOCATION required fields: %w", err)
	}
	if !withOptional {
		return msg, nil
	}
	if msg.Optional, err = readFields(it); err != nil {
		return msg, fmt.Errorf("dbproto: ENTER_LOCATION optional fields: %w", err)
	}
	return msg, nil
}
