package dbproto

import (
	"testing"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivateWithDefaults(t *testing.T) {
	t.Parallel()

	dg := bus.NewDatagram(nil, bus.Channel(1), bus.MsgDBSSObjectActivateWithDefaults)
	dg.AddUint32(9001).AddUint32(80000).AddUint32(100)

	it := parsePayload(t, dg)
	req, err := ParseActivateWithDefaults(it)
	require.NoError(t, err)
	assert.Equal(t, uint32(9001), req.DOID)
	assert.Equal(t, uint32(80000), req.Parent)
	assert.Equal(t, uint32(100), req.Zone)
	assert.Nil(t, req.Overrides)
}

func TestParseActivateWithDefaultsOther(t *testing.T) {
	t.Parallel()

	dg := bus.NewDatagram(nil, bus.Channel(1), bus.MsgDBSSObjectActivateWithDefaultsOther)
	dg.AddUint32(9001).AddUint32(80000).AddUint32(100)
	writeFields(dg, []FieldValue{{ID: 5, Data: []byte{1, 2}}})

	it := parsePayload(t, dg)
	req, err := ParseActivateWithDefaultsOther(it)
	require.NoError(t, err)
	require.Len(t, req.Overrides, 1)
	assert.Equal(t, uint16(5), req.Overrides[0].ID)
}

func TestParseGetAllRequest(t *testing.T) {
	t.Parallel()

	dg := bus.NewDatagram(nil, bus.Channel(1), bus.MsgStateServerObjectGetAll)
	dg.AddUint32(3).AddUint32(9011)

	it := parsePayload(t, dg)
	req, err := ParseGetAllRequest(it)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), req.Context)
	assert.Equal(t, uint32(9011), req.DOID)
}

func TestGetAllResp_RoundTrip(t *testing.T) {
	t.Parallel()

	required := []FieldValue{
		{ID: 1, Data: []byte{0, 0, 0, 0}},
		{ID: 2, Data: []byte{0x3b, 0xea, 0x2e, 0x01}},
	}
	dg := BuildGetAllResp(bus.Channel(1), bus.Channel(2), 1, 9011, bus.InvalidDOID, bus.InvalidZone, 5, required, nil)
	it := parsePayload(t, dg)

	resp, err := ParseGetAllResponse(it)
	require.NoError(t, err)
	assert.Equal(t, bus.DBStatusSuccess, resp.Status)
	assert.Equal(t, uint32(9011), resp.DOID)
	assert.Equal(t, bus.InvalidDOID, resp.Parent)
	assert.Equal(t, bus.InvalidZone, resp.Zone)
	require.Len(t, resp.Required, 2)
	assert.Empty(t, resp.Optional)
}

func TestGetAllResp_Failure(t *testing.T) {
	t.Parallel()

	dg := BuildGetAllRespFailure(bus.Channel(1), bus.Channel(2), 9)
	it := parsePayload(t, dg)

	resp, err := ParseGetAllResponse(it)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), resp.Context)
	assert.Equal(t, bus.DBStatusFailure, resp.Status)
}

func TestSetFieldBroadcast_PreservesOriginalSender(t *testing.T) {
	t.Parallel()

	original := bus.Channel(555)
	dg := BuildSetFieldBroadcast(bus.LocationChannel(80000, 100), original, 9001, 5, FieldValue{ID: 4, Data: []byte{0, 0x10, 0, 0}})

	assert.Equal(t, original, dg.Sender())
	assert.Equal(t, []bus.Channel{bus.LocationChannel(80000, 100)}, dg.Recipients())

	it := parsePayload(t, dg)
	req, err := ParseSetFieldRequest(it)
	require.NoError(t, err)
	assert.Equal(t, uint32(9001), req.DOID)
	assert.Equal(t, uint16(4), req.Field.ID)
}

func TestSetFieldsBroadcast(t *testing.T) {
	t.Parallel()

	dg := BuildSetFieldsBroadcast(bus.LocationChannel(1, 1), bus.Channel(9), 42, 5, []FieldValue{
		{ID: 1, Data: []byte{1}},
		{ID: 2, Data: []byte{2}},
	})
	it := parsePayload(t, dg)
	req, err := ParseSetFieldsRequest(it)
	require.NoError(t, err)
	require.Len(t, req.Fields, 2)
}

func TestDeleteRequests(t *testing.T) {
	t.Parallel()

	dg := bus.NewDatagram(nil, bus.Channel(1), bus.MsgStateServerObjectDeleteRam)
	dg.AddUint32(42)
	it := parsePayload(t, dg)

	req, err := ParseDeleteRequest(it)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), req.DOID)
}

func TestDeleteRamBroadcast(t *testing.T) {
	t.Parallel()

	dg := BuildDeleteRamBroadcast(bus.LocationChannel(1, 1), bus.Channel(2), 42)
	assert.Equal(t, bus.MsgStateServerObjectDeleteRam, dg.MessageType())
}

func TestDeleteDiskBroadcast(t *testing.T) {
	t.Parallel()

	dg := BuildDeleteDiskBroadcast(bus.LocationChannel(1, 1), bus.Channel(2), 42)
	assert.Equal(t, bus.MsgDBSSObjectDeleteDisk, dg.MessageType())
}

func TestEnterLocationWithRequired_RoundTrip(t *testing.T) {
	t.Parallel()

	required := []FieldValue{
		{ID: 1, Data: []byte{0, 0, 0, 0}},
		{ID: 2, Data: []byte{0x2d, 0x0c, 0, 0}},
	}
	dg := BuildEnterLocationWithRequired(bus.LocationChannel(80000, 100), bus.Channel(1), 9001, 80000, 100, 5, required)

	it := parsePayload(t, dg)
	msg, err := ParseEnterLocationWithRequired(it)
	require.NoError(t, err)
	assert.Equal(t, uint32(9001), msg.DOID)
	assert.Equal(t, uint32(80000), msg.Parent)
	assert.Equal(t, uint32(100), msg.Zone)
	assert.Equal(t, uint16(5), msg.Class)
	require.Len(t, msg.Required, 2)
}

func TestEnterLocationWithRequiredOther_RoundTrip(t *testing.T) {
	t.Parallel()

	required := []FieldValue{{ID: 1, Data: []byte{0, 0, 0, 0}}}
	optional := []FieldValue{{ID: 3, Data: []byte{97}}}
	dg := BuildEnterLocationWithRequiredOther(bus.LocationChannel(1, 1), bus.Channel(1), 9001, 1, 1, 5, required, optional)

	it := parsePayload(t, dg)
	msg, err := ParseEnterLocationWithRequiredOther(it)
	require.NoError(t, err)
	require.Len(t, msg.Required, 1)
	require.Len(t, msg.Optional, 1)
	assert.Equal(t, uint16(3), msg.Optional[0].ID)
}

func TestGetFieldAndFieldsRequests(t *testing.T) {
	t.Parallel()

	dg := bus.NewDatagram(nil, bus.Channel(1), bus.MsgStateServerObjectGetField)
	dg.AddUint32(1).AddUint32(9001).AddUint16(5).AddUint16(2)
	it := parsePayload(t, dg)
	req, err := ParseGetFieldRequest(it)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), req.Class)
	assert.Equal(t, uint16(2), req.FieldID)

	resp := BuildGetFieldResp(bus.Channel(1), bus.Channel(2), 1, bus.DBStatusSuccess, FieldValue{ID: 2, Data: []byte{1}})
	it2 := parsePayload(t, resp)
	_, err = it2.ReadUint32()
	require.NoError(t, err)

	dgs := bus.NewDatagram(nil, bus.Channel(1), bus.MsgStateServerObjectGetFields)
	dgs.AddUint32(1).AddUint32(9001).AddUint16(5).AddUint16(2).AddUint16(2).AddUint16(3)
	its := parsePayload(t, dgs)
	reqs, err := ParseGetFieldsRequest(its)
	require.NoError(t, err)
	assert.Equal(t, []uint16{2, 3}, reqs.FieldIDs)

	resps := BuildGetFieldsResp(bus.Channel(1), bus.Channel(2), 1, bus.DBStatusSuccess, []FieldValue{{ID: 2, Data: []byte{1}}})
	assert.Equal(t, bus.MsgStateServerObjectGetFieldsResp, resps.MessageType())
}
