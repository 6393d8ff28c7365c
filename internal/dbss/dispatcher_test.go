package dbss

import (
	"testing"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/bus/busfake"
	"github.com/marmos91/dbss/internal/dbproto"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClass      uint16 = 5
	fieldSetPos    uint16 = 1 // required, ram
	fieldHP        uint16 = 2 // required, ram, broadcast
	fieldAccount   uint16 = 3 // db only
	fieldNickname  uint16 = 4 // ram, broadcast, not required
	selfChannel           = bus.Channel(100)
	dbChannel             = bus.Channel(200)
	rangeMin              = uint32(9000)
	rangeMax              = uint32(9999)
)

func testClassifier() *dc.Classifier {
	schema := dc.NewSchema([]*dc.ClassDef{
		{
			Handle: testClass,
			Name:   "TestObject",
			Fields: []dc.FieldDef{
				{ID: fieldSetPos, Name: "setPos", Flags: dc.FlagRequired | dc.FlagRAM, Default: []byte{0, 0, 0, 0}},
				{ID: fieldHP, Name: "setHP", Flags: dc.FlagRequired | dc.FlagRAM | dc.FlagBroadcast, Default: []byte{100, 0, 0, 0}},
				{ID: fieldAccount, Name: "setAccount", Flags: dc.FlagDB},
				{ID: fieldNickname, Name: "setNickname", Flags: dc.FlagRAM | dc.FlagBroadcast},
			},
		},
	})
	return dc.NewClassifier(schema)
}

func newTestDispatcher() (*Dispatcher, *busfake.Bus) {
	b := busfake.New()
	d := NewDispatcher(testClassifier(), b, selfChannel, dbChannel, rangeMin, rangeMax)
	return d, b
}

func parseIt(t *testing.T, dg *bus.Datagram) *bus.DatagramIterator {
	t.Helper()
	body, err := dg.Bytes()
	require.NoError(t, err)
	it, err := bus.ParseDatagram(body)
	require.NoError(t, err)
	return it
}

func buildActivate(sender bus.Channel, doid, parent, zone uint32) *bus.Datagram {
	dg := bus.NewDatagram(nil, sender, bus.MsgDBSSObjectActivateWithDefaults)
	return dg.AddUint32(doid).AddUint32(parent).AddUint32(zone)
}

func TestDispatcher_ActivateOnInactiveObject_FetchesFromDB(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	activate := buildActivate(selfChannel, 9001, 80000, 100)

	require.NoError(t, d.Dispatch(parseIt(t, activate)))

	sent := b.SentOfType(bus.MsgDBServerObjectGetAll)
	require.Len(t, sent, 1)

	_, pending := d.registry.Pending(9001)
	assert.True(t, pending)
}

func TestDispatcher_ActivateOnActiveObject_Ignored(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	d.registry.SetActive(rec)

	activate := buildActivate(selfChannel, 9001, 80000, 100)
	require.NoError(t, d.Dispatch(parseIt(t, activate)))

	assert.Empty(t, b.SentOfType(bus.MsgDBServerObjectGetAll))
	assert.Empty(t, b.SentOfType(bus.MsgStateServerObjectEnterLocationWithRequired))
}

func TestDispatcher_CoalescedActivateAndGetAll(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()

	activate := buildActivate(selfChannel, 9001, 80000, 100)
	require.NoError(t, d.Dispatch(parseIt(t, activate)))

	getAll := bus.NewDatagram(nil, bus.Channel(777), bus.MsgStateServerObjectGetAll)
	getAll.AddUint32(3).AddUint32(9001)
	require.NoError(t, d.Dispatch(parseIt(t, getAll)))

	// Only one DB_GET_ALL should have gone out despite two waiters.
	require.Len(t, b.SentOfType(bus.MsgDBServerObjectGetAll), 1)

	entry, ok := d.registry.Pending(9001)
	require.True(t, ok)
	require.Len(t, entry.Waiters, 2)

	context := entry.Context
	resp := dbproto.BuildDBGetAllSuccessResp(selfChannel, dbChannel, context, testClass, []dbproto.FieldValue{
		{ID: fieldSetPos, Data: []byte{1, 0, 0, 0}},
		{ID: fieldHP, Data: []byte{100, 0, 0, 0}},
	})
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	// ActivateWaiter triggers an ENTER_LOCATION broadcast.
	enterLoc := b.SentOfType(bus.MsgStateServerObjectEnterLocationWithRequired)
	require.Len(t, enterLoc, 1)
	assert.Equal(t, bus.LocationChannel(80000, 100), enterLoc[0].Recipients()[0])

	// GetAllWaiter gets a GET_ALL_RESP reflecting the now-set location.
	getAllResp := b.SentOfType(bus.MsgStateServerObjectGetAllResp)
	require.Len(t, getAllResp, 1)
	parsed, err := dbproto.ParseGetAllResponse(parseIt(t, getAllResp[0]))
	require.NoError(t, err)
	assert.Equal(t, bus.DBStatusSuccess, parsed.Status)
	assert.Equal(t, uint32(80000), parsed.Parent)
	assert.Equal(t, uint32(100), parsed.Zone)

	rec, active := d.registry.Active(9001)
	require.True(t, active)
	assert.Equal(t, bus.Location{Parent: 80000, Zone: 100}, rec.Location)

	_, stillPending := d.registry.Pending(9001)
	assert.False(t, stillPending)
}

func TestDispatcher_ActivateMissingFromDB_NoRecordCreated(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	activate := buildActivate(selfChannel, 9001, 80000, 100)
	require.NoError(t, d.Dispatch(parseIt(t, activate)))

	entry, _ := d.registry.Pending(9001)
	resp := dbproto.BuildDBGetAllFailureResp(selfChannel, dbChannel, entry.Context)
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	_, active := d.registry.Active(9001)
	assert.False(t, active)
	_, pending := d.registry.Pending(9001)
	assert.False(t, pending)
	assert.Empty(t, b.SentOfType(bus.MsgStateServerObjectEnterLocationWithRequired))
}

func TestDispatcher_SetField_RAMField_AppliesAndBroadcasts(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	rec.Location = bus.Location{Parent: 80000, Zone: 100}
	d.registry.SetActive(rec)

	set := bus.NewDatagram(nil, bus.Channel(555), bus.MsgStateServerObjectSetField)
	set.AddUint32(9001).AddUint16(testClass).AddUint16(fieldHP).AddUint16(4).AddBlob([]byte{50, 0, 0, 0})
	require.NoError(t, d.Dispatch(parseIt(t, set)))

	assert.Equal(t, []byte{50, 0, 0, 0}, rec.Fields[fieldHP])

	broadcasts := b.SentOfType(bus.MsgStateServerObjectSetField)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, bus.Channel(555), broadcasts[0].Sender())
	assert.Equal(t, []bus.Channel{bus.LocationChannel(80000, 100)}, broadcasts[0].Recipients())
}

func TestDispatcher_GetField_DBOnlyField_RoundTrips(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()

	get := bus.NewDatagram(nil, bus.Channel(777), bus.MsgStateServerObjectGetField)
	get.AddUint32(1).AddUint32(9001).AddUint16(testClass).AddUint16(fieldAccount)
	require.NoError(t, d.Dispatch(parseIt(t, get)))

	fwd := b.SentOfType(bus.MsgDBServerObjectGetField)
	require.Len(t, fwd, 1)
	fwdReq, err := dbproto.ParseDBGetField(parseIt(t, fwd[0]))
	require.NoError(t, err)

	resp := dbproto.BuildDBGetFieldSuccessResp(selfChannel, dbChannel, fwdReq.Context, dbproto.FieldValue{ID: fieldAccount, Data: []byte("acct")})
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	out := b.SentOfType(bus.MsgStateServerObjectGetFieldResp)
	require.Len(t, out, 1)
}

func TestDispatcher_DeleteRam_BroadcastsAndClearsRecord(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	rec.Location = bus.Location{Parent: 80000, Zone: 100}
	rec.LastMutator = bus.Channel(555)
	d.registry.SetActive(rec)

	del := bus.NewDatagram(nil, bus.Channel(1), bus.MsgStateServerObjectDeleteRam)
	del.AddUint32(9001)
	require.NoError(t, d.Dispatch(parseIt(t, del)))

	_, active := d.registry.Active(9001)
	assert.False(t, active)

	broadcasts := b.SentOfType(bus.MsgStateServerObjectDeleteRam)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, bus.Channel(555), broadcasts[0].Sender())
}

func TestDispatcher_DeleteDisk_AlwaysForwardsToDB_NeverClearsRecord(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	rec.Location = bus.Location{Parent: 80000, Zone: 100}
	d.registry.SetActive(rec)

	del := bus.NewDatagram(nil, bus.Channel(1), bus.MsgDBSSObjectDeleteDisk)
	del.AddUint32(9001)
	require.NoError(t, d.Dispatch(parseIt(t, del)))

	assert.Len(t, b.SentOfType(bus.MsgDBServerObjectDelete), 1)
	assert.Len(t, b.SentOfType(bus.MsgDBSSObjectDeleteDisk), 1)

	_, stillActive := d.registry.Active(9001)
	assert.True(t, stillActive)
}

func TestDispatcher_InRange(t *testing.T) {
	t.Parallel()

	d, _ := newTestDispatcher()
	assert.True(t, d.InRange(rangeMin))
	assert.True(t, d.InRange(rangeMax))
	assert.False(t, d.InRange(rangeMin-1))
	assert.False(t, d.InRange(rangeMax+1))
}

func TestDispatcher_UnknownMessageType_DroppedNotErrored(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	dg := bus.NewDatagram(nil, bus.Channel(1), bus.MessageType(0xFFFF))
	require.NoError(t, d.Dispatch(parseIt(t, dg)))
	assert.Empty(t, b.Sent())
}

func buildGetFields(context, doid uint32, class uint16, fieldIDs []uint16) *bus.Datagram {
	dg := bus.NewDatagram(nil, bus.Channel(777), bus.MsgStateServerObjectGetFields)
	dg.AddUint32(context).AddUint32(doid).AddUint16(class).AddUint16(uint16(len(fieldIDs)))
	for _, id := range fieldIDs {
		dg.AddUint16(id)
	}
	return dg
}

// parseGetFieldsResp decodes a GET_FIELDS_RESP payload into a map keyed by
// field id. There is no production parser for this direction of the wire
// format (only the shard client consumes it), so tests decode it by hand.
func parseGetFieldsResp(t *testing.T, dg *bus.Datagram) (status bus.DBStatus, fields map[uint16][]byte) {
	t.Helper()
	it := parseIt(t, dg)
	_, err := it.ReadUint32() // context
	require.NoError(t, err)
	s, err := it.ReadUint8()
	require.NoError(t, err)
	status = bus.DBStatus(s)
	if status != bus.DBStatusSuccess {
		return status, nil
	}
	count, err := it.ReadUint16()
	require.NoError(t, err)
	fields = make(map[uint16][]byte, count)
	for i := uint16(0); i < count; i++ {
		id, err := it.ReadUint16()
		require.NoError(t, err)
		length, err := it.ReadUint16()
		require.NoError(t, err)
		data, err := it.ReadBlob(int(length))
		require.NoError(t, err)
		fields[id] = data
	}
	return status, fields
}

func TestDispatcher_GetFields_AllRAM_AnsweredImmediately(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	rec.Fields[fieldSetPos] = []byte{1, 0, 0, 0}
	rec.Fields[fieldHP] = []byte{100, 0, 0, 0}
	d.registry.SetActive(rec)

	get := buildGetFields(1, 9001, testClass, []uint16{fieldSetPos, fieldHP})
	require.NoError(t, d.Dispatch(parseIt(t, get)))

	assert.Empty(t, b.SentOfType(bus.MsgDBServerObjectGetFields), "all-RAM request needs no DB forward")
	out := b.SentOfType(bus.MsgStateServerObjectGetFieldsResp)
	require.Len(t, out, 1)
	status, fields := parseGetFieldsResp(t, out[0])
	assert.Equal(t, bus.DBStatusSuccess, status)
	assert.Equal(t, []byte{1, 0, 0, 0}, fields[fieldSetPos])
	assert.Equal(t, []byte{100, 0, 0, 0}, fields[fieldHP])
}

func TestDispatcher_GetFields_MixedRAMAndDB_MergesOnCompletion(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	rec.Fields[fieldSetPos] = []byte{7, 0, 0, 0}
	d.registry.SetActive(rec)

	get := buildGetFields(1, 9001, testClass, []uint16{fieldSetPos, fieldAccount})
	require.NoError(t, d.Dispatch(parseIt(t, get)))

	fwd := b.SentOfType(bus.MsgDBServerObjectGetFields)
	require.Len(t, fwd, 1)
	fwdReq, err := dbproto.ParseDBGetFields(parseIt(t, fwd[0]))
	require.NoError(t, err)
	assert.Equal(t, []uint16{fieldAccount}, fwdReq.FieldIDs, "the RAM-resolved field is not forwarded to the database")

	resp := dbproto.BuildDBGetFieldsSuccessResp(selfChannel, dbChannel, fwdReq.Context, []dbproto.FieldValue{
		{ID: fieldAccount, Data: []byte("acct")},
	})
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	out := b.SentOfType(bus.MsgStateServerObjectGetFieldsResp)
	require.Len(t, out, 1)
	status, fields := parseGetFieldsResp(t, out[0])
	assert.Equal(t, bus.DBStatusSuccess, status)
	assert.Equal(t, []byte{7, 0, 0, 0}, fields[fieldSetPos], "RAM-resolved subset survives the merge")
	assert.Equal(t, []byte("acct"), fields[fieldAccount])
}

func TestDispatcher_GetFields_AllDB_RoundTrips(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()

	get := buildGetFields(1, 9001, testClass, []uint16{fieldAccount})
	require.NoError(t, d.Dispatch(parseIt(t, get)))

	fwd := b.SentOfType(bus.MsgDBServerObjectGetFields)
	require.Len(t, fwd, 1)
	fwdReq, err := dbproto.ParseDBGetFields(parseIt(t, fwd[0]))
	require.NoError(t, err)

	resp := dbproto.BuildDBGetFieldsSuccessResp(selfChannel, dbChannel, fwdReq.Context, []dbproto.FieldValue{
		{ID: fieldAccount, Data: []byte("acct")},
	})
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	out := b.SentOfType(bus.MsgStateServerObjectGetFieldsResp)
	require.Len(t, out, 1)
	status, fields := parseGetFieldsResp(t, out[0])
	assert.Equal(t, bus.DBStatusSuccess, status)
	assert.Equal(t, []byte("acct"), fields[fieldAccount])
}

func buildSetFields(doid uint32, class uint16, fields []dbproto.FieldValue) *bus.Datagram {
	dg := bus.NewDatagram(nil, bus.Channel(555), bus.MsgStateServerObjectSetFields)
	dg.AddUint32(doid).AddUint16(class).AddUint16(uint16(len(fields)))
	for _, f := range fields {
		dg.AddUint16(f.ID).AddUint16(uint16(len(f.Data))).AddBlob(f.Data)
	}
	return dg
}

func TestDispatcher_SetFields_MixedRAMAndDB_BroadcastsAndForwards(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()
	rec := NewActiveObjectRecord(9001, testClass)
	rec.Location = bus.Location{Parent: 80000, Zone: 100}
	d.registry.SetActive(rec)

	set := buildSetFields(9001, testClass, []dbproto.FieldValue{
		{ID: fieldHP, Data: []byte{50, 0, 0, 0}},
		{ID: fieldAccount, Data: []byte("acct")},
	})
	require.NoError(t, d.Dispatch(parseIt(t, set)))

	assert.Equal(t, []byte{50, 0, 0, 0}, rec.Fields[fieldHP])

	dbSent := b.SentOfType(bus.MsgDBServerObjectSetFields)
	require.Len(t, dbSent, 1)
	dbReq, err := dbproto.ParseDBSetFields(parseIt(t, dbSent[0]))
	require.NoError(t, err)
	require.Len(t, dbReq.Fields, 1)
	assert.Equal(t, fieldAccount, dbReq.Fields[0].ID)

	broadcasts := b.SentOfType(bus.MsgStateServerObjectSetFields)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, bus.Channel(555), broadcasts[0].Sender())
	assert.Equal(t, []bus.Channel{bus.LocationChannel(80000, 100)}, broadcasts[0].Recipients())
}

// TestDispatcher_GetAllMiss_DiskOnly_FillsDCDefault encodes spec scenario 4:
// a GET_ALL against a never-activated object whose database row omits a
// required ram field. The response fills the gap from the DC default and
// replies with the sentinel invalid location, never touching the database
// a second time.
func TestDispatcher_GetAllMiss_DiskOnly_FillsDCDefault(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()

	getAll := bus.NewDatagram(nil, bus.Channel(777), bus.MsgStateServerObjectGetAll)
	getAll.AddUint32(1).AddUint32(9011)
	require.NoError(t, d.Dispatch(parseIt(t, getAll)))

	entry, ok := d.registry.Pending(9011)
	require.True(t, ok)

	resp := dbproto.BuildDBGetAllSuccessResp(selfChannel, dbChannel, entry.Context, testClass, []dbproto.FieldValue{
		{ID: fieldHP, Data: []byte{100, 0, 0, 0}},
	})
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	out := b.SentOfType(bus.MsgStateServerObjectGetAllResp)
	require.Len(t, out, 1)
	parsed, err := dbproto.ParseGetAllResponse(parseIt(t, out[0]))
	require.NoError(t, err)
	assert.Equal(t, bus.DBStatusSuccess, parsed.Status)
	assert.Equal(t, bus.InvalidDOID, parsed.Parent, "a disk-only object reports the invalid location sentinel")
	assert.Equal(t, bus.InvalidZone, parsed.Zone)

	required := make(map[uint16][]byte, len(parsed.Required))
	for _, f := range parsed.Required {
		required[f.ID] = f.Data
	}
	assert.Equal(t, []byte{0, 0, 0, 0}, required[fieldSetPos], "missing required field filled from its DC default")
	assert.Equal(t, []byte{100, 0, 0, 0}, required[fieldHP])

	assert.Len(t, b.SentOfType(bus.MsgDBServerObjectGetAll), 1, "only the original DB_GET_ALL should have gone out")
	_, stillPending := d.registry.Pending(9011)
	assert.False(t, stillPending)
}

// TestDispatcher_SetField_DiskOnly_ForwardsToDBWithoutActivating encodes
// spec scenario 6: SET_FIELD against a disk-only (never-activated) object
// with a db-only field still forwards to the database and creates no RAM
// record, since there is none to broadcast from.
func TestDispatcher_SetField_DiskOnly_ForwardsToDBWithoutActivating(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()

	set := bus.NewDatagram(nil, bus.Channel(555), bus.MsgStateServerObjectSetField)
	set.AddUint32(9030).AddUint16(testClass).AddUint16(fieldAccount).AddUint16(4).AddBlob([]byte{0, 0, 16, 0})
	require.NoError(t, d.Dispatch(parseIt(t, set)))

	dbSent := b.SentOfType(bus.MsgDBServerObjectSetField)
	require.Len(t, dbSent, 1)
	dbReq, err := dbproto.ParseDBSetField(parseIt(t, dbSent[0]))
	require.NoError(t, err)
	assert.Equal(t, uint32(9030), dbReq.DOID)
	assert.Equal(t, fieldAccount, dbReq.Field.ID)

	assert.Empty(t, b.SentOfType(bus.MsgStateServerObjectSetField), "no active record means nowhere to broadcast to")
	_, active := d.registry.Active(9030)
	assert.False(t, active)
}

// TestDispatcher_GetAllFailure_DropsCoalescedActivateWaiter covers the
// FAILURE branch of DB_GET_ALL_RESP with an ActivateWaiter coalesced
// alongside a GetAllWaiter onto the same pending fetch: no record is
// created, no ENTER_LOCATION goes out, and the GET_ALL caller alone gets
// a FAILURE reply.
func TestDispatcher_GetAllFailure_DropsCoalescedActivateWaiter(t *testing.T) {
	t.Parallel()

	d, b := newTestDispatcher()

	activate := buildActivate(selfChannel, 9002, 80000, 100)
	require.NoError(t, d.Dispatch(parseIt(t, activate)))

	getAll := bus.NewDatagram(nil, bus.Channel(777), bus.MsgStateServerObjectGetAll)
	getAll.AddUint32(9).AddUint32(9002)
	require.NoError(t, d.Dispatch(parseIt(t, getAll)))

	entry, ok := d.registry.Pending(9002)
	require.True(t, ok)
	require.Len(t, entry.Waiters, 2)

	resp := dbproto.BuildDBGetAllFailureResp(selfChannel, dbChannel, entry.Context)
	require.NoError(t, d.Dispatch(parseIt(t, resp)))

	_, active := d.registry.Active(9002)
	assert.False(t, active)
	_, pending := d.registry.Pending(9002)
	assert.False(t, pending)
	assert.Empty(t, b.SentOfType(bus.MsgStateServerObjectEnterLocationWithRequired))
	getAllResp := b.SentOfType(bus.MsgStateServerObjectGetAllResp)
	require.Len(t, getAllResp, 1)
	parsed, err := dbproto.ParseGetAllResponse(parseIt(t, getAllResp[0]))
	require.NoError(t, err)
	assert.Equal(t, bus.DBStatusFailure, parsed.Status)
}
