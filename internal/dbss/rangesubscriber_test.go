package dbss

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/bus/busfake"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/stretchr/testify/require"
)

// fakeRangeBus implements busClient against an in-memory fake, letting
// rangesubscriber tests drive Server.Run without a real TCP bus
// connection. Subscribe is a no-op; Recv blocks on recv until fed or
// closed.
type fakeRangeBus struct {
	*busfake.Bus
	recv   chan *bus.DatagramIterator
	closed chan struct{}
}

func newFakeRangeBus() *fakeRangeBus {
	return &fakeRangeBus{
		Bus:    busfake.New(),
		recv:   make(chan *bus.DatagramIterator),
		closed: make(chan struct{}),
	}
}

func (f *fakeRangeBus) Subscribe(self bus.Channel, min, max uint32, timeout time.Duration) error {
	return nil
}

func (f *fakeRangeBus) Recv() (*bus.DatagramIterator, error) {
	select {
	case it := <-f.recv:
		return it, nil
	case <-f.closed:
		return nil, context.Canceled
	}
}

func (f *fakeRangeBus) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

// schemaWithField builds a single-class schema whose only field is
// fieldID, so GET_FIELD dispatch can be used as a classifier probe:
// a field absent from the active schema is dropped as UnknownField,
// present otherwise.
func schemaWithField(fieldID uint16) *dc.Schema {
	return dc.NewSchema([]*dc.ClassDef{
		{
			Handle: testClass,
			Name:   "TestObject",
			Fields: []dc.FieldDef{
				{ID: fieldID, Name: "probe", Flags: dc.FlagDB},
			},
		},
	})
}

func buildGetField(doid uint32, class uint16, fieldID uint16) *bus.Datagram {
	dg := bus.NewDatagram(nil, bus.Channel(777), bus.MsgStateServerObjectGetField)
	return dg.AddUint32(1).AddUint32(doid).AddUint16(class).AddUint16(fieldID)
}

func TestServer_SchemaReload_SwapsClassifier(t *testing.T) {
	t.Parallel()

	const oldField uint16 = 10
	const newField uint16 = 20

	rb := newFakeRangeBus()
	d := NewDispatcher(dc.NewClassifier(schemaWithField(oldField)), rb, selfChannel, dbChannel, rangeMin, rangeMax)
	s := NewServer(d, rb, selfChannel, rangeMin, rangeMax, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- s.Run(ctx) }()

	// newField is unknown under the original schema: GET_FIELD for it is
	// a DispatchError the dispatch loop logs and drops, not a crash.
	send := func(dg *bus.Datagram) {
		it := parseIt(t, dg)
		select {
		case rb.recv <- it:
		case <-time.After(time.Second):
			t.Fatal("Run did not consume datagram in time")
		}
	}
	drain := func() {
		// Give Run's select a turn to process before asserting outbound state.
		time.Sleep(10 * time.Millisecond)
	}

	send(buildGetField(1, testClass, newField))
	drain()
	require.Empty(t, rb.SentOfType(bus.MsgStateServerObjectGetFieldResp))
	require.Empty(t, rb.SentOfType(bus.MsgDBServerObjectGetField))

	select {
	case s.SchemaReload <- schemaWithField(newField):
	case <-time.After(time.Second):
		t.Fatal("Run did not consume schema reload in time")
	}
	drain()

	send(buildGetField(1, testClass, newField))
	drain()
	require.Len(t, rb.SentOfType(bus.MsgDBServerObjectGetField), 1, "GET_FIELD should forward once newField is recognized by the reloaded schema")

	rb.Close()
	cancel()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after cancellation")
	}
}

func TestServer_Admin_ForceEvict(t *testing.T) {
	t.Parallel()

	rb := newFakeRangeBus()
	d := NewDispatcher(testClassifier(), rb, selfChannel, dbChannel, rangeMin, rangeMax)
	s := NewServer(d, rb, selfChannel, rangeMin, rangeMax, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- s.Run(ctx) }()

	result := make(chan AdminResult, 1)
	select {
	case s.Admin <- AdminCommand{Kind: AdminForceEvict, DOID: 1, Result: result}:
	case <-time.After(time.Second):
		t.Fatal("Run did not consume admin command in time")
	}

	select {
	case res := <-result:
		require.NoError(t, res.Err)
		require.False(t, res.Evicted, "evicting a DOID with no active record reports false, not an error")
	case <-time.After(time.Second):
		t.Fatal("admin command did not complete in time")
	}

	rb.Close()
	cancel()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after cancellation")
	}
}
