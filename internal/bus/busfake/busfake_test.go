package busfake

import (
	"testing"
	"time"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Send_Records(t *testing.T) {
	t.Parallel()

	b := New()
	dg := bus.NewDatagram([]bus.Channel{200}, bus.Channel(5), bus.MsgDBServerObjectGetAll)

	require.NoError(t, b.Send(dg, time.Second))

	sent := b.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, bus.MsgDBServerObjectGetAll, sent[0].MessageType())
}

func TestBus_SentOfType(t *testing.T) {
	t.Parallel()

	b := New()
	require.NoError(t, b.Send(bus.NewDatagram(nil, 1, bus.MsgDBServerObjectGetAll), 0))
	require.NoError(t, b.Send(bus.NewDatagram(nil, 1, bus.MsgDBServerObjectDelete), 0))
	require.NoError(t, b.Send(bus.NewDatagram(nil, 1, bus.MsgDBServerObjectGetAll), 0))

	assert.Equal(t, 2, b.CountOfType(bus.MsgDBServerObjectGetAll))
	assert.Equal(t, 1, b.CountOfType(bus.MsgDBServerObjectDelete))
}

func TestBus_Reset(t *testing.T) {
	t.Parallel()

	b := New()
	require.NoError(t, b.Send(bus.NewDatagram(nil, 1, bus.MsgDBServerObjectGetAll), 0))
	b.Reset()
	assert.Empty(t, b.Sent())
}
