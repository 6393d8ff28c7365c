package dbss

import (
	"testing"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/stretchr/testify/assert"
)

func TestPendingFetchEntry_PreservesWaiterOrder(t *testing.T) {
	t.Parallel()

	entry := &PendingFetchEntry{DOID: 9001, Context: 1}
	entry.Waiters = append(entry.Waiters,
		ActivateWaiter{TargetLocation: bus.Location{Parent: 1, Zone: 1}},
		GetAllWaiter{ReplyChannel: bus.Channel(2), CallerContext: 5},
		ActivateWaiter{TargetLocation: bus.Location{Parent: 2, Zone: 2}},
	)

	require := assert.New(t)
	require.Len(entry.Waiters, 3)

	_, isActivate := entry.Waiters[0].(ActivateWaiter)
	require.True(isActivate)

	_, isGetAll := entry.Waiters[1].(GetAllWaiter)
	require.True(isGetAll)

	second, isActivate := entry.Waiters[2].(ActivateWaiter)
	require.True(isActivate)
	require.Equal(uint32(2), second.TargetLocation.Parent)
}
