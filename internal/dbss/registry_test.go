package dbss

import (
	"testing"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ActiveLifecycle(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, ok := r.Active(9001)
	assert.False(t, ok)

	rec := NewActiveObjectRecord(9001, 5)
	r.SetActive(rec)

	got, ok := r.Active(9001)
	require.True(t, ok)
	assert.Same(t, rec, got)

	r.DeleteActive(9001)
	_, ok = r.Active(9001)
	assert.False(t, ok)
}

func TestRegistry_PendingLifecycle(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry := r.CreatePending(9001, 42)
	entry.Waiters = append(entry.Waiters, GetAllWaiter{ReplyChannel: bus.Channel(1), CallerContext: 7})

	byDOID, ok := r.Pending(9001)
	require.True(t, ok)
	assert.Same(t, entry, byDOID)

	byContext, ok := r.PendingByContext(42)
	require.True(t, ok)
	assert.Same(t, entry, byContext)
	assert.True(t, r.IsContextLive(42))

	r.DestroyPending(9001)
	_, ok = r.Pending(9001)
	assert.False(t, ok)
	_, ok = r.PendingByContext(42)
	assert.False(t, ok)
	assert.False(t, r.IsContextLive(42))
}

func TestRegistry_PendingByContext_Unknown(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, ok := r.PendingByContext(999)
	assert.False(t, ok)
}
