package dbss

import (
	"testing"

	"github.com/marmos91/dbss/internal/bus"
	"github.com/stretchr/testify/assert"
)

func TestNewActiveObjectRecord_StartsUnlocated(t *testing.T) {
	t.Parallel()

	rec := NewActiveObjectRecord(9001, 5)
	assert.Equal(t, uint32(9001), rec.DOID)
	assert.Equal(t, uint16(5), rec.Class)
	assert.Equal(t, bus.InvalidLocation, rec.Location)
	assert.False(t, rec.Location.IsValid())
	assert.NotNil(t, rec.Fields)
	assert.Empty(t, rec.Fields)
}
