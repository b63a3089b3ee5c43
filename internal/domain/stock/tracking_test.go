package stock

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracking(t *testing.T) {
	tenantID := uuid.New()
	itemID := uuid.New()

	entry, err := NewTracking(tenantID, itemID, TrackingAdjustment, QuantityDeltas("10", "7"))
	require.NoError(t, err)
	assert.Equal(t, tenantID, entry.TenantID)
	assert.Equal(t, itemID, entry.ItemID)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	_, err = NewTracking(tenantID, itemID, TrackingType("teleported"), nil)
	assert.Error(t, err)
}

func TestTrackingBuilders(t *testing.T) {
	actor := uuid.New()
	entry, err := NewTracking(uuid.New(), uuid.New(), TrackingStatusChange, StatusDeltas(StatusOK, StatusDamaged))
	require.NoError(t, err)

	entry.WithActor(actor).WithNotes("dropped during stocktake")
	require.NotNil(t, entry.UserID)
	assert.Equal(t, actor, *entry.UserID)
	assert.Equal(t, "dropped during stocktake", entry.Notes)
}

func TestDeltasRoundTrip(t *testing.T) {
	deltas := QuantityDeltas("5", "12")

	value, err := deltas.Value()
	require.NoError(t, err)

	var decoded Deltas
	require.NoError(t, decoded.Scan(value))

	raw, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":{"old":"5","new":"12"}}`, string(raw))

	var empty Deltas
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
