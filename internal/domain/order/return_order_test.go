package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventra/backend/internal/domain/shared"
)

func TestNewReturnOrder(t *testing.T) {
	tenantID := uuid.New()
	poID := uuid.New()

	ro, err := NewReturnOrder(tenantID, poID, "RO-1A2B3C4D-20260901-0001", "damaged in transit")
	require.NoError(t, err)
	assert.Equal(t, ReturnPending, ro.Status)
	assert.Equal(t, poID, ro.PurchaseOrderID)
	assert.Len(t, ro.GetDomainEvents(), 1)

	_, err = NewReturnOrder(tenantID, poID, "", "damaged")
	assert.Error(t, err)

	_, err = NewReturnOrder(tenantID, uuid.Nil, "RO-1A2B3C4D-20260901-0002", "damaged")
	assert.Error(t, err)

	_, err = NewReturnOrder(tenantID, poID, "RO-1A2B3C4D-20260901-0003", "")
	assert.Error(t, err)
}

func TestReturnOrderAddLine(t *testing.T) {
	ro := mustReturn(t)
	lineID := uuid.New()
	invID := uuid.New()

	// 5 ordered, 0 previously returned
	require.NoError(t, ro.AddLine(lineID, invID, decimal.NewFromInt(3), decimal.NewFromInt(5), "wrong model"))
	assert.True(t, ro.TotalQuantity().Equal(decimal.NewFromInt(3)))
	assert.True(t, ro.QuantityForLine(lineID).Equal(decimal.NewFromInt(3)))

	// 6 against a remaining capacity of 5
	err := ro.AddLine(uuid.New(), invID, decimal.NewFromInt(6), decimal.NewFromInt(5), "")
	require.Error(t, err)
	assert.Equal(t, shared.CodeReturnOverflow, shared.CodeOf(err))

	err = ro.AddLine(uuid.New(), invID, decimal.Zero, decimal.NewFromInt(5), "")
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestReturnOrderLifecycle(t *testing.T) {
	ro := mustReturn(t)

	// cannot schedule an empty return
	err := ro.SchedulePickup(time.Now())
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	require.NoError(t, ro.AddLine(uuid.New(), uuid.New(), decimal.NewFromInt(2), decimal.NewFromInt(5), ""))

	pickup := time.Now().Add(48 * time.Hour)
	require.NoError(t, ro.SchedulePickup(pickup))
	assert.Equal(t, ReturnAwaitingPickup, ro.Status)
	require.NotNil(t, ro.PickupScheduledAt)

	// lines freeze once pickup is scheduled
	err = ro.AddLine(uuid.New(), uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(5), "")
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))

	require.NoError(t, ro.MarkInTransit())
	require.NoError(t, ro.Complete())
	assert.Equal(t, ReturnCompleted, ro.Status)
	assert.NotNil(t, ro.CompletedAt)
	assert.True(t, ro.Status.IsTerminal())

	err = ro.Cancel()
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
}

func TestReturnOrderSkippedStates(t *testing.T) {
	ro := mustReturn(t)
	require.NoError(t, ro.AddLine(uuid.New(), uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(1), ""))

	// pending straight to in transit skips pickup
	err := ro.MarkInTransit()
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))

	err = ro.Complete()
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))

	require.NoError(t, ro.Cancel())
	assert.Equal(t, ReturnCancelled, ro.Status)
	assert.NotNil(t, ro.CancelledAt)
}

func mustReturn(t *testing.T) *ReturnOrder {
	t.Helper()
	ro, err := NewReturnOrder(uuid.New(), uuid.New(), "RO-1A2B3C4D-20260901-0001", "damaged in transit")
	require.NoError(t, err)
	return ro
}
