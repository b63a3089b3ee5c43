package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/shared"
)

type returnFixture struct {
	*serviceFixture
	returns *ReturnOrderService
}

func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	f := newServiceFixture(t)
	returns := NewReturnOrderService(
		&fakeScope{store: f.store},
		&memReturns{f.store},
		f.events,
		allowAll{},
		zap.NewNop(),
	)
	return &returnFixture{serviceFixture: f, returns: returns}
}

// completedOrder drives an order with one line of the given quantity all the
// way to completed and returns its final read model
func (f *returnFixture) completedOrder(t *testing.T, quantity string) *Result {
	t.Helper()
	ctx := context.Background()

	po := f.issued(t, quantity, "10.00")
	_, err := f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString(quantity), LocationID: f.locID},
		},
	})
	require.NoError(t, err)
	result, err := f.service.Complete(ctx, f.actor, po.ID)
	require.NoError(t, err)
	return result
}

func TestReturnOrderServiceCreate(t *testing.T) {
	f := newReturnFixture(t)
	po := f.completedOrder(t, "5")

	result, err := f.returns.Create(context.Background(), f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "damaged in transit",
		Lines: []CreateReturnLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("2"), Reason: "cracked housing"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, order.ReturnPending, result.Status)
	assert.True(t, strings.HasPrefix(result.Reference, "RO-"), "reference %q", result.Reference)
	require.Len(t, result.LineItems, 1)
	assert.True(t, result.LineItems[0].QuantityReturned.Equal(decimal.RequireFromString("2")))
}

func TestReturnOrderServiceCreateRequiresCompletedOrder(t *testing.T) {
	f := newReturnFixture(t)
	po := f.issued(t, "5", "10.00")

	_, err := f.returns.Create(context.Background(), f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "wrong part",
		Lines: []CreateReturnLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("1")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
}

func TestReturnOrderServiceCreateAgainstReceivedOrder(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()

	// goods have arrived but the order is not closed out yet
	po := f.issued(t, "5", "10.00")
	received, err := f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("5"), LocationID: f.locID},
		},
	})
	require.NoError(t, err)
	require.Equal(t, order.StatusReceived, received.Status)

	result, err := f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "damaged on arrival",
		Lines: []CreateReturnLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("1")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, order.ReturnPending, result.Status)
}

func TestReturnOrderServiceOverflow(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	po := f.completedOrder(t, "5")
	lineID := po.LineItems[0].ID

	_, err := f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "damaged",
		Lines: []CreateReturnLine{
			{LineItemID: lineID, Quantity: decimal.RequireFromString("6")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeReturnOverflow, shared.CodeOf(err))

	// a prior return eats into the remaining quantity
	_, err = f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "damaged",
		Lines: []CreateReturnLine{
			{LineItemID: lineID, Quantity: decimal.RequireFromString("3")},
		},
	})
	require.NoError(t, err)

	_, err = f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "damaged",
		Lines: []CreateReturnLine{
			{LineItemID: lineID, Quantity: decimal.RequireFromString("3")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeReturnOverflow, shared.CodeOf(err))
}

func TestReturnOrderServiceLifecycle(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	po := f.completedOrder(t, "5")
	f.store.movements = nil

	created, err := f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "damaged",
		Lines: []CreateReturnLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("2")},
		},
	})
	require.NoError(t, err)

	scheduled, err := f.returns.SchedulePickup(ctx, f.actor, created.ID, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, order.ReturnAwaitingPickup, scheduled.Status)

	inTransit, err := f.returns.MarkInTransit(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReturnInTransit, inTransit.Status)

	completed, err := f.returns.Complete(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReturnCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// the purchase order flips to returned and the outbound movement is booked
	updated, err := f.service.Get(ctx, f.actor, po.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReturned, updated.Status)

	require.Len(t, f.store.movements, 1)
	movement := f.store.movements[0]
	assert.Equal(t, inventory.TransactionReturn, movement.TransactionType)
	assert.True(t, movement.Quantity.Equal(decimal.RequireFromString("-2")), "quantity %s", movement.Quantity)
}

func TestReturnOrderServiceCancelFromPending(t *testing.T) {
	f := newReturnFixture(t)
	ctx := context.Background()
	po := f.completedOrder(t, "5")

	created, err := f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "ordered in error",
		Lines: []CreateReturnLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("5")},
		},
	})
	require.NoError(t, err)

	cancelled, err := f.returns.Cancel(ctx, f.actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReturnCancelled, cancelled.Status)

	// a cancelled return releases its quantity for a fresh one
	_, err = f.returns.Create(ctx, f.actor, CreateReturnCommand{
		PurchaseOrderID: po.ID,
		Reason:          "ordered in error",
		Lines: []CreateReturnLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("5")},
		},
	})
	require.NoError(t, err)
}
