package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

type serviceFixture struct {
	store    *memStore
	service  *PurchaseOrderService
	events   *nopPublisher
	notifier *nopNotifier
	actor    identity.Actor
	invID    uuid.UUID
	locID    uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	store := newMemStore()
	events := &nopPublisher{}
	notifier := &nopNotifier{}
	service := NewPurchaseOrderService(
		&fakeScope{store: store},
		&memPOs{store},
		staticSuppliers{},
		notifier,
		events,
		allowAll{},
		zap.NewNop(),
	)

	tenantID := uuid.New()
	actor := identity.Actor{UserID: uuid.New(), TenantID: tenantID, IsOwner: true}

	inv, err := inventory.NewInventory(tenantID, "Bearing 6204", "part", "mechanical", "MECHA-PART-000001")
	require.NoError(t, err)
	store.inventorys[inv.ID] = inv

	loc, err := stock.NewLocation(tenantID, "WAREHOUSE_AAAA0001_001", "Main warehouse", "warehouse")
	require.NoError(t, err)
	store.locations[loc.ID] = loc

	return &serviceFixture{
		store:    store,
		service:  service,
		events:   events,
		notifier: notifier,
		actor:    actor,
		invID:    inv.ID,
		locID:    loc.ID,
	}
}

// createWithLine drives an order to pending, where lines may be added
func (f *serviceFixture) createWithLine(t *testing.T, quantity, unitPrice string) *Result {
	t.Helper()
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.actor, CreateCommand{SupplierID: uuid.New()})
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, f.actor, created.ID)
	require.NoError(t, err)

	result, err := f.service.AddLine(ctx, f.actor, LineCommand{
		OrderID:     created.ID,
		InventoryID: f.invID,
		Quantity:    decimal.RequireFromString(quantity),
		UnitPrice:   decimal.RequireFromString(unitPrice),
		TaxRate:     decimal.RequireFromString("7.5"),
	})
	require.NoError(t, err)
	return result
}

func (f *serviceFixture) issued(t *testing.T, quantity, unitPrice string) *Result {
	t.Helper()
	ctx := context.Background()

	po := f.createWithLine(t, quantity, unitPrice)
	_, err := f.service.Approve(ctx, f.actor, po.ID)
	require.NoError(t, err)
	result, err := f.service.Issue(ctx, f.actor, po.ID)
	require.NoError(t, err)
	return result
}

func TestPurchaseOrderServiceCreate(t *testing.T) {
	f := newServiceFixture(t)

	result, err := f.service.Create(context.Background(), f.actor, CreateCommand{
		SupplierID: uuid.New(),
		Notes:      "rush order",
	})
	require.NoError(t, err)

	assert.Equal(t, order.StatusDraft, result.Status)
	assert.True(t, strings.HasPrefix(result.Reference, "PO-"), "reference %q", result.Reference)
	assert.True(t, strings.HasSuffix(result.Reference, "-0001"), "reference %q", result.Reference)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, order.EventPurchaseOrderCreated, f.events.events[0].EventType())

	second, err := f.service.Create(context.Background(), f.actor, CreateCommand{SupplierID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(second.Reference, "-0002"), "reference %q", second.Reference)
}

func TestPurchaseOrderServiceIssueNotifiesSupplier(t *testing.T) {
	f := newServiceFixture(t)

	result := f.issued(t, "3", "10.00")
	assert.Equal(t, order.StatusIssued, result.Status)

	// notification is dispatched on its own goroutine
	assert.Eventually(t, func() bool {
		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		return len(f.notifier.notifications) == 1
	}, time.Second, 10*time.Millisecond)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	assert.Equal(t, result.Reference, f.notifier.notifications[0].Reference)
}

func TestPurchaseOrderServiceIssueRequiresLines(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, f.actor, CreateCommand{SupplierID: uuid.New()})
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, f.actor, created.ID)
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, f.actor, created.ID)
	require.NoError(t, err)

	_, err = f.service.Issue(ctx, f.actor, created.ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestPurchaseOrderServiceReceiveCreatesStock(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	po := f.issued(t, "10", "4.25")
	lineID := po.LineItems[0].ID

	partial, err := f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: lineID, Quantity: decimal.RequireFromString("4"), LocationID: f.locID},
		},
	})
	require.NoError(t, err)
	// the first batch flips the order even though the line is short
	assert.Equal(t, order.StatusReceived, partial.Status)
	assert.False(t, partial.LineItems[0].FullyReceived)

	full, err := f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: lineID, Quantity: decimal.RequireFromString("6"), LocationID: f.locID},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusReceived, full.Status)
	assert.True(t, full.LineItems[0].FullyReceived)

	// both deliveries land on the same stock item
	require.Len(t, f.store.items, 1)
	for _, item := range f.store.items {
		assert.Equal(t, f.invID, item.InventoryID)
		assert.Equal(t, f.locID, item.LocationID)
		assert.True(t, item.Quantity.Equal(decimal.RequireFromString("10")), "quantity %s", item.Quantity)
		require.NotNil(t, item.PurchaseOrderID)
		assert.Equal(t, po.ID, *item.PurchaseOrderID)
		require.NotNil(t, item.PurchasePrice)
		assert.True(t, item.PurchasePrice.Equal(decimal.RequireFromString("4.25")))
		assert.True(t, strings.HasPrefix(item.SKU, "C"), "sku %q", item.SKU)
	}
	require.Len(t, f.store.trackings, 2)
	for _, entry := range f.store.trackings {
		assert.Equal(t, stock.TrackingReceived, entry.TrackingType)
	}
}

func TestPurchaseOrderServiceReceiveOverflow(t *testing.T) {
	f := newServiceFixture(t)

	po := f.issued(t, "5", "2.00")
	_, err := f.service.Receive(context.Background(), f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("6"), LocationID: f.locID},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeReceiptOverflow, shared.CodeOf(err))
}

func TestPurchaseOrderServiceReceiveRejectsStructuralLocation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	zone, err := stock.NewLocation(f.actor.TenantID, "ZONE_AAAA0001_001", "Zone A", "zone")
	require.NoError(t, err)
	zone.MarkStructural()
	f.store.locations[zone.ID] = zone

	po := f.issued(t, "5", "2.00")
	_, err = f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("5"), LocationID: zone.ID},
		},
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestPurchaseOrderServiceCompleteWritesMovements(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	po := f.issued(t, "3", "10.00")
	_, err := f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("3"), LocationID: f.locID},
		},
	})
	require.NoError(t, err)

	result, err := f.service.Complete(ctx, f.actor, po.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, result.Status)
	assert.True(t, result.Total.Equal(decimal.RequireFromString("32.25")), "total %s", result.Total)

	require.Len(t, f.store.movements, 1)
	movement := f.store.movements[0]
	assert.Equal(t, inventory.TransactionPurchase, movement.TransactionType)
	assert.True(t, movement.Quantity.Equal(decimal.RequireFromString("3")))
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, po.ID, *movement.ReferenceID)
}

func TestPurchaseOrderServiceCompletePartialReceipt(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	po := f.createWithLine(t, "3", "10.00")
	po, err := f.service.AddLine(ctx, f.actor, LineCommand{
		OrderID:     po.ID,
		InventoryID: f.invID,
		Quantity:    decimal.RequireFromString("5"),
		UnitPrice:   decimal.RequireFromString("2.00"),
	})
	require.NoError(t, err)
	_, err = f.service.Approve(ctx, f.actor, po.ID)
	require.NoError(t, err)
	_, err = f.service.Issue(ctx, f.actor, po.ID)
	require.NoError(t, err)

	_, err = f.service.Receive(ctx, f.actor, ReceiveCommand{
		OrderID: po.ID,
		Receipts: []ReceiptLine{
			{LineItemID: po.LineItems[0].ID, Quantity: decimal.RequireFromString("2"), LocationID: f.locID},
		},
	})
	require.NoError(t, err)

	result, err := f.service.Complete(ctx, f.actor, po.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, result.Status)

	// the short line books its delivered quantity, the untouched line
	// falls back to its ordered quantity
	require.Len(t, f.store.movements, 2)
	assert.True(t, f.store.movements[0].Quantity.Equal(decimal.RequireFromString("2")),
		"quantity %s", f.store.movements[0].Quantity)
	assert.True(t, f.store.movements[1].Quantity.Equal(decimal.RequireFromString("5")),
		"quantity %s", f.store.movements[1].Quantity)
}

func TestPurchaseOrderServiceLinesFrozenAfterApproval(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	po := f.createWithLine(t, "2", "5.00")
	_, err := f.service.Approve(ctx, f.actor, po.ID)
	require.NoError(t, err)

	_, err = f.service.AddLine(ctx, f.actor, LineCommand{
		OrderID:     po.ID,
		InventoryID: f.invID,
		Quantity:    decimal.RequireFromString("1"),
		UnitPrice:   decimal.RequireFromString("1.00"),
	})
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))

	_, err = f.service.RemoveLine(ctx, f.actor, po.ID, po.LineItems[0].ID)
	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidTransition, shared.CodeOf(err))
}

func TestPurchaseOrderServiceCancelRecordsReason(t *testing.T) {
	f := newServiceFixture(t)

	po := f.createWithLine(t, "2", "5.00")
	result, err := f.service.Cancel(context.Background(), f.actor, po.ID, "supplier out of business")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, result.Status)
	assert.Equal(t, "supplier out of business", result.CancellationReason)
	require.NotNil(t, result.CancelledAt)
}
