package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// PurchaseOrderRepository persists purchase orders with their line items
type PurchaseOrderRepository interface {
	shared.TenantRepository[PurchaseOrder]
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*PurchaseOrder, error)
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status Status, filter shared.Filter) ([]PurchaseOrder, error)
	FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)
}

// ReturnOrderRepository persists return orders with their line items
type ReturnOrderRepository interface {
	shared.TenantRepository[ReturnOrder]
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*ReturnOrder, error)
	FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]ReturnOrder, error)

	// SumReturnedForLine totals quantity booked against one original order
	// line across all non-cancelled return orders. Return overflow checks
	// read this inside the creating transaction.
	SumReturnedForLine(ctx context.Context, tenantID, lineItemID uuid.UUID) (decimal.Decimal, error)
}
