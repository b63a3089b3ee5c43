package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// ItemRepository persists stock items. Quantity mutation goes through
// AdjustQuantity only; a read-modify-write of Item.Quantity outside the row
// lock loses updates under concurrency and is not an acceptable
// implementation.
type ItemRepository interface {
	shared.TenantRepository[Item]
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Item, error)
	FindByInventory(ctx context.Context, tenantID, inventoryID uuid.UUID, filter shared.Filter) ([]Item, error)
	FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]Item, error)
	FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, days int) ([]Item, error)

	// FindReceiptTarget returns the item deliveries of a purchase order
	// accumulate on: the oldest ok-status item received against that order
	// for the same inventory at the same location.
	FindReceiptTarget(ctx context.Context, tenantID, purchaseOrderID, inventoryID, locationID uuid.UUID) (*Item, error)

	// FindByInventoryAndLocation returns the oldest ok-status item holding
	// the given inventory at the given location. Transfers accumulate onto
	// it instead of minting a fresh item per move.
	FindByInventoryAndLocation(ctx context.Context, tenantID, inventoryID, locationID uuid.UUID) (*Item, error)

	// AdjustQuantity applies delta to the item quantity atomically under a
	// row lock and returns the old and new quantities. A negative result is
	// rejected with shared.ErrInsufficientStock unless allowNegative is set.
	AdjustQuantity(ctx context.Context, tenantID, itemID uuid.UUID, delta decimal.Decimal, allowNegative bool) (old, new decimal.Decimal, err error)

	// SumQuantityByInventory totals on-hand quantity across all items of one
	// inventory definition
	SumQuantityByInventory(ctx context.Context, tenantID, inventoryID uuid.UUID) (decimal.Decimal, error)
}

// TrackingRepository persists ledger entries. The store is append-only;
// there is deliberately no Save or Delete.
type TrackingRepository interface {
	Append(ctx context.Context, entry *Tracking) error
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]Tracking, error)
	CountByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
}

// LocationRepository persists stock locations
type LocationRepository interface {
	shared.TenantRepository[Location]
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Location, error)
	FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]Location, error)
	FindRoots(ctx context.Context, tenantID uuid.UUID) ([]Location, error)
}

// PolicyRepository reads tenant-level stock policy flags
type PolicyRepository interface {
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*Policy, error)
	Save(ctx context.Context, policy *Policy) error
}
