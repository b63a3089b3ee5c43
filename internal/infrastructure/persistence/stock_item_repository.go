package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

// GormStockItemRepository implements stock.ItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a stock item repository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock item by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Item, error) {
	var item stock.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDForTenant finds a stock item by ID within a tenant
func (r *GormStockItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*stock.Item, error) {
	var item stock.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKU finds a stock item by its SKU within a tenant
func (r *GormStockItemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*stock.Item, error) {
	var item stock.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForTenant finds all stock items for a tenant
func (r *GormStockItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Item, error) {
	var items []stock.Item
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Item{}).Where("tenant_id = ?", tenantID),
		filter, stockItemSortFields,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForTenant counts the tenant's stock items
func (r *GormStockItemRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&stock.Item{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// FindByInventory finds stock items belonging to an inventory definition
func (r *GormStockItemRepository) FindByInventory(ctx context.Context, tenantID, inventoryID uuid.UUID, filter shared.Filter) ([]stock.Item, error) {
	var items []stock.Item
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Item{}).
			Where("tenant_id = ? AND inventory_id = ?", tenantID, inventoryID),
		filter, stockItemSortFields,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByLocation finds stock items held at a location
func (r *GormStockItemRepository) FindByLocation(ctx context.Context, tenantID, locationID uuid.UUID, filter shared.Filter) ([]stock.Item, error) {
	var items []stock.Item
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Item{}).
			Where("tenant_id = ? AND location_id = ?", tenantID, locationID),
		filter, stockItemSortFields,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindExpiringBefore finds items whose expiry date falls within the horizon
func (r *GormStockItemRepository) FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, days int) ([]stock.Item, error) {
	horizon := time.Now().AddDate(0, 0, days)
	var items []stock.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", tenantID, horizon).
		Order("expiry_date ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindReceiptTarget finds the item deliveries of a purchase order
// accumulate on
func (r *GormStockItemRepository) FindReceiptTarget(ctx context.Context, tenantID, purchaseOrderID, inventoryID, locationID uuid.UUID) (*stock.Item, error) {
	var item stock.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND purchase_order_id = ? AND inventory_id = ? AND location_id = ? AND status = ?",
			tenantID, purchaseOrderID, inventoryID, locationID, stock.StatusOK).
		Order("created_at ASC").
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByInventoryAndLocation finds the oldest ok-status item holding an
// inventory at a location
func (r *GormStockItemRepository) FindByInventoryAndLocation(ctx context.Context, tenantID, inventoryID, locationID uuid.UUID) (*stock.Item, error) {
	var item stock.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND inventory_id = ? AND location_id = ? AND status = ?",
			tenantID, inventoryID, locationID, stock.StatusOK).
		Order("created_at ASC").
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// AdjustQuantity applies delta under a row lock and returns old and new
// quantities. The lock serializes concurrent adjustments of the same item;
// the write is a database-level increment so the stored value can never
// come from a stale read.
func (r *GormStockItemRepository) AdjustQuantity(ctx context.Context, tenantID, itemID uuid.UUID, delta decimal.Decimal, allowNegative bool) (decimal.Decimal, decimal.Decimal, error) {
	var item stock.Item
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, decimal.Zero, shared.ErrNotFound
		}
		return decimal.Zero, decimal.Zero, translateLockError(err)
	}

	old := item.Quantity
	next := old.Add(delta)
	if next.IsNegative() && !allowNegative {
		return decimal.Zero, decimal.Zero, shared.ErrInsufficientStock
	}

	if err := r.db.WithContext(ctx).
		Model(&stock.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		}).Error; err != nil {
		return decimal.Zero, decimal.Zero, translateLockError(err)
	}
	return old, next, nil
}

// SumQuantityByInventory totals on-hand quantity across an inventory's items
func (r *GormStockItemRepository) SumQuantityByInventory(ctx context.Context, tenantID, inventoryID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&stock.Item{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ? AND inventory_id = ?", tenantID, inventoryID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Save creates or updates a stock item
func (r *GormStockItemRepository) Save(ctx context.Context, item *stock.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a stock item
func (r *GormStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&stock.Item{}, "id = ?", id).Error
}

var _ stock.ItemRepository = (*GormStockItemRepository)(nil)
