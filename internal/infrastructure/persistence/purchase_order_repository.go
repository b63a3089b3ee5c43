package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements order.PurchaseOrderRepository
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a purchase order repository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its lines by ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindByReference finds a purchase order by its reference within a tenant
func (r *GormPurchaseOrderRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*order.PurchaseOrder, error) {
	var po order.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// FindAllForTenant finds all purchase orders for a tenant
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var pos []order.PurchaseOrder
	query := applyFilter(
		r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).Where("tenant_id = ?", tenantID),
		filter, purchaseOrderSortFields,
	)
	if err := query.Preload("LineItems").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}

// CountForTenant counts the tenant's purchase orders
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// FindByStatus finds purchase orders in a given status
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status order.Status, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var pos []order.PurchaseOrder
	query := applyFilter(
		r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter, purchaseOrderSortFields,
	)
	if err := query.Preload("LineItems").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}

// FindBySupplier finds purchase orders placed with a supplier
func (r *GormPurchaseOrderRepository) FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]order.PurchaseOrder, error) {
	var pos []order.PurchaseOrder
	query := applyFilter(
		r.db.WithContext(ctx).Model(&order.PurchaseOrder{}).
			Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID),
		filter, purchaseOrderSortFields,
	)
	if err := query.Preload("LineItems").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}

// Save persists the order and reconciles its line set: lines removed from
// the aggregate are deleted, the rest are upserted
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *order.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems").Save(po).Error; err != nil {
			return err
		}

		currentIDs := make([]uuid.UUID, len(po.LineItems))
		for i := range po.LineItems {
			currentIDs[i] = po.LineItems[i].ID
		}
		deleteStale := tx.Where("purchase_order_id = ?", po.ID)
		if len(currentIDs) > 0 {
			deleteStale = deleteStale.Where("id NOT IN ?", currentIDs)
		}
		if err := deleteStale.Delete(&order.LineItem{}).Error; err != nil {
			return err
		}

		for i := range po.LineItems {
			po.LineItems[i].PurchaseOrderID = po.ID
			if err := tx.Save(&po.LineItems[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a purchase order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&order.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order.PurchaseOrder{}, "id = ?", id).Error
	})
}

var _ order.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
