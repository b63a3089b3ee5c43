package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormReturnOrderRepository implements order.ReturnOrderRepository
type GormReturnOrderRepository struct {
	db *gorm.DB
}

// NewGormReturnOrderRepository creates a return order repository
func NewGormReturnOrderRepository(db *gorm.DB) *GormReturnOrderRepository {
	return &GormReturnOrderRepository{db: db}
}

// FindByID finds a return order with its lines by ID
func (r *GormReturnOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.ReturnOrder, error) {
	var ro order.ReturnOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		First(&ro, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ro, nil
}

// FindByIDForTenant finds a return order by ID within a tenant
func (r *GormReturnOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.ReturnOrder, error) {
	var ro order.ReturnOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ro, nil
}

// FindByReference finds a return order by its reference within a tenant
func (r *GormReturnOrderRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*order.ReturnOrder, error) {
	var ro order.ReturnOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		First(&ro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ro, nil
}

// FindAllForTenant finds all return orders for a tenant
func (r *GormReturnOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.ReturnOrder, error) {
	var ros []order.ReturnOrder
	query := applyFilter(
		r.db.WithContext(ctx).Model(&order.ReturnOrder{}).Where("tenant_id = ?", tenantID),
		filter, returnOrderSortFields,
	)
	if err := query.Preload("LineItems").Find(&ros).Error; err != nil {
		return nil, err
	}
	return ros, nil
}

// CountForTenant counts the tenant's return orders
func (r *GormReturnOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&order.ReturnOrder{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// FindByPurchaseOrder finds all returns raised against one purchase order
func (r *GormReturnOrderRepository) FindByPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID) ([]order.ReturnOrder, error) {
	var ros []order.ReturnOrder
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("tenant_id = ? AND purchase_order_id = ?", tenantID, purchaseOrderID).
		Order("created_at ASC").
		Find(&ros).Error; err != nil {
		return nil, err
	}
	return ros, nil
}

// SumReturnedForLine totals the quantity booked against one original order
// line across all non-cancelled return orders
func (r *GormReturnOrderRepository) SumReturnedForLine(ctx context.Context, tenantID, lineItemID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&order.ReturnLineItem{}).
		Select("COALESCE(SUM(return_order_line_items.quantity_returned), 0)").
		Joins("JOIN return_orders ON return_orders.id = return_order_line_items.return_order_id").
		Where("return_order_line_items.tenant_id = ?", tenantID).
		Where("return_order_line_items.line_item_id = ?", lineItemID).
		Where("return_orders.status <> ?", order.ReturnCancelled).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Save persists the return order and reconciles its line set
func (r *GormReturnOrderRepository) Save(ctx context.Context, ro *order.ReturnOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems").Save(ro).Error; err != nil {
			return err
		}

		currentIDs := make([]uuid.UUID, len(ro.LineItems))
		for i := range ro.LineItems {
			currentIDs[i] = ro.LineItems[i].ID
		}
		deleteStale := tx.Where("return_order_id = ?", ro.ID)
		if len(currentIDs) > 0 {
			deleteStale = deleteStale.Where("id NOT IN ?", currentIDs)
		}
		if err := deleteStale.Delete(&order.ReturnLineItem{}).Error; err != nil {
			return err
		}

		for i := range ro.LineItems {
			ro.LineItems[i].ReturnOrderID = ro.ID
			if err := tx.Save(&ro.LineItems[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a return order and its lines
func (r *GormReturnOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("return_order_id = ?", id).Delete(&order.ReturnLineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order.ReturnOrder{}, "id = ?", id).Error
	})
}

var _ order.ReturnOrderRepository = (*GormReturnOrderRepository)(nil)
