package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates an inventory repository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an inventory definition by its ID
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByIDForTenant finds an inventory definition by ID within a tenant
func (r *GormInventoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByExternalSystemID finds an inventory definition by its generated
// external system ID
func (r *GormInventoryRepository) FindByExternalSystemID(ctx context.Context, tenantID uuid.UUID, externalSystemID string) (*inventory.Inventory, error) {
	var inv inventory.Inventory
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_system_id = ?", tenantID, externalSystemID).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindAllForTenant finds all inventory definitions for a tenant
func (r *GormInventoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Inventory, error) {
	var invs []inventory.Inventory
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Inventory{}).Where("tenant_id = ?", tenantID),
		filter, inventorySortFields,
	)
	if err := query.Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

// CountForTenant counts the tenant's inventory definitions
func (r *GormInventoryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&inventory.Inventory{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// FindByCategory finds inventory definitions in a category
func (r *GormInventoryRepository) FindByCategory(ctx context.Context, tenantID uuid.UUID, category string, filter shared.Filter) ([]inventory.Inventory, error) {
	var invs []inventory.Inventory
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Inventory{}).
			Where("tenant_id = ? AND category = ?", tenantID, category),
		filter, inventorySortFields,
	)
	if err := query.Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

// FindActive finds active inventory definitions
func (r *GormInventoryRepository) FindActive(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Inventory, error) {
	var invs []inventory.Inventory
	query := applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Inventory{}).
			Where("tenant_id = ? AND active = ?", tenantID, true),
		filter, inventorySortFields,
	)
	if err := query.Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

// Save creates or updates an inventory definition
func (r *GormInventoryRepository) Save(ctx context.Context, inv *inventory.Inventory) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// Delete removes an inventory definition
func (r *GormInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&inventory.Inventory{}, "id = ?", id).Error
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)
