package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

// GormStockLocationRepository implements stock.LocationRepository using GORM
type GormStockLocationRepository struct {
	db *gorm.DB
}

// NewGormStockLocationRepository creates a location repository
func NewGormStockLocationRepository(db *gorm.DB) *GormStockLocationRepository {
	return &GormStockLocationRepository{db: db}
}

// FindByID finds a location by its ID
func (r *GormStockLocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Location, error) {
	var loc stock.Location
	if err := r.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindByIDForTenant finds a location by ID within a tenant
func (r *GormStockLocationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*stock.Location, error) {
	var loc stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindByCode finds a location by its code within a tenant
func (r *GormStockLocationRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*stock.Location, error) {
	var loc stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// FindAllForTenant finds all locations for a tenant
func (r *GormStockLocationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Location, error) {
	var locs []stock.Location
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Location{}).Where("tenant_id = ?", tenantID),
		filter, stockLocationSortFields,
	)
	if err := query.Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// CountForTenant counts the tenant's locations
func (r *GormStockLocationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&stock.Location{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// FindChildren finds the direct children of a location
func (r *GormStockLocationRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID) ([]stock.Location, error) {
	var locs []stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id = ?", tenantID, parentID).
		Order("code ASC").
		Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// FindRoots finds locations with no parent
func (r *GormStockLocationRepository) FindRoots(ctx context.Context, tenantID uuid.UUID) ([]stock.Location, error) {
	var locs []stock.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND parent_id IS NULL", tenantID).
		Order("code ASC").
		Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// Save creates or updates a location
func (r *GormStockLocationRepository) Save(ctx context.Context, loc *stock.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

// Delete removes a location
func (r *GormStockLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&stock.Location{}, "id = ?", id).Error
}

var _ stock.LocationRepository = (*GormStockLocationRepository)(nil)
