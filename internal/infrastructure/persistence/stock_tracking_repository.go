package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

// GormStockTrackingRepository implements stock.TrackingRepository. The
// ledger is append-only; this type exposes no update or delete path.
type GormStockTrackingRepository struct {
	db *gorm.DB
}

// NewGormStockTrackingRepository creates a tracking repository
func NewGormStockTrackingRepository(db *gorm.DB) *GormStockTrackingRepository {
	return &GormStockTrackingRepository{db: db}
}

// Append writes one ledger entry
func (r *GormStockTrackingRepository) Append(ctx context.Context, entry *stock.Tracking) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByItem returns an item's ledger entries, newest first
func (r *GormStockTrackingRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]stock.Tracking, error) {
	var entries []stock.Tracking
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(size).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByItem counts an item's ledger entries
func (r *GormStockTrackingRepository) CountByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&stock.Tracking{}).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Count(&count).Error
	return count, err
}

var _ stock.TrackingRepository = (*GormStockTrackingRepository)(nil)
