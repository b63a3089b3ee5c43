package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormInventoryTransactionRepository implements
// inventory.TransactionRepository. Movements are append-only audit records.
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a movement repository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Append writes one movement record
func (r *GormInventoryTransactionRepository) Append(ctx context.Context, txn *inventory.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// AppendBatch writes a batch of movement records
func (r *GormInventoryTransactionRepository) AppendBatch(ctx context.Context, txns []*inventory.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(txns).Error
}

// FindByInventory returns an inventory's movements, newest first
func (r *GormInventoryTransactionRepository) FindByInventory(ctx context.Context, tenantID, inventoryID uuid.UUID, filter shared.Filter) ([]inventory.Transaction, error) {
	var txns []inventory.Transaction
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND inventory_id = ?", tenantID, inventoryID).
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(size).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindByReference returns all movements booked against one document
func (r *GormInventoryTransactionRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]inventory.Transaction, error) {
	var txns []inventory.Transaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID).
		Order("created_at ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

var _ inventory.TransactionRepository = (*GormInventoryTransactionRepository)(nil)
