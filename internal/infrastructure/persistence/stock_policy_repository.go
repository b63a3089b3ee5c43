package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/stock"
)

// GormStockPolicyRepository implements stock.PolicyRepository using GORM
type GormStockPolicyRepository struct {
	db *gorm.DB
}

// NewGormStockPolicyRepository creates a policy repository
func NewGormStockPolicyRepository(db *gorm.DB) *GormStockPolicyRepository {
	return &GormStockPolicyRepository{db: db}
}

// FindForTenant returns the tenant's stock policy, falling back to the
// default policy when none has been saved
func (r *GormStockPolicyRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*stock.Policy, error) {
	var policy stock.Policy
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stock.DefaultPolicy(tenantID), nil
		}
		return nil, err
	}
	return &policy, nil
}

// Save creates or updates the tenant's stock policy
func (r *GormStockPolicyRepository) Save(ctx context.Context, policy *stock.Policy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}

var _ stock.PolicyRepository = (*GormStockPolicyRepository)(nil)
