package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/shared"
)

// RoleGrant is one permission granted to a user within a tenant. Grants are
// written by tenant administration tooling and only read here.
type RoleGrant struct {
	shared.BaseEntity
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Role       string    `gorm:"type:varchar(100);not null"`
	Permission string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (RoleGrant) TableName() string {
	return "role_grants"
}

// GormGrantReader implements identity.GrantReader using GORM
type GormGrantReader struct {
	db *gorm.DB
}

// NewGormGrantReader creates a grant reader
func NewGormGrantReader(db *gorm.DB) *GormGrantReader {
	return &GormGrantReader{db: db}
}

// GrantsFor returns the distinct permissions granted to a user in a tenant
func (r *GormGrantReader) GrantsFor(ctx context.Context, tenantID, userID uuid.UUID) ([]string, error) {
	var permissions []string
	if err := r.db.WithContext(ctx).
		Model(&RoleGrant{}).
		Distinct("permission").
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("permission ASC").
		Pluck("permission", &permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}

var _ identity.GrantReader = (*GormGrantReader)(nil)
