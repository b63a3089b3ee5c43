package stock

import (
	"time"

	"github.com/google/uuid"
)

// Policy holds per-tenant stock behavior flags. One row per tenant; absent
// rows mean defaults.
type Policy struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	AllowNegativeStock bool      `gorm:"not null;default:false"`
	ExpiryWarningDays  int       `gorm:"not null;default:30"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Policy) TableName() string {
	return "stock_policies"
}

// DefaultPolicy returns the policy applied when a tenant has no row
func DefaultPolicy(tenantID uuid.UUID) *Policy {
	now := time.Now()
	return &Policy{
		ID:                uuid.New(),
		TenantID:          tenantID,
		ExpiryWarningDays: 30,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
