package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// Location is a physical or logical place stock can live. Locations form a
// tree per tenant; structural locations only route to children and can never
// hold stock directly.
type Location struct {
	shared.AuditedTenantRecord
	Code         string     `gorm:"type:varchar(100);not null;index"`
	Name         string     `gorm:"type:varchar(200);not null"`
	LocationType string     `gorm:"type:varchar(100);not null"`
	Structural   bool       `gorm:"not null;default:false"`
	External     bool       `gorm:"not null;default:false"`
	ParentID     *uuid.UUID `gorm:"type:uuid;index"`
	ManagerID    *uuid.UUID `gorm:"type:uuid"`
	Description  string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "stock_locations"
}

// NewLocation creates a new stock location. The code must come from the
// sequence generator; it is immutable after creation.
func NewLocation(tenantID uuid.UUID, code, name, locationType string) (*Location, error) {
	if code == "" {
		return nil, shared.NewValidationError("location code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("location name cannot be empty")
	}
	if locationType == "" {
		return nil, shared.NewValidationError("location type cannot be empty")
	}

	return &Location{
		AuditedTenantRecord: shared.NewAuditedTenantRecord(tenantID),
		Code:                code,
		Name:                name,
		LocationType:        locationType,
	}, nil
}

// SetParent attaches the location under a parent in the same tenant tree
func (l *Location) SetParent(parent *Location) error {
	if parent == nil {
		l.ParentID = nil
		l.Touch()
		return nil
	}
	if parent.TenantID != l.TenantID {
		return shared.NewValidationError("parent location belongs to a different tenant")
	}
	if parent.ID == l.ID {
		return shared.NewValidationError("location cannot be its own parent")
	}
	l.ParentID = &parent.ID
	l.Touch()
	l.IncrementVersion()
	return nil
}

// MarkStructural flags the location as routing-only
func (l *Location) MarkStructural() {
	l.Structural = true
	l.Touch()
	l.IncrementVersion()
}

// CanHoldStock reports whether stock items may be placed here directly
func (l *Location) CanHoldStock() bool {
	return !l.Structural
}

// Describe sets the free-form description
func (l *Location) Describe(description string) {
	l.Description = description
	l.UpdatedAt = time.Now()
}
