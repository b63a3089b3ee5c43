package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// AuditedTenantRecord extends BaseAggregateRoot with multi-tenant scoping.
// Every persisted entity embeds it; cross-tenant references are rejected at
// write time by comparing TenantID on both sides of an association.
type AuditedTenantRecord struct {
	BaseAggregateRoot
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewAuditedTenantRecord creates a new tenant-scoped aggregate root
func NewAuditedTenantRecord(tenantID uuid.UUID) AuditedTenantRecord {
	return AuditedTenantRecord{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}

// NewAuditedTenantRecordWithCreator creates a tenant-scoped aggregate root with creator info
func NewAuditedTenantRecordWithCreator(tenantID, createdBy uuid.UUID) AuditedTenantRecord {
	return AuditedTenantRecord{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
		CreatedBy:         &createdBy,
	}
}

// SetCreatedBy sets the creator user ID
func (t *AuditedTenantRecord) SetCreatedBy(userID uuid.UUID) {
	t.CreatedBy = &userID
}

// SameTenant reports whether the other record belongs to the same tenant
func (t *AuditedTenantRecord) SameTenant(other *AuditedTenantRecord) bool {
	return t.TenantID == other.TenantID
}
