package sequence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Namespace identifies an independent per-tenant counter series. Every
// generated code family (order references, SKUs, location codes, external
// system IDs) draws from its own namespace so series never interleave.
type Namespace string

const (
	// NamespacePurchaseOrder numbers purchase order references
	NamespacePurchaseOrder Namespace = "purchase-order"
	// NamespaceReturnOrder numbers return order references
	NamespaceReturnOrder Namespace = "return-order"
	// NamespaceInventory numbers inventory external system IDs
	NamespaceInventory Namespace = "inventory"
)

// ForSKU returns the SKU namespace for a specific inventory definition.
// SKUs are numbered per inventory, not per tenant alone.
func ForSKU(inventoryID uuid.UUID) Namespace {
	return Namespace("sku:" + inventoryID.String())
}

// ForLocationType returns the location-code namespace for a location type
func ForLocationType(locationType string) Namespace {
	return Namespace("location:" + normalizeFragment(locationType))
}

// Counter is the persisted per-(tenant, namespace) counter row. The row is
// the serialization point for minting: concurrent callers lock it and
// increment under the lock, so duplicates are impossible and values are
// issued in commit order. Rolled-back transactions leave gaps, which is
// allowed.
type Counter struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_counter_tenant_ns,priority:1"`
	Namespace string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_sequence_counter_tenant_ns,priority:2"`
	Value     int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Counter) TableName() string {
	return "sequence_counters"
}

// NewCounter creates a fresh counter row at zero
func NewCounter(tenantID uuid.UUID, ns Namespace) *Counter {
	now := time.Now()
	return &Counter{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Namespace: string(ns),
		Value:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Repository mints sequence values. Implementations must serialize on the
// (tenant, namespace) counter row - a read-max-then-insert scan outside a
// lock races under load and is not an acceptable implementation.
type Repository interface {
	// Next returns the next value in the series: strictly increasing,
	// duplicate-free, gap-tolerant. Lock contention surfaces as
	// shared.ErrConcurrencyConflict.
	Next(ctx context.Context, tenantID uuid.UUID, ns Namespace) (int64, error)
}

// normalizeFragment uppercases a free-form name and squeezes it into a
// code-safe fragment ("Cold Storage" -> "COLD_STORAGE")
func normalizeFragment(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	return strings.ReplaceAll(s, " ", "_")
}

// shortFragment returns at most n leading characters of the normalized fragment
func shortFragment(s string, n int) string {
	f := normalizeFragment(s)
	if len(f) > n {
		return f[:n]
	}
	return f
}

// tenantFragment derives the stable human-readable tenant component of a
// generated code from the tenant UUID
func tenantFragment(tenantID uuid.UUID) string {
	hex := strings.ReplaceAll(tenantID.String(), "-", "")
	return strings.ToUpper(hex[:8])
}
