package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reference prefixes for order documents
const (
	PurchaseOrderPrefix = "PO"
	ReturnOrderPrefix   = "RO"
)

// Generator is the single code-minting path for the system. No other code
// may format reference numbers, SKUs, location codes or external system IDs;
// the formats below are stable and re-derivable only through this type.
//
// Generator is transaction-affine: construct it over the tx-scoped
// Repository so the mint commits or rolls back with the entity it numbers.
type Generator struct {
	repo Repository
	now  func() time.Time
}

// NewGenerator creates a Generator over the given repository
func NewGenerator(repo Repository) *Generator {
	return &Generator{repo: repo, now: time.Now}
}

// NewGeneratorWithClock creates a Generator with a fixed clock, for tests
func NewGeneratorWithClock(repo Repository, now func() time.Time) *Generator {
	return &Generator{repo: repo, now: now}
}

// NextOrderReference mints an order reference:
// <PREFIX>-<tenant-fragment>-<YYYYMMDD>-<seq%04d>
func (g *Generator) NextOrderReference(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	ns := NamespacePurchaseOrder
	if prefix == ReturnOrderPrefix {
		ns = NamespaceReturnOrder
	}
	n, err := g.repo.Next(ctx, tenantID, ns)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s-%04d",
		normalizeFragment(prefix),
		tenantFragment(tenantID),
		g.now().Format("20060102"),
		n,
	), nil
}

// NextSKU mints a stock item SKU:
// C<tenant-fragment>-<TYPE[:4]>-<CATEGORY[:5]>-<seq%05d>
// The series is scoped to the inventory definition, so every inventory's
// stock items number from 1.
func (g *Generator) NextSKU(ctx context.Context, tenantID, inventoryID uuid.UUID, inventoryType, category string) (string, error) {
	n, err := g.repo.Next(ctx, tenantID, ForSKU(inventoryID))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("C%s-%s-%s-%05d",
		tenantFragment(tenantID),
		shortFragment(inventoryType, 4),
		shortFragment(category, 5),
		n,
	), nil
}

// NextLocationCode mints a stock location code:
// <LOCATION_TYPE>_<tenant-fragment>_<seq%03d>
func (g *Generator) NextLocationCode(ctx context.Context, tenantID uuid.UUID, locationType string) (string, error) {
	n, err := g.repo.Next(ctx, tenantID, ForLocationType(locationType))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%03d",
		normalizeFragment(locationType),
		tenantFragment(tenantID),
		n,
	), nil
}

// NextExternalSystemID mints an inventory external system ID:
// <CATEGORY[:5]>-<TYPE[:4]>-<seq%06d>
func (g *Generator) NextExternalSystemID(ctx context.Context, tenantID uuid.UUID, category, inventoryType string) (string, error) {
	n, err := g.repo.Next(ctx, tenantID, NamespaceInventory)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%06d",
		shortFragment(category, 5),
		shortFragment(inventoryType, 4),
		n,
	), nil
}
