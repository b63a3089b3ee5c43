package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// ReorderStrategy selects how replenishment quantity is computed when stock
// crosses the reorder point
type ReorderStrategy string

const (
	// ReorderFixed reorders the configured ReorderQuantity every time
	ReorderFixed ReorderStrategy = "fixed"
	// ReorderTopUp reorders up to ReorderQuantity, accounting for on-hand stock
	ReorderTopUp ReorderStrategy = "top_up"
	// ReorderManual disables automatic replenishment suggestions
	ReorderManual ReorderStrategy = "manual"
)

// IsValid checks if the strategy is known
func (s ReorderStrategy) IsValid() bool {
	switch s {
	case ReorderFixed, ReorderTopUp, ReorderManual:
		return true
	}
	return false
}

// Inventory is the product definition stock items instantiate: what a thing
// is, how it is measured and how its replenishment is tuned. Concrete
// on-hand quantity lives on stock items, never here.
type Inventory struct {
	shared.AuditedTenantRecord
	Name              string          `gorm:"type:varchar(200);not null"`
	InventoryType     string          `gorm:"type:varchar(100);not null"`
	Category          string          `gorm:"type:varchar(100);not null"`
	ExternalSystemID  string          `gorm:"type:varchar(100);not null;index"`
	Description       string          `gorm:"type:text"`
	Unit              string          `gorm:"type:varchar(50);not null;default:'unit'"`
	MinimumStockLevel decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	ReorderPoint      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	ReorderQuantity   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	SafetyStockLevel  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	ReorderStrategy   ReorderStrategy `gorm:"type:varchar(20);not null;default:'manual'"`
	DefaultSupplierID *uuid.UUID      `gorm:"type:uuid"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Inventory) TableName() string {
	return "inventories"
}

// ReorderPolicy bundles the replenishment thresholds so they can be
// validated and applied as one unit
type ReorderPolicy struct {
	MinimumStockLevel decimal.Decimal
	ReorderPoint      decimal.Decimal
	ReorderQuantity   decimal.Decimal
	SafetyStockLevel  decimal.Decimal
	Strategy          ReorderStrategy
}

// Validate enforces the threshold ordering: minimum <= reorder point <=
// reorder quantity, and safety stock non-negative
func (p ReorderPolicy) Validate() error {
	if p.SafetyStockLevel.IsNegative() {
		return shared.NewValidationError("safety stock level cannot be negative")
	}
	if p.MinimumStockLevel.IsNegative() {
		return shared.NewValidationError("minimum stock level cannot be negative")
	}
	if p.MinimumStockLevel.GreaterThan(p.ReorderPoint) {
		return shared.NewValidationError("minimum stock level cannot exceed the reorder point")
	}
	if p.ReorderPoint.GreaterThan(p.ReorderQuantity) {
		return shared.NewValidationError("reorder point cannot exceed the reorder quantity")
	}
	if p.Strategy != "" && !p.Strategy.IsValid() {
		return shared.NewValidationError("invalid reorder strategy: " + string(p.Strategy))
	}
	return nil
}

// NewInventory creates an inventory definition. The external system ID must
// come from the sequence generator.
func NewInventory(tenantID uuid.UUID, name, inventoryType, category, externalSystemID string) (*Inventory, error) {
	if name == "" {
		return nil, shared.NewValidationError("inventory name cannot be empty")
	}
	if inventoryType == "" {
		return nil, shared.NewValidationError("inventory type cannot be empty")
	}
	if category == "" {
		return nil, shared.NewValidationError("inventory category cannot be empty")
	}
	if externalSystemID == "" {
		return nil, shared.NewValidationError("external system ID cannot be empty")
	}

	return &Inventory{
		AuditedTenantRecord: shared.NewAuditedTenantRecord(tenantID),
		Name:                name,
		InventoryType:       inventoryType,
		Category:            category,
		ExternalSystemID:    externalSystemID,
		Unit:                "unit",
		ReorderStrategy:     ReorderManual,
		Active:              true,
	}, nil
}

// ApplyReorderPolicy validates and installs new replenishment thresholds
func (i *Inventory) ApplyReorderPolicy(policy ReorderPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	i.MinimumStockLevel = policy.MinimumStockLevel
	i.ReorderPoint = policy.ReorderPoint
	i.ReorderQuantity = policy.ReorderQuantity
	i.SafetyStockLevel = policy.SafetyStockLevel
	if policy.Strategy != "" {
		i.ReorderStrategy = policy.Strategy
	}
	i.Touch()
	i.IncrementVersion()
	return nil
}

// NeedsReorder reports whether on-hand quantity has crossed the reorder point
func (i *Inventory) NeedsReorder(onHand decimal.Decimal) bool {
	if i.ReorderStrategy == ReorderManual {
		return false
	}
	return onHand.LessThanOrEqual(i.ReorderPoint)
}

// SuggestedReorderQuantity computes how much to replenish under the current
// strategy
func (i *Inventory) SuggestedReorderQuantity(onHand decimal.Decimal) decimal.Decimal {
	switch i.ReorderStrategy {
	case ReorderFixed:
		return i.ReorderQuantity
	case ReorderTopUp:
		need := i.ReorderQuantity.Sub(onHand)
		if need.IsNegative() {
			return decimal.Zero
		}
		return need
	default:
		return decimal.Zero
	}
}

// BelowSafetyStock reports whether on-hand quantity has dropped under the
// safety floor
func (i *Inventory) BelowSafetyStock(onHand decimal.Decimal) bool {
	return onHand.LessThan(i.SafetyStockLevel)
}

// Deactivate hides the definition from new stock and new order lines
func (i *Inventory) Deactivate() {
	i.Active = false
	i.Touch()
	i.IncrementVersion()
}

// Activate re-enables the definition
func (i *Inventory) Activate() {
	i.Active = true
	i.Touch()
	i.IncrementVersion()
}
