package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// ItemStatus classifies the physical condition of a stock item
type ItemStatus string

const (
	StatusOK              ItemStatus = "ok"
	StatusAttentionNeeded ItemStatus = "attention_needed"
	StatusDamaged         ItemStatus = "damaged"
	StatusDestroyed       ItemStatus = "destroyed"
	StatusRejected        ItemStatus = "rejected"
	StatusLost            ItemStatus = "lost"
	StatusQuarantined     ItemStatus = "quarantined"
	StatusReturned        ItemStatus = "returned"
)

// IsValid checks if the status is a valid item status
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusOK, StatusAttentionNeeded, StatusDamaged, StatusDestroyed,
		StatusRejected, StatusLost, StatusQuarantined, StatusReturned:
		return true
	}
	return false
}

// Sellable reports whether items in this status may be shipped or reserved
func (s ItemStatus) Sellable() bool {
	return s == StatusOK
}

// Item is a concrete batch of stock: a quantity of one inventory definition
// sitting at one location. Quantity is the authoritative on-hand number and
// only changes through the ledger, which pairs every change with a tracking
// entry in the same transaction.
type Item struct {
	shared.AuditedTenantRecord
	InventoryID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	LocationID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name             string           `gorm:"type:varchar(200);not null"`
	SKU              string           `gorm:"type:varchar(100);not null;index"`
	Quantity         decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	QuantityReserved decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0"`
	Status           ItemStatus       `gorm:"type:varchar(30);not null;default:'ok'"`
	BatchNumber      string           `gorm:"type:varchar(100)"`
	SerialNumber     string           `gorm:"type:varchar(100)"`
	ExpiryDate       *time.Time       `gorm:"type:date"`
	PurchasePrice    *decimal.Decimal `gorm:"type:decimal(20,4)"`
	ParentID         *uuid.UUID       `gorm:"type:uuid;index"`
	PurchaseOrderID  *uuid.UUID       `gorm:"type:uuid;index"`
	SalesOrderID     *uuid.UUID       `gorm:"type:uuid;index"`
	DeleteOnDeplete  bool             `gorm:"not null;default:false"`
	Notes            string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "stock_items"
}

// NewItem creates a stock item. The SKU must come from the sequence
// generator and is immutable for the life of the item.
func NewItem(tenantID, inventoryID, locationID uuid.UUID, sku, name string, quantity decimal.Decimal) (*Item, error) {
	if sku == "" {
		return nil, shared.NewValidationError("stock item SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("stock item name cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("stock item quantity cannot be negative")
	}

	return &Item{
		AuditedTenantRecord: shared.NewAuditedTenantRecord(tenantID),
		InventoryID:         inventoryID,
		LocationID:          locationID,
		Name:                name,
		SKU:                 sku,
		Quantity:            quantity,
		Status:              StatusOK,
	}, nil
}

// ChangeStatus moves the item to a new condition status and returns the
// previous status for the tracking entry
func (i *Item) ChangeStatus(to ItemStatus) (ItemStatus, error) {
	if !to.IsValid() {
		return "", shared.NewValidationError("invalid stock item status: " + string(to))
	}
	from := i.Status
	i.Status = to
	i.Touch()
	i.IncrementVersion()
	return from, nil
}

// MoveTo relocates the item to another holding location
func (i *Item) MoveTo(location *Location) error {
	if location.TenantID != i.TenantID {
		return shared.NewValidationError("target location belongs to a different tenant")
	}
	if !location.CanHoldStock() {
		return shared.NewValidationError("structural location " + location.Code + " cannot hold stock")
	}
	i.LocationID = location.ID
	i.Touch()
	i.IncrementVersion()
	return nil
}

// LinkPurchaseOrder records the purchase order this item was received against
func (i *Item) LinkPurchaseOrder(orderID uuid.UUID) {
	i.PurchaseOrderID = &orderID
	i.Touch()
}

// LinkSalesOrder records the sales order this item is allocated to
func (i *Item) LinkSalesOrder(orderID uuid.UUID) {
	i.SalesOrderID = &orderID
	i.Touch()
}

// Reserve records quantity earmarked for a sales order
func (i *Item) Reserve(quantity decimal.Decimal) {
	i.QuantityReserved = i.QuantityReserved.Add(quantity)
	i.Touch()
}

// Release hands previously reserved quantity back. A release is bounded by
// what is actually reserved; it can never mint stock.
func (i *Item) Release(quantity decimal.Decimal) error {
	if quantity.GreaterThan(i.QuantityReserved) {
		return shared.NewValidationError("released quantity " + quantity.String() +
			" exceeds reserved quantity " + i.QuantityReserved.String())
	}
	i.QuantityReserved = i.QuantityReserved.Sub(quantity)
	i.Touch()
	return nil
}

// SetExpiry sets the expiry date for perishable stock
func (i *Item) SetExpiry(expiry time.Time) {
	i.ExpiryDate = &expiry
	i.Touch()
}

// IsExpired reports whether the item has passed its expiry date
func (i *Item) IsExpired(now time.Time) bool {
	return i.ExpiryDate != nil && i.ExpiryDate.Before(now)
}

// IsDepleted reports whether the item has no remaining quantity
func (i *Item) IsDepleted() bool {
	return i.Quantity.LessThanOrEqual(decimal.Zero)
}

// ShouldDelete reports whether a depleted item is flagged for removal
func (i *Item) ShouldDelete() bool {
	return i.DeleteOnDeplete && i.IsDepleted()
}

// Split carves quantity off into a child item at the given location. The
// child keeps its own SKU (minted by the caller) and records lineage through
// ParentID. The parent quantity is not changed here; the ledger adjusts both
// sides and writes the paired tracking entries.
func (i *Item) Split(childSKU string, quantity decimal.Decimal, locationID uuid.UUID) (*Item, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("split quantity must be positive")
	}
	if quantity.GreaterThan(i.Quantity) {
		return nil, shared.NewValidationError("split quantity exceeds available quantity")
	}

	child, err := NewItem(i.TenantID, i.InventoryID, locationID, childSKU, i.Name, quantity)
	if err != nil {
		return nil, err
	}
	child.ParentID = &i.ID
	child.BatchNumber = i.BatchNumber
	child.ExpiryDate = i.ExpiryDate
	child.PurchasePrice = i.PurchasePrice
	child.PurchaseOrderID = i.PurchaseOrderID
	child.Status = i.Status
	return child, nil
}
