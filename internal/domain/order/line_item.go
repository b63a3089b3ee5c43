package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// LineItem is one line of a purchase order: a quantity of an inventory
// definition at an agreed unit price, with its receipt progress. The money
// figures are derived and refreshed on every mutation; they are persisted
// for querying but never authoritative over the inputs.
type LineItem struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description      string          `gorm:"type:varchar(300);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	DiscountRate     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "purchase_order_line_items"
}

// NewLineItem creates a line for a purchase order
func NewLineItem(tenantID, orderID, inventoryID uuid.UUID, description string, quantity, unitPrice, discountRate, taxRate decimal.Decimal) (*LineItem, error) {
	if description == "" {
		return nil, shared.NewValidationError("line item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("line item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("line item unit price cannot be negative")
	}
	if discountRate.IsNegative() || discountRate.GreaterThan(oneHundred) {
		return nil, shared.NewValidationError("discount rate must be between 0 and 100")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewValidationError("tax rate cannot be negative")
	}

	li := &LineItem{
		BaseEntity:       shared.NewBaseEntity(),
		PurchaseOrderID:  orderID,
		TenantID:         tenantID,
		InventoryID:      inventoryID,
		Description:      description,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		DiscountRate:     discountRate,
		TaxRate:          taxRate,
		QuantityReceived: decimal.Zero,
	}
	li.recalculate()
	return li, nil
}

// recalculate refreshes the derived money figures from the inputs
func (li *LineItem) recalculate() {
	acc := ComputeLineAccount(li.Quantity, li.UnitPrice, li.DiscountRate, li.TaxRate)
	li.Subtotal = acc.Subtotal
	li.DiscountAmount = acc.Discount
	li.TaxAmount = acc.Tax
	li.Total = acc.Total
}

// Account returns the current money breakdown of the line
func (li *LineItem) Account() LineAccount {
	return ComputeLineAccount(li.Quantity, li.UnitPrice, li.DiscountRate, li.TaxRate)
}

// UpdatePricing replaces quantity and pricing inputs and refreshes the
// derived figures
func (li *LineItem) UpdatePricing(quantity, unitPrice, discountRate, taxRate decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("line item quantity must be positive")
	}
	if quantity.LessThan(li.QuantityReceived) {
		return shared.NewValidationError("line item quantity cannot drop below the quantity already received")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("line item unit price cannot be negative")
	}
	if discountRate.IsNegative() || discountRate.GreaterThan(oneHundred) {
		return shared.NewValidationError("discount rate must be between 0 and 100")
	}
	if taxRate.IsNegative() {
		return shared.NewValidationError("tax rate cannot be negative")
	}
	li.Quantity = quantity
	li.UnitPrice = unitPrice
	li.DiscountRate = discountRate
	li.TaxRate = taxRate
	li.recalculate()
	li.Touch()
	return nil
}

// Outstanding returns the quantity still to be received
func (li *LineItem) Outstanding() decimal.Decimal {
	return li.Quantity.Sub(li.QuantityReceived)
}

// FullyReceived reports whether the line has no outstanding quantity
func (li *LineItem) FullyReceived() bool {
	return li.QuantityReceived.GreaterThanOrEqual(li.Quantity)
}

// receive books a receipt against the line. Over-receipt is rejected with
// RECEIPT_OVERFLOW; the caller rolls the whole batch back.
func (li *LineItem) receive(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("received quantity must be positive")
	}
	if quantity.GreaterThan(li.Outstanding()) {
		return shared.NewReceiptOverflow(
			"received quantity " + quantity.String() +
				" exceeds outstanding quantity " + li.Outstanding().String() +
				" on line " + li.ID.String())
	}
	li.QuantityReceived = li.QuantityReceived.Add(quantity)
	li.Touch()
	return nil
}
