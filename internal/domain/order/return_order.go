package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// ReturnLineItem is one returned line: how much of an original purchase
// order line goes back to the supplier
type ReturnLineItem struct {
	shared.BaseEntity
	ReturnOrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryID      uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityReturned decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Reason           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReturnLineItem) TableName() string {
	return "return_order_line_items"
}

// ReturnOrder is a post-completion supplier return for a purchase order. It
// tracks its own pickup lifecycle and never mutates stock quantities; stock
// adjustments for returned goods go through the ledger separately.
type ReturnOrder struct {
	shared.AuditedTenantRecord
	Reference         string       `gorm:"type:varchar(100);not null;index"`
	PurchaseOrderID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Status            ReturnStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Reason            string       `gorm:"type:text"`
	Notes             string       `gorm:"type:text"`
	PickupScheduledAt *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
	LineItems         []ReturnLineItem `gorm:"foreignKey:ReturnOrderID"`
}

// TableName returns the table name for GORM
func (ReturnOrder) TableName() string {
	return "return_orders"
}

// NewReturnOrder creates a pending return against a completed purchase
// order. The reference must come from the sequence generator.
func NewReturnOrder(tenantID, purchaseOrderID uuid.UUID, reference, reason string) (*ReturnOrder, error) {
	if reference == "" {
		return nil, shared.NewValidationError("return order reference cannot be empty")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewValidationError("return order must reference a purchase order")
	}
	if reason == "" {
		return nil, shared.NewValidationError("return order reason cannot be empty")
	}

	ro := &ReturnOrder{
		AuditedTenantRecord: shared.NewAuditedTenantRecord(tenantID),
		Reference:           reference,
		PurchaseOrderID:     purchaseOrderID,
		Status:              ReturnPending,
		Reason:              reason,
	}
	ro.AddDomainEvent(NewReturnOrderCreatedEvent(ro))
	return ro, nil
}

// AddLine books a quantity to return against an original order line.
// remaining is the original quantity minus everything already returned on
// other return orders; exceeding it fails with RETURN_OVERFLOW.
func (ro *ReturnOrder) AddLine(lineItemID, inventoryID uuid.UUID, quantity, remaining decimal.Decimal, reason string) error {
	if ro.Status != ReturnPending {
		return shared.NewInvalidTransition("return order line item", string(ro.Status), "line added")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("returned quantity must be positive")
	}
	if quantity.GreaterThan(remaining) {
		return shared.NewReturnOverflow(
			"returned quantity " + quantity.String() +
				" exceeds returnable quantity " + remaining.String() +
				" on line " + lineItemID.String())
	}
	ro.LineItems = append(ro.LineItems, ReturnLineItem{
		BaseEntity:       shared.NewBaseEntity(),
		ReturnOrderID:    ro.ID,
		TenantID:         ro.TenantID,
		LineItemID:       lineItemID,
		InventoryID:      inventoryID,
		QuantityReturned: quantity,
		Reason:           reason,
	})
	ro.Touch()
	ro.IncrementVersion()
	return nil
}

// transition moves the return to the target state or fails with
// INVALID_TRANSITION
func (ro *ReturnOrder) transition(to ReturnStatus) error {
	if !ro.Status.CanTransitionTo(to) {
		return shared.NewInvalidTransition("return order", string(ro.Status), string(to))
	}
	ro.Status = to
	ro.Touch()
	ro.IncrementVersion()
	return nil
}

// SchedulePickup moves a pending return to awaiting pickup. A return with
// no lines cannot be scheduled.
func (ro *ReturnOrder) SchedulePickup(at time.Time) error {
	if len(ro.LineItems) == 0 {
		return shared.NewValidationError("return order cannot be scheduled without line items")
	}
	if err := ro.transition(ReturnAwaitingPickup); err != nil {
		return err
	}
	ro.PickupScheduledAt = &at
	return nil
}

// MarkInTransit records that the carrier has collected the goods
func (ro *ReturnOrder) MarkInTransit() error {
	return ro.transition(ReturnInTransit)
}

// Complete closes the return once the supplier has accepted the goods
func (ro *ReturnOrder) Complete() error {
	if err := ro.transition(ReturnCompleted); err != nil {
		return err
	}
	now := time.Now()
	ro.CompletedAt = &now
	ro.AddDomainEvent(NewReturnOrderCompletedEvent(ro))
	return nil
}

// Cancel aborts the return from any non-terminal state
func (ro *ReturnOrder) Cancel() error {
	if err := ro.transition(ReturnCancelled); err != nil {
		return err
	}
	now := time.Now()
	ro.CancelledAt = &now
	return nil
}

// TotalQuantity sums the returned quantity across all lines
func (ro *ReturnOrder) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for idx := range ro.LineItems {
		total = total.Add(ro.LineItems[idx].QuantityReturned)
	}
	return total
}

// QuantityForLine sums this return's quantity against one original line
func (ro *ReturnOrder) QuantityForLine(lineItemID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for idx := range ro.LineItems {
		if ro.LineItems[idx].LineItemID == lineItemID {
			total = total.Add(ro.LineItems[idx].QuantityReturned)
		}
	}
	return total
}
