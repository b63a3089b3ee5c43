package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// PurchaseOrder is the aggregate root of the procurement lifecycle: a
// supplier document that moves through an explicit state machine from draft
// to completion, carrying its line items and their receipt progress.
type PurchaseOrder struct {
	shared.AuditedTenantRecord
	Reference             string          `gorm:"type:varchar(100);not null;index"`
	SupplierID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierReference     string          `gorm:"type:varchar(100)"`
	Status                Status          `gorm:"type:varchar(20);not null;default:'draft'"`
	DestinationLocationID *uuid.UUID      `gorm:"type:uuid"`
	Notes                 string          `gorm:"type:text"`
	ExpectedDeliveryDate  *time.Time      `gorm:"type:date"`
	ApprovedBy            *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt            *time.Time
	IssuedBy              *uuid.UUID `gorm:"type:uuid"`
	IssuedAt              *time.Time
	ReceivedBy            *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt            *time.Time
	CompletedBy           *uuid.UUID `gorm:"type:uuid"`
	CompletedAt           *time.Time
	CancelledBy           *uuid.UUID `gorm:"type:uuid"`
	CancelledAt           *time.Time
	CancellationReason    string          `gorm:"type:text"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	DiscountTotal         decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	TaxTotal              decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Total                 decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	LineItems             []LineItem      `gorm:"foreignKey:PurchaseOrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a draft purchase order. The reference must come
// from the sequence generator, minted in the same transaction that persists
// the order.
func NewPurchaseOrder(tenantID, supplierID uuid.UUID, reference string) (*PurchaseOrder, error) {
	if reference == "" {
		return nil, shared.NewValidationError("purchase order reference cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("purchase order supplier cannot be empty")
	}

	po := &PurchaseOrder{
		AuditedTenantRecord: shared.NewAuditedTenantRecord(tenantID),
		Reference:           reference,
		SupplierID:          supplierID,
		Status:              StatusDraft,
		Subtotal:            decimal.Zero,
		DiscountTotal:       decimal.Zero,
		TaxTotal:            decimal.Zero,
		Total:               decimal.Zero,
	}
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

// transition moves the order to the target state or fails with
// INVALID_TRANSITION. All state changes funnel through here.
func (po *PurchaseOrder) transition(to Status) error {
	if !po.Status.CanTransitionTo(to) {
		return shared.NewInvalidTransition("purchase order", string(po.Status), string(to))
	}
	po.Status = to
	po.Touch()
	po.IncrementVersion()
	return nil
}

// Submit moves a draft order into the pending queue for approval
func (po *PurchaseOrder) Submit() error {
	return po.transition(StatusPending)
}

// Approve records managerial sign-off on a pending order
func (po *PurchaseOrder) Approve(approver uuid.UUID) error {
	if err := po.transition(StatusApproved); err != nil {
		return err
	}
	now := time.Now()
	po.ApprovedBy = &approver
	po.ApprovedAt = &now
	po.AddDomainEvent(NewPurchaseOrderApprovedEvent(po, approver))
	return nil
}

// Issue sends an approved order to the supplier. An order with no lines
// cannot be issued.
func (po *PurchaseOrder) Issue(issuer uuid.UUID) error {
	if len(po.LineItems) == 0 {
		return shared.NewValidationError("purchase order cannot be issued without line items")
	}
	if err := po.transition(StatusIssued); err != nil {
		return err
	}
	now := time.Now()
	po.IssuedBy = &issuer
	po.IssuedAt = &now
	po.AddDomainEvent(NewPurchaseOrderIssuedEvent(po, issuer))
	return nil
}

// MarkReceived records that goods have started arriving against an issued
// order. The flip happens on the first receiving batch; lines may still
// carry outstanding quantities.
func (po *PurchaseOrder) MarkReceived(receiver uuid.UUID) error {
	if err := po.transition(StatusReceived); err != nil {
		return err
	}
	now := time.Now()
	po.ReceivedBy = &receiver
	po.ReceivedAt = &now
	po.AddDomainEvent(NewPurchaseOrderReceivedEvent(po, receiver))
	return nil
}

// Complete closes out a fully received order
func (po *PurchaseOrder) Complete(completer uuid.UUID) error {
	if err := po.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	po.CompletedBy = &completer
	po.CompletedAt = &now
	po.AddDomainEvent(NewPurchaseOrderCompletedEvent(po, completer))
	return nil
}

// Cancel aborts the order from any non-terminal state
func (po *PurchaseOrder) Cancel(canceller uuid.UUID, reason string) error {
	if err := po.transition(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	po.CancelledBy = &canceller
	po.CancelledAt = &now
	po.CancellationReason = reason
	po.AddDomainEvent(NewPurchaseOrderCancelledEvent(po, canceller, reason))
	return nil
}

// MarkReturned flags a completed order as having an accepted return
func (po *PurchaseOrder) MarkReturned() error {
	return po.transition(StatusReturned)
}

// AddLineItem appends a line while the order is pending approval
func (po *PurchaseOrder) AddLineItem(inventoryID uuid.UUID, description string, quantity, unitPrice, discountRate, taxRate decimal.Decimal) (*LineItem, error) {
	if po.Status != StatusPending {
		return nil, shared.NewInvalidTransition("purchase order line item", string(po.Status), "line added")
	}
	li, err := NewLineItem(po.TenantID, po.ID, inventoryID, description, quantity, unitPrice, discountRate, taxRate)
	if err != nil {
		return nil, err
	}
	po.LineItems = append(po.LineItems, *li)
	po.RecalculateTotals()
	po.Touch()
	po.IncrementVersion()
	return li, nil
}

// UpdateLineItem reprices a line while the order is still editable
func (po *PurchaseOrder) UpdateLineItem(lineItemID uuid.UUID, quantity, unitPrice, discountRate, taxRate decimal.Decimal) error {
	if !po.editable() {
		return shared.NewInvalidTransition("purchase order line item", string(po.Status), "line updated")
	}
	li := po.findLine(lineItemID)
	if li == nil {
		return shared.ErrNotFound
	}
	if err := li.UpdatePricing(quantity, unitPrice, discountRate, taxRate); err != nil {
		return err
	}
	po.RecalculateTotals()
	po.Touch()
	po.IncrementVersion()
	return nil
}

// RemoveLineItem deletes a line while the order is still editable
func (po *PurchaseOrder) RemoveLineItem(lineItemID uuid.UUID) error {
	if !po.editable() {
		return shared.NewInvalidTransition("purchase order line item", string(po.Status), "line removed")
	}
	for idx := range po.LineItems {
		if po.LineItems[idx].ID == lineItemID {
			po.LineItems = append(po.LineItems[:idx], po.LineItems[idx+1:]...)
			po.RecalculateTotals()
			po.Touch()
			po.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// editable reports whether line items may still be changed
func (po *PurchaseOrder) editable() bool {
	return po.Status == StatusDraft || po.Status == StatusPending
}

// findLine returns the line with the given ID, or nil
func (po *PurchaseOrder) findLine(lineItemID uuid.UUID) *LineItem {
	for idx := range po.LineItems {
		if po.LineItems[idx].ID == lineItemID {
			return &po.LineItems[idx]
		}
	}
	return nil
}

// ReceiveLineItem books a receipt against a line. Receiving is legal while
// the order is issued or already received, so later deliveries keep landing
// after the first batch. Over-receipt fails with RECEIPT_OVERFLOW; callers
// receiving a batch apply every tuple or none.
func (po *PurchaseOrder) ReceiveLineItem(lineItemID uuid.UUID, quantity decimal.Decimal) error {
	if po.Status != StatusIssued && po.Status != StatusReceived {
		return shared.NewInvalidTransition("purchase order", string(po.Status), "items received")
	}
	li := po.findLine(lineItemID)
	if li == nil {
		return shared.ErrNotFound
	}
	return li.receive(quantity)
}

// AllLinesFullyReceived reports whether every line has zero outstanding
// quantity
func (po *PurchaseOrder) AllLinesFullyReceived() bool {
	if len(po.LineItems) == 0 {
		return false
	}
	for idx := range po.LineItems {
		if !po.LineItems[idx].FullyReceived() {
			return false
		}
	}
	return true
}

// RecalculateTotals refreshes the order-level money figures from the lines
func (po *PurchaseOrder) RecalculateTotals() {
	accounts := make([]LineAccount, 0, len(po.LineItems))
	for idx := range po.LineItems {
		po.LineItems[idx].recalculate()
		accounts = append(accounts, po.LineItems[idx].Account())
	}
	sum := SumLineAccounts(accounts)
	po.Subtotal = sum.Subtotal
	po.DiscountTotal = sum.Discount
	po.TaxTotal = sum.Tax
	po.Total = sum.Total
}

// SetExpectedDelivery records the supplier's promised delivery date
func (po *PurchaseOrder) SetExpectedDelivery(date time.Time) {
	po.ExpectedDeliveryDate = &date
	po.Touch()
}

// SetDestination records where received stock should land by default
func (po *PurchaseOrder) SetDestination(locationID uuid.UUID) {
	po.DestinationLocationID = &locationID
	po.Touch()
}
