package order

import (
	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// Event types emitted by the order aggregates
const (
	EventPurchaseOrderCreated   = "purchase_order.created"
	EventPurchaseOrderApproved  = "purchase_order.approved"
	EventPurchaseOrderIssued    = "purchase_order.issued"
	EventPurchaseOrderReceived  = "purchase_order.received"
	EventPurchaseOrderCompleted = "purchase_order.completed"
	EventPurchaseOrderCancelled = "purchase_order.cancelled"
	EventReturnOrderCreated     = "return_order.created"
	EventReturnOrderCompleted   = "return_order.completed"
)

const (
	aggregatePurchaseOrder = "PurchaseOrder"
	aggregateReturnOrder   = "ReturnOrder"
)

// PurchaseOrderCreatedEvent fires when a draft order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	Reference  string    `json:"reference"`
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderCreatedEvent creates the created event
func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderCreated, aggregatePurchaseOrder, po.ID, po.TenantID),
		Reference:       po.Reference,
		SupplierID:      po.SupplierID,
	}
}

// PurchaseOrderApprovedEvent fires when a pending order is approved
type PurchaseOrderApprovedEvent struct {
	shared.BaseDomainEvent
	Reference  string    `json:"reference"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// NewPurchaseOrderApprovedEvent creates the approved event
func NewPurchaseOrderApprovedEvent(po *PurchaseOrder, approver uuid.UUID) *PurchaseOrderApprovedEvent {
	return &PurchaseOrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderApproved, aggregatePurchaseOrder, po.ID, po.TenantID),
		Reference:       po.Reference,
		ApprovedBy:      approver,
	}
}

// PurchaseOrderIssuedEvent fires when an order is sent to the supplier.
// Supplier notification listens for this event.
type PurchaseOrderIssuedEvent struct {
	shared.BaseDomainEvent
	Reference  string    `json:"reference"`
	SupplierID uuid.UUID `json:"supplier_id"`
	IssuedBy   uuid.UUID `json:"issued_by"`
}

// NewPurchaseOrderIssuedEvent creates the issued event
func NewPurchaseOrderIssuedEvent(po *PurchaseOrder, issuer uuid.UUID) *PurchaseOrderIssuedEvent {
	return &PurchaseOrderIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderIssued, aggregatePurchaseOrder, po.ID, po.TenantID),
		Reference:       po.Reference,
		SupplierID:      po.SupplierID,
		IssuedBy:        issuer,
	}
}

// PurchaseOrderReceivedEvent fires when every line has fully arrived
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	Reference  string    `json:"reference"`
	ReceivedBy uuid.UUID `json:"received_by"`
}

// NewPurchaseOrderReceivedEvent creates the received event
func NewPurchaseOrderReceivedEvent(po *PurchaseOrder, receiver uuid.UUID) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderReceived, aggregatePurchaseOrder, po.ID, po.TenantID),
		Reference:       po.Reference,
		ReceivedBy:      receiver,
	}
}

// PurchaseOrderCompletedEvent fires when a received order is closed out
type PurchaseOrderCompletedEvent struct {
	shared.BaseDomainEvent
	Reference   string    `json:"reference"`
	CompletedBy uuid.UUID `json:"completed_by"`
}

// NewPurchaseOrderCompletedEvent creates the completed event
func NewPurchaseOrderCompletedEvent(po *PurchaseOrder, completer uuid.UUID) *PurchaseOrderCompletedEvent {
	return &PurchaseOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderCompleted, aggregatePurchaseOrder, po.ID, po.TenantID),
		Reference:       po.Reference,
		CompletedBy:     completer,
	}
}

// PurchaseOrderCancelledEvent fires when an order is aborted
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	Reference   string    `json:"reference"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates the cancelled event
func NewPurchaseOrderCancelledEvent(po *PurchaseOrder, canceller uuid.UUID, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPurchaseOrderCancelled, aggregatePurchaseOrder, po.ID, po.TenantID),
		Reference:       po.Reference,
		CancelledBy:     canceller,
		Reason:          reason,
	}
}

// ReturnOrderCreatedEvent fires when a return is opened against a
// completed purchase order
type ReturnOrderCreatedEvent struct {
	shared.BaseDomainEvent
	Reference       string    `json:"reference"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
}

// NewReturnOrderCreatedEvent creates the return created event
func NewReturnOrderCreatedEvent(ro *ReturnOrder) *ReturnOrderCreatedEvent {
	return &ReturnOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventReturnOrderCreated, aggregateReturnOrder, ro.ID, ro.TenantID),
		Reference:       ro.Reference,
		PurchaseOrderID: ro.PurchaseOrderID,
	}
}

// ReturnOrderCompletedEvent fires when the supplier accepts the return
type ReturnOrderCompletedEvent struct {
	shared.BaseDomainEvent
	Reference       string    `json:"reference"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
}

// NewReturnOrderCompletedEvent creates the return completed event
func NewReturnOrderCompletedEvent(ro *ReturnOrder) *ReturnOrderCompletedEvent {
	return &ReturnOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventReturnOrderCompleted, aggregateReturnOrder, ro.ID, ro.TenantID),
		Reference:       ro.Reference,
		PurchaseOrderID: ro.PurchaseOrderID,
	}
}
