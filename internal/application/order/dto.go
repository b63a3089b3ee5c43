package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/order"
)

// CreateCommand opens a new purchase order
type CreateCommand struct {
	SupplierID           uuid.UUID `validate:"required"`
	SupplierReference    string    `validate:"max=100"`
	DestinationID        *uuid.UUID
	Notes                string
	ExpectedDeliveryDate *time.Time
}

// LineCommand adds or reprices an order line
type LineCommand struct {
	OrderID      uuid.UUID `validate:"required"`
	LineItemID   uuid.UUID
	InventoryID  uuid.UUID `validate:"required"`
	Description  string    `validate:"max=300"`
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	DiscountRate decimal.Decimal
	TaxRate      decimal.Decimal
}

// ReceiptLine is one tuple of a receiving batch
type ReceiptLine struct {
	LineItemID uuid.UUID       `json:"line_item_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	LocationID uuid.UUID       `json:"location_id" validate:"required"`
}

// ReceiveCommand books a batch of arrived goods against an issued order.
// The batch is atomic: one bad tuple rejects the whole batch.
type ReceiveCommand struct {
	OrderID  uuid.UUID     `validate:"required"`
	Receipts []ReceiptLine `validate:"required,min=1,dive"`
}

// CreateReturnLine is one returned line of a new return order
type CreateReturnLine struct {
	LineItemID uuid.UUID       `json:"line_item_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
}

// CreateReturnCommand opens a return against a completed purchase order
type CreateReturnCommand struct {
	PurchaseOrderID uuid.UUID          `validate:"required"`
	Reason          string             `validate:"required"`
	Notes           string
	Lines           []CreateReturnLine `validate:"required,min=1,dive"`
}

// LineResult is the read model of an order line
type LineResult struct {
	ID               uuid.UUID       `json:"id"`
	InventoryID      uuid.UUID       `json:"inventory_id"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	FullyReceived    bool            `json:"fully_received"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Total            decimal.Decimal `json:"total"`
}

// Result is the read model of a purchase order
type Result struct {
	ID                   uuid.UUID       `json:"id"`
	Reference            string          `json:"reference"`
	SupplierID           uuid.UUID       `json:"supplier_id"`
	SupplierReference    string          `json:"supplier_reference,omitempty"`
	Status               order.Status    `json:"status"`
	Notes                string          `json:"notes,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	ApprovedBy           *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time      `json:"approved_at,omitempty"`
	IssuedAt             *time.Time      `json:"issued_at,omitempty"`
	ReceivedAt           *time.Time      `json:"received_at,omitempty"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
	CancelledAt          *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason   string          `json:"cancellation_reason,omitempty"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	DiscountTotal        decimal.Decimal `json:"discount_total"`
	TaxTotal             decimal.Decimal `json:"tax_total"`
	Total                decimal.Decimal `json:"total"`
	LineItems            []LineResult    `json:"line_items"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewResult maps a purchase order to its read model
func NewResult(po *order.PurchaseOrder) Result {
	lines := make([]LineResult, 0, len(po.LineItems))
	for idx := range po.LineItems {
		li := &po.LineItems[idx]
		lines = append(lines, LineResult{
			ID:               li.ID,
			InventoryID:      li.InventoryID,
			Description:      li.Description,
			Quantity:         li.Quantity,
			UnitPrice:        li.UnitPrice,
			DiscountRate:     li.DiscountRate,
			TaxRate:          li.TaxRate,
			QuantityReceived: li.QuantityReceived,
			FullyReceived:    li.FullyReceived(),
			Subtotal:         li.Subtotal,
			DiscountAmount:   li.DiscountAmount,
			TaxAmount:        li.TaxAmount,
			Total:            li.Total,
		})
	}
	return Result{
		ID:                   po.ID,
		Reference:            po.Reference,
		SupplierID:           po.SupplierID,
		SupplierReference:    po.SupplierReference,
		Status:               po.Status,
		Notes:                po.Notes,
		ExpectedDeliveryDate: po.ExpectedDeliveryDate,
		ApprovedBy:           po.ApprovedBy,
		ApprovedAt:           po.ApprovedAt,
		IssuedAt:             po.IssuedAt,
		ReceivedAt:           po.ReceivedAt,
		CompletedAt:          po.CompletedAt,
		CancelledAt:          po.CancelledAt,
		CancellationReason:   po.CancellationReason,
		Subtotal:             po.Subtotal,
		DiscountTotal:        po.DiscountTotal,
		TaxTotal:             po.TaxTotal,
		Total:                po.Total,
		LineItems:            lines,
		CreatedAt:            po.CreatedAt,
		UpdatedAt:            po.UpdatedAt,
	}
}

// ReturnLineResult is the read model of a returned line
type ReturnLineResult struct {
	ID               uuid.UUID       `json:"id"`
	LineItemID       uuid.UUID       `json:"line_item_id"`
	InventoryID      uuid.UUID       `json:"inventory_id"`
	QuantityReturned decimal.Decimal `json:"quantity_returned"`
	Reason           string          `json:"reason,omitempty"`
}

// ReturnResult is the read model of a return order
type ReturnResult struct {
	ID                uuid.UUID          `json:"id"`
	Reference         string             `json:"reference"`
	PurchaseOrderID   uuid.UUID          `json:"purchase_order_id"`
	Status            order.ReturnStatus `json:"status"`
	Reason            string             `json:"reason"`
	Notes             string             `json:"notes,omitempty"`
	PickupScheduledAt *time.Time         `json:"pickup_scheduled_at,omitempty"`
	CompletedAt       *time.Time         `json:"completed_at,omitempty"`
	LineItems         []ReturnLineResult `json:"line_items"`
	CreatedAt         time.Time          `json:"created_at"`
}

// NewReturnResult maps a return order to its read model
func NewReturnResult(ro *order.ReturnOrder) ReturnResult {
	lines := make([]ReturnLineResult, 0, len(ro.LineItems))
	for idx := range ro.LineItems {
		li := &ro.LineItems[idx]
		lines = append(lines, ReturnLineResult{
			ID:               li.ID,
			LineItemID:       li.LineItemID,
			InventoryID:      li.InventoryID,
			QuantityReturned: li.QuantityReturned,
			Reason:           li.Reason,
		})
	}
	return ReturnResult{
		ID:                ro.ID,
		Reference:         ro.Reference,
		PurchaseOrderID:   ro.PurchaseOrderID,
		Status:            ro.Status,
		Reason:            ro.Reason,
		Notes:             ro.Notes,
		PickupScheduledAt: ro.PickupScheduledAt,
		CompletedAt:       ro.CompletedAt,
		LineItems:         lines,
		CreatedAt:         ro.CreatedAt,
	}
}
