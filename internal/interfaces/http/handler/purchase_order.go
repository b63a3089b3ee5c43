package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/application/identity"
	orderapp "github.com/inventra/backend/internal/application/order"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *orderapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *orderapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// CreatePurchaseOrderRequest is the body for opening a new purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID           uuid.UUID  `json:"supplier_id" binding:"required"`
	SupplierReference    string     `json:"supplier_reference" binding:"max=100"`
	DestinationID        *uuid.UUID `json:"destination_id"`
	Notes                string     `json:"notes"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
}

// OrderLineRequest is the body for adding or repricing an order line
type OrderLineRequest struct {
	InventoryID  uuid.UUID       `json:"inventory_id" binding:"required"`
	Description  string          `json:"description" binding:"max=300"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

// CancelOrderRequest is the body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReceiptLineRequest is one tuple of a receiving batch
type ReceiptLineRequest struct {
	LineItemID uuid.UUID       `json:"line_item_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
}

// ReceiveRequest is the body for booking arrived goods
type ReceiveRequest struct {
	Receipts []ReceiptLineRequest `json:"receipts" binding:"required,min=1,dive"`
}

// Create opens a new purchase order in draft
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.Create(c.Request.Context(), actor, orderapp.CreateCommand{
		SupplierID:           req.SupplierID,
		SupplierReference:    req.SupplierReference,
		DestinationID:        req.DestinationID,
		Notes:                req.Notes,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Submit moves a draft order to pending approval
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.orderService.Submit)
}

// Approve approves a pending order
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.transition(c, h.orderService.Approve)
}

// Issue sends an approved order to the supplier
func (h *PurchaseOrderHandler) Issue(c *gin.Context) {
	h.transition(c, h.orderService.Issue)
}

// Complete closes out a fully received order
func (h *PurchaseOrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.orderService.Complete)
}

// Cancel cancels an order with a reason
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.Cancel(c.Request.Context(), actor, orderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddLine appends a line item to a draft order
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req OrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.AddLine(c.Request.Context(), actor, orderapp.LineCommand{
		OrderID:      orderID,
		InventoryID:  req.InventoryID,
		Description:  req.Description,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		DiscountRate: req.DiscountRate,
		TaxRate:      req.TaxRate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateLine reprices an existing line item on a draft order
func (h *PurchaseOrderHandler) UpdateLine(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	lineItemID, ok := h.parseIDParam(c, "line_id")
	if !ok {
		return
	}

	var req OrderLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.UpdateLine(c.Request.Context(), actor, orderapp.LineCommand{
		OrderID:      orderID,
		LineItemID:   lineItemID,
		InventoryID:  req.InventoryID,
		Description:  req.Description,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		DiscountRate: req.DiscountRate,
		TaxRate:      req.TaxRate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveLine deletes a line item from a draft order
func (h *PurchaseOrderHandler) RemoveLine(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	lineItemID, ok := h.parseIDParam(c, "line_id")
	if !ok {
		return
	}

	result, err := h.orderService.RemoveLine(c.Request.Context(), actor, orderID, lineItemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Receive books a batch of arrived goods against an issued order
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipts := make([]orderapp.ReceiptLine, 0, len(req.Receipts))
	for _, line := range req.Receipts {
		receipts = append(receipts, orderapp.ReceiptLine{
			LineItemID: line.LineItemID,
			Quantity:   line.Quantity,
			LocationID: line.LocationID,
		})
	}

	result, err := h.orderService.Receive(c.Request.Context(), actor, orderapp.ReceiveCommand{
		OrderID:  orderID,
		Receipts: receipts,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID retrieves one purchase order with its lines
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.orderService.Get(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List retrieves purchase orders with pagination
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.orderService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, listMeta(page))
}

// transition runs one of the parameterless lifecycle transitions
func (h *PurchaseOrderHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*orderapp.Result, error),
) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
