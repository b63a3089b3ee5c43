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

// ReturnOrderHandler handles return order API endpoints
type ReturnOrderHandler struct {
	BaseHandler
	returnService *orderapp.ReturnOrderService
}

// NewReturnOrderHandler creates a new ReturnOrderHandler
func NewReturnOrderHandler(returnService *orderapp.ReturnOrderService) *ReturnOrderHandler {
	return &ReturnOrderHandler{returnService: returnService}
}

// ReturnLineRequest is one returned line of a new return order
type ReturnLineRequest struct {
	LineItemID uuid.UUID       `json:"line_item_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason" binding:"max=500"`
}

// CreateReturnRequest is the body for opening a return order
type CreateReturnRequest struct {
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id" binding:"required"`
	Reason          string              `json:"reason" binding:"required,max=500"`
	Notes           string              `json:"notes"`
	Lines           []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SchedulePickupRequest is the body for booking the carrier pickup
type SchedulePickupRequest struct {
	PickupAt time.Time `json:"pickup_at" binding:"required"`
}

// Create opens a return against a completed purchase order
func (h *ReturnOrderHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines := make([]orderapp.CreateReturnLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, orderapp.CreateReturnLine{
			LineItemID: line.LineItemID,
			Quantity:   line.Quantity,
			Reason:     line.Reason,
		})
	}

	result, err := h.returnService.Create(c.Request.Context(), actor, orderapp.CreateReturnCommand{
		PurchaseOrderID: req.PurchaseOrderID,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Lines:           lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// SchedulePickup books the carrier pickup for a requested return
func (h *ReturnOrderHandler) SchedulePickup(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	returnID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SchedulePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.returnService.SchedulePickup(c.Request.Context(), actor, returnID, req.PickupAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkInTransit records that the carrier collected the goods
func (h *ReturnOrderHandler) MarkInTransit(c *gin.Context) {
	h.transition(c, h.returnService.MarkInTransit)
}

// Complete closes a return once the supplier confirms receipt
func (h *ReturnOrderHandler) Complete(c *gin.Context) {
	h.transition(c, h.returnService.Complete)
}

// Cancel cancels a return that has not yet shipped
func (h *ReturnOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.returnService.Cancel)
}

// GetByID retrieves one return order with its lines
func (h *ReturnOrderHandler) GetByID(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	returnID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.returnService.Get(c.Request.Context(), actor, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListForOrder retrieves all returns raised against one purchase order
func (h *ReturnOrderHandler) ListForOrder(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	purchaseOrderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.returnService.ListForOrder(c.Request.Context(), actor, purchaseOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// transition runs one of the parameterless lifecycle transitions
func (h *ReturnOrderHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, actor identity.Actor, returnID uuid.UUID) (*orderapp.ReturnResult, error),
) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	returnID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), actor, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
