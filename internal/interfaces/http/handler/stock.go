package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/application/identity"
	stockapp "github.com/inventra/backend/internal/application/stock"
	"github.com/inventra/backend/internal/domain/stock"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	ledgerService *stockapp.LedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *stockapp.LedgerService) *StockHandler {
	return &StockHandler{ledgerService: ledgerService}
}

// CreateStockItemRequest is the body for registering stock directly
type CreateStockItemRequest struct {
	InventoryID     uuid.UUID        `json:"inventory_id" binding:"required"`
	LocationID      uuid.UUID        `json:"location_id" binding:"required"`
	Name            string           `json:"name" binding:"max=200"`
	Quantity        decimal.Decimal  `json:"quantity"`
	BatchNumber     string           `json:"batch_number" binding:"max=100"`
	ExpiryDate      *time.Time       `json:"expiry_date"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	DeleteOnDeplete bool             `json:"delete_on_deplete"`
}

// AdjustStockRequest is the body for a signed quantity adjustment
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" binding:"max=500"`
}

// TransferStockRequest is the body for moving stock between locations. An
// omitted quantity relocates the whole item.
type TransferStockRequest struct {
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes" binding:"max=500"`
}

// ReserveStockRequest is the body for reserving or releasing quantity
type ReserveStockRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	SalesOrderID uuid.UUID       `json:"sales_order_id" binding:"required"`
}

// ChangeStatusRequest is the body for moving an item to a new condition
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,max=50"`
	Notes  string `json:"notes" binding:"max=500"`
}

// SplitStockRequest is the body for carving quantity off into a child item
type SplitStockRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	LocationID uuid.UUID       `json:"location_id" binding:"required"`
	Notes      string          `json:"notes" binding:"max=500"`
}

// CreateLocationRequest is the body for registering a stock location
type CreateLocationRequest struct {
	Name         string     `json:"name" binding:"required,max=200"`
	LocationType string     `json:"location_type" binding:"required,max=100"`
	ParentID     *uuid.UUID `json:"parent_id"`
	Structural   bool       `json:"structural"`
	External     bool       `json:"external"`
	Description  string     `json:"description"`
}

// UpdatePolicyRequest is the body for changing tenant stock policy
type UpdatePolicyRequest struct {
	AllowNegative     bool `json:"allow_negative"`
	ExpiryWarningDays int  `json:"expiry_warning_days" binding:"min=0"`
}

// CreateItem registers a new stock item with a freshly minted SKU
func (h *StockHandler) CreateItem(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.CreateItem(c.Request.Context(), actor, stockapp.CreateItemCommand{
		InventoryID:     req.InventoryID,
		LocationID:      req.LocationID,
		Name:            req.Name,
		Quantity:        req.Quantity,
		BatchNumber:     req.BatchNumber,
		ExpiryDate:      req.ExpiryDate,
		PurchasePrice:   req.PurchasePrice,
		DeleteOnDeplete: req.DeleteOnDeplete,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Adjust changes an item's quantity by a signed delta
func (h *StockHandler) Adjust(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Adjust(c.Request.Context(), actor, stockapp.AdjustCommand{
		ItemID: itemID,
		Delta:  req.Delta,
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Transfer moves stock quantity to another holding location
func (h *StockHandler) Transfer(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Transfer(c.Request.Context(), actor, stockapp.TransferCommand{
		ItemID:     itemID,
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Reserve earmarks quantity for a sales order
func (h *StockHandler) Reserve(c *gin.Context) {
	h.reserveOrRelease(c, h.ledgerService.Reserve)
}

// Release returns previously reserved quantity to the pool
func (h *StockHandler) Release(c *gin.Context) {
	h.reserveOrRelease(c, h.ledgerService.Release)
}

// ChangeStatus moves an item to a new condition status
func (h *StockHandler) ChangeStatus(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ChangeStatus(c.Request.Context(), actor, stockapp.ChangeStatusCommand{
		ItemID: itemID,
		Status: stock.ItemStatus(req.Status),
		Notes:  req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Split carves quantity off into a child item
func (h *StockHandler) Split(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SplitStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Split(c.Request.Context(), actor, stockapp.SplitCommand{
		ItemID:     itemID,
		Quantity:   req.Quantity,
		LocationID: req.LocationID,
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetItem retrieves one stock item
func (h *StockHandler) GetItem(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.ledgerService.GetItem(c.Request.Context(), actor, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListItems retrieves stock items with pagination
func (h *StockHandler) ListItems(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.ledgerService.ListItems(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, listMeta(page))
}

// History retrieves the ledger entries of one item
func (h *StockHandler) History(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.ledgerService.History(c.Request.Context(), actor, itemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, listMeta(page))
}

// CreateLocation registers a new stock location
func (h *StockHandler) CreateLocation(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.CreateLocation(c.Request.Context(), actor, stockapp.CreateLocationCommand{
		Name:         req.Name,
		LocationType: req.LocationType,
		ParentID:     req.ParentID,
		Structural:   req.Structural,
		External:     req.External,
		Description:  req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetLocation retrieves one stock location
func (h *StockHandler) GetLocation(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	locationID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.ledgerService.GetLocation(c.Request.Context(), actor, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListLocations retrieves stock locations with pagination
func (h *StockHandler) ListLocations(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.ledgerService.ListLocations(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, listMeta(page))
}

// UpdatePolicy changes the tenant's stock policy
func (h *StockHandler) UpdatePolicy(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.ledgerService.UpdatePolicy(c.Request.Context(), actor, req.AllowNegative, req.ExpiryWarningDays); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// reserveOrRelease binds the shared reserve body and runs the given operation
func (h *StockHandler) reserveOrRelease(
	c *gin.Context,
	fn func(ctx context.Context, actor identity.Actor, cmd stockapp.ReserveCommand) (*stockapp.AdjustResult, error),
) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := fn(c.Request.Context(), actor, stockapp.ReserveCommand{
		ItemID:       itemID,
		Quantity:     req.Quantity,
		SalesOrderID: req.SalesOrderID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
