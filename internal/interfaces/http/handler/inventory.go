package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/inventra/backend/internal/application/inventory"
	"github.com/inventra/backend/internal/domain/inventory"
)

// InventoryHandler handles inventory definition API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// CreateInventoryRequest is the body for registering an inventory definition
type CreateInventoryRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	InventoryType string `json:"inventory_type" binding:"required,max=100"`
	Category      string `json:"category" binding:"required,max=100"`
	Description   string `json:"description"`
	Unit          string `json:"unit" binding:"max=50"`
}

// UpdateInventoryRequest is the body for changing descriptive fields
type UpdateInventoryRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Unit        string `json:"unit" binding:"max=50"`
}

// InventoryPolicyRequest is the body for installing replenishment thresholds
type InventoryPolicyRequest struct {
	MinimumStockLevel decimal.Decimal `json:"minimum_stock_level"`
	ReorderPoint      decimal.Decimal `json:"re_order_point"`
	ReorderQuantity   decimal.Decimal `json:"re_order_quantity"`
	SafetyStockLevel  decimal.Decimal `json:"safety_stock_level"`
	Strategy          string          `json:"strategy" binding:"max=50"`
}

// SetActiveRequest is the body for activating or deactivating a definition
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// Create registers a new inventory definition
func (h *InventoryHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	var req CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.inventoryService.Create(c.Request.Context(), actor, inventoryapp.CreateCommand{
		Name:          req.Name,
		InventoryType: req.InventoryType,
		Category:      req.Category,
		Description:   req.Description,
		Unit:          req.Unit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Update changes the descriptive fields of a definition
func (h *InventoryHandler) Update(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	inventoryID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.inventoryService.Update(c.Request.Context(), actor, inventoryapp.UpdateCommand{
		InventoryID: inventoryID,
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ApplyPolicy installs new replenishment thresholds
func (h *InventoryHandler) ApplyPolicy(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	inventoryID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req InventoryPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.inventoryService.ApplyPolicy(c.Request.Context(), actor, inventoryapp.PolicyCommand{
		InventoryID:       inventoryID,
		MinimumStockLevel: req.MinimumStockLevel,
		ReorderPoint:      req.ReorderPoint,
		ReorderQuantity:   req.ReorderQuantity,
		SafetyStockLevel:  req.SafetyStockLevel,
		Strategy:          inventory.ReorderStrategy(req.Strategy),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SetActive activates or deactivates a definition
func (h *InventoryHandler) SetActive(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	inventoryID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.inventoryService.SetActive(c.Request.Context(), actor, inventoryID, *req.Active); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID retrieves one inventory definition
func (h *InventoryHandler) GetByID(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	inventoryID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.inventoryService.Get(c.Request.Context(), actor, inventoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List retrieves inventory definitions with pagination
func (h *InventoryHandler) List(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	page, err := h.inventoryService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, listMeta(page))
}

// ReorderReport lists definitions whose on-hand total fell to the reorder point
func (h *InventoryHandler) ReorderReport(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}

	lines, err := h.inventoryService.ReorderReport(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, lines)
}

// Movements retrieves the stock movement log of one definition
func (h *InventoryHandler) Movements(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	inventoryID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	movements, err := h.inventoryService.Movements(c.Request.Context(), actor, inventoryID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}
