package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/stock"
)

// AdjustCommand changes an item's quantity by a signed delta
type AdjustCommand struct {
	ItemID uuid.UUID
	Delta  decimal.Decimal
	Reason string
}

// TransferCommand moves quantity to another holding location. A zero
// quantity relocates the whole item.
type TransferCommand struct {
	ItemID     uuid.UUID
	LocationID uuid.UUID
	Quantity   decimal.Decimal
	Notes      string
}

// ReserveCommand earmarks quantity for a sales order
type ReserveCommand struct {
	ItemID       uuid.UUID
	Quantity     decimal.Decimal
	SalesOrderID uuid.UUID
}

// SplitCommand carves quantity off into a child item
type SplitCommand struct {
	ItemID     uuid.UUID
	Quantity   decimal.Decimal
	LocationID uuid.UUID
	Notes      string
}

// ChangeStatusCommand moves an item to a new condition status
type ChangeStatusCommand struct {
	ItemID uuid.UUID
	Status stock.ItemStatus
	Notes  string
}

// CreateLocationCommand registers a new stock location
type CreateLocationCommand struct {
	Name         string `validate:"required,max=200"`
	LocationType string `validate:"required,max=100"`
	ParentID     *uuid.UUID
	Structural   bool
	External     bool
	Description  string
}

// AdjustResult reports the quantity movement that was committed
type AdjustResult struct {
	ItemID      uuid.UUID       `json:"item_id"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Deleted     bool            `json:"deleted"`
}

// ItemResult is the read model of a stock item
type ItemResult struct {
	ID               uuid.UUID        `json:"id"`
	InventoryID      uuid.UUID        `json:"inventory_id"`
	LocationID       uuid.UUID        `json:"location_id"`
	Name             string           `json:"name"`
	SKU              string           `json:"sku"`
	Quantity         decimal.Decimal  `json:"quantity"`
	QuantityReserved decimal.Decimal  `json:"quantity_reserved"`
	Status           stock.ItemStatus `json:"status"`
	BatchNumber      string           `json:"batch_number,omitempty"`
	ExpiryDate       *time.Time       `json:"expiry_date,omitempty"`
	ParentID         *uuid.UUID       `json:"parent_id,omitempty"`
	PurchaseOrderID  *uuid.UUID       `json:"purchase_order_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewItemResult maps a domain item to its read model
func NewItemResult(item *stock.Item) ItemResult {
	return ItemResult{
		ID:               item.ID,
		InventoryID:      item.InventoryID,
		LocationID:       item.LocationID,
		Name:             item.Name,
		SKU:              item.SKU,
		Quantity:         item.Quantity,
		QuantityReserved: item.QuantityReserved,
		Status:           item.Status,
		BatchNumber:      item.BatchNumber,
		ExpiryDate:       item.ExpiryDate,
		ParentID:         item.ParentID,
		PurchaseOrderID:  item.PurchaseOrderID,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

// LocationResult is the read model of a stock location
type LocationResult struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	LocationType string     `json:"location_type"`
	Structural   bool       `json:"structural"`
	External     bool       `json:"external"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// NewLocationResult maps a domain location to its read model
func NewLocationResult(loc *stock.Location) LocationResult {
	return LocationResult{
		ID:           loc.ID,
		Code:         loc.Code,
		Name:         loc.Name,
		LocationType: loc.LocationType,
		Structural:   loc.Structural,
		External:     loc.External,
		ParentID:     loc.ParentID,
		Description:  loc.Description,
	}
}

// TrackingResult is the read model of a ledger entry
type TrackingResult struct {
	ID           uuid.UUID          `json:"id"`
	ItemID       uuid.UUID          `json:"item_id"`
	TrackingType stock.TrackingType `json:"tracking_type"`
	Deltas       stock.Deltas       `json:"deltas,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	UserID       *uuid.UUID         `json:"user_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewTrackingResult maps a ledger entry to its read model
func NewTrackingResult(entry *stock.Tracking) TrackingResult {
	return TrackingResult{
		ID:           entry.ID,
		ItemID:       entry.ItemID,
		TrackingType: entry.TrackingType,
		Deltas:       entry.Deltas,
		Notes:        entry.Notes,
		UserID:       entry.UserID,
		CreatedAt:    entry.CreatedAt,
	}
}
