package stock

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// TrackingType classifies a stock movement or mutation
type TrackingType string

const (
	TrackingReceived       TrackingType = "received"
	TrackingShipped        TrackingType = "shipped"
	TrackingAdjustment     TrackingType = "adjustment"
	TrackingLocationChange TrackingType = "location_change"
	TrackingSplitChild     TrackingType = "split_from_parent"
	TrackingMerged         TrackingType = "merged_into_parent"
	TrackingQuarantined    TrackingType = "quarantined"
	TrackingStocktake      TrackingType = "stocktake"
	TrackingStatusChange   TrackingType = "status_change"
	TrackingReserved       TrackingType = "reserved"
	TrackingReleased       TrackingType = "released"
	TrackingReturned       TrackingType = "returned"
	TrackingOther          TrackingType = "other"
)

// IsValid checks if the tracking type is known
func (t TrackingType) IsValid() bool {
	switch t {
	case TrackingReceived, TrackingShipped, TrackingAdjustment,
		TrackingLocationChange, TrackingSplitChild, TrackingMerged,
		TrackingQuarantined, TrackingStocktake, TrackingStatusChange,
		TrackingReserved, TrackingReleased, TrackingReturned, TrackingOther:
		return true
	}
	return false
}

// Deltas captures the before/after values a tracking entry records, stored
// as a JSON column
type Deltas map[string]any

// Value implements driver.Valuer
func (d Deltas) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner
func (d *Deltas) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for deltas column")
	}
	return json.Unmarshal(raw, d)
}

// Tracking is one immutable ledger entry for a stock item. Entries are
// append-only: nothing in the system updates or deletes a row once written,
// and every quantity or status mutation on an item writes exactly one entry
// in the same transaction as the mutation.
type Tracking struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID    `gorm:"type:uuid;not null;index"`
	ItemID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_tracking_item_time,priority:1"`
	TrackingType TrackingType `gorm:"type:varchar(30);not null"`
	Deltas       Deltas       `gorm:"type:jsonb"`
	Notes        string       `gorm:"type:text"`
	UserID       *uuid.UUID   `gorm:"type:uuid"`
	CreatedAt    time.Time    `gorm:"not null;index:idx_stock_tracking_item_time,priority:2"`
}

// TableName returns the table name for GORM
func (Tracking) TableName() string {
	return "stock_item_trackings"
}

// NewTracking creates a ledger entry for an item mutation
func NewTracking(tenantID, itemID uuid.UUID, trackingType TrackingType, deltas Deltas) (*Tracking, error) {
	if !trackingType.IsValid() {
		return nil, shared.NewValidationError("invalid tracking type: " + string(trackingType))
	}
	return &Tracking{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ItemID:       itemID,
		TrackingType: trackingType,
		Deltas:       deltas,
		CreatedAt:    time.Now(),
	}, nil
}

// WithActor records the user who caused the mutation
func (t *Tracking) WithActor(userID uuid.UUID) *Tracking {
	t.UserID = &userID
	return t
}

// WithNotes attaches free-form notes to the entry
func (t *Tracking) WithNotes(notes string) *Tracking {
	t.Notes = notes
	return t
}

// QuantityDeltas builds the delta payload for a quantity mutation
func QuantityDeltas(old, new string) Deltas {
	return Deltas{"quantity": map[string]any{"old": old, "new": new}}
}

// StatusDeltas builds the delta payload for a status change
func StatusDeltas(old, new ItemStatus) Deltas {
	return Deltas{"status": map[string]any{"old": string(old), "new": string(new)}}
}

// LocationDeltas builds the delta payload for a relocation
func LocationDeltas(old, new uuid.UUID) Deltas {
	return Deltas{"location_id": map[string]any{"old": old.String(), "new": new.String()}}
}
