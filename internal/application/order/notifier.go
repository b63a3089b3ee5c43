package order

import (
	"context"

	"github.com/google/uuid"
)

// SupplierNotification is the payload sent to a supplier when an order is
// issued to them
type SupplierNotification struct {
	TenantID   uuid.UUID
	SupplierID uuid.UUID
	Reference  string
	Message    string
}

// Notifier delivers supplier notifications. Delivery is fire-and-forget:
// the order transition has already committed, and a failed notification
// never rolls it back or fails the request.
type Notifier interface {
	NotifySupplier(ctx context.Context, notification SupplierNotification)
}
