package order

import (
	"context"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/stock"
)

// TransactionalRepositories exposes repositories bound to one database
// transaction. Receiving spans the order, new stock items, their tracking
// entries and the minted SKUs; they all commit or roll back as one unit.
type TransactionalRepositories interface {
	PurchaseOrders() order.PurchaseOrderRepository
	ReturnOrders() order.ReturnOrderRepository
	Items() stock.ItemRepository
	Trackings() stock.TrackingRepository
	Locations() stock.LocationRepository
	Inventories() inventory.Repository
	InventoryTransactions() inventory.TransactionRepository
	Sequences() sequence.Repository
}

// TransactionScope runs a function inside a database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
