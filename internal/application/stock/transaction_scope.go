package stock

import (
	"context"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/stock"
)

// TransactionalRepositories exposes repositories bound to one database
// transaction. Every repository obtained from the same instance shares the
// transaction, so a quantity adjustment and its tracking entry commit or
// roll back together.
type TransactionalRepositories interface {
	Items() stock.ItemRepository
	Trackings() stock.TrackingRepository
	Locations() stock.LocationRepository
	Policies() stock.PolicyRepository
	Inventories() inventory.Repository
	Sequences() sequence.Repository
}

// TransactionScope runs a function inside a database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
