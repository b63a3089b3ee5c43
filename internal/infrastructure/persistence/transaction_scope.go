package persistence

import (
	"context"

	"gorm.io/gorm"

	appinventory "github.com/inventra/backend/internal/application/inventory"
	apporder "github.com/inventra/backend/internal/application/order"
	appstock "github.com/inventra/backend/internal/application/stock"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/stock"
)

// gormTransactionalRepositories binds every repository to one transaction.
// It satisfies the transactional repository interfaces of all three
// application packages, so the same scope value backs them all.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) PurchaseOrders() order.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ReturnOrders() order.ReturnOrderRepository {
	return NewGormReturnOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) Items() stock.ItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) Trackings() stock.TrackingRepository {
	return NewGormStockTrackingRepository(r.tx)
}

func (r *gormTransactionalRepositories) Locations() stock.LocationRepository {
	return NewGormStockLocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) Policies() stock.PolicyRepository {
	return NewGormStockPolicyRepository(r.tx)
}

func (r *gormTransactionalRepositories) Inventories() inventory.Repository {
	return NewGormInventoryRepository(r.tx)
}

func (r *gormTransactionalRepositories) InventoryTransactions() inventory.TransactionRepository {
	return NewGormInventoryTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() sequence.Repository {
	return NewGormSequenceRepository(r.tx)
}

// OrderTransactionScope runs order service work units inside one database
// transaction
type OrderTransactionScope struct {
	db *gorm.DB
}

// NewOrderTransactionScope creates an order transaction scope
func NewOrderTransactionScope(db *gorm.DB) *OrderTransactionScope {
	return &OrderTransactionScope{db: db}
}

// Execute runs fn inside a transaction. Commit on nil, rollback otherwise.
func (s *OrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// StockTransactionScope runs stock ledger work units inside one database
// transaction
type StockTransactionScope struct {
	db *gorm.DB
}

// NewStockTransactionScope creates a stock transaction scope
func NewStockTransactionScope(db *gorm.DB) *StockTransactionScope {
	return &StockTransactionScope{db: db}
}

// Execute runs fn inside a transaction. Commit on nil, rollback otherwise.
func (s *StockTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// InventoryTransactionScope runs inventory definition work units inside one
// database transaction
type InventoryTransactionScope struct {
	db *gorm.DB
}

// NewInventoryTransactionScope creates an inventory transaction scope
func NewInventoryTransactionScope(db *gorm.DB) *InventoryTransactionScope {
	return &InventoryTransactionScope{db: db}
}

// Execute runs fn inside a transaction. Commit on nil, rollback otherwise.
func (s *InventoryTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

var (
	_ apporder.TransactionScope              = (*OrderTransactionScope)(nil)
	_ appstock.TransactionScope              = (*StockTransactionScope)(nil)
	_ appinventory.TransactionScope          = (*InventoryTransactionScope)(nil)
	_ apporder.TransactionalRepositories     = (*gormTransactionalRepositories)(nil)
	_ appstock.TransactionalRepositories     = (*gormTransactionalRepositories)(nil)
	_ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
