package order

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/application/catalog"
	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

// memStore is an in-memory repository set backing the service tests
type memStore struct {
	mu         sync.Mutex
	counters   map[string]int64
	orders     map[uuid.UUID]*order.PurchaseOrder
	returns    map[uuid.UUID]*order.ReturnOrder
	items      map[uuid.UUID]*stock.Item
	trackings  []*stock.Tracking
	locations  map[uuid.UUID]*stock.Location
	inventorys map[uuid.UUID]*inventory.Inventory
	movements  []*inventory.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		counters:   make(map[string]int64),
		orders:     make(map[uuid.UUID]*order.PurchaseOrder),
		returns:    make(map[uuid.UUID]*order.ReturnOrder),
		items:      make(map[uuid.UUID]*stock.Item),
		locations:  make(map[uuid.UUID]*stock.Location),
		inventorys: make(map[uuid.UUID]*inventory.Inventory),
	}
}

// fakeScope runs the function directly; the in-memory store has no
// transactional rollback, which the happy-path tests do not need
type fakeScope struct{ store *memStore }

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(&fakeRepos{store: s.store})
}

type fakeRepos struct{ store *memStore }

func (r *fakeRepos) PurchaseOrders() order.PurchaseOrderRepository { return &memPOs{r.store} }
func (r *fakeRepos) ReturnOrders() order.ReturnOrderRepository     { return &memReturns{r.store} }
func (r *fakeRepos) Items() stock.ItemRepository                   { return &memItems{r.store} }
func (r *fakeRepos) Trackings() stock.TrackingRepository           { return &memTrackings{r.store} }
func (r *fakeRepos) Locations() stock.LocationRepository           { return &memLocations{r.store} }
func (r *fakeRepos) Inventories() inventory.Repository             { return &memInventories{r.store} }
func (r *fakeRepos) InventoryTransactions() inventory.TransactionRepository {
	return &memMovements{r.store}
}
func (r *fakeRepos) Sequences() sequence.Repository { return &memSequences{r.store} }

type memSequences struct{ store *memStore }

func (m *memSequences) Next(_ context.Context, tenantID uuid.UUID, ns sequence.Namespace) (int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	key := tenantID.String() + "|" + string(ns)
	m.store.counters[key]++
	return m.store.counters[key], nil
}

type memPOs struct{ store *memStore }

func (m *memPOs) FindByID(_ context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	if po, ok := m.store.orders[id]; ok {
		return po, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memPOs) Save(_ context.Context, po *order.PurchaseOrder) error {
	m.store.orders[po.ID] = po
	return nil
}

func (m *memPOs) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store.orders, id)
	return nil
}

func (m *memPOs) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*order.PurchaseOrder, error) {
	if po, ok := m.store.orders[id]; ok && po.TenantID == tenantID {
		return po, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memPOs) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]order.PurchaseOrder, error) {
	var out []order.PurchaseOrder
	for _, po := range m.store.orders {
		if po.TenantID == tenantID {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (m *memPOs) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, po := range m.store.orders {
		if po.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memPOs) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*order.PurchaseOrder, error) {
	for _, po := range m.store.orders {
		if po.TenantID == tenantID && po.Reference == reference {
			return po, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memPOs) FindByStatus(_ context.Context, tenantID uuid.UUID, status order.Status, _ shared.Filter) ([]order.PurchaseOrder, error) {
	var out []order.PurchaseOrder
	for _, po := range m.store.orders {
		if po.TenantID == tenantID && po.Status == status {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (m *memPOs) FindBySupplier(_ context.Context, tenantID, supplierID uuid.UUID, _ shared.Filter) ([]order.PurchaseOrder, error) {
	var out []order.PurchaseOrder
	for _, po := range m.store.orders {
		if po.TenantID == tenantID && po.SupplierID == supplierID {
			out = append(out, *po)
		}
	}
	return out, nil
}

type memReturns struct{ store *memStore }

func (m *memReturns) FindByID(_ context.Context, id uuid.UUID) (*order.ReturnOrder, error) {
	if ro, ok := m.store.returns[id]; ok {
		return ro, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memReturns) Save(_ context.Context, ro *order.ReturnOrder) error {
	m.store.returns[ro.ID] = ro
	return nil
}

func (m *memReturns) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store.returns, id)
	return nil
}

func (m *memReturns) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*order.ReturnOrder, error) {
	if ro, ok := m.store.returns[id]; ok && ro.TenantID == tenantID {
		return ro, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memReturns) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]order.ReturnOrder, error) {
	var out []order.ReturnOrder
	for _, ro := range m.store.returns {
		if ro.TenantID == tenantID {
			out = append(out, *ro)
		}
	}
	return out, nil
}

func (m *memReturns) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, ro := range m.store.returns {
		if ro.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memReturns) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*order.ReturnOrder, error) {
	for _, ro := range m.store.returns {
		if ro.TenantID == tenantID && ro.Reference == reference {
			return ro, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memReturns) FindByPurchaseOrder(_ context.Context, tenantID, purchaseOrderID uuid.UUID) ([]order.ReturnOrder, error) {
	var out []order.ReturnOrder
	for _, ro := range m.store.returns {
		if ro.TenantID == tenantID && ro.PurchaseOrderID == purchaseOrderID {
			out = append(out, *ro)
		}
	}
	return out, nil
}

func (m *memReturns) SumReturnedForLine(_ context.Context, tenantID, lineItemID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ro := range m.store.returns {
		if ro.TenantID != tenantID || ro.Status == order.ReturnCancelled {
			continue
		}
		total = total.Add(ro.QuantityForLine(lineItemID))
	}
	return total, nil
}

type memItems struct{ store *memStore }

func (m *memItems) FindByID(_ context.Context, id uuid.UUID) (*stock.Item, error) {
	if item, ok := m.store.items[id]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memItems) Save(_ context.Context, item *stock.Item) error {
	m.store.items[item.ID] = item
	return nil
}

func (m *memItems) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store.items, id)
	return nil
}

func (m *memItems) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*stock.Item, error) {
	if item, ok := m.store.items[id]; ok && item.TenantID == tenantID {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memItems) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.Item, error) {
	var out []stock.Item
	for _, item := range m.store.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memItems) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, item := range m.store.items {
		if item.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memItems) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*stock.Item, error) {
	for _, item := range m.store.items {
		if item.TenantID == tenantID && item.SKU == sku {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memItems) FindReceiptTarget(_ context.Context, tenantID, purchaseOrderID, inventoryID, locationID uuid.UUID) (*stock.Item, error) {
	var found *stock.Item
	for _, item := range m.store.items {
		if item.TenantID != tenantID || item.InventoryID != inventoryID ||
			item.LocationID != locationID || item.Status != stock.StatusOK {
			continue
		}
		if item.PurchaseOrderID == nil || *item.PurchaseOrderID != purchaseOrderID {
			continue
		}
		if found == nil || item.CreatedAt.Before(found.CreatedAt) {
			found = item
		}
	}
	if found == nil {
		return nil, shared.ErrNotFound
	}
	return found, nil
}

func (m *memItems) FindByInventoryAndLocation(_ context.Context, tenantID, inventoryID, locationID uuid.UUID) (*stock.Item, error) {
	var found *stock.Item
	for _, item := range m.store.items {
		if item.TenantID != tenantID || item.InventoryID != inventoryID ||
			item.LocationID != locationID || item.Status != stock.StatusOK {
			continue
		}
		if found == nil || item.CreatedAt.Before(found.CreatedAt) {
			found = item
		}
	}
	if found == nil {
		return nil, shared.ErrNotFound
	}
	return found, nil
}

func (m *memItems) FindByInventory(_ context.Context, tenantID, inventoryID uuid.UUID, _ shared.Filter) ([]stock.Item, error) {
	var out []stock.Item
	for _, item := range m.store.items {
		if item.TenantID == tenantID && item.InventoryID == inventoryID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memItems) FindByLocation(_ context.Context, tenantID, locationID uuid.UUID, _ shared.Filter) ([]stock.Item, error) {
	var out []stock.Item
	for _, item := range m.store.items {
		if item.TenantID == tenantID && item.LocationID == locationID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memItems) FindExpiringBefore(_ context.Context, _ uuid.UUID, _ int) ([]stock.Item, error) {
	return nil, nil
}

func (m *memItems) AdjustQuantity(_ context.Context, tenantID, itemID uuid.UUID, delta decimal.Decimal, allowNegative bool) (decimal.Decimal, decimal.Decimal, error) {
	item, ok := m.store.items[itemID]
	if !ok || item.TenantID != tenantID {
		return decimal.Zero, decimal.Zero, shared.ErrNotFound
	}
	old := item.Quantity
	next := old.Add(delta)
	if next.IsNegative() && !allowNegative {
		return decimal.Zero, decimal.Zero, shared.ErrInsufficientStock
	}
	item.Quantity = next
	return old, next, nil
}

func (m *memItems) SumQuantityByInventory(_ context.Context, tenantID, inventoryID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range m.store.items {
		if item.TenantID == tenantID && item.InventoryID == inventoryID {
			total = total.Add(item.Quantity)
		}
	}
	return total, nil
}

type memTrackings struct{ store *memStore }

func (m *memTrackings) Append(_ context.Context, entry *stock.Tracking) error {
	m.store.trackings = append(m.store.trackings, entry)
	return nil
}

func (m *memTrackings) FindByItem(_ context.Context, tenantID, itemID uuid.UUID, _ shared.Filter) ([]stock.Tracking, error) {
	var out []stock.Tracking
	for _, entry := range m.store.trackings {
		if entry.TenantID == tenantID && entry.ItemID == itemID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (m *memTrackings) CountByItem(_ context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	var n int64
	for _, entry := range m.store.trackings {
		if entry.TenantID == tenantID && entry.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

type memLocations struct{ store *memStore }

func (m *memLocations) FindByID(_ context.Context, id uuid.UUID) (*stock.Location, error) {
	if loc, ok := m.store.locations[id]; ok {
		return loc, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memLocations) Save(_ context.Context, loc *stock.Location) error {
	m.store.locations[loc.ID] = loc
	return nil
}

func (m *memLocations) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store.locations, id)
	return nil
}

func (m *memLocations) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*stock.Location, error) {
	if loc, ok := m.store.locations[id]; ok && loc.TenantID == tenantID {
		return loc, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memLocations) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.Location, error) {
	var out []stock.Location
	for _, loc := range m.store.locations {
		if loc.TenantID == tenantID {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (m *memLocations) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, loc := range m.store.locations {
		if loc.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memLocations) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*stock.Location, error) {
	for _, loc := range m.store.locations {
		if loc.TenantID == tenantID && loc.Code == code {
			return loc, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memLocations) FindChildren(_ context.Context, tenantID, parentID uuid.UUID) ([]stock.Location, error) {
	var out []stock.Location
	for _, loc := range m.store.locations {
		if loc.TenantID == tenantID && loc.ParentID != nil && *loc.ParentID == parentID {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (m *memLocations) FindRoots(_ context.Context, tenantID uuid.UUID) ([]stock.Location, error) {
	var out []stock.Location
	for _, loc := range m.store.locations {
		if loc.TenantID == tenantID && loc.ParentID == nil {
			out = append(out, *loc)
		}
	}
	return out, nil
}

type memInventories struct{ store *memStore }

func (m *memInventories) FindByID(_ context.Context, id uuid.UUID) (*inventory.Inventory, error) {
	if inv, ok := m.store.inventorys[id]; ok {
		return inv, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memInventories) Save(_ context.Context, inv *inventory.Inventory) error {
	m.store.inventorys[inv.ID] = inv
	return nil
}

func (m *memInventories) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store.inventorys, id)
	return nil
}

func (m *memInventories) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.Inventory, error) {
	if inv, ok := m.store.inventorys[id]; ok && inv.TenantID == tenantID {
		return inv, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memInventories) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.Inventory, error) {
	var out []inventory.Inventory
	for _, inv := range m.store.inventorys {
		if inv.TenantID == tenantID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memInventories) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, inv := range m.store.inventorys {
		if inv.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memInventories) FindByExternalSystemID(_ context.Context, tenantID uuid.UUID, externalSystemID string) (*inventory.Inventory, error) {
	for _, inv := range m.store.inventorys {
		if inv.TenantID == tenantID && inv.ExternalSystemID == externalSystemID {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memInventories) FindByCategory(_ context.Context, tenantID uuid.UUID, category string, _ shared.Filter) ([]inventory.Inventory, error) {
	var out []inventory.Inventory
	for _, inv := range m.store.inventorys {
		if inv.TenantID == tenantID && inv.Category == category {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memInventories) FindActive(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]inventory.Inventory, error) {
	var out []inventory.Inventory
	for _, inv := range m.store.inventorys {
		if inv.TenantID == tenantID && inv.Active {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type memMovements struct{ store *memStore }

func (m *memMovements) Append(_ context.Context, txn *inventory.Transaction) error {
	m.store.movements = append(m.store.movements, txn)
	return nil
}

func (m *memMovements) AppendBatch(_ context.Context, txns []*inventory.Transaction) error {
	m.store.movements = append(m.store.movements, txns...)
	return nil
}

func (m *memMovements) FindByInventory(_ context.Context, tenantID, inventoryID uuid.UUID, _ shared.Filter) ([]inventory.Transaction, error) {
	var out []inventory.Transaction
	for _, txn := range m.store.movements {
		if txn.TenantID == tenantID && txn.InventoryID == inventoryID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (m *memMovements) FindByReference(_ context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]inventory.Transaction, error) {
	var out []inventory.Transaction
	for _, txn := range m.store.movements {
		if txn.TenantID == tenantID && txn.ReferenceType == referenceType &&
			txn.ReferenceID != nil && *txn.ReferenceID == referenceID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

// allowAll grants every permission
type allowAll struct{}

func (allowAll) Allow(_ context.Context, _ identity.Actor, _ string) error { return nil }

// nopPublisher records published events
type nopPublisher struct {
	events []shared.DomainEvent
}

func (p *nopPublisher) Publish(events ...shared.DomainEvent) {
	p.events = append(p.events, events...)
}

// nopNotifier records supplier notifications
type nopNotifier struct {
	mu            sync.Mutex
	notifications []SupplierNotification
}

func (n *nopNotifier) NotifySupplier(_ context.Context, notification SupplierNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

// staticSuppliers resolves every supplier as active
type staticSuppliers struct{}

func (staticSuppliers) Supplier(_ context.Context, _ uuid.UUID, supplierID uuid.UUID) (*catalog.Supplier, error) {
	return &catalog.Supplier{ID: supplierID, Name: "Acme Components", Active: true}, nil
}
