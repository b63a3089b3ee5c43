package stock

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

// CreateItemCommand registers stock directly, outside the receiving flow
// (opening balances, stocktake intake)
type CreateItemCommand struct {
	InventoryID     uuid.UUID `validate:"required"`
	LocationID      uuid.UUID `validate:"required"`
	Name            string    `validate:"max=200"`
	Quantity        decimal.Decimal
	BatchNumber     string `validate:"max=100"`
	ExpiryDate      *time.Time
	PurchasePrice   *decimal.Decimal
	DeleteOnDeplete bool
}

// LedgerService owns every stock mutation. Each operation runs in one
// transaction that changes the item and appends its tracking entry
// together; nothing mutates a quantity outside this service.
type LedgerService struct {
	scope     TransactionScope
	items     stock.ItemRepository
	locations stock.LocationRepository
	trackings stock.TrackingRepository
	checker   identity.Checker
	logger    *zap.Logger
	validate  *validator.Validate
}

// NewLedgerService creates the stock ledger service
func NewLedgerService(
	scope TransactionScope,
	items stock.ItemRepository,
	locations stock.LocationRepository,
	trackings stock.TrackingRepository,
	checker identity.Checker,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		scope:     scope,
		items:     items,
		locations: locations,
		trackings: trackings,
		checker:   checker,
		logger:    logger,
		validate:  validator.New(),
	}
}

// CreateItem registers a new stock item with a freshly minted SKU
func (s *LedgerService) CreateItem(ctx context.Context, actor identity.Actor, cmd CreateItemCommand) (*ItemResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockAdjust); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}
	if cmd.Quantity.IsNegative() {
		return nil, shared.NewValidationError("opening quantity cannot be negative")
	}

	var result *ItemResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, cmd.InventoryID)
		if err != nil {
			return err
		}
		loc, err := repos.Locations().FindByIDForTenant(ctx, actor.TenantID, cmd.LocationID)
		if err != nil {
			return err
		}
		if !loc.CanHoldStock() {
			return shared.NewValidationError("structural location " + loc.Code + " cannot hold stock")
		}

		gen := sequence.NewGenerator(repos.Sequences())
		sku, err := gen.NextSKU(ctx, actor.TenantID, inv.ID, inv.InventoryType, inv.Category)
		if err != nil {
			return err
		}

		name := cmd.Name
		if name == "" {
			name = inv.Name
		}
		item, err := stock.NewItem(actor.TenantID, inv.ID, loc.ID, sku, name, cmd.Quantity)
		if err != nil {
			return err
		}
		item.SetCreatedBy(actor.UserID)
		item.BatchNumber = cmd.BatchNumber
		item.ExpiryDate = cmd.ExpiryDate
		item.PurchasePrice = cmd.PurchasePrice
		item.DeleteOnDeplete = cmd.DeleteOnDeplete
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		entry, err := stock.NewTracking(actor.TenantID, item.ID, stock.TrackingReceived,
			stock.QuantityDeltas("0", item.Quantity.String()))
		if err != nil {
			return err
		}
		entry.WithActor(actor.UserID).WithNotes("initial stock")
		if err := repos.Trackings().Append(ctx, entry); err != nil {
			return err
		}

		r := NewItemResult(item)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock item created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("sku", result.SKU))
	return result, nil
}

// Adjust applies a signed quantity delta. Negative results are rejected
// with INSUFFICIENT_STOCK unless the tenant policy allows negative stock.
// Depleted items flagged delete-on-deplete are removed in the same
// transaction; their tracking history stays.
func (s *LedgerService) Adjust(ctx context.Context, actor identity.Actor, cmd AdjustCommand) (*AdjustResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockAdjust); err != nil {
		return nil, err
	}
	if cmd.Delta.IsZero() {
		return nil, shared.NewValidationError("adjustment delta cannot be zero")
	}

	var result *AdjustResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForTenant(ctx, actor.TenantID, cmd.ItemID)
		if err != nil {
			return err
		}

		policy, err := repos.Policies().FindForTenant(ctx, actor.TenantID)
		if err != nil {
			return err
		}

		old, now, err := repos.Items().AdjustQuantity(ctx, actor.TenantID, item.ID, cmd.Delta, policy.AllowNegativeStock)
		if err != nil {
			return err
		}

		entry, err := stock.NewTracking(actor.TenantID, item.ID, stock.TrackingAdjustment,
			stock.QuantityDeltas(old.String(), now.String()))
		if err != nil {
			return err
		}
		entry.WithActor(actor.UserID).WithNotes(cmd.Reason)
		if err := repos.Trackings().Append(ctx, entry); err != nil {
			return err
		}

		deleted := false
		if item.DeleteOnDeplete && now.LessThanOrEqual(decimal.Zero) {
			if err := repos.Items().Delete(ctx, item.ID); err != nil {
				return err
			}
			deleted = true
		}

		result = &AdjustResult{ItemID: item.ID, OldQuantity: old, NewQuantity: now, Deleted: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer moves quantity to another holding location. The destination item
// is found by inventory and location and created on first use; both sides
// adjust in one transaction with paired tracking entries. A command without
// a quantity relocates the whole item instead.
func (s *LedgerService) Transfer(ctx context.Context, actor identity.Actor, cmd TransferCommand) (*ItemResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockTransfer); err != nil {
		return nil, err
	}
	if cmd.Quantity.IsNegative() {
		return nil, shared.NewValidationError("transferred quantity cannot be negative")
	}
	if cmd.Quantity.IsZero() {
		return s.relocate(ctx, actor, cmd)
	}

	var result *ItemResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.Items().FindByIDForTenant(ctx, actor.TenantID, cmd.ItemID)
		if err != nil {
			return err
		}
		target, err := repos.Locations().FindByIDForTenant(ctx, actor.TenantID, cmd.LocationID)
		if err != nil {
			return err
		}
		if !target.CanHoldStock() {
			return shared.NewValidationError("structural location " + target.Code + " cannot hold stock")
		}
		if target.ID == source.LocationID {
			return shared.NewValidationError("item is already held at location " + target.Code)
		}

		sourceOld, sourceNow, err := repos.Items().AdjustQuantity(ctx, actor.TenantID, source.ID, cmd.Quantity.Neg(), false)
		if err != nil {
			return err
		}
		sourceEntry, err := stock.NewTracking(actor.TenantID, source.ID, stock.TrackingLocationChange,
			stock.QuantityDeltas(sourceOld.String(), sourceNow.String()))
		if err != nil {
			return err
		}
		sourceEntry.WithActor(actor.UserID).WithNotes("transfer to " + target.Code)
		if err := repos.Trackings().Append(ctx, sourceEntry); err != nil {
			return err
		}

		dest, err := repos.Items().FindByInventoryAndLocation(ctx, actor.TenantID, source.InventoryID, target.ID)
		switch {
		case err == nil:
			destOld, destNow, err := repos.Items().AdjustQuantity(ctx, actor.TenantID, dest.ID, cmd.Quantity, false)
			if err != nil {
				return err
			}
			destEntry, err := stock.NewTracking(actor.TenantID, dest.ID, stock.TrackingLocationChange,
				stock.QuantityDeltas(destOld.String(), destNow.String()))
			if err != nil {
				return err
			}
			destEntry.WithActor(actor.UserID).WithNotes(cmd.Notes)
			if err := repos.Trackings().Append(ctx, destEntry); err != nil {
				return err
			}
			dest.Quantity = destNow
			r := NewItemResult(dest)
			result = &r
		case errors.Is(err, shared.ErrNotFound):
			inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, source.InventoryID)
			if err != nil {
				return err
			}
			gen := sequence.NewGenerator(repos.Sequences())
			sku, err := gen.NextSKU(ctx, actor.TenantID, inv.ID, inv.InventoryType, inv.Category)
			if err != nil {
				return err
			}
			created, err := stock.NewItem(actor.TenantID, source.InventoryID, target.ID, sku, source.Name, cmd.Quantity)
			if err != nil {
				return err
			}
			created.SetCreatedBy(actor.UserID)
			created.BatchNumber = source.BatchNumber
			created.ExpiryDate = source.ExpiryDate
			created.PurchasePrice = source.PurchasePrice
			created.PurchaseOrderID = source.PurchaseOrderID
			if err := repos.Items().Save(ctx, created); err != nil {
				return err
			}
			destEntry, err := stock.NewTracking(actor.TenantID, created.ID, stock.TrackingLocationChange,
				stock.QuantityDeltas("0", created.Quantity.String()))
			if err != nil {
				return err
			}
			destEntry.WithActor(actor.UserID).WithNotes(cmd.Notes)
			if err := repos.Trackings().Append(ctx, destEntry); err != nil {
				return err
			}
			r := NewItemResult(created)
			result = &r
		default:
			return err
		}

		if source.DeleteOnDeplete && sourceNow.LessThanOrEqual(decimal.Zero) {
			if err := repos.Items().Delete(ctx, source.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// relocate moves the whole item to the target location
func (s *LedgerService) relocate(ctx context.Context, actor identity.Actor, cmd TransferCommand) (*ItemResult, error) {
	var result *ItemResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForTenant(ctx, actor.TenantID, cmd.ItemID)
		if err != nil {
			return err
		}
		target, err := repos.Locations().FindByIDForTenant(ctx, actor.TenantID, cmd.LocationID)
		if err != nil {
			return err
		}

		from := item.LocationID
		if err := item.MoveTo(target); err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		entry, err := stock.NewTracking(actor.TenantID, item.ID, stock.TrackingLocationChange,
			stock.LocationDeltas(from, target.ID))
		if err != nil {
			return err
		}
		entry.WithActor(actor.UserID).WithNotes(cmd.Notes)
		if err := repos.Trackings().Append(ctx, entry); err != nil {
			return err
		}

		r := NewItemResult(item)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reserve earmarks quantity for a sales order by moving it out of the
// on-hand pool into the item's reserved balance. Reservations never drive
// stock negative.
func (s *LedgerService) Reserve(ctx context.Context, actor identity.Actor, cmd ReserveCommand) (*AdjustResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockAdjust); err != nil {
		return nil, err
	}
	if cmd.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("reserved quantity must be positive")
	}
	return s.bookMovement(ctx, actor, cmd.ItemID, cmd.Quantity.Neg(), stock.TrackingReserved, func(item *stock.Item) error {
		item.LinkSalesOrder(cmd.SalesOrderID)
		item.Reserve(cmd.Quantity)
		return nil
	})
}

// Release hands previously reserved quantity back to the on-hand pool.
// Releasing more than the item's reserved balance is rejected.
func (s *LedgerService) Release(ctx context.Context, actor identity.Actor, cmd ReserveCommand) (*AdjustResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockAdjust); err != nil {
		return nil, err
	}
	if cmd.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("released quantity must be positive")
	}
	return s.bookMovement(ctx, actor, cmd.ItemID, cmd.Quantity, stock.TrackingReleased, func(item *stock.Item) error {
		return item.Release(cmd.Quantity)
	})
}

// bookMovement applies a delta with its paired tracking entry, never
// allowing negative stock regardless of tenant policy. The mutate hook runs
// before the adjustment so its checks can veto the movement.
func (s *LedgerService) bookMovement(ctx context.Context, actor identity.Actor, itemID uuid.UUID, delta decimal.Decimal, trackingType stock.TrackingType, mutate func(*stock.Item) error) (*AdjustResult, error) {
	var result *AdjustResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForTenant(ctx, actor.TenantID, itemID)
		if err != nil {
			return err
		}

		if mutate != nil {
			if err := mutate(item); err != nil {
				return err
			}
		}

		old, now, err := repos.Items().AdjustQuantity(ctx, actor.TenantID, item.ID, delta, false)
		if err != nil {
			return err
		}
		item.Quantity = now
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		entry, err := stock.NewTracking(actor.TenantID, item.ID, trackingType,
			stock.QuantityDeltas(old.String(), now.String()))
		if err != nil {
			return err
		}
		entry.WithActor(actor.UserID)
		if err := repos.Trackings().Append(ctx, entry); err != nil {
			return err
		}

		result = &AdjustResult{ItemID: item.ID, OldQuantity: old, NewQuantity: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ChangeStatus moves an item to a new condition status with its audit entry
func (s *LedgerService) ChangeStatus(ctx context.Context, actor identity.Actor, cmd ChangeStatusCommand) (*ItemResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockAdjust); err != nil {
		return nil, err
	}

	var result *ItemResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.Items().FindByIDForTenant(ctx, actor.TenantID, cmd.ItemID)
		if err != nil {
			return err
		}

		from, err := item.ChangeStatus(cmd.Status)
		if err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, item); err != nil {
			return err
		}

		trackingType := stock.TrackingStatusChange
		if cmd.Status == stock.StatusQuarantined {
			trackingType = stock.TrackingQuarantined
		}
		entry, err := stock.NewTracking(actor.TenantID, item.ID, trackingType,
			stock.StatusDeltas(from, cmd.Status))
		if err != nil {
			return err
		}
		entry.WithActor(actor.UserID).WithNotes(cmd.Notes)
		if err := repos.Trackings().Append(ctx, entry); err != nil {
			return err
		}

		r := NewItemResult(item)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Split carves quantity off an item into a child item at another location.
// The child gets its own SKU and records lineage through its parent ID.
func (s *LedgerService) Split(ctx context.Context, actor identity.Actor, cmd SplitCommand) (*ItemResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockAdjust); err != nil {
		return nil, err
	}

	var result *ItemResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		parent, err := repos.Items().FindByIDForTenant(ctx, actor.TenantID, cmd.ItemID)
		if err != nil {
			return err
		}
		target, err := repos.Locations().FindByIDForTenant(ctx, actor.TenantID, cmd.LocationID)
		if err != nil {
			return err
		}
		if !target.CanHoldStock() {
			return shared.NewValidationError("structural location " + target.Code + " cannot hold stock")
		}
		inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, parent.InventoryID)
		if err != nil {
			return err
		}

		gen := sequence.NewGenerator(repos.Sequences())
		childSKU, err := gen.NextSKU(ctx, actor.TenantID, inv.ID, inv.InventoryType, inv.Category)
		if err != nil {
			return err
		}

		child, err := parent.Split(childSKU, cmd.Quantity, target.ID)
		if err != nil {
			return err
		}
		child.SetCreatedBy(actor.UserID)

		parentOld, parentNow, err := repos.Items().AdjustQuantity(ctx, actor.TenantID, parent.ID, cmd.Quantity.Neg(), false)
		if err != nil {
			return err
		}
		if err := repos.Items().Save(ctx, child); err != nil {
			return err
		}

		parentEntry, err := stock.NewTracking(actor.TenantID, parent.ID, stock.TrackingAdjustment,
			stock.QuantityDeltas(parentOld.String(), parentNow.String()))
		if err != nil {
			return err
		}
		parentEntry.WithActor(actor.UserID).WithNotes("split into " + childSKU)
		if err := repos.Trackings().Append(ctx, parentEntry); err != nil {
			return err
		}

		childEntry, err := stock.NewTracking(actor.TenantID, child.ID, stock.TrackingSplitChild,
			stock.QuantityDeltas("0", child.Quantity.String()))
		if err != nil {
			return err
		}
		childEntry.WithActor(actor.UserID).WithNotes(cmd.Notes)
		if err := repos.Trackings().Append(ctx, childEntry); err != nil {
			return err
		}

		r := NewItemResult(child)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateLocation registers a new stock location with a minted code
func (s *LedgerService) CreateLocation(ctx context.Context, actor identity.Actor, cmd CreateLocationCommand) (*LocationResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermLocationEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	var result *LocationResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		gen := sequence.NewGenerator(repos.Sequences())
		code, err := gen.NextLocationCode(ctx, actor.TenantID, cmd.LocationType)
		if err != nil {
			return err
		}

		loc, err := stock.NewLocation(actor.TenantID, code, cmd.Name, cmd.LocationType)
		if err != nil {
			return err
		}
		loc.SetCreatedBy(actor.UserID)
		loc.External = cmd.External
		loc.Describe(cmd.Description)
		if cmd.Structural {
			loc.MarkStructural()
		}
		if cmd.ParentID != nil {
			parent, err := repos.Locations().FindByIDForTenant(ctx, actor.TenantID, *cmd.ParentID)
			if err != nil {
				return err
			}
			if err := loc.SetParent(parent); err != nil {
				return err
			}
		}
		if err := repos.Locations().Save(ctx, loc); err != nil {
			return err
		}

		r := NewLocationResult(loc)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePolicy sets the tenant's stock behavior flags
func (s *LedgerService) UpdatePolicy(ctx context.Context, actor identity.Actor, allowNegative bool, expiryWarningDays int) error {
	if err := s.checker.Allow(ctx, actor, identity.PermLocationEdit); err != nil {
		return err
	}
	if expiryWarningDays < 0 {
		return shared.NewValidationError("expiry warning days cannot be negative")
	}
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		policy, err := repos.Policies().FindForTenant(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		policy.AllowNegativeStock = allowNegative
		policy.ExpiryWarningDays = expiryWarningDays
		policy.UpdatedAt = time.Now()
		return repos.Policies().Save(ctx, policy)
	})
}

// GetItem loads one stock item
func (s *LedgerService) GetItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) (*ItemResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	item, err := s.items.FindByIDForTenant(ctx, actor.TenantID, itemID)
	if err != nil {
		return nil, err
	}
	r := NewItemResult(item)
	return &r, nil
}

// ListItems pages through the tenant's stock items
func (s *LedgerService) ListItems(ctx context.Context, actor identity.Actor, filter shared.Filter) (*shared.Paginated[ItemResult], error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	items, err := s.items.FindAllForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.items.CountForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	results := make([]ItemResult, 0, len(items))
	for idx := range items {
		results = append(results, NewItemResult(&items[idx]))
	}
	page := shared.NewPaginated(results, total, filter.Page, filter.PageSize)
	return &page, nil
}

// History pages through an item's ledger entries, newest first
func (s *LedgerService) History(ctx context.Context, actor identity.Actor, itemID uuid.UUID, filter shared.Filter) (*shared.Paginated[TrackingResult], error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	entries, err := s.trackings.FindByItem(ctx, actor.TenantID, itemID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.trackings.CountByItem(ctx, actor.TenantID, itemID)
	if err != nil {
		return nil, err
	}
	results := make([]TrackingResult, 0, len(entries))
	for idx := range entries {
		results = append(results, NewTrackingResult(&entries[idx]))
	}
	page := shared.NewPaginated(results, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetLocation loads one location
func (s *LedgerService) GetLocation(ctx context.Context, actor identity.Actor, locationID uuid.UUID) (*LocationResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	loc, err := s.locations.FindByIDForTenant(ctx, actor.TenantID, locationID)
	if err != nil {
		return nil, err
	}
	r := NewLocationResult(loc)
	return &r, nil
}

// ListLocations pages through the tenant's locations
func (s *LedgerService) ListLocations(ctx context.Context, actor identity.Actor, filter shared.Filter) (*shared.Paginated[LocationResult], error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	locations, err := s.locations.FindAllForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.locations.CountForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	results := make([]LocationResult, 0, len(locations))
	for idx := range locations {
		results = append(results, NewLocationResult(&locations[idx]))
	}
	page := shared.NewPaginated(results, total, filter.Page, filter.PageSize)
	return &page, nil
}
