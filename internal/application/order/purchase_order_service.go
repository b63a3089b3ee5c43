package order

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/catalog"
	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/stock"
)

// PurchaseOrderService drives the procurement lifecycle. Every mutation
// runs in one transaction; domain events publish only after the
// transaction commits.
type PurchaseOrderService struct {
	scope     TransactionScope
	orders    order.PurchaseOrderRepository
	suppliers catalog.Lookup
	notifier  Notifier
	events    shared.EventPublisher
	checker   identity.Checker
	logger    *zap.Logger
	validate  *validator.Validate
}

// NewPurchaseOrderService creates the purchase order service
func NewPurchaseOrderService(
	scope TransactionScope,
	orders order.PurchaseOrderRepository,
	suppliers catalog.Lookup,
	notifier Notifier,
	events shared.EventPublisher,
	checker identity.Checker,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		scope:     scope,
		orders:    orders,
		suppliers: suppliers,
		notifier:  notifier,
		events:    events,
		checker:   checker,
		logger:    logger,
		validate:  validator.New(),
	}
}

// Create opens a draft order with a reference minted in the same
// transaction that persists it
func (s *PurchaseOrderService) Create(ctx context.Context, actor identity.Actor, cmd CreateCommand) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermOrderCreate); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	supplier, err := s.suppliers.Supplier(ctx, actor.TenantID, cmd.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.Active {
		return nil, shared.NewValidationError("supplier " + supplier.Name + " is not active")
	}

	var result *Result
	var pending []shared.DomainEvent
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		gen := sequence.NewGenerator(repos.Sequences())
		reference, err := gen.NextOrderReference(ctx, actor.TenantID, sequence.PurchaseOrderPrefix)
		if err != nil {
			return err
		}

		po, err := order.NewPurchaseOrder(actor.TenantID, cmd.SupplierID, reference)
		if err != nil {
			return err
		}
		po.SetCreatedBy(actor.UserID)
		po.SupplierReference = cmd.SupplierReference
		po.Notes = cmd.Notes
		if cmd.DestinationID != nil {
			po.SetDestination(*cmd.DestinationID)
		}
		if cmd.ExpectedDeliveryDate != nil {
			po.SetExpectedDelivery(*cmd.ExpectedDeliveryDate)
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}

		r := NewResult(po)
		result = &r
		pending = drainEvents(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(pending...)
	s.logger.Info("purchase order created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("reference", result.Reference))
	return result, nil
}

// Submit queues a draft order for approval
func (s *PurchaseOrderService) Submit(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*Result, error) {
	return s.mutate(ctx, actor, identity.PermOrderCreate, orderID, func(po *order.PurchaseOrder) error {
		return po.Submit()
	})
}

// Approve records sign-off on a pending order
func (s *PurchaseOrderService) Approve(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*Result, error) {
	return s.mutate(ctx, actor, identity.PermOrderApprove, orderID, func(po *order.PurchaseOrder) error {
		return po.Approve(actor.UserID)
	})
}

// Issue sends an approved order to the supplier. The supplier notification
// goes out after the transition commits and never fails the request.
func (s *PurchaseOrderService) Issue(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*Result, error) {
	result, err := s.mutate(ctx, actor, identity.PermOrderIssue, orderID, func(po *order.PurchaseOrder) error {
		return po.Issue(actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	go s.notifier.NotifySupplier(context.WithoutCancel(ctx), SupplierNotification{
		TenantID:   actor.TenantID,
		SupplierID: result.SupplierID,
		Reference:  result.Reference,
		Message:    "purchase order " + result.Reference + " has been issued",
	})
	return result, nil
}

// Cancel aborts the order from any non-terminal state
func (s *PurchaseOrderService) Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*Result, error) {
	return s.mutate(ctx, actor, identity.PermOrderCancel, orderID, func(po *order.PurchaseOrder) error {
		return po.Cancel(actor.UserID, reason)
	})
}

// AddLine appends a line to a pending order
func (s *PurchaseOrderService) AddLine(ctx context.Context, actor identity.Actor, cmd LineCommand) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermOrderCreate); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	var result *Result
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, cmd.OrderID)
		if err != nil {
			return err
		}
		inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, cmd.InventoryID)
		if err != nil {
			return err
		}
		if !inv.Active {
			return shared.NewValidationError("inventory " + inv.Name + " is not active")
		}

		description := cmd.Description
		if description == "" {
			description = inv.Name
		}
		if _, err := po.AddLineItem(inv.ID, description, cmd.Quantity, cmd.UnitPrice, cmd.DiscountRate, cmd.TaxRate); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}

		r := NewResult(po)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLine reprices a line of an editable order
func (s *PurchaseOrderService) UpdateLine(ctx context.Context, actor identity.Actor, cmd LineCommand) (*Result, error) {
	return s.mutate(ctx, actor, identity.PermOrderCreate, cmd.OrderID, func(po *order.PurchaseOrder) error {
		return po.UpdateLineItem(cmd.LineItemID, cmd.Quantity, cmd.UnitPrice, cmd.DiscountRate, cmd.TaxRate)
	})
}

// RemoveLine deletes a line from an editable order
func (s *PurchaseOrderService) RemoveLine(ctx context.Context, actor identity.Actor, orderID, lineItemID uuid.UUID) (*Result, error) {
	return s.mutate(ctx, actor, identity.PermOrderCreate, orderID, func(po *order.PurchaseOrder) error {
		return po.RemoveLineItem(lineItemID)
	})
}

// Receive books a batch of arrived goods. For every tuple it updates the
// line's receipt progress, adds the quantity to the line's stock item at
// the named location (created on the first delivery) and appends its
// tracking entry; the whole batch commits or rolls back as one transaction.
// Any successful batch flips an issued order to received, even when line
// quantities remain outstanding.
func (s *PurchaseOrderService) Receive(ctx context.Context, actor identity.Actor, cmd ReceiveCommand) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermOrderReceive); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	var result *Result
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, cmd.OrderID)
		if err != nil {
			return err
		}
		gen := sequence.NewGenerator(repos.Sequences())

		for _, receipt := range cmd.Receipts {
			if err := po.ReceiveLineItem(receipt.LineItemID, receipt.Quantity); err != nil {
				return err
			}

			loc, err := repos.Locations().FindByIDForTenant(ctx, actor.TenantID, receipt.LocationID)
			if err != nil {
				return err
			}
			if !loc.CanHoldStock() {
				return shared.NewValidationError("structural location " + loc.Code + " cannot hold stock")
			}

			var line *order.LineItem
			for idx := range po.LineItems {
				if po.LineItems[idx].ID == receipt.LineItemID {
					line = &po.LineItems[idx]
					break
				}
			}
			inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, line.InventoryID)
			if err != nil {
				return err
			}

			item, err := repos.Items().FindReceiptTarget(ctx, actor.TenantID, po.ID, inv.ID, loc.ID)
			switch {
			case err == nil:
				old, now, err := repos.Items().AdjustQuantity(ctx, actor.TenantID, item.ID, receipt.Quantity, false)
				if err != nil {
					return err
				}
				entry, err := stock.NewTracking(actor.TenantID, item.ID, stock.TrackingReceived,
					stock.QuantityDeltas(old.String(), now.String()))
				if err != nil {
					return err
				}
				entry.WithActor(actor.UserID).WithNotes("received against " + po.Reference)
				if err := repos.Trackings().Append(ctx, entry); err != nil {
					return err
				}
			case errors.Is(err, shared.ErrNotFound):
				sku, err := gen.NextSKU(ctx, actor.TenantID, inv.ID, inv.InventoryType, inv.Category)
				if err != nil {
					return err
				}
				item, err := stock.NewItem(actor.TenantID, inv.ID, loc.ID, sku, inv.Name, receipt.Quantity)
				if err != nil {
					return err
				}
				item.SetCreatedBy(actor.UserID)
				item.LinkPurchaseOrder(po.ID)
				price := line.UnitPrice
				item.PurchasePrice = &price
				if err := repos.Items().Save(ctx, item); err != nil {
					return err
				}

				entry, err := stock.NewTracking(actor.TenantID, item.ID, stock.TrackingReceived,
					stock.QuantityDeltas("0", receipt.Quantity.String()))
				if err != nil {
					return err
				}
				entry.WithActor(actor.UserID).WithNotes("received against " + po.Reference)
				if err := repos.Trackings().Append(ctx, entry); err != nil {
					return err
				}
			default:
				return err
			}
		}

		if po.Status == order.StatusIssued {
			if err := po.MarkReceived(actor.UserID); err != nil {
				return err
			}
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}

		r := NewResult(po)
		result = &r
		pending = drainEvents(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(pending...)
	return result, nil
}

// Complete closes out a received order and writes the purchase movement
// audit records in the same transaction as the status flip
func (s *PurchaseOrderService) Complete(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermOrderComplete); err != nil {
		return nil, err
	}

	var result *Result
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if err := po.Complete(actor.UserID); err != nil {
			return err
		}

		movements := make([]*inventory.Transaction, 0, len(po.LineItems))
		for idx := range po.LineItems {
			line := &po.LineItems[idx]
			// lines untouched by receiving book their ordered quantity
			quantity := line.QuantityReceived
			if !quantity.IsPositive() {
				quantity = line.Quantity
			}
			txn, err := inventory.NewTransaction(actor.TenantID, line.InventoryID,
				inventory.TransactionPurchase, quantity)
			if err != nil {
				return err
			}
			txn.WithReference("purchase_order", po.ID).
				WithUnitPrice(line.UnitPrice).
				WithActor(actor.UserID)
			movements = append(movements, txn)
		}
		if err := repos.InventoryTransactions().AppendBatch(ctx, movements); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}

		r := NewResult(po)
		result = &r
		pending = drainEvents(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(pending...)
	return result, nil
}

// Get loads one order with its lines
func (s *PurchaseOrderService) Get(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	po, err := s.orders.FindByIDForTenant(ctx, actor.TenantID, orderID)
	if err != nil {
		return nil, err
	}
	r := NewResult(po)
	return &r, nil
}

// List pages through the tenant's orders
func (s *PurchaseOrderService) List(ctx context.Context, actor identity.Actor, filter shared.Filter) (*shared.Paginated[Result], error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	pos, err := s.orders.FindAllForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.CountForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(pos))
	for idx := range pos {
		results = append(results, NewResult(&pos[idx]))
	}
	page := shared.NewPaginated(results, total, filter.Page, filter.PageSize)
	return &page, nil
}

// mutate runs a simple load, change, save operation in one transaction
func (s *PurchaseOrderService) mutate(ctx context.Context, actor identity.Actor, permission string, orderID uuid.UUID, fn func(po *order.PurchaseOrder) error) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, permission); err != nil {
		return nil, err
	}

	var result *Result
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if err := fn(po); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
			return err
		}

		r := NewResult(po)
		result = &r
		pending = drainEvents(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(pending...)
	return result, nil
}

// drainEvents takes the aggregate's pending events for publication after
// the surrounding transaction commits
func drainEvents(po *order.PurchaseOrder) []shared.DomainEvent {
	events := po.GetDomainEvents()
	po.ClearDomainEvents()
	return events
}
