package order

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/order"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
)

// ReturnOrderService drives supplier returns against received or completed
// purchase orders. Returns track their own pickup lifecycle and never touch
// stock quantities.
type ReturnOrderService struct {
	scope    TransactionScope
	returns  order.ReturnOrderRepository
	events   shared.EventPublisher
	checker  identity.Checker
	logger   *zap.Logger
	validate *validator.Validate
}

// NewReturnOrderService creates the return order service
func NewReturnOrderService(
	scope TransactionScope,
	returns order.ReturnOrderRepository,
	events shared.EventPublisher,
	checker identity.Checker,
	logger *zap.Logger,
) *ReturnOrderService {
	return &ReturnOrderService{
		scope:    scope,
		returns:  returns,
		events:   events,
		checker:  checker,
		logger:   logger,
		validate: validator.New(),
	}
}

// Create opens a return against a received or completed purchase order.
// Each line's
// quantity is checked against what remains returnable: the original
// quantity minus everything booked on earlier non-cancelled returns, read
// inside the same transaction.
func (s *ReturnOrderService) Create(ctx context.Context, actor identity.Actor, cmd CreateReturnCommand) (*ReturnResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermReturnManage); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	var result *ReturnResult
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		po, err := repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, cmd.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po.Status != order.StatusReceived && po.Status != order.StatusCompleted && po.Status != order.StatusReturned {
			return shared.NewInvalidTransition("purchase order", string(po.Status), "return opened")
		}

		gen := sequence.NewGenerator(repos.Sequences())
		reference, err := gen.NextOrderReference(ctx, actor.TenantID, sequence.ReturnOrderPrefix)
		if err != nil {
			return err
		}

		ro, err := order.NewReturnOrder(actor.TenantID, po.ID, reference, cmd.Reason)
		if err != nil {
			return err
		}
		ro.SetCreatedBy(actor.UserID)
		ro.Notes = cmd.Notes

		for _, line := range cmd.Lines {
			var original *order.LineItem
			for idx := range po.LineItems {
				if po.LineItems[idx].ID == line.LineItemID {
					original = &po.LineItems[idx]
					break
				}
			}
			if original == nil {
				return shared.ErrNotFound
			}

			alreadyReturned, err := repos.ReturnOrders().SumReturnedForLine(ctx, actor.TenantID, original.ID)
			if err != nil {
				return err
			}
			remaining := original.Quantity.Sub(alreadyReturned).Sub(ro.QuantityForLine(original.ID))
			if err := ro.AddLine(original.ID, original.InventoryID, line.Quantity, remaining, line.Reason); err != nil {
				return err
			}
		}

		if err := repos.ReturnOrders().Save(ctx, ro); err != nil {
			return err
		}

		r := NewReturnResult(ro)
		result = &r
		pending = ro.GetDomainEvents()
		ro.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(pending...)
	s.logger.Info("return order created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("reference", result.Reference))
	return result, nil
}

// SchedulePickup moves a pending return to awaiting pickup
func (s *ReturnOrderService) SchedulePickup(ctx context.Context, actor identity.Actor, returnID uuid.UUID, at time.Time) (*ReturnResult, error) {
	return s.mutate(ctx, actor, returnID, func(ro *order.ReturnOrder, _ TransactionalRepositories) error {
		return ro.SchedulePickup(at)
	})
}

// MarkInTransit records carrier collection
func (s *ReturnOrderService) MarkInTransit(ctx context.Context, actor identity.Actor, returnID uuid.UUID) (*ReturnResult, error) {
	return s.mutate(ctx, actor, returnID, func(ro *order.ReturnOrder, _ TransactionalRepositories) error {
		return ro.MarkInTransit()
	})
}

// Complete closes the return once the supplier accepts the goods. The
// purchase order flips to returned and the return movement audit records
// are written in the same transaction.
func (s *ReturnOrderService) Complete(ctx context.Context, actor identity.Actor, returnID uuid.UUID) (*ReturnResult, error) {
	return s.mutate(ctx, actor, returnID, func(ro *order.ReturnOrder, repos TransactionalRepositories) error {
		if err := ro.Complete(); err != nil {
			return err
		}

		po, err := repos.PurchaseOrders().FindByIDForTenant(ctx, actor.TenantID, ro.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po.Status == order.StatusCompleted {
			if err := po.MarkReturned(); err != nil {
				return err
			}
			if err := repos.PurchaseOrders().Save(ctx, po); err != nil {
				return err
			}
		}

		movements := make([]*inventory.Transaction, 0, len(ro.LineItems))
		for idx := range ro.LineItems {
			line := &ro.LineItems[idx]
			txn, err := inventory.NewTransaction(actor.TenantID, line.InventoryID,
				inventory.TransactionReturn, line.QuantityReturned.Neg())
			if err != nil {
				return err
			}
			txn.WithReference("return_order", ro.ID).WithActor(actor.UserID)
			movements = append(movements, txn)
		}
		return repos.InventoryTransactions().AppendBatch(ctx, movements)
	})
}

// Cancel aborts the return from any non-terminal state
func (s *ReturnOrderService) Cancel(ctx context.Context, actor identity.Actor, returnID uuid.UUID) (*ReturnResult, error) {
	return s.mutate(ctx, actor, returnID, func(ro *order.ReturnOrder, _ TransactionalRepositories) error {
		return ro.Cancel()
	})
}

// Get loads one return with its lines
func (s *ReturnOrderService) Get(ctx context.Context, actor identity.Actor, returnID uuid.UUID) (*ReturnResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	ro, err := s.returns.FindByIDForTenant(ctx, actor.TenantID, returnID)
	if err != nil {
		return nil, err
	}
	r := NewReturnResult(ro)
	return &r, nil
}

// ListForOrder loads every return opened against a purchase order
func (s *ReturnOrderService) ListForOrder(ctx context.Context, actor identity.Actor, purchaseOrderID uuid.UUID) ([]ReturnResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermStockRead); err != nil {
		return nil, err
	}
	ros, err := s.returns.FindByPurchaseOrder(ctx, actor.TenantID, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	results := make([]ReturnResult, 0, len(ros))
	for idx := range ros {
		results = append(results, NewReturnResult(&ros[idx]))
	}
	return results, nil
}

// mutate runs a load, change, save operation in one transaction
func (s *ReturnOrderService) mutate(ctx context.Context, actor identity.Actor, returnID uuid.UUID, fn func(ro *order.ReturnOrder, repos TransactionalRepositories) error) (*ReturnResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermReturnManage); err != nil {
		return nil, err
	}

	var result *ReturnResult
	var pending []shared.DomainEvent
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ro, err := repos.ReturnOrders().FindByIDForTenant(ctx, actor.TenantID, returnID)
		if err != nil {
			return err
		}
		if err := fn(ro, repos); err != nil {
			return err
		}
		if err := repos.ReturnOrders().Save(ctx, ro); err != nil {
			return err
		}

		r := NewReturnResult(ro)
		result = &r
		pending = ro.GetDomainEvents()
		ro.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(pending...)
	return result, nil
}
