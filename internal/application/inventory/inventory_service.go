package inventory

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/inventra/backend/internal/application/identity"
	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
	"github.com/inventra/backend/internal/domain/shared/valueobject"
	"github.com/inventra/backend/internal/domain/stock"
)

// CreateCommand registers a new inventory definition
type CreateCommand struct {
	Name          string `validate:"required,max=200"`
	InventoryType string `validate:"required,max=100"`
	Category      string `validate:"required,max=100"`
	Description   string
	Unit          string `validate:"max=50"`
}

// UpdateCommand changes the descriptive fields of a definition
type UpdateCommand struct {
	InventoryID uuid.UUID `validate:"required"`
	Name        string    `validate:"required,max=200"`
	Description string
	Unit        string `validate:"max=50"`
}

// PolicyCommand installs new replenishment thresholds
type PolicyCommand struct {
	InventoryID       uuid.UUID `validate:"required"`
	MinimumStockLevel decimal.Decimal
	ReorderPoint      decimal.Decimal
	ReorderQuantity   decimal.Decimal
	SafetyStockLevel  decimal.Decimal
	Strategy          inventory.ReorderStrategy
}

// Result is the read model of an inventory definition
type Result struct {
	ID                uuid.UUID                 `json:"id"`
	Name              string                    `json:"name"`
	InventoryType     string                    `json:"inventory_type"`
	Category          string                    `json:"category"`
	ExternalSystemID  string                    `json:"external_system_id"`
	Description       string                    `json:"description,omitempty"`
	Unit              string                    `json:"unit"`
	MinimumStockLevel decimal.Decimal           `json:"minimum_stock_level"`
	ReorderPoint      decimal.Decimal           `json:"re_order_point"`
	ReorderQuantity   decimal.Decimal           `json:"re_order_quantity"`
	SafetyStockLevel  decimal.Decimal           `json:"safety_stock_level"`
	ReorderStrategy   inventory.ReorderStrategy `json:"reorder_strategy"`
	Active            bool                      `json:"active"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// NewResult maps a definition to its read model
func NewResult(inv *inventory.Inventory) Result {
	return Result{
		ID:                inv.ID,
		Name:              inv.Name,
		InventoryType:     inv.InventoryType,
		Category:          inv.Category,
		ExternalSystemID:  inv.ExternalSystemID,
		Description:       inv.Description,
		Unit:              inv.Unit,
		MinimumStockLevel: inv.MinimumStockLevel,
		ReorderPoint:      inv.ReorderPoint,
		ReorderQuantity:   inv.ReorderQuantity,
		SafetyStockLevel:  inv.SafetyStockLevel,
		ReorderStrategy:   inv.ReorderStrategy,
		Active:            inv.Active,
		CreatedAt:         inv.CreatedAt,
	}
}

// ReorderLine is one entry of the replenishment report
type ReorderLine struct {
	InventoryID       uuid.UUID       `json:"inventory_id"`
	Name              string          `json:"name"`
	OnHand            decimal.Decimal `json:"on_hand"`
	ReorderPoint      decimal.Decimal `json:"re_order_point"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	BelowSafetyStock  bool            `json:"below_safety_stock"`
}

// MovementResult is one entry of a definition's movement log. Value is the
// monetary worth of the movement at the recorded unit price.
type MovementResult struct {
	ID              uuid.UUID                 `json:"id"`
	TransactionType inventory.TransactionType `json:"transaction_type"`
	Quantity        decimal.Decimal           `json:"quantity"`
	UnitPrice       decimal.Decimal           `json:"unit_price"`
	Value           valueobject.Money         `json:"value"`
	ReferenceType   string                    `json:"reference_type,omitempty"`
	ReferenceID     *uuid.UUID                `json:"reference_id,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// NewMovementResult maps a movement record to its read model
func NewMovementResult(txn *inventory.Transaction) MovementResult {
	return MovementResult{
		ID:              txn.ID,
		TransactionType: txn.TransactionType,
		Quantity:        txn.Quantity,
		UnitPrice:       txn.UnitPrice,
		Value:           valueobject.NewMoneyUSD(txn.Quantity.Mul(txn.UnitPrice)).Round(2),
		ReferenceType:   txn.ReferenceType,
		ReferenceID:     txn.ReferenceID,
		Notes:           txn.Notes,
		CreatedAt:       txn.CreatedAt,
	}
}

// Service manages inventory definitions and their replenishment policy
type Service struct {
	scope        TransactionScope
	inventories  inventory.Repository
	items        stock.ItemRepository
	transactions inventory.TransactionRepository
	checker      identity.Checker
	logger       *zap.Logger
	validate     *validator.Validate
}

// NewService creates the inventory service
func NewService(
	scope TransactionScope,
	inventories inventory.Repository,
	items stock.ItemRepository,
	transactions inventory.TransactionRepository,
	checker identity.Checker,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:        scope,
		inventories:  inventories,
		items:        items,
		transactions: transactions,
		checker:      checker,
		logger:       logger,
		validate:     validator.New(),
	}
}

// Create registers a definition with a freshly minted external system ID
func (s *Service) Create(ctx context.Context, actor identity.Actor, cmd CreateCommand) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	var result *Result
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		gen := sequence.NewGenerator(repos.Sequences())
		externalID, err := gen.NextExternalSystemID(ctx, actor.TenantID, cmd.Category, cmd.InventoryType)
		if err != nil {
			return err
		}

		inv, err := inventory.NewInventory(actor.TenantID, cmd.Name, cmd.InventoryType, cmd.Category, externalID)
		if err != nil {
			return err
		}
		inv.SetCreatedBy(actor.UserID)
		inv.Description = cmd.Description
		if cmd.Unit != "" {
			inv.Unit = cmd.Unit
		}
		if err := repos.Inventories().Save(ctx, inv); err != nil {
			return err
		}

		r := NewResult(inv)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("inventory created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("external_system_id", result.ExternalSystemID))
	return result, nil
}

// Update changes the descriptive fields of a definition
func (s *Service) Update(ctx context.Context, actor identity.Actor, cmd UpdateCommand) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryEdit); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	var result *Result
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, cmd.InventoryID)
		if err != nil {
			return err
		}
		inv.Name = cmd.Name
		inv.Description = cmd.Description
		if cmd.Unit != "" {
			inv.Unit = cmd.Unit
		}
		inv.Touch()
		inv.IncrementVersion()
		if err := repos.Inventories().Save(ctx, inv); err != nil {
			return err
		}

		r := NewResult(inv)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyPolicy validates and installs replenishment thresholds
func (s *Service) ApplyPolicy(ctx context.Context, actor identity.Actor, cmd PolicyCommand) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryEdit); err != nil {
		return nil, err
	}

	var result *Result
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, cmd.InventoryID)
		if err != nil {
			return err
		}
		policy := inventory.ReorderPolicy{
			MinimumStockLevel: cmd.MinimumStockLevel,
			ReorderPoint:      cmd.ReorderPoint,
			ReorderQuantity:   cmd.ReorderQuantity,
			SafetyStockLevel:  cmd.SafetyStockLevel,
			Strategy:          cmd.Strategy,
		}
		if err := inv.ApplyReorderPolicy(policy); err != nil {
			return err
		}
		if err := repos.Inventories().Save(ctx, inv); err != nil {
			return err
		}

		r := NewResult(inv)
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetActive toggles whether the definition accepts new stock and order lines
func (s *Service) SetActive(ctx context.Context, actor identity.Actor, inventoryID uuid.UUID, active bool) error {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryEdit); err != nil {
		return err
	}
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Inventories().FindByIDForTenant(ctx, actor.TenantID, inventoryID)
		if err != nil {
			return err
		}
		if active {
			inv.Activate()
		} else {
			inv.Deactivate()
		}
		return repos.Inventories().Save(ctx, inv)
	})
}

// Get loads one definition
func (s *Service) Get(ctx context.Context, actor identity.Actor, inventoryID uuid.UUID) (*Result, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryRead); err != nil {
		return nil, err
	}
	inv, err := s.inventories.FindByIDForTenant(ctx, actor.TenantID, inventoryID)
	if err != nil {
		return nil, err
	}
	r := NewResult(inv)
	return &r, nil
}

// List pages through the tenant's definitions
func (s *Service) List(ctx context.Context, actor identity.Actor, filter shared.Filter) (*shared.Paginated[Result], error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryRead); err != nil {
		return nil, err
	}
	defs, err := s.inventories.FindAllForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.inventories.CountForTenant(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(defs))
	for idx := range defs {
		results = append(results, NewResult(&defs[idx]))
	}
	page := shared.NewPaginated(results, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ReorderReport lists active definitions whose on-hand stock has crossed
// the reorder point
func (s *Service) ReorderReport(ctx context.Context, actor identity.Actor) ([]ReorderLine, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryRead); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 500
	defs, err := s.inventories.FindActive(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, err
	}

	lines := make([]ReorderLine, 0)
	for idx := range defs {
		inv := &defs[idx]
		onHand, err := s.items.SumQuantityByInventory(ctx, actor.TenantID, inv.ID)
		if err != nil {
			return nil, err
		}
		if !inv.NeedsReorder(onHand) && !inv.BelowSafetyStock(onHand) {
			continue
		}
		lines = append(lines, ReorderLine{
			InventoryID:       inv.ID,
			Name:              inv.Name,
			OnHand:            onHand,
			ReorderPoint:      inv.ReorderPoint,
			SuggestedQuantity: inv.SuggestedReorderQuantity(onHand),
			BelowSafetyStock:  inv.BelowSafetyStock(onHand),
		})
	}
	return lines, nil
}

// Movements pages through a definition's movement audit records
func (s *Service) Movements(ctx context.Context, actor identity.Actor, inventoryID uuid.UUID, filter shared.Filter) ([]MovementResult, error) {
	if err := s.checker.Allow(ctx, actor, identity.PermInventoryRead); err != nil {
		return nil, err
	}
	txns, err := s.transactions.FindByInventory(ctx, actor.TenantID, inventoryID, filter)
	if err != nil {
		return nil, err
	}
	results := make([]MovementResult, 0, len(txns))
	for idx := range txns {
		results = append(results, NewMovementResult(&txns[idx]))
	}
	return results, nil
}
