package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventra/backend/internal/domain/shared"
)

// Repository persists inventory definitions
type Repository interface {
	shared.TenantRepository[Inventory]
	FindByExternalSystemID(ctx context.Context, tenantID uuid.UUID, externalSystemID string) (*Inventory, error)
	FindByCategory(ctx context.Context, tenantID uuid.UUID, category string, filter shared.Filter) ([]Inventory, error)
	FindActive(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Inventory, error)
}

// TransactionRepository persists inventory movement records. Append-only;
// there is deliberately no Save or Delete.
type TransactionRepository interface {
	Append(ctx context.Context, txn *Transaction) error
	AppendBatch(ctx context.Context, txns []*Transaction) error
	FindByInventory(ctx context.Context, tenantID, inventoryID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	FindByReference(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) ([]Transaction, error)
}
