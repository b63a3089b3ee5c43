package inventory

import (
	"context"

	"github.com/inventra/backend/internal/domain/inventory"
	"github.com/inventra/backend/internal/domain/sequence"
)

// TransactionalRepositories exposes repositories bound to one database
// transaction, so a minted external system ID commits or rolls back with
// the definition it identifies
type TransactionalRepositories interface {
	Inventories() inventory.Repository
	Sequences() sequence.Repository
}

// TransactionScope runs a function inside a database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
