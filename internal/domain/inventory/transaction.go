package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventra/backend/internal/domain/shared"
)

// TransactionType classifies an inventory-level movement record
type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionSale       TransactionType = "sale"
	TransactionReturn     TransactionType = "return"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionTransfer   TransactionType = "transfer"
)

// IsValid checks if the transaction type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionPurchase, TransactionSale, TransactionReturn,
		TransactionAdjustment, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is an append-only audit record of inventory movements at the
// product-definition level, written in the same transaction as the document
// that caused it. It complements the per-item tracking ledger: tracking
// answers "what happened to this batch", Transaction answers "how much of
// this product moved and why".
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_inventory_txn_inv_time,priority:1"`
	TransactionType TransactionType `gorm:"type:varchar(20);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	ReferenceType   string          `gorm:"type:varchar(50)"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index"`
	Notes           string          `gorm:"type:text"`
	UserID          *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null;index:idx_inventory_txn_inv_time,priority:2"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "inventory_transactions"
}

// NewTransaction creates an inventory movement record
func NewTransaction(tenantID, inventoryID uuid.UUID, txnType TransactionType, quantity decimal.Decimal) (*Transaction, error) {
	if !txnType.IsValid() {
		return nil, shared.NewValidationError("invalid transaction type: " + string(txnType))
	}
	if quantity.IsZero() {
		return nil, shared.NewValidationError("transaction quantity cannot be zero")
	}
	return &Transaction{
		ID:              uuid.New(),
		TenantID:        tenantID,
		InventoryID:     inventoryID,
		TransactionType: txnType,
		Quantity:        quantity,
		CreatedAt:       time.Now(),
	}, nil
}

// WithReference links the record to the document that caused it
func (t *Transaction) WithReference(referenceType string, referenceID uuid.UUID) *Transaction {
	t.ReferenceType = referenceType
	t.ReferenceID = &referenceID
	return t
}

// WithUnitPrice records the per-unit price of the movement
func (t *Transaction) WithUnitPrice(price decimal.Decimal) *Transaction {
	t.UnitPrice = price
	return t
}

// WithActor records the user who caused the movement
func (t *Transaction) WithActor(userID uuid.UUID) *Transaction {
	t.UserID = &userID
	return t
}
