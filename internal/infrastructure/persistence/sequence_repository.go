package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
)

// GormSequenceRepository mints sequence values against the counter table.
// Next locks the (tenant, namespace) row with SELECT ... FOR UPDATE and
// increments under the lock, so concurrent minters serialize on the row and
// duplicates cannot occur. It must run inside the caller's transaction: the
// minted value commits or rolls back with the entity carrying it.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a sequence repository over the given
// (transaction-scoped) database handle
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next returns the next value in the (tenant, namespace) series
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, ns sequence.Namespace) (int64, error) {
	value, err := r.increment(ctx, tenantID, ns)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, translateLockError(err)
	}

	// First mint in this series. The insert runs in a nested transaction
	// (a savepoint when a transaction surrounds us) so losing the race on
	// the unique index rolls back only the insert, not the caller's
	// transaction; the loser falls through to the locked increment.
	counter := sequence.NewCounter(tenantID, ns)
	insertErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(counter).Error
	})
	if insertErr != nil && !isUniqueViolation(insertErr) {
		return 0, translateLockError(insertErr)
	}

	value, err = r.increment(ctx, tenantID, ns)
	if err != nil {
		return 0, translateLockError(err)
	}
	return value, nil
}

// increment locks the counter row and bumps it, returning the new value
func (r *GormSequenceRepository) increment(ctx context.Context, tenantID uuid.UUID, ns sequence.Namespace) (int64, error) {
	var counter sequence.Counter
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND namespace = ?", tenantID, string(ns)).
		First(&counter).Error; err != nil {
		return 0, err
	}

	next := counter.Value + 1
	if err := r.db.WithContext(ctx).
		Model(&sequence.Counter{}).
		Where("id = ?", counter.ID).
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// isUniqueViolation matches postgres (23505) and sqlite unique errors
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// translateLockError maps database serialization and deadlock failures to
// the retryable concurrency conflict code
func translateLockError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "40001") || // serialization_failure
		strings.Contains(msg, "40P01") || // deadlock_detected
		strings.Contains(msg, "55P03") || // lock_not_available
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "deadlock") {
		return shared.ErrConcurrencyConflict
	}
	return err
}

var _ sequence.Repository = (*GormSequenceRepository)(nil)
