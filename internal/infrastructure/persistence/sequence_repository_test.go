package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inventra/backend/internal/domain/sequence"
	"github.com/inventra/backend/internal/domain/shared"
)

// newMockSequenceRepository creates a GormSequenceRepository with a mocked SQL connection
func newMockSequenceRepository(t *testing.T) (*GormSequenceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSequenceRepository(gormDB), mock, mockDB
}

func counterRows(counterID, tenantID uuid.UUID, ns string, value int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "tenant_id", "namespace", "value", "created_at", "updated_at"}).
		AddRow(counterID, tenantID, ns, value, now, now)
}

func TestGormSequenceRepository_Next(t *testing.T) {
	t.Run("locks and increments an existing counter", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		counterID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "purchase-order", 1).
			WillReturnRows(counterRows(counterID, tenantID, "purchase-order", 41))

		mock.ExpectExec(`UPDATE "sequence_counters" SET "value"=value \+ 1 WHERE id = \$1`).
			WithArgs(counterID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		value, err := repo.Next(context.Background(), tenantID, sequence.NamespacePurchaseOrder)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates the counter on first mint", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		counterID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "return-order", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "sequence_counters"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "return-order", 1).
			WillReturnRows(counterRows(counterID, tenantID, "return-order", 0))

		mock.ExpectExec(`UPDATE "sequence_counters" SET "value"=value \+ 1 WHERE id = \$1`).
			WithArgs(counterID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		value, err := repo.Next(context.Background(), tenantID, sequence.NamespaceReturnOrder)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tolerates losing the first mint insert race", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		counterID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "inventory", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "sequence_counters"`).
			WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_sequence_counter_tenant_ns" (SQLSTATE 23505)`))
		mock.ExpectRollback()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "inventory", 1).
			WillReturnRows(counterRows(counterID, tenantID, "inventory", 1))

		mock.ExpectExec(`UPDATE "sequence_counters" SET "value"=value \+ 1 WHERE id = \$1`).
			WithArgs(counterID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		value, err := repo.Next(context.Background(), tenantID, sequence.NamespaceInventory)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), value)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("losing the insert race keeps the surrounding transaction alive", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		counterID := uuid.New()

		mock.ExpectBegin()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "purchase-order", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		// the insert runs under a savepoint; its failure must not poison
		// the outer transaction
		mock.ExpectExec(`SAVEPOINT sp.*`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "sequence_counters"`).
			WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_sequence_counter_tenant_ns" (SQLSTATE 23505)`))
		mock.ExpectExec(`ROLLBACK TO SAVEPOINT sp.*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "purchase-order", 1).
			WillReturnRows(counterRows(counterID, tenantID, "purchase-order", 1))

		mock.ExpectExec(`UPDATE "sequence_counters" SET "value"=value \+ 1 WHERE id = \$1`).
			WithArgs(counterID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		err := repo.db.Transaction(func(tx *gorm.DB) error {
			value, err := NewGormSequenceRepository(tx).Next(context.Background(), tenantID, sequence.NamespacePurchaseOrder)
			if err != nil {
				return err
			}
			assert.Equal(t, int64(2), value)
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps deadlocks to a concurrency conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "sequence_counters" WHERE tenant_id = \$1 AND namespace = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, "purchase-order", 1).
			WillReturnError(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"))

		_, err := repo.Next(context.Background(), tenantID, sequence.NamespacePurchaseOrder)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateLockError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"serialization failure", errors.New("could not serialize access due to concurrent update (SQLSTATE 40001)"), shared.ErrConcurrencyConflict},
		{"lock not available", errors.New("canceling statement due to lock timeout (SQLSTATE 55P03)"), shared.ErrConcurrencyConflict},
		{"unrelated error passes through", errors.New("connection refused"), errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateLockError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.want.Error(), got.Error())
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New("SQLSTATE 23505")))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: sequence_counters.tenant_id")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
