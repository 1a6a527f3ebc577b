package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
)

// fakeTx транзакция-заглушка, запросы в тестах не выполняются
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) Commit() error   { t.committed = true; return nil }
func (t *fakeTx) Rollback() error { t.rolledBack = true; return nil }

type fakeBeginner struct {
	begun []*fakeTx
}

func (b *fakeBeginner) BeginTx(_ context.Context, _ *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := &fakeTx{}
	b.begun = append(b.begun, tx)
	return tx, nil
}

var errExecQuery = errors.New("failed to execute query")

// serializationFailure ошибка в том виде, в каком её возвращают репозитории:
// sentinel слоя хранения поверх ошибки драйвера
func serializationFailure() error {
	return fmt.Errorf("%w: GetOverlappingForLot - execute query: %w",
		errExecQuery, &pq.Error{Code: "40001"})
}

func TestDoSerializable_CommitsOnSuccess(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		require.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	require.Len(t, beginner.begun, 1)
	assert.True(t, beginner.begun[0].committed)
}

func TestDoSerializable_RetriesStatementLevelConflict(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	// Конфликт 40001 возникает на SELECT ... FOR UPDATE, не на COMMIT:
	// ошибка приходит из fn обёрнутой репозиторием
	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return serializationFailure()
	})

	assert.Equal(t, maxRetries, attempts)
	assert.ErrorIs(t, err, ErrSerializationConflict)
	for _, tx := range beginner.begun {
		assert.True(t, tx.rolledBack)
	}
}

func TestDoSerializable_SucceedsAfterRetry(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return serializationFailure()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDoSerializable_RetriesDeadlock(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("%w: IncrementCodeUsage - execute update: %w",
			errExecQuery, &pq.Error{Code: "40P01"})
	})

	assert.Equal(t, maxRetries, attempts)
	assert.ErrorIs(t, err, ErrSerializationConflict)
}

func TestDoSerializable_DoesNotRetryOtherErrors(t *testing.T) {
	beginner := &fakeBeginner{}
	m := NewTransactionManager(beginner)

	errBusiness := errors.New("no capacity")
	attempts := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return errBusiness
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, errBusiness)
	assert.NotErrorIs(t, err, ErrSerializationConflict)
}
