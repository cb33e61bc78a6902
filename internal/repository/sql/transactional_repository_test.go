package sql_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
	"github.com/iyhunko/inventory-service/internal/repository/sql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalRepository_WithinTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	txRepo := sql.NewTransactionalRepository(db)
	ctx := context.Background()

	t.Run("repositories share the transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := txRepo.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
			productRepo, ok := products.(*sql.ProductRepository)
			require.True(t, ok)
			eventRepo, ok := events.(*sql.EventRepository)
			require.True(t, ok)

			productTx := sql.GetTxFromProductRepo(productRepo)
			assert.NotNil(t, productTx)
			assert.Same(t, productTx, sql.GetTxFromEventRepo(eventRepo))
			return nil
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("product and event are committed together", func(t *testing.T) {
		product := model.NewProduct("Test Product", "Test Description", decimal.RequireFromString("99.99"), 0)
		event := &model.Event{
			EventType: model.EventTypeProductCreated,
			EventData: json.RawMessage(`{"action":"created"}`),
		}

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO products").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), product.Name, product.Description, product.Price, 0, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), event.EventType, string(event.EventData), model.EventStatusPending, sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := txRepo.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
			if err := products.Create(ctx, product); err != nil {
				return err
			}
			return events.Create(ctx, event)
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on event creation failure", func(t *testing.T) {
		productID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectPrepare("DELETE FROM products WHERE id").
			ExpectExec().
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WillReturnError(sqlmock.ErrCancelled)
		mock.ExpectRollback()

		err := txRepo.WithinTransaction(ctx, func(products repository.ProductRepository, events repository.EventRepository) error {
			if err := products.DeleteByID(ctx, productID); err != nil {
				return err
			}
			return events.Create(ctx, &model.Event{EventType: model.EventTypeProductDeleted, EventData: json.RawMessage(`{}`)})
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, sqlmock.ErrCancelled))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback error is returned after rollback", func(t *testing.T) {
		expectedErr := errors.New("rule violated")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := txRepo.WithinTransaction(ctx, func(repository.ProductRepository, repository.EventRepository) error {
			return expectedErr
		})

		assert.Equal(t, expectedErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err := txRepo.WithinTransaction(ctx, func(repository.ProductRepository, repository.EventRepository) error {
			called = true
			return nil
		})

		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
