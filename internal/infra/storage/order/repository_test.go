package order

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/dbmetrics"
	"github.com/waelosamahelmi/saroistavaloon/pkg/txmanager"
)

const orderID = "0b8e4f2a-9c1d-4a3b-8e7f-6d5c4b3a2910"

func newMockRepository(t *testing.T) (*Repository, *txmanager.Manager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), txmanager.NewTransactionManager(wrapped), mock
}

func orderRow() []driver.Value {
	created := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	return []driver.Value{
		orderID, "m-1", "Гайд", "user-1", "15.50", "pending",
		nil, nil, nil, nil, created, created,
	}
}

func TestGetByID_LocksRowOnlyInWriteTransaction(t *testing.T) {
	repo, txm, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT .+ FROM orders WHERE id = \$1 FOR UPDATE$`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(orderRow()...))
	mock.ExpectCommit()

	var got *domain.Order
	err := txm.Do(context.Background(), func(ctx context.Context) error {
		var err error
		got, err = repo.GetByID(ctx, orderID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
	assert.Equal(t, "15.5", got.Price.String())

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT .+ FROM orders WHERE id = \$1$`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(orderRow()...))
	mock.ExpectCommit()

	err = txm.DoReadOnly(context.Background(), func(ctx context.Context) error {
		_, err := repo.GetByID(ctx, orderID)
		return err
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	mock.ExpectQuery(`^SELECT .+ FROM orders WHERE id = \$1$`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = repo.GetByID(context.Background(), orderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_BuildsFilter(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	customer := "user-1"
	status := domain.OrderPaid

	mock.ExpectQuery(`^SELECT .+ FROM orders WHERE customer_id = \$1 AND status = \$2 ORDER BY created_at DESC$`).
		WithArgs(customer, "paid").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(orderRow()...))

	got, err := repo.List(context.Background(), domain.OrdersFilter{CustomerID: &customer, Status: &status})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, orderID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoRowsIsNotFound(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	mock.ExpectExec(`^UPDATE orders SET .+ WHERE id = \$7$`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Order{ID: orderID, Status: domain.OrderCancelled})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
