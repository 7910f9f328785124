package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/dbmetrics"
	"github.com/waelosamahelmi/saroistavaloon/pkg/txmanager"
)

const bookingID = "6f1c2a7e-3b1d-4e5f-9a0b-1c2d3e4f5a6b"

func newMockRepository(t *testing.T) (*Repository, *txmanager.Manager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	return NewRepository(wrapped), txmanager.NewTransactionManager(wrapped), mock
}

func bookingRow(start time.Time) []driver.Value {
	return []driver.Value{
		bookingID, "svc-1", "user-1", nil, nil, nil,
		start, start.Add(time.Hour), int64(60),
		"pending", "pending", nil, nil,
		"Консультация", "80.00",
		nil, nil, nil, nil, nil,
		start.Add(-24 * time.Hour), start.Add(-24 * time.Hour),
	}
}

func TestListOverlapping_ReadOnlyTransactionDoesNotLockRows(t *testing.T) {
	repo, txm, mock := newMockRepository(t)
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT .+ FROM bookings WHERE status IN \(\$1,\$2\) AND start_time < \$3 AND end_time > \$4 ORDER BY start_time ASC$`).
		WithArgs("pending", "confirmed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(bookingRow(start)...))
	mock.ExpectCommit()

	var got []*domain.Booking
	err := txm.DoReadOnly(context.Background(), func(ctx context.Context) error {
		var err error
		got, err = repo.ListOverlapping(ctx, start, start.Add(2*time.Hour))
		return err
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bookingID, got[0].ID)
	assert.Equal(t, domain.StatusPending, got[0].Status)
	assert.Equal(t, 60, got[0].DurationMinutes)
	assert.True(t, decimal.RequireFromString("80").Equal(got[0].Price))
	assert.Nil(t, got[0].ContactName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_LocksRowOnlyInWriteTransaction(t *testing.T) {
	repo, txm, mock := newMockRepository(t)
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT .+ FROM bookings WHERE id = \$1 FOR UPDATE$`).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(bookingRow(start)...))
	mock.ExpectCommit()

	err := txm.Do(context.Background(), func(ctx context.Context) error {
		_, err := repo.GetByID(ctx, bookingID)
		return err
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT .+ FROM bookings WHERE id = \$1$`).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(bookingRow(start)...))
	mock.ExpectCommit()

	err = txm.DoReadOnly(context.Background(), func(ctx context.Context) error {
		_, err := repo.GetByID(ctx, bookingID)
		return err
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	mock.ExpectQuery(`^SELECT .+ FROM bookings WHERE id = \$1$`).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err = repo.GetByID(context.Background(), bookingID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ExclusionViolationIsSlotNotAvailable(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

	b := &domain.Booking{
		ServiceID:       "svc-1",
		CustomerID:      "user-1",
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		Price:           decimal.RequireFromString("80"),
	}

	mock.ExpectQuery(`^INSERT INTO bookings .+ RETURNING created_at, updated_at$`).
		WillReturnError(&pq.Error{Code: pgExclusionViolation})

	_, err := repo.Create(context.Background(), b)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	mock.ExpectQuery(`^INSERT INTO bookings .+ RETURNING created_at, updated_at$`).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.Create(context.Background(), b)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.NotErrorIs(t, err, ErrSlotNotAvailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_BuildsFilter(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	customer := "user-1"
	now := time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`^SELECT .+ FROM bookings WHERE customer_id = \$1 AND status IN \(\$2\) AND start_time < \$3 ORDER BY start_time ASC$`).
		WithArgs(customer, "confirmed", now).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background(), domain.BookingsFilter{
		CustomerID: &customer,
		Statuses:   []domain.BookingStatus{domain.StatusConfirmed},
		StartTo:    &now,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockCalendar(t *testing.T) {
	repo, txm, mock := newMockRepository(t)

	err := repo.LockCalendar(context.Background(), "main")
	assert.ErrorIs(t, err, ErrTransaction)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("main").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = txm.Do(context.Background(), func(ctx context.Context) error {
		return repo.LockCalendar(ctx, "main")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NoRowsIsNotFound(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	mock.ExpectExec(`^UPDATE bookings SET .+ WHERE id = \$10$`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Booking{ID: bookingID, Status: domain.StatusCancelled})
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
