package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	availabilityRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/availability"
	bookingRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/booking"
	catalogRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/catalog"
	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

var start = time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)

func newBooking(offset time.Duration, minutes int) *domain.Booking {
	s := start.Add(offset)
	return &domain.Booking{
		ServiceID:       "svc-1",
		CustomerID:      "cust-1",
		StartTime:       s,
		EndTime:         s.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		ServiceTitle:    "Coaching",
		Price:           decimal.RequireFromString("75.50"),
	}
}

func TestStore_PersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)

	created, err := store.Bookings().Create(ctx, newBooking(0, 60))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = store.Availability().Create(ctx, &domain.AvailabilityWindow{
		DayOfWeek: 1,
		StartTime: types.MustTimeString("09:00"),
		EndTime:   types.MustTimeString("11:00"),
		Active:    true,
	})
	require.NoError(t, err)

	for _, f := range []string{bookingsFile, availabilityFile} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, f)
	}

	reopened, err := Open(dir)
	require.NoError(t, err)

	got, err := reopened.Bookings().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, created.StartTime.Equal(got.StartTime))
	assert.True(t, decimal.RequireFromString("75.50").Equal(got.Price))
	assert.Equal(t, "Coaching", got.ServiceTitle)

	windows, err := reopened.Availability().ListActiveByDay(ctx, 1)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "09:00", windows[0].StartTime.String())
}

func TestBookingRepository_RejectsOverlap(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	repo := store.Bookings()

	first, err := repo.Create(ctx, newBooking(0, 60))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newBooking(30*time.Minute, 60))
	assert.ErrorIs(t, err, bookingRepo.ErrSlotNotAvailable)

	// Касание границей не конфликт
	_, err = repo.Create(ctx, newBooking(time.Hour, 60))
	require.NoError(t, err)

	// После отмены интервал снова свободен
	first.Status = domain.StatusCancelled
	require.NoError(t, repo.Update(ctx, first))
	_, err = repo.Create(ctx, newBooking(0, 60))
	require.NoError(t, err)
}

func TestBookingRepository_ListAndOverlapping(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	repo := store.Bookings()

	a, err := repo.Create(ctx, newBooking(2*time.Hour, 60))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newBooking(0, 60))
	require.NoError(t, err)

	all, err := repo.List(ctx, domain.BookingsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "sorted by start")

	overlapping, err := repo.ListOverlapping(ctx, start.Add(90*time.Minute), start.Add(150*time.Minute))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	assert.Equal(t, a.ID, overlapping[0].ID)
}

func TestRepositories_NotFound(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Bookings().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)

	err = store.Bookings().Update(ctx, &domain.Booking{ID: "missing"})
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)

	err = store.Availability().Delete(ctx, "missing")
	assert.ErrorIs(t, err, availabilityRepo.ErrWindowNotFound)

	err = store.Services().Deactivate(ctx, "missing", start)
	assert.ErrorIs(t, err, catalogRepo.ErrServiceNotFound)
}

func TestServiceRepository_ActiveOnly(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	repo := store.Services()

	svc, err := repo.Create(ctx, &domain.Service{Title: "A", DurationMinutes: 60, Active: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Service{Title: "B", DurationMinutes: 30, Active: true})
	require.NoError(t, err)

	require.NoError(t, repo.Deactivate(ctx, svc.ID, start))

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Title)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTxManager_SerializesWriters(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	tx := store.TxManager()

	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.DoSerializable(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestTxManager_Nested(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	tx := store.TxManager()

	done := make(chan struct{})
	go func() {
		_ = tx.Do(context.Background(), func(ctx context.Context) error {
			return tx.Do(ctx, func(ctx context.Context) error { return nil })
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested transaction deadlocked")
	}
}
