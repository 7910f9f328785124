package filestore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	availabilityRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/availability"
	bookingRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/booking"
	catalogRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/catalog"
	orderRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/order"
)

// Репозитории файлового хранилища повторяют контракты Postgres-репозиториев
// и возвращают те же sentinel-ошибки

// BookingRepository бронирования
type BookingRepository struct {
	s *Store
}

// LockCalendar ничего не делает: писатели и так сериализованы TxManager
func (r *BookingRepository) LockCalendar(ctx context.Context, calendar string) error {
	return nil
}

// Create сохраняет бронирование, отказывая при пересечении с активным
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.IsActive() {
		for _, existing := range r.s.bookings.items {
			if existing.Status != domain.StatusCancelled &&
				existing.StartTime.Before(b.EndTime) && existing.EndTime.After(b.StartTime) {
				return nil, bookingRepo.ErrSlotNotAvailable
			}
		}
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := r.s.now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := r.s.bookings.put(toBookingRecord(b)); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.bookings.items[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return rec.toDomain(), nil
}

func (r *BookingRepository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, rec := range r.s.bookings.sorted() {
		b := rec.toDomain()
		if filter.Matches(b) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *BookingRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, rec := range r.s.bookings.sorted() {
		b := rec.toDomain()
		if b.IsActive() && b.Overlaps(start, end) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings.items[b.ID]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	return r.s.bookings.put(toBookingRecord(b))
}

// AvailabilityRepository окна доступности
type AvailabilityRepository struct {
	s *Store
}

func (r *AvailabilityRepository) Create(ctx context.Context, w *domain.AvailabilityWindow) (*domain.AvailabilityWindow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	w.CreatedAt = r.s.now()

	if err := r.s.windows.put(toWindowRecord(w)); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed, err := r.s.windows.remove(id)
	if err != nil {
		return err
	}
	if !removed {
		return availabilityRepo.ErrWindowNotFound
	}
	return nil
}

func (r *AvailabilityRepository) List(ctx context.Context) ([]*domain.AvailabilityWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domain.AvailabilityWindow, 0, len(r.s.windows.items))
	for _, rec := range r.s.windows.sorted() {
		result = append(result, rec.toDomain())
	}
	return result, nil
}

func (r *AvailabilityRepository) ListActiveByDay(ctx context.Context, dayOfWeek int) ([]*domain.AvailabilityWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domain.AvailabilityWindow, 0)
	for _, rec := range r.s.windows.sorted() {
		if rec.Active && rec.DayOfWeek == dayOfWeek {
			result = append(result, rec.toDomain())
		}
	}
	return result, nil
}

// ServiceRepository каталог услуг
type ServiceRepository struct {
	s *Store
}

func (r *ServiceRepository) Create(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := r.s.now()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if err := r.s.services.put(toServiceRecord(svc)); err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.services.items[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return rec.toDomain(), nil
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domain.Service, 0)
	for _, rec := range r.s.services.sorted() {
		if activeOnly && !rec.Active {
			continue
		}
		result = append(result, rec.toDomain())
	}
	return result, nil
}

func (r *ServiceRepository) Deactivate(ctx context.Context, id string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.services.items[id]
	if !ok {
		return catalogRepo.ErrServiceNotFound
	}
	rec.Active = false
	rec.UpdatedAt = now
	return r.s.services.put(rec)
}

// OrderRepository заказы материалов
type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := r.s.now()
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := r.s.orders.put(toOrderRecord(o)); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.orders.items[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	return rec.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*domain.Order, 0)
	for _, rec := range r.s.orders.sorted() {
		o := rec.toDomain()
		if filter.Matches(o) {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders.items[o.ID]; !ok {
		return orderRepo.ErrOrderNotFound
	}
	return r.s.orders.put(toOrderRecord(o))
}
