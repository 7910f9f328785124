package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	bookingRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/booking"
	catalogRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/catalog"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/events"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	txManager        TransactionManager
	publisher        EventPublisher
	metrics          Metrics
	calendar         string
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	calendar string,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		txManager:        txManager,
		publisher:        publisher,
		metrics:          metrics,
		calendar:         calendar,
		location:         location,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Проверка пересечений и запись идут в одной транзакции под блокировкой календаря
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: customer=%s, service=%s, start=%s",
		req.CustomerID, req.ServiceID, req.StartTime.Format(time.RFC3339))

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	if req.StartTime.Before(now) {
		uc.logger.Warn("CreateBooking: start %s is in the past", req.StartTime.Format(time.RFC3339))
		return nil, ErrSlotInPast
	}

	// 3. Получаем услугу; цена, название и длительность фиксируются в бронировании
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.Active {
		uc.logger.Warn("CreateBooking: service id=%s is not active", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 4. Время начала должно быть слотом сетки для этого дня
	weekday := int(req.StartTime.In(uc.location).Weekday())
	windows, err := uc.availabilityRepo.ListActiveByDay(ctx, weekday)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get availability for day=%d: %v", weekday, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	if err := validateSlot(windows, service.DurationMinutes, req.StartTime, uc.location); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	start := req.StartTime.In(uc.location)
	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	var result *domain.Booking

	// 5. Повторная проверка пересечений и запись как одна атомарная операция
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.bookingRepo.LockCalendar(txCtx, uc.calendar); err != nil {
			uc.logger.Error("CreateBooking: failed to lock calendar %s: %v", uc.calendar, err)
			return fmt.Errorf("%w: failed to lock calendar: %v", ErrInternal, err)
		}

		overlapping, err := uc.bookingRepo.ListOverlapping(txCtx, start, end)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get overlapping bookings: %v", err)
			return fmt.Errorf("%w: failed to get overlapping bookings: %v", ErrInternal, err)
		}

		if len(overlapping) > 0 {
			uc.logger.Warn("CreateBooking: slot %s taken by booking id=%s",
				start.Format(time.RFC3339), overlapping[0].ID)
			return ErrSlotNotAvailable
		}

		booking := &domain.Booking{
			ServiceID:       service.ID,
			CustomerID:      req.CustomerID,
			ContactName:     req.ContactName,
			ContactEmail:    req.ContactEmail,
			ContactPhone:    req.ContactPhone,
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentPending,
			ServiceTitle:    service.Title,
			Price:           service.Price,
			Notes:           req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("CreateBooking: slot %s rejected by storage", start.Format(time.RFC3339))
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.metrics.IncBookingConflicts()
		}
		return nil, err
	}

	uc.metrics.IncBookingsCreated()
	uc.logger.Info("CreateBooking: successfully created booking id=%s", result.ID)

	if err := uc.publisher.Publish(ctx, events.NewBookingEvent(events.BookingCreated, result, now)); err != nil {
		uc.logger.Error("CreateBooking: failed to publish event for booking id=%s: %v", result.ID, err)
	}

	return result, nil
}
