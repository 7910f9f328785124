package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	catalogRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/catalog"
)

// UseCase use case для получения свободных слотов на дату
type UseCase struct {
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	bookingRepo      BookingRepository
	txManager        TransactionManager
	location         *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		txManager:        txManager,
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

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	day := startOfDay(req.Date, uc.location)
	uc.logger.Info("GetAvailableSlots: service=%s, date=%s", req.ServiceID, day.Format(domain.DateFormat))

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	var resp *Response

	// 3. Читаем услугу, окна и бронирования из одного снимка
	err := uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		service, err := uc.serviceRepo.GetByID(txCtx, req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrServiceNotFound) {
				uc.logger.Warn("GetAvailableSlots: service id=%s not found", req.ServiceID)
				return ErrServiceNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		if !service.Active {
			uc.logger.Warn("GetAvailableSlots: service id=%s is not active", req.ServiceID)
			return ErrServiceInactive
		}

		resp = &Response{
			Date:            day,
			ServiceID:       service.ID,
			DurationMinutes: service.DurationMinutes,
			Slots:           []domain.Slot{},
		}

		windows, err := uc.availabilityRepo.ListActiveByDay(txCtx, int(day.Weekday()))
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get availability for day=%d: %v", day.Weekday(), err)
			return fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
		}

		// 4. Кандидаты по сетке окон
		starts := domain.CandidateStarts(windows, service.DurationMinutes)
		if len(starts) == 0 {
			return nil
		}

		slots := buildSlots(day, uc.location, starts, service.DurationMinutes)

		// 5. Вычитаем занятые интервалы
		bookings, err := uc.bookingRepo.ListOverlapping(txCtx, slots[0].Start, slots[len(slots)-1].End)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		slots = excludeBooked(slots, bookings)

		// 6. На сегодня прошедшие слоты не показываем (для прошлых дат список пуст)
		resp.Slots = excludePast(slots, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: %d free slots for service=%s, date=%s",
		len(resp.Slots), req.ServiceID, day.Format(domain.DateFormat))

	return resp, nil
}
