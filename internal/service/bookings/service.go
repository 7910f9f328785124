package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	bookingRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/booking"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/events"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями: чтение и переходы состояний
type Service struct {
	bookingRepo    BookingRepository
	txManager      TransactionManager
	publisher      EventPublisher
	metrics        Metrics
	location       *time.Location
	invoiceDueDays int
	now            func() time.Time
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	location *time.Location,
	invoiceDueDays int,
	logger Logger,
) *Service {
	if invoiceDueDays <= 0 {
		invoiceDueDays = domain.DefaultInvoiceDays
	}
	return &Service{
		bookingRepo:    bookingRepo,
		txManager:      txManager,
		publisher:      publisher,
		metrics:        metrics,
		location:       location,
		invoiceDueDays: invoiceDueDays,
		now:            time.Now,
		logger:         logger,
	}
}

// WithClock подменяет источник времени
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetByID получает бронирование по ID
// Чужое бронирование для клиента неотличимо от несуществующего
func (s *Service) GetByID(ctx context.Context, id string, actor domain.Principal) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, actor.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", id, err)
	}

	if !actor.CanAccess(booking.CustomerID) {
		s.logger.Warn("GetByID: user=%s has no access to booking id=%s", actor.UserID, id)
		return nil, ErrBookingNotFound
	}

	return models.FromDomainBooking(booking, s.now(), s.location), nil
}

// List возвращает бронирования с фильтрами по статусу и времени
// completed и upcoming/past вычисляются относительно текущего момента
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	now := s.now()

	filter := domain.BookingsFilter{}
	if !req.Actor.IsOperator() {
		customerID := req.Actor.UserID
		filter.CustomerID = &customerID
	}

	var wantStatus *domain.BookingStatus
	if req.Status != nil {
		status, ok := domain.ParseBookingStatus(*req.Status)
		if !ok {
			s.logger.Warn("List: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		wantStatus = &status

		// completed не хранится: это confirmed с наступившим началом
		if status == domain.StatusCompleted {
			filter.Statuses = []domain.BookingStatus{domain.StatusConfirmed}
		} else {
			filter.Statuses = []domain.BookingStatus{status}
		}
	}

	if req.When != nil {
		switch *req.When {
		case models.WhenUpcoming:
			filter.StartFrom = &now
		case models.WhenPast:
			filter.StartTo = &now
		default:
			s.logger.Warn("List: invalid when=%s", *req.When)
			return nil, fmt.Errorf("%w: when must be %q or %q", ErrInvalidInput, models.WhenUpcoming, models.WhenPast)
		}
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	if wantStatus != nil {
		filtered := make([]*domain.Booking, 0, len(bookings))
		for _, b := range bookings {
			if b.EffectiveStatus(now) == *wantStatus {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}

	s.logger.Info("List: fetched %d bookings for user=%s", len(bookings), req.Actor.UserID)
	return models.FromDomainBookingList(bookings, now, s.location), nil
}

// Cancel отменяет бронирование: клиент своё, оператор любое
// Освобождённый интервал сразу снова виден в слотах
func (s *Service) Cancel(ctx context.Context, id string, actor domain.Principal) (*models.BookingResponse, error) {
	return s.transition(ctx, "Cancel", id, &actor, events.BookingCancelled,
		func(b *domain.Booking, now time.Time) error {
			return b.Cancel(now)
		})
}

// AttachPaymentLink привязывает ссылку на оплату (оператор)
func (s *Service) AttachPaymentLink(ctx context.Context, id string, link string) (*models.BookingResponse, error) {
	link = strings.TrimSpace(link)
	if link == "" || len(link) > domain.MaxPaymentLinkLength {
		return nil, fmt.Errorf("%w: paymentLink must be 1..%d characters", ErrInvalidInput, domain.MaxPaymentLinkLength)
	}

	return s.transition(ctx, "AttachPaymentLink", id, nil, "",
		func(b *domain.Booking, now time.Time) error {
			return b.AttachPaymentLink(link, now)
		})
}

// MarkPaid pending -> confirmed/paid (или закрытие выставленного счёта)
func (s *Service) MarkPaid(ctx context.Context, id string, req *models.MarkPaidRequest) (*models.BookingResponse, error) {
	method := domain.PaymentMethodCash
	if req != nil && req.PaymentMethod != nil {
		parsed, ok := domain.ParsePaymentMethod(*req.PaymentMethod)
		if !ok {
			return nil, fmt.Errorf("%w: unknown paymentMethod %q", ErrInvalidInput, *req.PaymentMethod)
		}
		method = parsed
	}

	return s.transition(ctx, "MarkPaid", id, nil, events.BookingPaid,
		func(b *domain.Booking, now time.Time) error {
			return b.MarkPaid(method, now)
		})
}

// IssueInvoice выставляет счёт Holvi: confirmed/invoiced, номер INV-<год>-<hex> и срок оплаты
func (s *Service) IssueInvoice(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, "IssueInvoice", id, nil, events.BookingInvoiced,
		func(b *domain.Booking, now time.Time) error {
			due := now.In(s.location).AddDate(0, 0, s.invoiceDueDays)
			return b.IssueInvoice(newInvoiceNumber(now.In(s.location)), due, now)
		})
}

// ConfirmGatewayPayment подтверждение от платёжного шлюза
// settled=true: оплата прошла (paid), иначе ожидается асинхронно (invoiced)
// Повторная доставка уже применённого события ничего не меняет
func (s *Service) ConfirmGatewayPayment(ctx context.Context, id string, settled bool) error {
	eventType := events.BookingConfirmed
	if settled {
		eventType = events.BookingPaid
	}

	_, err := s.transition(ctx, "ConfirmGatewayPayment", id, nil, eventType,
		func(b *domain.Booking, now time.Time) error {
			if b.PaymentStatus == domain.PaymentPaid || (!settled && b.PaymentStatus == domain.PaymentInvoiced) {
				return errAlreadyApplied
			}
			if settled {
				return b.MarkPaid(domain.PaymentMethodStripe, now)
			}
			return b.MarkInvoiced(domain.PaymentMethodStripe, now)
		})
	if errors.Is(err, errAlreadyApplied) {
		s.logger.Info("ConfirmGatewayPayment: booking id=%s already settled, skipping", id)
		return nil
	}
	return err
}

var errAlreadyApplied = errors.New("bookings: already applied")

// transition читает запись под блокировкой, применяет переход и сохраняет
// actor == nil: операция оператора или системы, проверка владельца не нужна
func (s *Service) transition(
	ctx context.Context,
	op string,
	id string,
	actor *domain.Principal,
	eventType string,
	apply func(b *domain.Booking, now time.Time) error,
) (*models.BookingResponse, error) {
	s.logger.Info("%s: booking id=%s", op, id)

	now := s.now()
	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(op, id, err)
		}

		if actor != nil && !actor.CanAccess(booking.CustomerID) {
			s.logger.Warn("%s: user=%s has no access to booking id=%s", op, actor.UserID, id)
			return ErrBookingNotFound
		}

		if err := apply(booking, now); err != nil {
			switch {
			case errors.Is(err, errAlreadyApplied):
				return err
			case errors.Is(err, domain.ErrAlreadyCancelled):
				s.logger.Warn("%s: booking id=%s already cancelled", op, id)
				return ErrAlreadyCancelled
			case errors.Is(err, domain.ErrInvalidTransition):
				s.logger.Warn("%s: booking id=%s rejected, status=%s payment=%s",
					op, id, booking.EffectiveStatus(now), booking.PaymentStatus)
				return fmt.Errorf("%w: %s not allowed from %s/%s",
					ErrInvalidTransition, op, booking.EffectiveStatus(now), booking.PaymentStatus)
			}
			return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
		}

		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			return s.mapRepoError(op, id, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: booking id=%s now %s/%s", op, id, result.EffectiveStatus(now), result.PaymentStatus)

	if eventType != "" {
		s.metrics.IncBookingTransition(string(result.Status))
		if err := s.publisher.Publish(ctx, events.NewBookingEvent(eventType, result, now)); err != nil {
			s.logger.Error("%s: failed to publish %s for booking id=%s: %v", op, eventType, id, err)
		}
	}

	return models.FromDomainBooking(result, now, s.location), nil
}

func (s *Service) mapRepoError(op, id string, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%s not found", op, id)
		return ErrBookingNotFound
	}
	s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// newInvoiceNumber INV-2030-1A2B3C4D
func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", domain.InvoiceNumberPrefix, now.Year(), suffix)
}
