package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	orderRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/order"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/events"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/materials"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders/models"
)

// Service покупки материалов: pending -> paid | cancelled
type Service struct {
	orderRepo OrderRepository
	catalog   MaterialsClient
	txManager TransactionManager
	publisher EventPublisher
	metrics   Metrics
	now       func() time.Time
	logger    Logger
}

func NewService(
	orderRepo OrderRepository,
	catalog MaterialsClient,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		orderRepo: orderRepo,
		catalog:   catalog,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock подменяет источник времени
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create оформляет заказ; название и цена фиксируются из каталога на момент покупки
func (s *Service) Create(ctx context.Context, actor domain.Principal, materialID string) (*models.OrderResponse, error) {
	materialID = strings.TrimSpace(materialID)
	if materialID == "" {
		return nil, fmt.Errorf("%w: materialId is required", ErrInvalidInput)
	}

	s.logger.Info("Create: customer=%s, material=%s", actor.UserID, materialID)

	material, err := s.catalog.GetMaterial(ctx, materialID)
	if err != nil {
		switch {
		case errors.Is(err, materials.ErrMaterialNotFound):
			s.logger.Warn("Create: material id=%s not found", materialID)
			return nil, ErrMaterialNotFound
		case errors.Is(err, materials.ErrUnavailable):
			s.logger.Error("Create: materials catalog unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrMaterialsUnavailable, err)
		}
		s.logger.Error("Create: failed to get material id=%s: %v", materialID, err)
		return nil, fmt.Errorf("%w: Create - failed to get material: %v", ErrInternal, err)
	}

	order := &domain.Order{
		MaterialID:    material.ID,
		MaterialTitle: material.Title,
		CustomerID:    actor.UserID,
		Price:         material.Price,
		Status:        domain.OrderPending,
	}

	created, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.metrics.IncOrdersCreated()
	s.logger.Info("Create: created order id=%s price=%s", created.ID, created.Price)

	if err := s.publisher.Publish(ctx, events.NewOrderEvent(events.OrderCreated, created, s.now())); err != nil {
		s.logger.Error("Create: failed to publish event for order id=%s: %v", created.ID, err)
	}

	return models.FromDomainOrder(created), nil
}

// List заказы клиента или все заказы для оператора
func (s *Service) List(ctx context.Context, req *models.ListOrdersRequest) (*models.OrderListResponse, error) {
	filter := domain.OrdersFilter{}
	if !req.Actor.IsOperator() {
		customerID := req.Actor.UserID
		filter.CustomerID = &customerID
	}

	if req.Status != nil {
		status, ok := domain.ParseOrderStatus(*req.Status)
		if !ok {
			s.logger.Warn("List: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		filter.Status = &status
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOrderList(orders), nil
}

// Cancel отмена: клиент свой заказ, оператор любой
func (s *Service) Cancel(ctx context.Context, id string, actor domain.Principal) (*models.OrderResponse, error) {
	return s.transition(ctx, "Cancel", id, &actor, events.OrderCancelled,
		func(o *domain.Order, now time.Time) error {
			return o.Cancel(now)
		})
}

// AttachPaymentLink ссылка на оплату (оператор)
func (s *Service) AttachPaymentLink(ctx context.Context, id string, link string) (*models.OrderResponse, error) {
	link = strings.TrimSpace(link)
	if link == "" || len(link) > domain.MaxPaymentLinkLength {
		return nil, fmt.Errorf("%w: paymentLink must be 1..%d characters", ErrInvalidInput, domain.MaxPaymentLinkLength)
	}

	return s.transition(ctx, "AttachPaymentLink", id, nil, "",
		func(o *domain.Order, now time.Time) error {
			return o.AttachPaymentLink(link, now)
		})
}

// MarkPaid ручная отметка оплаты (оператор), по умолчанию cash
func (s *Service) MarkPaid(ctx context.Context, id string, method *string) (*models.OrderResponse, error) {
	paymentMethod := domain.PaymentMethodCash
	if method != nil {
		parsed, ok := domain.ParsePaymentMethod(*method)
		if !ok {
			return nil, fmt.Errorf("%w: unknown paymentMethod %q", ErrInvalidInput, *method)
		}
		paymentMethod = parsed
	}

	return s.transition(ctx, "MarkPaid", id, nil, events.OrderPaid,
		func(o *domain.Order, now time.Time) error {
			return o.MarkPaid(paymentMethod, now)
		})
}

// ConfirmGatewayPayment оплата подтверждена шлюзом; повторная доставка игнорируется
func (s *Service) ConfirmGatewayPayment(ctx context.Context, id string) error {
	_, err := s.transition(ctx, "ConfirmGatewayPayment", id, nil, events.OrderPaid,
		func(o *domain.Order, now time.Time) error {
			if o.Status == domain.OrderPaid {
				return errAlreadyApplied
			}
			return o.MarkPaid(domain.PaymentMethodStripe, now)
		})
	if errors.Is(err, errAlreadyApplied) {
		s.logger.Info("ConfirmGatewayPayment: order id=%s already paid, skipping", id)
		return nil
	}
	return err
}

var errAlreadyApplied = errors.New("orders: already applied")

func (s *Service) transition(
	ctx context.Context,
	op string,
	id string,
	actor *domain.Principal,
	eventType string,
	apply func(o *domain.Order, now time.Time) error,
) (*models.OrderResponse, error) {
	s.logger.Info("%s: order id=%s", op, id)

	now := s.now()
	var result *domain.Order

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(op, id, err)
		}

		if actor != nil && !actor.CanAccess(order.CustomerID) {
			s.logger.Warn("%s: user=%s has no access to order id=%s", op, actor.UserID, id)
			return ErrOrderNotFound
		}

		if err := apply(order, now); err != nil {
			switch {
			case errors.Is(err, errAlreadyApplied):
				return err
			case errors.Is(err, domain.ErrAlreadyCancelled):
				s.logger.Warn("%s: order id=%s already cancelled", op, id)
				return ErrAlreadyCancelled
			case errors.Is(err, domain.ErrInvalidTransition):
				s.logger.Warn("%s: order id=%s rejected, status=%s", op, id, order.Status)
				return fmt.Errorf("%w: %s not allowed from %s", ErrInvalidTransition, op, order.Status)
			}
			return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
		}

		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return s.mapRepoError(op, id, err)
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: order id=%s now %s", op, id, result.Status)

	if eventType != "" {
		if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, result, now)); err != nil {
			s.logger.Error("%s: failed to publish %s for order id=%s: %v", op, eventType, id, err)
		}
	}

	return models.FromDomainOrder(result), nil
}

func (s *Service) mapRepoError(op, id string, err error) error {
	if errors.Is(err, orderRepo.ErrOrderNotFound) {
		s.logger.Warn("%s: order id=%s not found", op, id)
		return ErrOrderNotFound
	}
	s.logger.Error("%s: repository error for order id=%s: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
