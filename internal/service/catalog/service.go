package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	catalogRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/catalog"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/catalog/models"
)

// Service каталог услуг
type Service struct {
	repo   ServiceRepository
	now    func() time.Time
	logger Logger
}

func NewService(repo ServiceRepository, logger Logger) *Service {
	return &Service{repo: repo, now: time.Now, logger: logger}
}

// Create добавляет активную услугу
func (s *Service) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	service := &domain.Service{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          true,
	}

	if err := service.Validate(); err != nil {
		s.logger.Warn("Create: invalid service title=%q duration=%d price=%s",
			req.Title, req.DurationMinutes, req.Price)
		return nil, fmt.Errorf("%w: title is required, durationMinutes must be a positive multiple of %d up to %d, price must not be negative",
			ErrInvalidInput, domain.DurationGranularityMinutes, domain.MaxServiceDurationMinutes)
	}

	created, err := s.repo.Create(ctx, service)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created service id=%s title=%q", created.ID, created.Title)
	resp := models.FromDomainService(created)
	return &resp, nil
}

// List публично видны только активные услуги, оператор видит все
func (s *Service) List(ctx context.Context, includeInactive bool) (*models.ServiceListResponse, error) {
	services, err := s.repo.List(ctx, !includeInactive)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainServiceList(services), nil
}

// Deactivate мягкое удаление: прошлые бронирования хранят свой снимок услуги
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id, s.now()); err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("Deactivate: service id=%s not found", id)
			return ErrServiceNotFound
		}
		s.logger.Error("Deactivate: repository error for service id=%s: %v", id, err)
		return fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Deactivate: service id=%s deactivated", id)
	return nil
}
