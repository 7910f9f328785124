package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	availabilityRepo "github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/availability"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/availability/models"
	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

// Service управление недельными окнами приёма
// Пересечения окон одного дня не проверяются: генератор слотов убирает дубли сам
type Service struct {
	repo   WindowRepository
	logger Logger
}

func NewService(repo WindowRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create добавляет активное окно
func (s *Service) Create(ctx context.Context, req *models.CreateWindowRequest) (*models.WindowResponse, error) {
	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime must be HH:MM", ErrInvalidInput)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: endTime must be HH:MM", ErrInvalidInput)
	}

	window := &domain.AvailabilityWindow{
		DayOfWeek: req.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		Active:    true,
	}

	if err := window.Validate(); err != nil {
		s.logger.Warn("Create: invalid window day=%d %s-%s", req.DayOfWeek, req.StartTime, req.EndTime)
		return nil, fmt.Errorf("%w: dayOfWeek must be %d..%d and startTime before endTime",
			ErrInvalidInput, domain.MinDayOfWeek, domain.MaxDayOfWeek)
	}

	created, err := s.repo.Create(ctx, window)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created window id=%s day=%d %s-%s", created.ID, created.DayOfWeek, created.StartTime, created.EndTime)
	resp := models.FromDomainWindow(created)
	return &resp, nil
}

// Delete удаляет окно; уже созданные бронирования не затрагиваются
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, availabilityRepo.ErrWindowNotFound) {
			s.logger.Warn("Delete: window id=%s not found", id)
			return ErrWindowNotFound
		}
		s.logger.Error("Delete: repository error for window id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: window id=%s deleted", id)
	return nil
}

// List все окна, сгруппированные по дням недели
func (s *Service) List(ctx context.Context) (*models.WeekResponse, error) {
	windows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return models.GroupByWeekday(windows), nil
}
