package availability

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

// WindowRepository интерфейс хранилища окон доступности
type WindowRepository interface {
	Create(ctx context.Context, w *domain.AvailabilityWindow) (*domain.AvailabilityWindow, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.AvailabilityWindow, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
