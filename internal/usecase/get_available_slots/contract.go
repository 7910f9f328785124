package get_available_slots

import (
	"context"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

// AvailabilityRepository интерфейс хранилища окон доступности
type AvailabilityRepository interface {
	// ListActiveByDay активные окна на день недели (0 = воскресенье)
	ListActiveByDay(ctx context.Context, dayOfWeek int) ([]*domain.AvailabilityWindow, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListOverlapping неотменённые бронирования, пересекающие [start, end)
	ListOverlapping(ctx context.Context, start, end time.Time) ([]*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
