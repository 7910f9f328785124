package orders

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/events"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/materials"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
}

// MaterialsClient внешний каталог материалов
type MaterialsClient interface {
	GetMaterial(ctx context.Context, materialID string) (*materials.Material, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Metrics счётчик заказов
type Metrics interface {
	IncOrdersCreated()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
