package create_order

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders/models"
)

type OrderService interface {
	Create(ctx context.Context, actor domain.Principal, materialID string) (*models.OrderResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
