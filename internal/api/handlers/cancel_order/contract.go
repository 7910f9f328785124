package cancel_order

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders/models"
)

type OrderService interface {
	Cancel(ctx context.Context, id string, actor domain.Principal) (*models.OrderResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
