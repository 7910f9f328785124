package get_admin_orders

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders/models"
)

type OrderService interface {
	List(ctx context.Context, req *models.ListOrdersRequest) (*models.OrderListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
