package attach_order_payment_link

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders/models"
)

type OrderService interface {
	AttachPaymentLink(ctx context.Context, id string, link string) (*models.OrderResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
