package attach_payment_link

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings/models"
)

type BookingService interface {
	AttachPaymentLink(ctx context.Context, id string, link string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
