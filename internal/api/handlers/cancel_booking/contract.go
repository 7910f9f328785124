package cancel_booking

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings/models"
)

type BookingService interface {
	Cancel(ctx context.Context, id string, actor domain.Principal) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
