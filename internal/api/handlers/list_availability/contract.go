package list_availability

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/service/availability/models"
)

type AvailabilityService interface {
	List(ctx context.Context) (*models.WeekResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
