package create_availability

import (
	"github.com/waelosamahelmi/saroistavaloon/internal/service/availability/models"
)

// CreateWindowRequest HTTP request model
type CreateWindowRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,min=0,max=6"` // 0 = воскресенье
	StartTime string `json:"startTime" validate:"required,len=5"`       // "09:00"
	EndTime   string `json:"endTime" validate:"required,len=5"`         // "11:00"
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateWindowRequest) ToServiceRequest() *models.CreateWindowRequest {
	return &models.CreateWindowRequest{
		DayOfWeek: *r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}
