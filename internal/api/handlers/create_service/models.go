package create_service

import (
	"github.com/shopspring/decimal"

	"github.com/waelosamahelmi/saroistavaloon/internal/service/catalog/models"
)

// CreateServiceRequest HTTP request model
type CreateServiceRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=5000"`
	DurationMinutes int             `json:"durationMinutes" validate:"required,gt=0"`
	Price           decimal.Decimal `json:"price"` // "79.00" или 79
}

func (r *CreateServiceRequest) ToServiceRequest() *models.CreateServiceRequest {
	return &models.CreateServiceRequest{
		Title:           r.Title,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
	}
}
