package mark_booking_paid

import (
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings/models"
)

// MarkPaidRequest HTTP request model; тело может отсутствовать
type MarkPaidRequest struct {
	PaymentMethod *string `json:"paymentMethod,omitempty" validate:"omitempty,oneof=stripe holvi cash"`
}

func (r *MarkPaidRequest) ToServiceRequest() *models.MarkPaidRequest {
	return &models.MarkPaidRequest{PaymentMethod: r.PaymentMethod}
}
