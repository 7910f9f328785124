package create_booking

import (
	"time"

	createBooking "github.com/waelosamahelmi/saroistavaloon/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID    string  `json:"serviceId" validate:"required,uuid"`
	StartTime    string  `json:"startTime" validate:"required"` // RFC3339, "2030-01-07T10:00:00+02:00"
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	ContactName  *string `json:"contactName,omitempty" validate:"omitempty,max=200"`
	ContactEmail *string `json:"contactEmail,omitempty" validate:"omitempty,email,max=254"`
	ContactPhone *string `json:"contactPhone,omitempty" validate:"omitempty,max=40"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID string) (*createBooking.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		CustomerID:   customerID,
		ServiceID:    r.ServiceID,
		StartTime:    startTime,
		Notes:        r.Notes,
		ContactName:  r.ContactName,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
	}, nil
}
