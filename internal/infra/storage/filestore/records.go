package filestore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

// Формат записей на диске: плоские JSON-массивы, по файлу на коллекцию

type bookingRecord struct {
	ID              string                `json:"id"`
	ServiceID       string                `json:"serviceId"`
	CustomerID      string                `json:"customerId"`
	ContactName     *string               `json:"contactName,omitempty"`
	ContactEmail    *string               `json:"contactEmail,omitempty"`
	ContactPhone    *string               `json:"contactPhone,omitempty"`
	StartTime       time.Time             `json:"startTime"`
	EndTime         time.Time             `json:"endTime"`
	DurationMinutes int                   `json:"durationMinutes"`
	Status          domain.BookingStatus  `json:"status"`
	PaymentStatus   domain.PaymentStatus  `json:"paymentStatus"`
	PaymentMethod   *domain.PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentLink     *string               `json:"paymentLink,omitempty"`
	ServiceTitle    string                `json:"serviceTitle"`
	Price           decimal.Decimal       `json:"price"`
	InvoiceNumber   *string               `json:"invoiceNumber,omitempty"`
	InvoiceDueDate  *time.Time            `json:"invoiceDueDate,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	CancelledAt     *time.Time            `json:"cancelledAt,omitempty"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func toBookingRecord(b *domain.Booking) bookingRecord {
	return bookingRecord{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		CustomerID:      b.CustomerID,
		ContactName:     b.ContactName,
		ContactEmail:    b.ContactEmail,
		ContactPhone:    b.ContactPhone,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		PaymentMethod:   b.PaymentMethod,
		PaymentLink:     b.PaymentLink,
		ServiceTitle:    b.ServiceTitle,
		Price:           b.Price,
		InvoiceNumber:   b.InvoiceNumber,
		InvoiceDueDate:  b.InvoiceDueDate,
		Notes:           b.Notes,
		CancelledAt:     b.CancelledAt,
		PaidAt:          b.PaidAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (r bookingRecord) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              r.ID,
		ServiceID:       r.ServiceID,
		CustomerID:      r.CustomerID,
		ContactName:     r.ContactName,
		ContactEmail:    r.ContactEmail,
		ContactPhone:    r.ContactPhone,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		DurationMinutes: r.DurationMinutes,
		Status:          r.Status,
		PaymentStatus:   r.PaymentStatus,
		PaymentMethod:   r.PaymentMethod,
		PaymentLink:     r.PaymentLink,
		ServiceTitle:    r.ServiceTitle,
		Price:           r.Price,
		InvoiceNumber:   r.InvoiceNumber,
		InvoiceDueDate:  r.InvoiceDueDate,
		Notes:           r.Notes,
		CancelledAt:     r.CancelledAt,
		PaidAt:          r.PaidAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type windowRecord struct {
	ID        string           `json:"id"`
	DayOfWeek int              `json:"dayOfWeek"`
	StartTime types.TimeString `json:"startTime"`
	EndTime   types.TimeString `json:"endTime"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"createdAt"`
}

func toWindowRecord(w *domain.AvailabilityWindow) windowRecord {
	return windowRecord{
		ID:        w.ID,
		DayOfWeek: w.DayOfWeek,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
	}
}

func (r windowRecord) toDomain() *domain.AvailabilityWindow {
	return &domain.AvailabilityWindow{
		ID:        r.ID,
		DayOfWeek: r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

type serviceRecord struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"durationMinutes"`
	Price           decimal.Decimal `json:"price"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toServiceRecord(s *domain.Service) serviceRecord {
	return serviceRecord{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
		Active:          s.Active,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r serviceRecord) toDomain() *domain.Service {
	return &domain.Service{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		Active:          r.Active,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type orderRecord struct {
	ID            string                `json:"id"`
	MaterialID    string                `json:"materialId"`
	MaterialTitle string                `json:"materialTitle"`
	CustomerID    string                `json:"customerId"`
	Price         decimal.Decimal       `json:"price"`
	Status        domain.OrderStatus    `json:"status"`
	PaymentLink   *string               `json:"paymentLink,omitempty"`
	PaymentMethod *domain.PaymentMethod `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
	CancelledAt   *time.Time            `json:"cancelledAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

func toOrderRecord(o *domain.Order) orderRecord {
	return orderRecord{
		ID:            o.ID,
		MaterialID:    o.MaterialID,
		MaterialTitle: o.MaterialTitle,
		CustomerID:    o.CustomerID,
		Price:         o.Price,
		Status:        o.Status,
		PaymentLink:   o.PaymentLink,
		PaymentMethod: o.PaymentMethod,
		PaidAt:        o.PaidAt,
		CancelledAt:   o.CancelledAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:            r.ID,
		MaterialID:    r.MaterialID,
		MaterialTitle: r.MaterialTitle,
		CustomerID:    r.CustomerID,
		Price:         r.Price,
		Status:        r.Status,
		PaymentLink:   r.PaymentLink,
		PaymentMethod: r.PaymentMethod,
		PaidAt:        r.PaidAt,
		CancelledAt:   r.CancelledAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
