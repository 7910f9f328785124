package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

// Request модели

// ListBookingsRequest запрос списка бронирований
// Для клиента выборка всегда ограничена его бронированиями
type ListBookingsRequest struct {
	Actor  domain.Principal
	Status *string // pending | confirmed | cancelled | completed
	When   *string // upcoming | past
}

const (
	WhenUpcoming = "upcoming"
	WhenPast     = "past"
)

// MarkPaidRequest ручная отметка оплаты оператором
type MarkPaidRequest struct {
	PaymentMethod *string // по умолчанию cash
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              string          `json:"id"`
	ServiceID       string          `json:"serviceId"`
	ServiceTitle    string          `json:"serviceTitle"`
	CustomerID      string          `json:"customerId"`
	ContactName     *string         `json:"contactName,omitempty"`
	ContactEmail    *string         `json:"contactEmail,omitempty"`
	ContactPhone    *string         `json:"contactPhone,omitempty"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         time.Time       `json:"endTime"`
	DurationMinutes int             `json:"durationMinutes"`
	Status          string          `json:"status"` // completed вычисляется на момент ответа
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   *string         `json:"paymentMethod,omitempty"`
	PaymentLink     *string         `json:"paymentLink,omitempty"`
	Price           decimal.Decimal `json:"price"`
	InvoiceNumber   *string         `json:"invoiceNumber,omitempty"`
	InvoiceDueDate  *string         `json:"invoiceDueDate,omitempty"` // "2030-01-21"
	Notes           *string         `json:"notes,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO; время в часовом поясе loc
func FromDomainBooking(b *domain.Booking, now time.Time, loc *time.Location) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		ServiceID:       b.ServiceID,
		ServiceTitle:    b.ServiceTitle,
		CustomerID:      b.CustomerID,
		ContactName:     b.ContactName,
		ContactEmail:    b.ContactEmail,
		ContactPhone:    b.ContactPhone,
		StartTime:       b.StartTime.In(loc),
		EndTime:         b.EndTime.In(loc),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.EffectiveStatus(now)),
		PaymentStatus:   string(b.PaymentStatus),
		PaymentLink:     b.PaymentLink,
		Price:           b.Price,
		InvoiceNumber:   b.InvoiceNumber,
		Notes:           b.Notes,
		CancelledAt:     b.CancelledAt,
		PaidAt:          b.PaidAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.PaymentMethod != nil {
		method := string(*b.PaymentMethod)
		resp.PaymentMethod = &method
	}

	if b.InvoiceDueDate != nil {
		due := b.InvoiceDueDate.In(loc).Format(domain.DateFormat)
		resp.InvoiceDueDate = &due
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, now time.Time, loc *time.Location) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, now, loc); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
