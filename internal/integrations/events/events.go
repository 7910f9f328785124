package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

// Типы доменных событий для внешних получателей (почта, счета)
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingConfirmed = "booking.confirmed"
	BookingPaid      = "booking.paid"
	BookingInvoiced  = "booking.invoiced"
	OrderCreated     = "order.created"
	OrderPaid        = "order.paid"
	OrderCancelled   = "order.cancelled"
)

// Event доменное событие
type Event struct {
	Type        string      `json:"type"`
	AggregateID string      `json:"aggregateId"`
	OccurredAt  time.Time   `json:"occurredAt"`
	Payload     interface{} `json:"payload,omitempty"`
}

// BookingPayload данные бронирования для писем и счетов
type BookingPayload struct {
	CustomerID     string          `json:"customerId"`
	ContactName    *string         `json:"contactName,omitempty"`
	ContactEmail   *string         `json:"contactEmail,omitempty"`
	ServiceTitle   string          `json:"serviceTitle"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"paymentStatus"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	Price          decimal.Decimal `json:"price"`
	InvoiceNumber  *string         `json:"invoiceNumber,omitempty"`
	InvoiceDueDate *time.Time      `json:"invoiceDueDate,omitempty"`
}

// OrderPayload данные заказа материала
type OrderPayload struct {
	CustomerID    string          `json:"customerId"`
	MaterialID    string          `json:"materialId"`
	MaterialTitle string          `json:"materialTitle"`
	Status        string          `json:"status"`
	Price         decimal.Decimal `json:"price"`
}

// NewBookingEvent собирает событие по бронированию
func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) Event {
	var method *string
	if b.PaymentMethod != nil {
		m := string(*b.PaymentMethod)
		method = &m
	}

	return Event{
		Type:        eventType,
		AggregateID: b.ID,
		OccurredAt:  at,
		Payload: BookingPayload{
			CustomerID:     b.CustomerID,
			ContactName:    b.ContactName,
			ContactEmail:   b.ContactEmail,
			ServiceTitle:   b.ServiceTitle,
			StartTime:      b.StartTime,
			EndTime:        b.EndTime,
			Status:         string(b.EffectiveStatus(at)),
			PaymentStatus:  string(b.PaymentStatus),
			PaymentMethod:  method,
			Price:          b.Price,
			InvoiceNumber:  b.InvoiceNumber,
			InvoiceDueDate: b.InvoiceDueDate,
		},
	}
}

// NewOrderEvent собирает событие по заказу
func NewOrderEvent(eventType string, o *domain.Order, at time.Time) Event {
	return Event{
		Type:        eventType,
		AggregateID: o.ID,
		OccurredAt:  at,
		Payload: OrderPayload{
			CustomerID:    o.CustomerID,
			MaterialID:    o.MaterialID,
			MaterialTitle: o.MaterialTitle,
			Status:        string(o.Status),
			Price:         o.Price,
		},
	}
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
