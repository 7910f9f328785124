package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus статус бронирования
// StatusCompleted никогда не хранится: он вычисляется при чтении (см. EffectiveStatus)
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// PaymentStatus статус оплаты бронирования
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentInvoiced PaymentStatus = "invoiced"
)

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodHolvi  PaymentMethod = "holvi"
	PaymentMethodCash   PaymentMethod = "cash"
)

// Booking бронирование времени у оператора
type Booking struct {
	ID         string
	ServiceID  string
	CustomerID string

	// Контакты для анонимных заявок
	ContactName  *string
	ContactEmail *string
	ContactPhone *string

	StartTime       time.Time
	EndTime         time.Time // StartTime + DurationMinutes на момент создания
	DurationMinutes int

	Status        BookingStatus
	PaymentStatus PaymentStatus
	PaymentMethod *PaymentMethod
	PaymentLink   *string

	// Снимок услуги на момент создания
	ServiceTitle string
	Price        decimal.Decimal

	InvoiceNumber  *string
	InvoiceDueDate *time.Time

	Notes       *string
	CancelledAt *time.Time
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive true, если бронирование занимает время в календаре
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// EffectiveStatus статус с учётом времени: подтверждённое бронирование,
// чьё время начала уже наступило, считается завершённым
func (b *Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == StatusConfirmed && !now.Before(b.StartTime) {
		return StatusCompleted
	}
	return b.Status
}

// IsTerminal true для cancelled и completed
func (b *Booking) IsTerminal(now time.Time) bool {
	s := b.EffectiveStatus(now)
	return s == StatusCancelled || s == StatusCompleted
}

// Overlaps проверяет пересечение с полуинтервалом [start, end)
// Касание границами пересечением не считается
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// IsOwnedBy true, если бронирование принадлежит клиенту
func (b *Booking) IsOwnedBy(customerID string) bool {
	return customerID != "" && b.CustomerID == customerID
}

// Cancel pending/confirmed -> cancelled
func (b *Booking) Cancel(now time.Time) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if b.IsTerminal(now) {
		return ErrInvalidTransition
	}

	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// AttachPaymentLink привязывает ссылку на оплату к неоплаченному бронированию
func (b *Booking) AttachPaymentLink(link string, now time.Time) error {
	if b.Status != StatusPending || b.PaymentStatus != PaymentPending || b.IsTerminal(now) {
		return ErrInvalidTransition
	}

	b.PaymentLink = &link
	b.UpdatedAt = now
	return nil
}

// MarkPaid pending -> confirmed/paid одним вызовом
// Также закрывает счёт у уже подтверждённого бронирования (invoiced -> paid)
func (b *Booking) MarkPaid(method PaymentMethod, now time.Time) error {
	switch {
	case b.Status == StatusPending && b.PaymentStatus == PaymentPending:
	case b.Status == StatusConfirmed && b.PaymentStatus == PaymentInvoiced:
	default:
		return ErrInvalidTransition
	}

	b.Status = StatusConfirmed
	b.PaymentStatus = PaymentPaid
	b.PaymentMethod = &method
	b.PaidAt = &now
	b.UpdatedAt = now
	return nil
}

// MarkInvoiced pending -> confirmed/invoiced: оплата ожидается асинхронно
func (b *Booking) MarkInvoiced(method PaymentMethod, now time.Time) error {
	if b.Status != StatusPending || b.PaymentStatus != PaymentPending {
		return ErrInvalidTransition
	}

	b.Status = StatusConfirmed
	b.PaymentStatus = PaymentInvoiced
	b.PaymentMethod = &method
	b.UpdatedAt = now
	return nil
}

// IssueInvoice выставляет счёт Holvi: статус как у MarkInvoiced плюс номер и срок оплаты
func (b *Booking) IssueInvoice(number string, dueDate time.Time, now time.Time) error {
	if err := b.MarkInvoiced(PaymentMethodHolvi, now); err != nil {
		return err
	}
	b.InvoiceNumber = &number
	b.InvoiceDueDate = &dueDate
	return nil
}

// BookingsFilter фильтр для выборки бронирований из хранилища
// Работает только с хранимыми полями, вычисляемые статусы переводятся в него сервисом
type BookingsFilter struct {
	CustomerID *string         // только бронирования клиента
	Statuses   []BookingStatus // пусто = все статусы
	StartFrom  *time.Time      // start_time >= StartFrom
	StartTo    *time.Time      // start_time < StartTo
}

// Matches проверка фильтра в памяти (файловое хранилище)
func (f BookingsFilter) Matches(b *Booking) bool {
	if f.CustomerID != nil && b.CustomerID != *f.CustomerID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if b.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.StartFrom != nil && b.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && !b.StartTime.Before(*f.StartTo) {
		return false
	}
	return true
}
