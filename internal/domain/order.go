package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus статус заказа материалов
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// Order покупка цифрового материала. Тот же жизненный цикл, что у бронирования, но без времени
type Order struct {
	ID            string
	MaterialID    string
	MaterialTitle string
	CustomerID    string
	Price         decimal.Decimal
	Status        OrderStatus
	PaymentLink   *string
	PaymentMethod *PaymentMethod
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (o *Order) IsOwnedBy(customerID string) bool {
	return customerID != "" && o.CustomerID == customerID
}

func (o *Order) AttachPaymentLink(link string, now time.Time) error {
	if o.Status != OrderPending {
		return ErrInvalidTransition
	}
	o.PaymentLink = &link
	o.UpdatedAt = now
	return nil
}

func (o *Order) MarkPaid(method PaymentMethod, now time.Time) error {
	if o.Status != OrderPending {
		return ErrInvalidTransition
	}
	o.Status = OrderPaid
	o.PaymentMethod = &method
	o.PaidAt = &now
	o.UpdatedAt = now
	return nil
}

func (o *Order) Cancel(now time.Time) error {
	switch o.Status {
	case OrderCancelled:
		return ErrAlreadyCancelled
	case OrderPaid:
		return ErrInvalidTransition
	}
	o.Status = OrderCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}

// OrdersFilter фильтр выборки заказов
type OrdersFilter struct {
	CustomerID *string
	Status     *OrderStatus
}

func (f OrdersFilter) Matches(o *Order) bool {
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	return true
}
