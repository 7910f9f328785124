package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

// ListOrdersRequest запрос списка заказов; клиент видит только свои
type ListOrdersRequest struct {
	Actor  domain.Principal
	Status *string
}

// OrderResponse заказ материала
type OrderResponse struct {
	ID            string          `json:"id"`
	MaterialID    string          `json:"materialId"`
	MaterialTitle string          `json:"materialTitle"`
	CustomerID    string          `json:"customerId"`
	Price         decimal.Decimal `json:"price"`
	Status        string          `json:"status"`
	PaymentLink   *string         `json:"paymentLink,omitempty"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderListResponse список заказов
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

func FromDomainOrder(o *domain.Order) *OrderResponse {
	if o == nil {
		return nil
	}

	resp := &OrderResponse{
		ID:            o.ID,
		MaterialID:    o.MaterialID,
		MaterialTitle: o.MaterialTitle,
		CustomerID:    o.CustomerID,
		Price:         o.Price,
		Status:        string(o.Status),
		PaymentLink:   o.PaymentLink,
		PaidAt:        o.PaidAt,
		CancelledAt:   o.CancelledAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.PaymentMethod != nil {
		method := string(*o.PaymentMethod)
		resp.PaymentMethod = &method
	}
	return resp
}

func FromDomainOrderList(orders []*domain.Order) *OrderListResponse {
	resp := &OrderListResponse{Orders: make([]OrderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, *FromDomainOrder(o))
	}
	return resp
}
