package attach_order_payment_link

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "заказ не найден"
	msgNotPending         = "ссылку на оплату можно добавить только к неоплаченному заказу"
)

type Handler struct {
	service OrderService
	logger  Logger
}

func NewHandler(service OrderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/orders/{orderId}/payment-link
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	var req AttachPaymentLinkRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/orders/{id}/payment-link - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /admin/orders/{id}/payment-link - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	order, err := h.service.AttachPaymentLink(r.Context(), orderID, req.PaymentLink)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, orders.ErrOrderNotFound):
			h.logger.Warn("POST /admin/orders/{id}/payment-link - Order not found: order_id=%s", orderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrAlreadyCancelled):
			h.logger.Warn("POST /admin/orders/{id}/payment-link - Invalid state: order_id=%s, error=%v", orderID, err)
			handlers.RespondConflict(w, msgNotPending)

		default:
			h.logger.Error("POST /admin/orders/{id}/payment-link - Failed to attach link: order_id=%s, error=%v", orderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/orders/{id}/payment-link - Payment link attached: order_id=%s", orderID)
	handlers.RespondJSON(w, http.StatusOK, order)
}
