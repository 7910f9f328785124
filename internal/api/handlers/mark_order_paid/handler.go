package mark_order_paid

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
	msgCannotMarkPaid     = "заказ нельзя отметить оплаченным в текущем статусе"
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

// Handle POST /api/v1/admin/orders/{orderId}/mark-paid
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	var req MarkPaidRequest
	if err := handlers.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/orders/{id}/mark-paid - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	order, err := h.service.MarkPaid(r.Context(), orderID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, orders.ErrOrderNotFound):
			h.logger.Warn("POST /admin/orders/{id}/mark-paid - Order not found: order_id=%s", orderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrAlreadyCancelled):
			h.logger.Warn("POST /admin/orders/{id}/mark-paid - Invalid transition: order_id=%s, error=%v", orderID, err)
			handlers.RespondConflict(w, msgCannotMarkPaid)

		default:
			h.logger.Error("POST /admin/orders/{id}/mark-paid - Failed to mark paid: order_id=%s, error=%v", orderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/orders/{id}/mark-paid - Order marked paid: order_id=%s", orderID)
	handlers.RespondJSON(w, http.StatusOK, order)
}
