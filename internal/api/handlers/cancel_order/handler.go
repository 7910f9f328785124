package cancel_order

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/api/middleware"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders"
)

const (
	msgMissingUser      = "требуется авторизация"
	msgNotFound         = "заказ не найден"
	msgAlreadyCancelled = "заказ уже отменен"
	msgCannotCancel     = "оплаченный заказ нельзя отменить"
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

// Handle POST /api/v1/orders/{orderId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	order, err := h.service.Cancel(r.Context(), orderID, principal)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			h.logger.Warn("POST /orders/{id}/cancel - Order not found: order_id=%s, user_id=%s", orderID, principal.UserID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, orders.ErrAlreadyCancelled):
			h.logger.Warn("POST /orders/{id}/cancel - Already cancelled: order_id=%s", orderID)
			handlers.RespondConflict(w, msgAlreadyCancelled)

		case errors.Is(err, orders.ErrInvalidTransition):
			h.logger.Warn("POST /orders/{id}/cancel - Cannot cancel: order_id=%s", orderID)
			handlers.RespondConflict(w, msgCannotCancel)

		default:
			h.logger.Error("POST /orders/{id}/cancel - Failed to cancel order: order_id=%s, error=%v", orderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /orders/{id}/cancel - Order cancelled: order_id=%s, user_id=%s", orderID, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, order)
}
