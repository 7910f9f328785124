package get_user_orders

import (
	"errors"
	"net/http"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/api/middleware"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders/models"
)

const (
	msgMissingUser   = "требуется авторизация"
	msgInvalidStatus = "некорректный статус заказа"
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

// Handle GET /api/v1/orders
// Query params: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	result, err := h.service.List(r.Context(), &models.ListOrdersRequest{
		Actor:  principal,
		Status: handlers.OptionalQuery(r, "status"),
	})
	if err != nil {
		if errors.Is(err, orders.ErrInvalidInput) {
			h.logger.Warn("GET /orders - Invalid status: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /orders - Failed to list orders: user_id=%s, error=%v", principal.UserID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /orders - Orders retrieved successfully: user_id=%s, count=%d", principal.UserID, len(result.Orders))
	handlers.RespondJSON(w, http.StatusOK, result)
}
