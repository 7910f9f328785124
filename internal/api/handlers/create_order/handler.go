package create_order

import (
	"errors"
	"net/http"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/api/middleware"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUser          = "требуется авторизация"
	msgMaterialNotFound     = "материал не найден"
	msgMaterialsUnavailable = "каталог материалов временно недоступен"
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

// Handle POST /api/v1/orders
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("POST /orders - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var req CreateOrderRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /orders - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /orders - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	order, err := h.service.Create(r.Context(), principal, req.MaterialID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidInput):
			h.logger.Warn("POST /orders - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, orders.ErrMaterialNotFound):
			h.logger.Warn("POST /orders - Material not found: material_id=%s", req.MaterialID)
			handlers.RespondNotFound(w, msgMaterialNotFound)

		case errors.Is(err, orders.ErrMaterialsUnavailable):
			h.logger.Error("POST /orders - Materials catalog unavailable: material_id=%s, error=%v", req.MaterialID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgMaterialsUnavailable)

		default:
			h.logger.Error("POST /orders - Failed to create order: user_id=%s, material_id=%s, error=%v",
				principal.UserID, req.MaterialID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /orders - Order created successfully: order_id=%s, user_id=%s", order.ID, principal.UserID)
	handlers.RespondJSON(w, http.StatusCreated, order)
}
