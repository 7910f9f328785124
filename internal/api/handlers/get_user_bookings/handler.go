package get_user_bookings

import (
	"errors"
	"net/http"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/api/middleware"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings/models"
)

const (
	msgMissingUser   = "требуется авторизация"
	msgInvalidParams = "некорректные параметры запроса: status или when"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings
// Query params: status, when (upcoming | past), оба опциональны
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings - Missing principal")
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	serviceReq := &models.ListBookingsRequest{
		Actor:  principal,
		Status: handlers.OptionalQuery(r, "status"),
		When:   handlers.OptionalQuery(r, "when"),
	}

	result, err := h.service.List(r.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /bookings - Invalid parameters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		h.logger.Error("GET /bookings - Failed to get bookings: user_id=%s, error=%v", principal.UserID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /bookings - Bookings retrieved successfully: user_id=%s, count=%d",
		principal.UserID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
