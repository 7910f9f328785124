package list_availability

import (
	"net/http"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/admin/availability
// Окна сгруппированы по дням недели 0..6
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	week, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("GET /admin/availability - Failed to list windows: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /admin/availability - Windows retrieved successfully")
	handlers.RespondJSON(w, http.StatusOK, week)
}
