package delete_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/availability"
)

const msgNotFound = "окно не найдено"

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

// Handle DELETE /api/v1/admin/availability/{windowId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	windowID := mux.Vars(r)["windowId"]

	if err := h.service.Delete(r.Context(), windowID); err != nil {
		switch {
		case errors.Is(err, availability.ErrWindowNotFound):
			h.logger.Warn("DELETE /admin/availability/{id} - Window not found: window_id=%s", windowID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /admin/availability/{id} - Failed to delete window: window_id=%s, error=%v",
				windowID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/availability/{id} - Window deleted: window_id=%s", windowID)
	handlers.RespondNoContent(w)
}
