package issue_invoice

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings"
)

const (
	msgNotFound      = "бронирование не найдено"
	msgCannotInvoice = "счёт можно выставить только для бронирования, ожидающего оплаты"
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

// Handle POST /api/v1/admin/bookings/{bookingId}/invoice
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	booking, err := h.service.IssueInvoice(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /admin/bookings/{id}/invoice - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition), errors.Is(err, bookings.ErrAlreadyCancelled):
			h.logger.Warn("POST /admin/bookings/{id}/invoice - Invalid transition: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgCannotInvoice)

		default:
			h.logger.Error("POST /admin/bookings/{id}/invoice - Failed to issue invoice: booking_id=%s, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/bookings/{id}/invoice - Invoice issued: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
