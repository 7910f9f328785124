package attach_payment_link

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgNotPending         = "ссылку на оплату можно добавить только к неоплаченному бронированию"
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

// Handle POST /api/v1/admin/bookings/{bookingId}/payment-link
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	var req AttachPaymentLinkRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/payment-link - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /admin/bookings/{id}/payment-link - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	booking, err := h.service.AttachPaymentLink(r.Context(), bookingID, req.PaymentLink)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("POST /admin/bookings/{id}/payment-link - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /admin/bookings/{id}/payment-link - Booking not found: booking_id=%s", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition), errors.Is(err, bookings.ErrAlreadyCancelled):
			h.logger.Warn("POST /admin/bookings/{id}/payment-link - Invalid state: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondConflict(w, msgNotPending)

		default:
			h.logger.Error("POST /admin/bookings/{id}/payment-link - Failed to attach link: booking_id=%s, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/bookings/{id}/payment-link - Payment link attached: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
