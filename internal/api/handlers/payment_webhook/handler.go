package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/waelosamahelmi/saroistavaloon/internal/api/handlers"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/stripegateway"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/orders"
)

const (
	signatureHeader = "Stripe-Signature"
	maxPayloadBytes = 64 << 10

	msgInvalidPayload   = "некорректное тело запроса"
	msgInvalidSignature = "некорректная подпись"

	outcomeApplied = "applied"
	outcomeSkipped = "skipped"
	outcomeIgnored = "ignored"
)

type Handler struct {
	verifier PaymentVerifier
	bookings BookingPayments
	orders   OrderPayments
	logger   Logger
}

func NewHandler(verifier PaymentVerifier, bookings BookingPayments, orders OrderPayments, logger Logger) *Handler {
	return &Handler{
		verifier: verifier,
		bookings: bookings,
		orders:   orders,
		logger:   logger,
	}
}

// Handle POST /api/v1/payments/stripe/webhook
// 2xx означает, что событие принято; 5xx шлюз доставит повторно
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /payments/stripe/webhook - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	event, err := h.verifier.Parse(payload, r.Header.Get(signatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, stripegateway.ErrInvalidSignature):
			h.logger.Warn("POST /payments/stripe/webhook - Invalid signature: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSignature)

		default:
			h.logger.Warn("POST /payments/stripe/webhook - Invalid payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)
		}
		return
	}

	if event.Outcome == stripegateway.OutcomeIgnored {
		h.logger.Info("POST /payments/stripe/webhook - Event ignored: event_id=%s", event.EventID)
		handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Outcome: outcomeIgnored})
		return
	}

	settled := event.Outcome == stripegateway.OutcomeSettled

	switch {
	case event.BookingID != "":
		err = h.bookings.ConfirmGatewayPayment(r.Context(), event.BookingID, settled)
	case settled:
		err = h.orders.ConfirmGatewayPayment(r.Context(), event.OrderID)
	default:
		// у заказа нет промежуточного статуса, ждём payment_intent.succeeded
		h.logger.Info("POST /payments/stripe/webhook - Processing event for order skipped: order_id=%s", event.OrderID)
		handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Outcome: outcomeSkipped})
		return
	}

	if err != nil {
		if isTerminal(err) {
			// повтор доставки ничего не изменит
			h.logger.Warn("POST /payments/stripe/webhook - Event not applicable: event_id=%s, booking_id=%s, order_id=%s, error=%v",
				event.EventID, event.BookingID, event.OrderID, err)
			handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Outcome: outcomeSkipped})
			return
		}
		h.logger.Error("POST /payments/stripe/webhook - Failed to apply event: event_id=%s, error=%v", event.EventID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /payments/stripe/webhook - Event applied: event_id=%s, booking_id=%s, order_id=%s, outcome=%s",
		event.EventID, event.BookingID, event.OrderID, event.Outcome)
	handlers.RespondJSON(w, http.StatusOK, AckResponse{Received: true, Outcome: outcomeApplied})
}

func isTerminal(err error) bool {
	return errors.Is(err, bookings.ErrBookingNotFound) ||
		errors.Is(err, bookings.ErrInvalidTransition) ||
		errors.Is(err, bookings.ErrAlreadyCancelled) ||
		errors.Is(err, orders.ErrOrderNotFound) ||
		errors.Is(err, orders.ErrInvalidTransition) ||
		errors.Is(err, orders.ErrAlreadyCancelled)
}
